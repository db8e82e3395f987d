package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/atelier/backend/internal/infrastructure/config"
	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Task is a unit of background work
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

type funcTask struct {
	name string
	fn   func(ctx context.Context) error
}

func (t funcTask) Name() string                  { return t.name }
func (t funcTask) Run(ctx context.Context) error { return t.fn(ctx) }

// TaskFunc wraps a function as a Task
func TaskFunc(name string, fn func(ctx context.Context) error) Task {
	return funcTask{name: name, fn: fn}
}

// Job is one execution of a task, including its retries
type Job struct {
	ID          uuid.UUID
	Task        string
	Status      JobStatus
	Error       string
	Timeout     time.Duration
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time

	task Task
}

// NewJob creates a pending job for task
func NewJob(task Task, maxRetries int, timeout time.Duration) *Job {
	return &Job{
		ID:         uuid.New(),
		Task:       task.Name(),
		Status:     JobStatusPending,
		Timeout:    timeout,
		MaxRetries: maxRetries,
		task:       task,
	}
}

// Start marks the job as running
func (j *Job) Start(now time.Time) {
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.NextRetryAt = nil
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete(now time.Time) {
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *Job) Fail(now time.Time, err string) {
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry puts the job back to pending until now+delay.
// The last error is kept for status reporting.
func (j *Job) ScheduleRetry(now time.Time, delay time.Duration) {
	j.RetryCount++
	j.Status = JobStatusPending
	next := now.Add(delay)
	j.NextRetryAt = &next
}

// Snapshot is a copy of a job safe to hand out of the scheduler
type Snapshot struct {
	ID          uuid.UUID  `json:"id"`
	Task        string     `json:"task"`
	Status      JobStatus  `json:"status"`
	Error       string     `json:"error,omitempty"`
	RetryCount  int        `json:"retry_count"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`
}

func (j *Job) snapshot() Snapshot {
	return Snapshot{
		ID:          j.ID,
		Task:        j.Task,
		Status:      j.Status,
		Error:       j.Error,
		RetryCount:  j.RetryCount,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
		NextRetryAt: j.NextRetryAt,
	}
}

// Config holds scheduler configuration
type Config struct {
	Enabled           bool
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
	MaxRetryDelay     time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		MaxConcurrentJobs: 2,
		JobTimeout:        5 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        30 * time.Second,
		MaxRetryDelay:     10 * time.Minute,
	}
}

// ConfigFrom maps the application scheduler section, keeping defaults for unset values
func ConfigFrom(c config.SchedulerConfig) Config {
	cfg := DefaultConfig()
	cfg.Enabled = c.Enabled
	if c.JobTimeout > 0 {
		cfg.JobTimeout = c.JobTimeout
	}
	if c.RetryAttempts >= 0 {
		cfg.RetryAttempts = c.RetryAttempts
	}
	if c.RetryDelay > 0 {
		cfg.RetryDelay = c.RetryDelay
	}
	if c.MaxRetryDelay > 0 {
		cfg.MaxRetryDelay = c.MaxRetryDelay
	}
	return cfg
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.MaxConcurrentJobs < 1 {
		return fmt.Errorf("%w: max concurrent jobs must be at least 1", ErrInvalidConfig)
	}
	if c.JobTimeout <= 0 {
		return fmt.Errorf("%w: job timeout must be positive", ErrInvalidConfig)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", ErrInvalidConfig)
	}
	if c.RetryDelay <= 0 || c.MaxRetryDelay < c.RetryDelay {
		return fmt.Errorf("%w: retry delay must be positive and not exceed max retry delay", ErrInvalidConfig)
	}
	return nil
}

// RetryDelayFor returns the wait before retry number attempt (1-based):
// RetryDelay doubled per attempt, capped at MaxRetryDelay.
func (c Config) RetryDelayFor(attempt int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.RetryDelay
	b.MaxInterval = c.MaxRetryDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.Reset()

	delay := c.RetryDelay
	for i := 0; i < attempt; i++ {
		delay = b.NextBackOff()
	}
	return delay
}

const historySize = 50

// Scheduler runs tasks on a small worker pool, retrying failures with
// capped exponential backoff and keeping the status of recent jobs.
type Scheduler struct {
	config Config
	logger *zap.Logger
	now    func() time.Time

	jobs    chan *Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	history []*Job
	latest  map[string]*Job
}

// New creates a new scheduler instance
func New(cfg Config, logger *zap.Logger) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		config: cfg,
		logger: logger,
		now:    time.Now,
		jobs:   make(chan *Job, 32),
		latest: make(map[string]*Job),
	}, nil
}

// Start starts the worker pool
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(s.ctx, i)
	}

	s.logger.Info("Scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
		zap.Int("retry_attempts", s.config.RetryAttempts),
	)
	return nil
}

// Stop cancels running jobs and pending retries and waits for the workers
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// Submit queues task with the default job timeout
func (s *Scheduler) Submit(task Task) (*Job, error) {
	return s.SubmitWithTimeout(task, s.config.JobTimeout)
}

// SubmitWithTimeout queues task; each attempt runs under timeout
func (s *Scheduler) SubmitWithTimeout(task Task, timeout time.Duration) (*Job, error) {
	job := NewJob(task, s.config.RetryAttempts, timeout)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil, ErrSchedulerNotRunning
	}

	select {
	case s.jobs <- job:
	default:
		return nil, ErrJobQueueFull
	}
	s.track(job)
	s.logger.Debug("Job submitted", zap.String("job_id", job.ID.String()), zap.String("task", job.Task))
	return job, nil
}

// Status returns the most recent job of every task, sorted by task name
func (s *Scheduler) Status() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Snapshot, 0, len(s.latest))
	for _, job := range s.latest {
		out = append(out, job.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Task < out[j].Task })
	return out
}

// History returns up to limit recent jobs, newest first
func (s *Scheduler) History(limit int) []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	out := make([]Snapshot, 0, limit)
	for i := len(s.history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.history[i].snapshot())
	}
	return out
}

// track records a new job; callers hold s.mu
func (s *Scheduler) track(job *Job) {
	s.latest[job.Task] = job
	s.history = append(s.history, job)
	if len(s.history) > historySize {
		s.history = s.history[len(s.history)-historySize:]
	}
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	s.mu.Lock()
	job.Start(s.now())
	s.mu.Unlock()

	s.logger.Info("Processing job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("task", job.Task),
		zap.Int("retry_count", job.RetryCount),
	)

	jobCtx, cancel := context.WithTimeout(ctx, job.Timeout)
	err := s.run(jobCtx, job)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		job.Complete(s.now())
		s.logger.Info("Job completed", zap.String("job_id", job.ID.String()), zap.String("task", job.Task))
		return
	}

	job.Fail(s.now(), err.Error())
	s.logger.Error("Job failed",
		zap.String("job_id", job.ID.String()),
		zap.String("task", job.Task),
		zap.Int("retry_count", job.RetryCount),
		zap.Error(err),
	)
	if ctx.Err() != nil || !job.ShouldRetry() {
		return
	}

	delay := s.config.RetryDelayFor(job.RetryCount + 1)
	job.ScheduleRetry(s.now(), delay)
	s.logger.Info("Job scheduled for retry",
		zap.String("job_id", job.ID.String()),
		zap.String("task", job.Task),
		zap.Int("retry_count", job.RetryCount),
		zap.Duration("delay", delay),
	)

	s.wg.Add(1)
	go s.requeueAfter(ctx, job, delay)
}

func (s *Scheduler) requeueAfter(ctx context.Context, job *Job, delay time.Duration) {
	defer s.wg.Done()
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	select {
	case s.jobs <- job:
	case <-ctx.Done():
	}
}

func (s *Scheduler) run(ctx context.Context, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", job.Task, r)
		}
	}()
	return job.task.Run(ctx)
}
