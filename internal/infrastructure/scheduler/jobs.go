package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atelier/backend/internal/application/sales"
	"github.com/atelier/backend/internal/domain/integration"
	"go.uber.org/zap"
)

// Task names
const (
	TaskCatalogSync  = "catalog_sync"
	TaskOverdueSweep = "overdue_sweep"
	TaskQuoteExpiry  = "quote_expiry"
)

// CatalogSyncer runs a full catalog reconciliation
type CatalogSyncer interface {
	SyncAll(ctx context.Context) (*integration.SyncResult, error)
}

// OverdueSweeper marks sent invoices past their due date as overdue
type OverdueSweeper interface {
	SweepOverdue(ctx context.Context, now time.Time) (*sales.SweepResult, error)
}

// QuoteExpirer closes active quotes past their validity
type QuoteExpirer interface {
	ExpireQuotes(ctx context.Context, now time.Time) (*sales.ExpiryResult, error)
}

// SweepRecorder receives the number of invoices each sweep marked
type SweepRecorder interface {
	RecordOverdueSwept(ctx context.Context, n int)
}

// CatalogSyncTask pushes the catalog. A FAILED run is an error so the job
// is retried; a PARTIAL run is not, its item failures would only repeat.
func CatalogSyncTask(syncer CatalogSyncer) Task {
	return TaskFunc(TaskCatalogSync, func(ctx context.Context) error {
		result, err := syncer.SyncAll(ctx)
		if err != nil {
			return err
		}
		if result.Status == integration.SyncStatusFailed {
			return fmt.Errorf("%w: %s", ErrSyncRunFailed, result.Error)
		}
		return nil
	})
}

// OverdueSweepTask runs one overdue sweep. recorder may be nil.
func OverdueSweepTask(sweeper OverdueSweeper, recorder SweepRecorder, now func() time.Time) Task {
	return TaskFunc(TaskOverdueSweep, func(ctx context.Context) error {
		result, err := sweeper.SweepOverdue(ctx, now())
		if result != nil && recorder != nil {
			recorder.RecordOverdueSwept(ctx, result.Marked)
		}
		return err
	})
}

// QuoteExpiryTask runs one quote expiry pass
func QuoteExpiryTask(expirer QuoteExpirer, now func() time.Time) Task {
	return TaskFunc(TaskQuoteExpiry, func(ctx context.Context) error {
		_, err := expirer.ExpireQuotes(ctx, now())
		return err
	})
}

// Ticker submits a task to the scheduler at a fixed interval, once right
// after start and then every interval.
type Ticker struct {
	scheduler *Scheduler
	task      Task
	interval  time.Duration
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTicker creates a ticker for task
func NewTicker(scheduler *Scheduler, task Task, interval time.Duration, logger *zap.Logger) *Ticker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ticker{scheduler: scheduler, task: task, interval: interval, logger: logger}
}

// Start starts the ticker loop; a non-positive interval disables it
func (t *Ticker) Start(ctx context.Context) {
	if t.interval <= 0 {
		t.logger.Info("Periodic task disabled", zap.String("task", t.task.Name()))
		return
	}
	ctx, t.cancel = context.WithCancel(ctx)
	t.wg.Add(1)
	go t.loop(ctx)
	t.logger.Info("Periodic task started", zap.String("task", t.task.Name()), zap.Duration("interval", t.interval))
}

// Stop stops the ticker loop
func (t *Ticker) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
	t.wg.Wait()
}

func (t *Ticker) loop(ctx context.Context) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.submit()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.submit()
		}
	}
}

// submit skips the tick while the previous job of the task is still pending or running
func (t *Ticker) submit() {
	for _, s := range t.scheduler.Status() {
		if s.Task == t.task.Name() && (s.Status == JobStatusPending || s.Status == JobStatusRunning) {
			t.logger.Debug("Previous job still active, skipping tick", zap.String("task", s.Task))
			return
		}
	}
	if _, err := t.scheduler.Submit(t.task); err != nil {
		t.logger.Warn("Failed to submit periodic task", zap.String("task", t.task.Name()), zap.Error(err))
	}
}
