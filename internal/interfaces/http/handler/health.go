package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/atelier/backend/internal/infrastructure/scheduler"
	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether the store answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// JobStatusSource reports background job state
type JobStatusSource interface {
	Status() []scheduler.Snapshot
}

// HealthResponse is the /health payload
type HealthResponse struct {
	Status   string               `json:"status"`
	Version  string               `json:"version"`
	Uptime   string               `json:"uptime"`
	Database string               `json:"database"`
	Jobs     []scheduler.Snapshot `json:"jobs,omitempty"`
}

// HealthHandler serves /health
type HealthHandler struct {
	db        Pinger
	jobs      JobStatusSource
	version   string
	startedAt time.Time
	timeout   time.Duration
}

// NewHealthHandler creates a HealthHandler. jobs may be nil when the
// scheduler is disabled.
func NewHealthHandler(db Pinger, jobs JobStatusSource, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		jobs:      jobs,
		version:   version,
		startedAt: time.Now(),
		timeout:   2 * time.Second,
	}
}

// Check GET /health. Answers 503 when the database does not respond.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:   "ok",
		Version:  h.version,
		Uptime:   time.Since(h.startedAt).Round(time.Second).String(),
		Database: "up",
	}
	if h.jobs != nil {
		resp.Jobs = h.jobs.Status()
	}

	status := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = "down"
		status = http.StatusServiceUnavailable
	}

	body := dto.NewSuccessResponse(resp)
	body.Success = status == http.StatusOK
	c.JSON(status, body)
}
