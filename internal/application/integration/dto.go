package integration

import (
	"time"

	"github.com/atelier/backend/internal/domain/integration"
)

// SyncOptions controls a reconciliation run
type SyncOptions struct {
	// PhaseDelay is waited between the attribute and the tag phase
	PhaseDelay time.Duration
	// PruneRemote deletes remote records that have no local counterpart.
	// When false they are adopted locally instead.
	PruneRemote bool
}

// DefaultSyncOptions returns the options used when none are configured
func DefaultSyncOptions() SyncOptions {
	return SyncOptions{PhaseDelay: 500 * time.Millisecond}
}

// SyncResponse is the wire form of a sync result
type SyncResponse struct {
	Status      integration.SyncStatus    `json:"status"`
	Phases      []integration.SyncPhase   `json:"phases"`
	Created     int                       `json:"created"`
	Updated     int                       `json:"updated"`
	Deleted     int                       `json:"deleted"`
	Pulled      int                       `json:"pulled"`
	FailedCount int                       `json:"failed_count"`
	FailedItems []integration.SyncFailure `json:"failed_items"`
	Error       string                    `json:"error,omitempty"`
	StartedAt   time.Time                 `json:"started_at"`
	SyncedAt    time.Time                 `json:"synced_at"`
	DurationMs  int64                     `json:"duration_ms"`
}

// ToSyncResponse converts a domain sync result
func ToSyncResponse(r *integration.SyncResult) SyncResponse {
	return SyncResponse{
		Status:      r.Status,
		Phases:      r.Phases,
		Created:     r.Created,
		Updated:     r.Updated,
		Deleted:     r.Deleted,
		Pulled:      r.Pulled,
		FailedCount: r.FailedCount,
		FailedItems: r.FailedItems,
		Error:       r.Error,
		StartedAt:   r.StartedAt,
		SyncedAt:    r.SyncedAt,
		DurationMs:  r.SyncedAt.Sub(r.StartedAt).Milliseconds(),
	}
}

// MediaResponse is an uploaded media item
type MediaResponse struct {
	ID        int64  `json:"id"`
	SourceURL string `json:"source_url"`
	MimeType  string `json:"mime_type"`
	Title     string `json:"title"`
}
