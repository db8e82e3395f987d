package integration

import "time"

// SyncStatus represents the outcome of a sync run
type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "SUCCESS"
	SyncStatusPartial SyncStatus = "PARTIAL"
	SyncStatusFailed  SyncStatus = "FAILED"
)

// SyncPhase names a step of a reconciliation run
type SyncPhase string

const (
	PhaseAttributes SyncPhase = "attributes"
	PhaseTerms      SyncPhase = "terms"
	PhaseTags       SyncPhase = "tags"
	PhaseProducts   SyncPhase = "products"
	PhaseCategories SyncPhase = "categories"
)

// SyncFailure represents a failed sync item
type SyncFailure struct {
	Phase        SyncPhase `json:"phase"`
	ItemID       string    `json:"item_id"`
	ErrorCode    string    `json:"error_code,omitempty"`
	ErrorMessage string    `json:"error_message"`
}

// SyncResult is the outcome of one or more sync phases
type SyncResult struct {
	Status      SyncStatus    `json:"status"`
	Phases      []SyncPhase   `json:"phases"`
	Created     int           `json:"created"`
	Updated     int           `json:"updated"`
	Deleted     int           `json:"deleted"`
	Pulled      int           `json:"pulled"`
	FailedCount int           `json:"failed_count"`
	FailedItems []SyncFailure `json:"failed_items"`
	Error       string        `json:"error,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	SyncedAt    time.Time     `json:"synced_at"`
}

// NewSyncResult starts an empty result
func NewSyncResult(now time.Time) *SyncResult {
	return &SyncResult{
		Status:      SyncStatusSuccess,
		Phases:      []SyncPhase{},
		FailedItems: []SyncFailure{},
		StartedAt:   now,
	}
}

// AddFailure records a per-item failure
func (r *SyncResult) AddFailure(phase SyncPhase, itemID, code, msg string) {
	r.FailedItems = append(r.FailedItems, SyncFailure{
		Phase:        phase,
		ItemID:       itemID,
		ErrorCode:    code,
		ErrorMessage: msg,
	})
	r.FailedCount++
}

// Fail marks the run as failed with a phase level error
func (r *SyncResult) Fail(err error) {
	r.Status = SyncStatusFailed
	r.Error = err.Error()
}

// Merge folds another result into r
func (r *SyncResult) Merge(o *SyncResult) {
	r.Phases = append(r.Phases, o.Phases...)
	r.Created += o.Created
	r.Updated += o.Updated
	r.Deleted += o.Deleted
	r.Pulled += o.Pulled
	r.FailedCount += o.FailedCount
	r.FailedItems = append(r.FailedItems, o.FailedItems...)
	if o.Status == SyncStatusFailed {
		r.Status = SyncStatusFailed
		r.Error = o.Error
	}
}

// Finish settles the final status
func (r *SyncResult) Finish(now time.Time) *SyncResult {
	r.SyncedAt = now
	if r.Status != SyncStatusFailed && r.FailedCount > 0 {
		r.Status = SyncStatusPartial
	}
	return r
}

// Succeeded reports whether the run completed without a phase failure
func (r *SyncResult) Succeeded() bool {
	return r.Status != SyncStatusFailed
}
