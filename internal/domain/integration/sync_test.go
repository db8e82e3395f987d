package integration

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSyncResult_Finish(t *testing.T) {
	now := time.Now()

	r := NewSyncResult(now)
	r.Created = 2
	assert.Equal(t, SyncStatusSuccess, r.Finish(now).Status)

	r = NewSyncResult(now)
	r.AddFailure(PhaseTags, "12", "term_exists", "A term with the name provided already exists.")
	assert.Equal(t, SyncStatusPartial, r.Finish(now).Status)
	assert.Equal(t, 1, r.FailedCount)

	r = NewSyncResult(now)
	r.AddFailure(PhaseTags, "12", "", "boom")
	r.Fail(errors.New("remote down"))
	assert.Equal(t, SyncStatusFailed, r.Finish(now).Status)
	assert.False(t, r.Succeeded())
}

func TestSyncResult_Merge(t *testing.T) {
	now := time.Now()
	a := NewSyncResult(now)
	a.Phases = append(a.Phases, PhaseAttributes)
	a.Created = 1

	b := NewSyncResult(now)
	b.Phases = append(b.Phases, PhaseTags)
	b.Updated = 3
	b.Fail(errors.New("tags failed"))

	a.Merge(b)
	assert.Equal(t, []SyncPhase{PhaseAttributes, PhaseTags}, a.Phases)
	assert.Equal(t, 1, a.Created)
	assert.Equal(t, 3, a.Updated)
	assert.Equal(t, SyncStatusFailed, a.Status)
	assert.Equal(t, "tags failed", a.Error)
}

func TestRemoteError(t *testing.T) {
	err := &RemoteError{Status: 503, Code: "unavailable", Message: "try later"}
	assert.True(t, errors.Is(err, ErrRemoteRequestFailed))
	assert.True(t, err.Retryable())
	assert.False(t, (&RemoteError{Status: 400}).Retryable())
	assert.Equal(t, 3, BatchRequest[RemoteTag]{Create: make([]RemoteTag, 2), Delete: []int64{4}}.Len())
}
