package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError_DomainKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", shared.NewValidationError("discount", "discount cannot be negative"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", shared.NewNotFoundError("quote", "42"), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", shared.ErrRequestInFlight, http.StatusConflict, "REQUEST_IN_FLIGHT"},
		{"transition", shared.NewInvalidTransitionError("quote", "accepted", "draft"), http.StatusUnprocessableEntity, "INVALID_TRANSITION"},
		{"precondition", shared.NewPreconditionError("quote already invoiced"), http.StatusPreconditionFailed, "PRECONDITION_FAILED"},
		{"remote", shared.NewRemoteError(errors.New("502"), "remote catalog rejected batch"), http.StatusBadGateway, "REMOTE_ERROR"},
		{"store busy", shared.NewStoreBusyError(errors.New("database is locked")), http.StatusServiceUnavailable, "STORE_BUSY"},
		{"wrapped", fmt.Errorf("promote: %w", shared.NewNotFoundError("quote", "7")), http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := FromError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestFromError_ValidationDetails(t *testing.T) {
	_, resp := FromError(shared.NewValidationError("lines", "at least one line is required"))
	assert.Equal(t, map[string]string{"lines": "at least one line is required"}, resp.Details)
}

func TestFromError_UnknownIsHidden(t *testing.T) {
	status, resp := FromError(errors.New("pq: relation quotes does not exist"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, ErrCodeInternal, resp.Error)
	assert.NotContains(t, resp.Message, "pq")
	assert.True(t, IsInternal(errors.New("x")))
	assert.False(t, IsInternal(shared.ErrNotFound))
}

func TestFromError_JSONErrors(t *testing.T) {
	var target struct {
		Quantity int64 `json:"quantity"`
	}

	err := json.NewDecoder(strings.NewReader(`{"quantity": "three"}`)).Decode(&target)
	status, resp := FromError(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ErrCodeValidation, resp.Error)
	assert.Contains(t, resp.Details, "quantity")

	err = json.Unmarshal([]byte(`{"quantity": `), &target)
	status, resp = FromError(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ErrCodeInvalidJSON, resp.Error)
}

type sampleRequest struct {
	Name     string `json:"name" binding:"required"`
	Status   string `json:"status" binding:"omitempty,oneof=draft active"`
	Quantity int    `json:"quantity" binding:"gt=0"`
}

func TestValidator_ReportsJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.ValidateStruct(&sampleRequest{Status: "archived"})
	require.Error(t, err)

	status, resp := FromError(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "is required", resp.Details["name"])
	assert.Equal(t, "must be one of: draft active", resp.Details["status"])
	assert.Equal(t, "must be greater than 0", resp.Details["quantity"])
}

func TestValidator_AcceptsValuesAndSlices(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateStruct(sampleRequest{Name: "x", Quantity: 1}))
	assert.Error(t, v.ValidateStruct([]sampleRequest{{Name: "x", Quantity: 1}, {}}))
	assert.NoError(t, v.ValidateStruct(nil))
	assert.NotNil(t, v.Engine())
}

func TestNewListResponse(t *testing.T) {
	resp := NewListResponse([]string{"a"}, 12)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"rows":["a"],"count":12}`, string(body))
}
