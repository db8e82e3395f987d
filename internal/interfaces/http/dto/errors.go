package dto

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/go-playground/validator/v10"
)

// Error codes produced at the boundary rather than by the domain
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeUnknownCmd   = "UNKNOWN_COMMAND"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTimeout      = "TIMEOUT"
	ErrCodeTooLarge     = "PAYLOAD_TOO_LARGE"
)

// KindHTTPStatus maps domain error kinds to HTTP status codes
var KindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation:        http.StatusBadRequest,
	shared.KindNotFound:          http.StatusNotFound,
	shared.KindConflict:          http.StatusConflict,
	shared.KindInvalidTransition: http.StatusUnprocessableEntity,
	shared.KindPrecondition:      http.StatusPreconditionFailed,
	shared.KindRemote:            http.StatusBadGateway,
	shared.KindStoreBusy:         http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for a kind, 500 when unknown
func GetHTTPStatus(kind shared.ErrorKind) int {
	if status, ok := KindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

const internalMessage = "An unexpected error occurred"

// FromError normalizes err into a status code and a failure response.
// Unknown errors come back as a generic 500; the caller logs the detail.
func FromError(err error) (int, Response) {
	var (
		domainErr *shared.DomainError
		verrs     validator.ValidationErrors
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
		numErr    *strconv.NumError
	)
	switch {
	case errors.As(err, &domainErr):
		resp := NewErrorResponse(domainErr.Code, domainErr.Message)
		resp.Details = domainErr.Details
		return GetHTTPStatus(domainErr.Kind), resp
	case errors.As(err, &verrs):
		return http.StatusBadRequest, NewValidationErrorResponse(verrs)
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, NewErrorResponse(ErrCodeTooLarge, "Request body is too large")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, NewErrorResponse(ErrCodeInvalidJSON, "Malformed JSON payload")
	case errors.Is(err, io.EOF):
		return http.StatusBadRequest, NewErrorResponse(ErrCodeInvalidJSON, "Request body is required")
	case errors.As(err, &numErr):
		return http.StatusBadRequest, NewErrorResponse(ErrCodeValidation, "Invalid number "+strconv.Quote(numErr.Num))
	case errors.As(err, &typeErr):
		resp := NewErrorResponse(ErrCodeValidation, "Invalid value for field "+typeErr.Field)
		resp.Details = map[string]string{typeErr.Field: "must be a " + typeErr.Type.String()}
		return http.StatusBadRequest, resp
	}
	return http.StatusInternalServerError, NewErrorResponse(ErrCodeInternal, internalMessage)
}

// IsInternal reports whether FromError would hide err behind the generic message
func IsInternal(err error) bool {
	status, _ := FromError(err)
	return status == http.StatusInternalServerError
}
