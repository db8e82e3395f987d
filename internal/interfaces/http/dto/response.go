package dto

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Response is the envelope of every command and REST reply
type Response struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Rows    any               `json:"rows,omitempty"`
	Count   *int64            `json:"count,omitempty"`
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewListResponse creates a success response carrying a page of rows and the total count
func NewListResponse(rows any, count int64) Response {
	return Response{Success: true, Rows: rows, Count: &count}
}

// NewMessageResponse creates a success response with only a message
func NewMessageResponse(message string) Response {
	return Response{Success: true, Message: message}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{Success: false, Error: code, Message: message}
}

// NewValidationErrorResponse lists one detail per failing field
func NewValidationErrorResponse(errs validator.ValidationErrors) Response {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		details[fe.Field()] = describe(fe)
	}
	resp := NewErrorResponse(ErrCodeValidation, "Request validation failed")
	resp.Details = details
	return resp
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "uuid":
		return "must be a valid UUID"
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
