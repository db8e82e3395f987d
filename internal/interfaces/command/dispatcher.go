// Package command maps named commands to application operations. Each
// command has a typed payload that is decoded strictly and validated
// before the operation runs.
package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/interfaces/http/dto"
)

// ErrUnknownCommand is returned for a name with no registered handler
var ErrUnknownCommand = &shared.DomainError{
	Kind:    shared.KindNotFound,
	Code:    dto.ErrCodeUnknownCmd,
	Message: "Unknown command",
}

// Result is what a command produces. Rows and Count are set for list commands.
type Result struct {
	Data    any
	Rows    any
	Count   *int64
	Message string
}

// Response converts the result into the reply envelope
func (r Result) Response() dto.Response {
	return dto.Response{Success: true, Data: r.Data, Rows: r.Rows, Count: r.Count, Message: r.Message}
}

// Data wraps a single value
func Data(v any) Result { return Result{Data: v} }

// Rows wraps a page of rows and the total count
func Rows(rows any, count int64) Result { return Result{Rows: rows, Count: &count} }

// Message wraps a confirmation message
func Message(msg string) Result { return Result{Message: msg} }

type handlerFunc func(ctx context.Context, payload json.RawMessage) (Result, error)

// Dispatcher routes command names to handlers
type Dispatcher struct {
	handlers  map[string]handlerFunc
	validator *dto.Validator
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher(v *dto.Validator) *Dispatcher {
	if v == nil {
		v = dto.NewValidator()
	}
	return &Dispatcher{handlers: make(map[string]handlerFunc), validator: v}
}

// Handle registers fn under name. The payload is decoded into a fresh P.
func Handle[P any](d *Dispatcher, name string, fn func(ctx context.Context, p P) (Result, error)) {
	if _, dup := d.handlers[name]; dup {
		panic(fmt.Sprintf("command %q registered twice", name))
	}
	d.handlers[name] = func(ctx context.Context, payload json.RawMessage) (Result, error) {
		var p P
		if err := decodeStrict(payload, &p); err != nil {
			return Result{}, err
		}
		if err := d.validator.ValidateStruct(&p); err != nil {
			return Result{}, err
		}
		return fn(ctx, p)
	}
}

// Dispatch runs the named command
func (d *Dispatcher) Dispatch(ctx context.Context, name string, payload json.RawMessage) (Result, error) {
	h, ok := d.handlers[name]
	if !ok {
		return Result{}, ErrUnknownCommand.WithDetail("command", name)
	}
	return h(ctx, payload)
}

// Names returns the registered command names, sorted
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decodeStrict rejects unknown fields and trailing data. An empty payload
// decodes as an empty object.
func decodeStrict(payload json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
			return err
		}
		// unknown field and other decoder complaints
		return shared.NewValidationError("", "invalid payload: %s", err.Error())
	}
	if dec.More() {
		return shared.NewValidationError("", "invalid payload: trailing data after JSON object")
	}
	return nil
}
