package integration

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// MaxBatchSize is the largest number of items the remote accepts per batch call
const MaxBatchSize = 100

// DefaultPageSize is the page size used when walking remote collections
const DefaultPageSize = 100

var (
	ErrRemoteNotConfigured   = errors.New("integration: remote catalog not configured")
	ErrRemoteRequestFailed   = errors.New("integration: remote request failed")
	ErrRemoteInvalidResponse = errors.New("integration: invalid remote response")
	ErrRemoteResponseTooBig  = errors.New("integration: remote response exceeds size limit")
)

// RemoteError is a non-2xx answer from the remote catalog
type RemoteError struct {
	Status  int
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("remote %d: %s", e.Status, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return ErrRemoteRequestFailed
}

// Retryable reports whether the failure is transient
func (e *RemoteError) Retryable() bool {
	return e.Status == 429 || e.Status >= 500
}

// ListOptions are the query parameters of a collection GET
type ListOptions struct {
	Page    int
	PerPage int
	Search  string
	// Extra carries resource specific filters such as "parent" or "status"
	Extra map[string]string
}

// Page is one page of a remote collection
type Page[T any] struct {
	Items      []T
	Total      int
	TotalPages int
}

// BatchRequest is the body of a POST <resource>/batch call
type BatchRequest[T any] struct {
	Create []T     `json:"create,omitempty"`
	Update []T     `json:"update,omitempty"`
	Delete []int64 `json:"delete,omitempty"`
}

// Len returns the number of operations in the request
func (r BatchRequest[T]) Len() int {
	return len(r.Create) + len(r.Update) + len(r.Delete)
}

// BatchResponse mirrors BatchRequest, one entry per submitted item in order
type BatchResponse[T any] struct {
	Create []T `json:"create,omitempty"`
	Update []T `json:"update,omitempty"`
	Delete []T `json:"delete,omitempty"`
}

// Resource is one remote collection
type Resource[T any] interface {
	List(ctx context.Context, opts ListOptions) (*Page[T], error)
	// ListAll walks every page of the collection
	ListAll(ctx context.Context, opts ListOptions) ([]T, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, item *T) (*T, error)
	Update(ctx context.Context, id int64, item *T) (*T, error)
	// Delete removes the record permanently
	Delete(ctx context.Context, id int64) error
	// Batch submits the request in chunks of MaxBatchSize and merges the responses
	Batch(ctx context.Context, req BatchRequest[T]) (*BatchResponse[T], error)
}

// CatalogGateway is the port to the remote catalog
type CatalogGateway interface {
	Attributes() Resource[RemoteAttribute]
	Terms(attributeID int64) Resource[RemoteTerm]
	Tags() Resource[RemoteTag]
	Categories() Resource[RemoteCategory]
	Products() Resource[RemoteProduct]
	Variations(productID int64) Resource[RemoteVariation]

	// UploadMedia stores a file in the remote media library
	UploadMedia(ctx context.Context, filename, contentType string, body io.Reader) (*RemoteMedia, error)
}
