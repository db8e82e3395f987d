package shared

import (
	"context"
	"time"
)

// InFlightStore tracks requests currently being processed, keyed by correlation id
type InFlightStore interface {
	// Acquire claims key for ttl. Returns false if another request holds it,
	// otherwise the token that identifies this claim.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)

	// Release frees key if it is still held under token. A claim that
	// expired and was taken over by another request is left alone.
	Release(ctx context.Context, key, token string) error

	// Close closes the store and releases resources
	Close() error
}
