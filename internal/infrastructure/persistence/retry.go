package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// PostgreSQL error codes treated as transient contention
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// RetryPolicy retries operations that fail because the store is busy
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	logger          *zap.Logger
}

// NoRetry runs operations exactly once
var NoRetry = RetryPolicy{}

// NewRetryPolicy creates a busy retry policy
func NewRetryPolicy(maxRetries int, initial time.Duration, logger *zap.Logger) RetryPolicy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return RetryPolicy{
		MaxRetries:      maxRetries,
		InitialInterval: initial,
		MaxInterval:     initial * 20,
		logger:          logger,
	}
}

// Do runs op, retrying with exponential backoff while it reports a busy store.
// A busy error that survives every retry is returned as a StoreBusyError.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	if p.MaxRetries <= 0 {
		err := op()
		if isBusy(err) {
			return shared.NewStoreBusyError(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := op()
		if err != nil && !isBusy(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.MaxRetries+1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			if p.logger != nil {
				p.logger.Debug("Store busy, retrying", zap.Error(err), zap.Duration("next", next))
			}
		}),
	)
	if err == nil {
		return nil
	}

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	if isBusy(err) {
		return shared.NewStoreBusyError(err)
	}
	return err
}

// isBusy reports whether err signals lock contention in the store
func isBusy(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return true
		}
		return false
	}

	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
