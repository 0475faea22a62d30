// Package shared provides common utilities used across the codebase.
//
//nolint:revive // "shared" is an intentional package name for cross-cutting helpers.
package shared

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// IsSQLiteConflictError checks if the error is a SQLITE_BUSY or
// "database is locked" error. Both are SQLite concurrency errors that
// warrant a retry.
func IsSQLiteConflictError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// RetryPolicy bounds retries of conflicting SQLite writes.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultRetryPolicy returns 3 attempts starting at 50ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: 50 * time.Millisecond}
}

// RetryOnConflict runs op, retrying with exponential backoff while it fails
// with a SQLite conflict. Other errors are returned immediately.
func RetryOnConflict(ctx context.Context, p RetryPolicy, name string, op func(context.Context) error) error {
	if p.MaxRetries <= 0 {
		p.MaxRetries = 1
	}

	var err error
	attempts := 0
	for i := 0; i < p.MaxRetries; i++ {
		attempts++
		err = op(ctx)
		if err == nil {
			return nil
		}
		if !IsSQLiteConflictError(err) || i == p.MaxRetries-1 {
			break
		}

		delay := p.BaseDelay * time.Duration(1<<i) // exponential backoff
		slog.Debug("Database locked, retrying", "op", name, "attempt", i+1, "delay", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", name, ctx.Err())
		}
	}
	return fmt.Errorf("%s after %d attempts: %w", name, attempts, err)
}
