// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/ashureev/markdown-labs/internal/domain"
)

// Repository defines the interface for persisting learners and their attempts.
type Repository interface {
	// GetLearner retrieves a learner by user ID. It returns nil, nil when absent.
	GetLearner(ctx context.Context, userID string) (*domain.Learner, error)

	// UpsertLearner creates or updates a learner record.
	UpsertLearner(ctx context.Context, learner *domain.Learner) error

	// UpdateLastSeen updates the last_seen_at timestamp for a learner.
	UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error

	// RecordAttempt stores the outcome of one submission.
	RecordAttempt(ctx context.Context, attempt *domain.Attempt) error

	// TierStats aggregates a learner's attempts per tier, ordered by tier index.
	TierStats(ctx context.Context, userID string) ([]domain.TierStat, error)

	// CleanupAttempts removes attempts older than ttl.
	CleanupAttempts(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
