package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/markdown-labs/internal/domain"
	"github.com/ashureev/markdown-labs/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db    *sql.DB
	retry shared.RetryPolicy
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string, retry shared.RetryPolicy) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db, retry: retry}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS learners (
		user_id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		last_seen_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		tier_index INTEGER NOT NULL,
		tier_name TEXT NOT NULL,
		challenge_id TEXT NOT NULL,
		correct INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_attempts_user ON attempts(user_id, tier_index);
	CREATE INDEX IF NOT EXISTS idx_attempts_created ON attempts(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetLearner retrieves a learner by user ID.
func (s *SQLiteStore) GetLearner(ctx context.Context, userID string) (*domain.Learner, error) {
	query := `
		SELECT user_id, username, last_seen_at, created_at, updated_at
		FROM learners WHERE user_id = ?`

	var learner domain.Learner
	var lastSeen, createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&learner.UserID, &learner.Username, &lastSeen, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan learner row: %w", err)
	}

	learner.LastSeenAt = time.Unix(lastSeen, 0)
	learner.CreatedAt = time.Unix(createdAt, 0)
	learner.UpdatedAt = time.Unix(updatedAt, 0)
	return &learner, nil
}

// UpsertLearner creates or updates a learner record.
func (s *SQLiteStore) UpsertLearner(ctx context.Context, learner *domain.Learner) error {
	query := `
	INSERT INTO learners (user_id, username, last_seen_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		username = excluded.username,
		last_seen_at = excluded.last_seen_at,
		updated_at = excluded.updated_at`

	return shared.RetryOnConflict(ctx, s.retry, "upsert learner", func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, query,
			learner.UserID, learner.Username, learner.LastSeenAt.Unix(),
			learner.CreatedAt.Unix(), learner.UpdatedAt.Unix(),
		)
		return err
	})
}

// UpdateLastSeen updates the last_seen_at timestamp for a learner.
func (s *SQLiteStore) UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error {
	query := `UPDATE learners SET last_seen_at = ?, updated_at = ? WHERE user_id = ?`
	result, err := s.db.ExecContext(ctx, query, lastSeen.Unix(), time.Now().Unix(), userID)
	if err != nil {
		return fmt.Errorf("update last_seen: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		slog.Warn("UpdateLastSeen affected 0 rows", "user_id", userID)
	}
	return nil
}

// RecordAttempt stores the outcome of one submission, retrying on SQLITE_BUSY.
func (s *SQLiteStore) RecordAttempt(ctx context.Context, a *domain.Attempt) error {
	query := `
	INSERT INTO attempts (id, user_id, session_id, tier_index, tier_name, challenge_id, correct, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	return shared.RetryOnConflict(ctx, s.retry, "record attempt", func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, query,
			a.ID, a.UserID, a.SessionID, a.TierIndex, a.TierName,
			a.ChallengeID, a.Correct, a.CreatedAt.Unix(),
		)
		return err
	})
}

// TierStats aggregates a learner's attempts per tier.
func (s *SQLiteStore) TierStats(ctx context.Context, userID string) ([]domain.TierStat, error) {
	query := `
		SELECT tier_index, MAX(tier_name), COUNT(*), COALESCE(SUM(correct), 0)
		FROM attempts WHERE user_id = ?
		GROUP BY tier_index
		ORDER BY tier_index`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query tier stats: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close tier stats rows", "error", closeErr)
		}
	}()

	var stats []domain.TierStat
	for rows.Next() {
		var st domain.TierStat
		if err := rows.Scan(&st.TierIndex, &st.TierName, &st.Attempts, &st.Correct); err != nil {
			return nil, fmt.Errorf("scan tier stats row: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tier stats: %w", err)
	}
	return stats, nil
}

// CleanupAttempts removes attempts older than ttl.
func (s *SQLiteStore) CleanupAttempts(ctx context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl).Unix()
	result, err := s.db.ExecContext(ctx, `DELETE FROM attempts WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("cleanup attempts: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
