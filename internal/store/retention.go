package store

import (
	"context"
	"log/slog"
	"time"
)

const retentionInterval = time.Hour

// StartRetentionWorker runs a background goroutine that periodically removes
// attempts older than retention.
func StartRetentionWorker(ctx context.Context, repo Repository, retention time.Duration) {
	ticker := time.NewTicker(retentionInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("Retention worker started", "interval", retentionInterval, "retention", retention)

		for {
			select {
			case <-ticker.C:
				pruneAttempts(ctx, repo, retention)
			case <-ctx.Done():
				slog.Info("Retention worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func pruneAttempts(ctx context.Context, repo Repository, retention time.Duration) int64 {
	deleted, err := repo.CleanupAttempts(ctx, retention)
	if err != nil {
		slog.Error("Retention worker failed to cleanup attempts", "error", err)
		return 0
	}
	if deleted > 0 {
		slog.Info("Retention worker removed old attempts", "count", deleted)
	}
	return deleted
}
