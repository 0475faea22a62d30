// Package domain contains core domain types for the practice server.
package domain

import (
	"time"
)

// Learner represents an anonymous learner identified by a device cookie.
type Learner struct {
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	LastSeenAt time.Time `json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsIdle returns true if the learner has not been seen within the window.
func (l *Learner) IsIdle(window time.Duration) bool {
	return time.Since(l.LastSeenAt) > window
}
