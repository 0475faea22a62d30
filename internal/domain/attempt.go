package domain

import (
	"time"
)

// Attempt is a persisted record of one submission.
type Attempt struct {
	ID          string
	UserID      string
	SessionID   string
	TierIndex   int
	TierName    string
	ChallengeID string
	Correct     bool
	CreatedAt   time.Time
}

// TierStat aggregates attempts for a single tier.
type TierStat struct {
	TierIndex int    `json:"tier_index"`
	TierName  string `json:"tier_name"`
	Attempts  int    `json:"attempts"`
	Correct   int    `json:"correct"`
}

// Accuracy returns the share of correct attempts in [0, 1].
func (s TierStat) Accuracy() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Attempts)
}
