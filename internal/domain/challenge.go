package domain

// Challenge is one generated practice exercise.
type Challenge struct {
	ID          string   `json:"id"`
	Markup      string   `json:"-"`
	Explanation string   `json:"-"`
	Hints       []string `json:"hints,omitempty"`
	// Expect lists CSS selectors that must all match the rendered markup.
	// Empty means the tier's selector applies.
	Expect []string `json:"-"`
}

// Presentation is what a learner sees when a challenge loads.
type Presentation struct {
	// Seq increases with every load in a session; a lower Seq is outdated.
	Seq             uint64   `json:"seq"`
	TierIndex       int      `json:"tier_index"`
	TierLabel       string   `json:"tier_label"`
	ChallengeID     string   `json:"challenge_id"`
	RenderedPreview string   `json:"rendered_preview"`
	Hints           []string `json:"hints"`
}

// Feedback is the outcome of a submission.
type Feedback struct {
	ChallengeID string `json:"challenge_id"`
	TierIndex   int    `json:"tier_index"`
	Correct     bool   `json:"correct"`
	Message     string `json:"message"`
	CanReveal   bool   `json:"can_reveal"`
}

// Reveal exposes the literal answer after a failed attempt.
type Reveal struct {
	Explanation string `json:"explanation"`
	Markup      string `json:"markup"`
}

// EventType categorizes session events pushed to observers.
type EventType string

const (
	// EventPresented fires after a challenge loads.
	EventPresented EventType = "presented"
	// EventFeedback fires after a submission is evaluated.
	EventFeedback EventType = "feedback"
)

// Event is emitted by a practice session on every visible transition.
type Event struct {
	Type         EventType     `json:"type"`
	Presentation *Presentation `json:"presentation,omitempty"`
	Feedback     *Feedback     `json:"feedback,omitempty"`
}
