package practice

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/markdown-labs/internal/domain"
	"github.com/ashureev/markdown-labs/internal/render"
	"github.com/google/uuid"
)

// DefaultAdvanceDelay is the pause between a correct answer and the next challenge.
const DefaultAdvanceDelay = 1200 * time.Millisecond

// Feedback messages shown after a submission.
const (
	MessageCorrect   = "Correct!"
	MessageIncorrect = "Not quite — try again!"
)

var (
	// ErrNotPresenting is returned when no challenge is awaiting an answer.
	ErrNotPresenting = errors.New("no challenge awaiting an answer")
	// ErrStaleChallenge is returned when a submission targets a replaced challenge.
	ErrStaleChallenge = errors.New("challenge is no longer current")
	// ErrRevealLocked is returned when reveal is requested before a wrong attempt.
	ErrRevealLocked = errors.New("answer reveal requires a wrong attempt")
	// ErrUnknownTier is returned for a tier index outside the tier table.
	ErrUnknownTier = errors.New("unknown tier")
)

// State is the lifecycle state of a session.
type State int

const (
	// StateIdle means no challenge has been loaded yet.
	StateIdle State = iota
	// StatePresenting means a challenge is awaiting an answer.
	StatePresenting
	// StateTransitioning means a correct answer was given and the next tier is pending.
	StateTransitioning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePresenting:
		return "presenting"
	case StateTransitioning:
		return "transitioning"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Scheduler runs f once after d.
type Scheduler func(d time.Duration, f func())

func timerScheduler(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// SessionConfig holds the collaborators of a session.
type SessionConfig struct {
	Tiers        []Tier
	Source       Source
	Renderer     render.Renderer
	AdvanceDelay time.Duration
	// Verify checks every rendered preview against its expected selectors.
	Verify    bool
	Scheduler Scheduler
	Logger    *slog.Logger
}

// Session is the practice state machine for one learner tab.
type Session struct {
	tiers    []Tier
	src      Source
	renderer render.Renderer
	delay    time.Duration
	verify   bool
	schedule Scheduler
	logger   *slog.Logger

	mu              sync.Mutex
	state           State
	tierIndex       int
	current         *domain.Challenge
	presentation    domain.Presentation
	hasWrongAttempt bool
	feedback        *domain.Feedback
	// epoch increments on every load so that a superseded advance is dropped.
	epoch     uint64
	observers map[int]func(domain.Event)
	nextObsID int
}

// NewSession creates an idle session.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Tiers == nil {
		cfg.Tiers = DefaultTiers()
	}
	if cfg.Source == nil {
		cfg.Source = NewSource()
	}
	if cfg.Renderer == nil {
		cfg.Renderer = render.NewGoldmark()
	}
	if cfg.AdvanceDelay < 0 {
		cfg.AdvanceDelay = 0
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = timerScheduler
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Session{
		tiers:     cfg.Tiers,
		src:       cfg.Source,
		renderer:  cfg.Renderer,
		delay:     cfg.AdvanceDelay,
		verify:    cfg.Verify,
		schedule:  cfg.Scheduler,
		logger:    cfg.Logger,
		observers: make(map[int]func(domain.Event)),
	}
}

// Subscribe registers fn to receive session events and returns a function
// that removes it. Events are delivered outside the session lock.
func (s *Session) Subscribe(fn func(domain.Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

func (s *Session) observersLocked() []func(domain.Event) {
	out := make([]func(domain.Event), 0, len(s.observers))
	for _, fn := range s.observers {
		out = append(out, fn)
	}
	return out
}

func notify(observers []func(domain.Event), ev domain.Event) {
	for _, fn := range observers {
		fn(ev)
	}
}

// TierCount returns the number of tiers.
func (s *Session) TierCount() int {
	return len(s.tiers)
}

// TierName returns the name of the tier at index i, or "" when out of range.
func (s *Session) TierName(i int) string {
	if i < 0 || i >= len(s.tiers) {
		return ""
	}
	return s.tiers[i].Name
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TierIndex returns the current tier index.
func (s *Session) TierIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tierIndex
}

// HasWrongAttempt reports whether the current challenge has been answered wrongly.
func (s *Session) HasWrongAttempt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasWrongAttempt
}

// CanReveal reports whether Reveal would succeed.
func (s *Session) CanReveal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canRevealLocked()
}

func (s *Session) canRevealLocked() bool {
	return s.hasWrongAttempt && s.state == StatePresenting
}

// Feedback returns the feedback for the last submission on the current challenge.
func (s *Session) Feedback() (domain.Feedback, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.feedback == nil {
		return domain.Feedback{}, false
	}
	return *s.feedback, true
}

// Current returns the live presentation, loading the first tier when idle.
func (s *Session) Current() (domain.Presentation, error) {
	s.mu.Lock()
	if s.state != StateIdle {
		p := s.presentation
		s.mu.Unlock()
		return p, nil
	}
	s.mu.Unlock()
	return s.Load(0)
}

// Load presents a fresh challenge from the tier at tierIndex.
func (s *Session) Load(tierIndex int) (domain.Presentation, error) {
	if tierIndex < 0 || tierIndex >= len(s.tiers) {
		return domain.Presentation{}, fmt.Errorf("load tier %d: %w", tierIndex, ErrUnknownTier)
	}
	return s.loadAndNotify(func(int) int { return tierIndex })
}

// Next moves to the following tier, wrapping after the last one.
func (s *Session) Next() (domain.Presentation, error) {
	return s.loadAndNotify(func(cur int) int { return (cur + 1) % len(s.tiers) })
}

// Prev moves to the preceding tier, wrapping before the first one.
func (s *Session) Prev() (domain.Presentation, error) {
	return s.loadAndNotify(func(cur int) int { return (cur - 1 + len(s.tiers)) % len(s.tiers) })
}

func (s *Session) loadAndNotify(target func(cur int) int) (domain.Presentation, error) {
	s.mu.Lock()
	p, err := s.loadLocked(target(s.tierIndex))
	observers := s.observersLocked()
	s.mu.Unlock()
	if err != nil {
		return domain.Presentation{}, err
	}
	notify(observers, domain.Event{Type: domain.EventPresented, Presentation: &p})
	return p, nil
}

func (s *Session) loadLocked(tierIndex int) (domain.Presentation, error) {
	tier := s.tiers[tierIndex]
	gen := Pick(s.src, tier.Generators)
	ch := gen(s.src)
	ch.ID = uuid.NewString()

	html, err := s.renderer.Render(ch.Markup)
	if err != nil {
		s.logger.Error("Generated challenge failed to render",
			"tier", tier.Name, "markup", ch.Markup, "error", err)
		return domain.Presentation{}, fmt.Errorf("render challenge for tier %q: %w", tier.Name, err)
	}
	if s.verify {
		for _, sel := range tier.Expectations(ch) {
			if err := render.Verify(html, sel); err != nil {
				s.logger.Error("Generated challenge rendered without expected structure",
					"tier", tier.Name, "markup", ch.Markup, "error", err)
			}
		}
	}

	hints := ch.Hints
	if hints == nil {
		hints = []string{}
	}

	s.epoch++
	s.tierIndex = tierIndex
	s.current = &ch
	s.hasWrongAttempt = false
	s.feedback = nil
	s.state = StatePresenting
	s.presentation = domain.Presentation{
		Seq:             s.epoch,
		TierIndex:       tierIndex,
		TierLabel:       Label(tierIndex, tier),
		ChallengeID:     ch.ID,
		RenderedPreview: html,
		Hints:           hints,
	}

	s.logger.Debug("Challenge loaded", "tier", tier.Name, "challenge_id", ch.ID)
	return s.presentation, nil
}

// Submit evaluates answer against the current challenge. An empty
// challengeID skips the staleness check.
//
// A correct answer schedules the advance to the next tier; the wrong-attempt
// flag is only cleared by that later load.
func (s *Session) Submit(challengeID, answer string) (domain.Feedback, error) {
	s.mu.Lock()
	if s.state != StatePresenting {
		s.mu.Unlock()
		return domain.Feedback{}, fmt.Errorf("submit in state %s: %w", s.state, ErrNotPresenting)
	}
	if challengeID != "" && challengeID != s.current.ID {
		s.mu.Unlock()
		return domain.Feedback{}, fmt.Errorf("submit for challenge %s: %w", challengeID, ErrStaleChallenge)
	}

	fb := domain.Feedback{
		ChallengeID: s.current.ID,
		TierIndex:   s.tierIndex,
	}
	if Evaluate(answer, s.current.Markup) {
		fb.Correct = true
		fb.Message = MessageCorrect
		s.state = StateTransitioning
	} else {
		fb.Message = MessageIncorrect
		s.hasWrongAttempt = true
	}
	fb.CanReveal = s.canRevealLocked()
	s.feedback = &fb
	epoch := s.epoch
	observers := s.observersLocked()
	s.mu.Unlock()

	notify(observers, domain.Event{Type: domain.EventFeedback, Feedback: &fb})
	if fb.Correct {
		s.schedule(s.delay, func() { s.advance(epoch) })
	}
	return fb, nil
}

// advance moves to the next tier unless a newer load superseded it.
func (s *Session) advance(epoch uint64) {
	s.mu.Lock()
	if s.epoch != epoch || s.state != StateTransitioning {
		s.mu.Unlock()
		return
	}
	p, err := s.loadLocked((s.tierIndex + 1) % len(s.tiers))
	observers := s.observersLocked()
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("Failed to advance to next tier", "error", err)
		return
	}
	notify(observers, domain.Event{Type: domain.EventPresented, Presentation: &p})
}

// Reveal returns the explanation and literal markup of the current challenge.
func (s *Session) Reveal() (domain.Reveal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canRevealLocked() {
		return domain.Reveal{}, ErrRevealLocked
	}
	return domain.Reveal{
		Explanation: s.current.Explanation,
		Markup:      s.current.Markup,
	}, nil
}

// Close drops any pending advance.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	for id := range s.observers {
		delete(s.observers, id)
	}
}
