package practice

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/markdown-labs/internal/domain"
	"github.com/google/uuid"
)

// AttemptRecorder persists submission outcomes.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, attempt *domain.Attempt) error
}

const recordTimeout = 5 * time.Second

type registryEntry struct {
	session     *Session
	lastSeen    time.Time
	unsubscribe func()
	// streams counts attached push connections; attached sessions are never swept.
	streams int
}

// Registry owns one practice session per learner tab.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*registryEntry
	factory  func() *Session
	recorder AttemptRecorder
	onEvict  func(userID, sessionID string)
	now      func() time.Time
}

// NewRegistry creates a registry that builds sessions with factory and
// records every submission through recorder. recorder may be nil.
func NewRegistry(factory func() *Session, recorder AttemptRecorder) *Registry {
	return &Registry{
		sessions: make(map[string]*registryEntry),
		factory:  factory,
		recorder: recorder,
		now:      time.Now,
	}
}

func registryKey(userID, sessionID string) string {
	return userID + ":" + sessionID
}

// OnEvict registers fn to run after a session is swept.
func (r *Registry) OnEvict(fn func(userID, sessionID string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvict = fn
}

// Get returns the session for a learner tab, creating it on first use.
func (r *Registry) Get(userID, sessionID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entryLocked(userID, sessionID).session
}

// Attach returns the session for a learner tab and keeps it alive until the
// returned detach function is called.
func (r *Registry) Attach(userID, sessionID string) (*Session, func()) {
	r.mu.Lock()
	e := r.entryLocked(userID, sessionID)
	e.streams++
	r.mu.Unlock()

	var once sync.Once
	detach := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			e.streams--
			e.lastSeen = r.now()
		})
	}
	return e.session, detach
}

// Touch marks a learner tab as active.
func (r *Registry) Touch(userID, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[registryKey(userID, sessionID)]; ok {
		e.lastSeen = r.now()
	}
}

func (r *Registry) entryLocked(userID, sessionID string) *registryEntry {
	key := registryKey(userID, sessionID)
	if e, ok := r.sessions[key]; ok {
		e.lastSeen = r.now()
		return e
	}

	s := r.factory()
	e := &registryEntry{session: s, lastSeen: r.now()}
	if r.recorder != nil {
		e.unsubscribe = s.Subscribe(r.attemptObserver(s, userID, sessionID))
	}
	r.sessions[key] = e
	slog.Info("Practice session created", "user_id", userID, "session_id", sessionID)
	return e
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// SweepIdle evicts sessions not accessed within ttl and without an attached
// stream, and returns how many were removed.
func (r *Registry) SweepIdle(ttl time.Duration) int {
	threshold := r.now().Add(-ttl)

	type expiredEntry struct {
		userID, sessionID string
		entry             *registryEntry
	}

	r.mu.Lock()
	var expired []expiredEntry
	for key, e := range r.sessions {
		if e.streams == 0 && e.lastSeen.Before(threshold) {
			userID, sessionID, _ := strings.Cut(key, ":")
			expired = append(expired, expiredEntry{userID, sessionID, e})
			delete(r.sessions, key)
		}
	}
	onEvict := r.onEvict
	r.mu.Unlock()

	for _, x := range expired {
		if x.entry.unsubscribe != nil {
			x.entry.unsubscribe()
		}
		x.entry.session.Close()
		slog.Info("Practice session evicted", "user_id", x.userID, "session_id", x.sessionID)
		if onEvict != nil {
			onEvict(x.userID, x.sessionID)
		}
	}
	return len(expired)
}

func (r *Registry) attemptObserver(s *Session, userID, sessionID string) func(domain.Event) {
	return func(ev domain.Event) {
		if ev.Type != domain.EventFeedback || ev.Feedback == nil {
			return
		}
		attempt := &domain.Attempt{
			ID:          uuid.NewString(),
			UserID:      userID,
			SessionID:   sessionID,
			TierIndex:   ev.Feedback.TierIndex,
			TierName:    s.TierName(ev.Feedback.TierIndex),
			ChallengeID: ev.Feedback.ChallengeID,
			Correct:     ev.Feedback.Correct,
			CreatedAt:   r.now(),
		}
		// Record asynchronously with timeout.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
			defer cancel()
			if err := r.recorder.RecordAttempt(ctx, attempt); err != nil {
				slog.Warn("Failed to record attempt", "user_id", userID, "session_id", sessionID, "error", err)
			}
		}()
	}
}

const sweepInterval = time.Minute

// StartSweeper runs a background goroutine that evicts idle sessions until
// ctx is cancelled.
func StartSweeper(ctx context.Context, r *Registry, ttl time.Duration) {
	ticker := time.NewTicker(sweepInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session sweeper started", "interval", sweepInterval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				if n := r.SweepIdle(ttl); n > 0 {
					slog.Info("Session sweeper evicted idle sessions", "count", n)
				}
			case <-ctx.Done():
				slog.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
