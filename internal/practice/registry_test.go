package practice

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/markdown-labs/internal/domain"
)

type fakeRecorder struct {
	mu       sync.Mutex
	attempts []*domain.Attempt
	recorded chan struct{}
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{recorded: make(chan struct{}, 16)}
}

func (f *fakeRecorder) RecordAttempt(_ context.Context, a *domain.Attempt) error {
	f.mu.Lock()
	f.attempts = append(f.attempts, a)
	f.mu.Unlock()
	f.recorded <- struct{}{}
	return nil
}

func (f *fakeRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-f.recorded:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for attempt to be recorded")
	}
}

func testFactory() *Session {
	return NewSession(SessionConfig{
		Source:       NewSeededSource(9),
		AdvanceDelay: time.Hour,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestRegistryReusesSessionPerTab(t *testing.T) {
	r := NewRegistry(testFactory, nil)

	a := r.Get("user-1", "tab-1")
	if r.Get("user-1", "tab-1") != a {
		t.Fatal("expected the same session for the same tab")
	}
	if r.Get("user-1", "tab-2") == a {
		t.Fatal("expected a separate session for another tab")
	}
	if r.Get("user-2", "tab-1") == a {
		t.Fatal("expected a separate session for another user")
	}
	if r.Len() != 3 {
		t.Fatalf("expected 3 sessions, got %d", r.Len())
	}
}

func TestRegistryRecordsAttempts(t *testing.T) {
	rec := newFakeRecorder()
	r := NewRegistry(testFactory, rec)
	s := r.Get("user-1", "tab-1")

	p, err := s.Load(2)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := s.Submit(p.ChallengeID, "wrong"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	rec.wait(t)
	if _, err := s.Submit(p.ChallengeID, answer(s)); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	rec.wait(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(rec.attempts))
	}
	correct := 0
	for _, a := range rec.attempts {
		if a.UserID != "user-1" || a.SessionID != "tab-1" {
			t.Errorf("unexpected identity on attempt %+v", a)
		}
		if a.TierIndex != 2 || a.TierName != "Links & Images" {
			t.Errorf("unexpected tier on attempt %+v", a)
		}
		if a.ChallengeID != p.ChallengeID || a.ID == "" {
			t.Errorf("unexpected ids on attempt %+v", a)
		}
		if a.Correct {
			correct++
		}
	}
	if correct != 1 {
		t.Fatalf("expected exactly one correct attempt, got %d", correct)
	}
}

func TestRegistrySweepRunsEvictHook(t *testing.T) {
	r := NewRegistry(testFactory, nil)
	now := time.Now()
	r.now = func() time.Time { return now }

	var evicted []string
	r.OnEvict(func(userID, sessionID string) {
		evicted = append(evicted, userID+"/"+sessionID)
	})

	a := r.Get("user-1", "tab:1")
	now = now.Add(2 * time.Hour)
	if n := r.SweepIdle(time.Hour); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if len(evicted) != 1 || evicted[0] != "user-1/tab:1" {
		t.Fatalf("unexpected evict hook calls %v", evicted)
	}
	if r.Get("user-1", "tab:1") == a {
		t.Fatal("expected a fresh session after eviction")
	}
}

func TestRegistryKeepsAttachedSessionPastTTL(t *testing.T) {
	r := NewRegistry(testFactory, nil)
	now := time.Now()
	r.now = func() time.Time { return now }

	s, detach := r.Attach("user-1", "tab-1")
	events := 0
	unsubscribe := s.Subscribe(func(domain.Event) { events++ })
	defer unsubscribe()
	p, err := s.Current()
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}

	now = now.Add(61 * time.Minute)
	if n := r.SweepIdle(time.Hour); n != 0 {
		t.Fatalf("expected attached session to survive, evicted %d", n)
	}
	if r.Get("user-1", "tab-1") != s {
		t.Fatal("expected the attached session after sweep")
	}
	if _, err := s.Submit(p.ChallengeID, "wrong"); err != nil {
		t.Fatalf("Submit on the live challenge failed: %v", err)
	}
	if _, err := s.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if events != 3 {
		t.Fatalf("expected 3 events delivered to the subscriber, got %d", events)
	}

	detach()
	detach()
	now = now.Add(30 * time.Minute)
	if n := r.SweepIdle(time.Hour); n != 0 {
		t.Fatalf("detach should refresh last access, evicted %d", n)
	}
	now = now.Add(31 * time.Minute)
	if n := r.SweepIdle(time.Hour); n != 1 {
		t.Fatalf("expected eviction once detached and idle, got %d", n)
	}
}

func TestRegistryTouchRefreshesLastAccess(t *testing.T) {
	r := NewRegistry(testFactory, nil)
	now := time.Now()
	r.now = func() time.Time { return now }

	r.Get("user-1", "tab-1")
	now = now.Add(50 * time.Minute)
	r.Touch("user-1", "tab-1")
	r.Touch("nobody", "nothing")
	now = now.Add(50 * time.Minute)

	if n := r.SweepIdle(time.Hour); n != 0 {
		t.Fatalf("expected touched session to survive, evicted %d", n)
	}
	if r.Len() != 1 {
		t.Fatalf("Touch must not create sessions, got %d", r.Len())
	}
}

func TestRegistrySweepIdle(t *testing.T) {
	r := NewRegistry(testFactory, nil)
	now := time.Now()
	r.now = func() time.Time { return now }

	r.Get("user-1", "old")
	now = now.Add(30 * time.Minute)
	r.Get("user-1", "fresh")
	now = now.Add(45 * time.Minute)

	if n := r.SweepIdle(time.Hour); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 remaining session, got %d", r.Len())
	}
}
