package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/markdown-labs/internal/domain"
	"github.com/ashureev/markdown-labs/internal/store"
)

type fakeRepo struct {
	store.Repository
	mu       sync.Mutex
	learners map[string]*domain.Learner
	touched  []string
	getErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{learners: make(map[string]*domain.Learner)}
}

func (f *fakeRepo) GetLearner(_ context.Context, userID string) (*domain.Learner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	l := f.learners[userID]
	if l == nil {
		return nil, nil
	}
	copy := *l
	return &copy, nil
}

func (f *fakeRepo) UpsertLearner(_ context.Context, l *domain.Learner) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy := *l
	f.learners[l.UserID] = &copy
	return nil
}

func (f *fakeRepo) UpdateLastSeen(_ context.Context, userID string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, userID)
	return nil
}

type captured struct {
	userID, username, sessionID string
}

func serve(t *testing.T, repo store.Repository, req *http.Request) (*httptest.ResponseRecorder, captured) {
	t.Helper()
	var got captured
	h := Middleware(repo, true)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = captured{
			userID:    UserIDFromContext(r.Context()),
			username:  UsernameFromContext(r.Context()),
			sessionID: SessionIDFromContext(r.Context()),
		}
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w, got
}

func TestMiddleware_IssuesCookieAndCreatesLearner(t *testing.T) {
	repo := newFakeRepo()
	w, got := serve(t, repo, httptest.NewRequest(http.MethodGet, "/api/practice", nil))

	if !isValidAnonID(got.userID) {
		t.Fatalf("user id %q is not a valid anonymous id", got.userID)
	}
	if got.sessionID != DefaultSessionIDValue {
		t.Errorf("session id = %q, want %q", got.sessionID, DefaultSessionIDValue)
	}
	if got.username != deriveUsername(got.userID) {
		t.Errorf("username = %q, want %q", got.username, deriveUsername(got.userID))
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == AnonCookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != got.userID {
		t.Fatalf("expected %s cookie with user id, got %+v", AnonCookieName, cookie)
	}
	if !cookie.HttpOnly {
		t.Error("anonymous cookie should be HttpOnly")
	}

	if l, _ := repo.GetLearner(context.Background(), got.userID); l == nil {
		t.Error("learner was not created")
	}
}

func TestMiddleware_ReusesCookieAndSessionHeader(t *testing.T) {
	repo := newFakeRepo()
	id := "anon_0123456789abcdef0123456789abcdef"
	_ = repo.UpsertLearner(context.Background(), &domain.Learner{UserID: id, LastSeenAt: time.Now().Add(-time.Hour)})

	req := httptest.NewRequest(http.MethodGet, "/api/practice", nil)
	req.AddCookie(&http.Cookie{Name: AnonCookieName, Value: id})
	req.Header.Set(SessionHeaderName, "tab-42")

	_, got := serve(t, repo, req)
	if got.userID != id {
		t.Errorf("user id = %q, want %q", got.userID, id)
	}
	if got.sessionID != "tab-42" {
		t.Errorf("session id = %q, want tab-42", got.sessionID)
	}
	if len(repo.touched) != 1 {
		t.Errorf("UpdateLastSeen calls = %d, want 1 for an idle learner", len(repo.touched))
	}
}

func TestMiddleware_InvalidCookieReplaced(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AnonCookieName, Value: "anon_not-hex"})

	_, got := serve(t, newFakeRepo(), req)
	if got.userID == "anon_not-hex" || !isValidAnonID(got.userID) {
		t.Errorf("user id = %q, want a freshly generated id", got.userID)
	}
}

func TestMiddleware_StoreError(t *testing.T) {
	repo := newFakeRepo()
	repo.getErr = errors.New("db down")

	w, got := serve(t, repo, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if got.userID != "" {
		t.Error("next handler should not run when the learner cannot be initialized")
	}
}

func TestSanitizeSessionID(t *testing.T) {
	tests := map[string]string{
		"":                        DefaultSessionIDValue,
		"  tab-1  ":               "tab-1",
		"bad id!":                 DefaultSessionIDValue,
		"a.b_c:d-e":               "a.b_c:d-e",
		string(make([]byte, 200)): DefaultSessionIDValue,
	}
	for in, want := range tests {
		if got := sanitizeSessionID(in); got != want {
			t.Errorf("sanitizeSessionID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSessionIDFromQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws/practice?session_id=tab-9", nil)
	if got := sessionIDFromRequest(req); got != "tab-9" {
		t.Errorf("sessionIDFromRequest() = %q, want tab-9", got)
	}
}
