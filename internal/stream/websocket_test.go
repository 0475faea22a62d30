package stream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ashureev/markdown-labs/internal/domain"
	"github.com/ashureev/markdown-labs/internal/identity"
	"github.com/ashureev/markdown-labs/internal/practice"
	"github.com/coder/websocket"
)

func immediate(_ time.Duration, f func()) { f() }

type testServer struct {
	*httptest.Server
	registry *practice.Registry
	conns    *ConnManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	registry := practice.NewRegistry(func() *practice.Session {
		return practice.NewSession(practice.SessionConfig{
			Source:    practice.NewSeededSource(42),
			Scheduler: immediate,
			Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		})
	}, nil)

	conns := NewConnManager()
	h := NewHandler(registry, conns, "*", true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := identity.WithIdentity(r.Context(), "anon_test", "anon-test", "tab-1")
		h.ServeHTTP(w, r.WithContext(ctx))
	}))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, registry: registry, conns: conns}
}

func dial(t *testing.T, srv *testServer) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func writeMsg(t *testing.T, conn *websocket.Conn, msg inMessage) {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
}

func readMsg(t *testing.T, conn *websocket.Conn) outMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	var msg outMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return msg
}

func TestStream_InitialPresentation(t *testing.T) {
	conn := dial(t, newTestServer(t))

	msg := readMsg(t, conn)
	if msg.Type != "presented" || msg.Presentation == nil {
		t.Fatalf("first message = %+v, want presented", msg)
	}
	if msg.Presentation.TierIndex != 0 || msg.Presentation.TierLabel != "Tier 1: Headings" {
		t.Errorf("presentation = %+v, want tier 0", msg.Presentation)
	}
}

func TestStream_SubmitRevealAdvance(t *testing.T) {
	conn := dial(t, newTestServer(t))
	first := readMsg(t, conn)
	challengeID := first.Presentation.ChallengeID

	writeMsg(t, conn, inMessage{Type: "reveal"})
	if msg := readMsg(t, conn); msg.Type != "error" || msg.Error != "reveal_locked" {
		t.Fatalf("reveal before wrong attempt = %+v, want reveal_locked", msg)
	}

	writeMsg(t, conn, inMessage{Type: "submit", ChallengeID: challengeID, Answer: "definitely wrong"})
	fb := readMsg(t, conn)
	if fb.Type != "feedback" || fb.Feedback == nil || fb.Feedback.Correct || !fb.Feedback.CanReveal {
		t.Fatalf("wrong submit = %+v, want incorrect feedback with reveal", fb)
	}

	writeMsg(t, conn, inMessage{Type: "reveal"})
	rv := readMsg(t, conn)
	if rv.Type != "revealed" || rv.Reveal == nil || rv.Reveal.Markup == "" {
		t.Fatalf("reveal = %+v, want revealed markup", rv)
	}

	writeMsg(t, conn, inMessage{Type: "submit", ChallengeID: challengeID, Answer: rv.Reveal.Markup})
	ok := readMsg(t, conn)
	if ok.Type != "feedback" || ok.Feedback == nil || !ok.Feedback.Correct {
		t.Fatalf("correct submit = %+v, want correct feedback", ok)
	}

	next := readMsg(t, conn)
	if next.Type != "presented" || next.Presentation == nil || next.Presentation.TierIndex != 1 {
		t.Fatalf("after correct submit = %+v, want tier 1 presentation", next)
	}

	writeMsg(t, conn, inMessage{Type: "submit", ChallengeID: challengeID, Answer: rv.Reveal.Markup})
	if msg := readMsg(t, conn); msg.Type != "error" || msg.Error != "stale_challenge" {
		t.Fatalf("stale submit = %+v, want stale_challenge", msg)
	}
}

func TestStream_Navigation(t *testing.T) {
	conn := dial(t, newTestServer(t))
	readMsg(t, conn)

	writeMsg(t, conn, inMessage{Type: "prev"})
	if msg := readMsg(t, conn); msg.Presentation == nil || msg.Presentation.TierIndex != 8 {
		t.Fatalf("prev from tier 0 = %+v, want tier 8", msg)
	}

	tier := 4
	writeMsg(t, conn, inMessage{Type: "load", Tier: &tier})
	if msg := readMsg(t, conn); msg.Presentation == nil || msg.Presentation.TierIndex != 4 {
		t.Fatalf("load tier 4 = %+v", msg)
	}

	bad := 99
	writeMsg(t, conn, inMessage{Type: "load", Tier: &bad})
	if msg := readMsg(t, conn); msg.Error != "unknown_tier" {
		t.Fatalf("load tier 99 = %+v, want unknown_tier", msg)
	}
}

func TestStream_PingAndUnknown(t *testing.T) {
	conn := dial(t, newTestServer(t))
	readMsg(t, conn)

	writeMsg(t, conn, inMessage{Type: "ping"})
	if msg := readMsg(t, conn); msg.Type != "pong" {
		t.Fatalf("ping reply = %+v, want pong", msg)
	}

	writeMsg(t, conn, inMessage{Type: "dance"})
	if msg := readMsg(t, conn); msg.Type != "error" {
		t.Fatalf("unknown type reply = %+v, want error", msg)
	}
}

func TestStream_ReconnectResumesChallenge(t *testing.T) {
	srv := newTestServer(t)
	first := readMsg(t, dial(t, srv))

	second := readMsg(t, dial(t, srv))
	if second.Type != "presented" || second.Presentation == nil {
		t.Fatalf("reconnect message = %+v, want presented", second)
	}
	if second.Presentation.ChallengeID != first.Presentation.ChallengeID {
		t.Errorf("reconnect challenge = %s, want %s", second.Presentation.ChallengeID, first.Presentation.ChallengeID)
	}
}

func TestStream_AttachedSessionSurvivesSweep(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv)
	first := readMsg(t, conn)

	if n := srv.registry.SweepIdle(0); n != 0 {
		t.Fatalf("SweepIdle() evicted %d sessions with a live stream", n)
	}

	writeMsg(t, conn, inMessage{Type: "submit", ChallengeID: first.Presentation.ChallengeID, Answer: "wrong"})
	if msg := readMsg(t, conn); msg.Type != "feedback" || msg.Feedback == nil || msg.Feedback.ChallengeID != first.Presentation.ChallengeID {
		t.Fatalf("submit after sweep = %+v, want feedback for the live challenge", msg)
	}
}

func TestStream_CloseOnEviction(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv)
	readMsg(t, conn)

	srv.conns.Close("anon_test", "tab-1")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, _, err := conn.Read(ctx); websocket.CloseStatus(err) != websocket.StatusNormalClosure {
		t.Fatalf("Read() error = %v, want normal closure", err)
	}
}

func TestEventSink_DropsOutdatedPresentations(t *testing.T) {
	outbox := make(chan outMessage, outboxSize)
	sink := newEventSink(outbox, "u", "s")

	newer := domain.Presentation{Seq: 3, ChallengeID: "p3"}
	older := domain.Presentation{Seq: 2, ChallengeID: "p2"}
	sink.push(domain.Event{Type: domain.EventPresented, Presentation: &newer})
	sink.push(domain.Event{Type: domain.EventPresented, Presentation: &older})
	sink.push(domain.Event{Type: domain.EventPresented, Presentation: &newer})
	sink.push(domain.Event{Type: domain.EventFeedback, Feedback: &domain.Feedback{ChallengeID: "p3"}})

	if len(outbox) != 2 {
		t.Fatalf("outbox holds %d messages, want 2", len(outbox))
	}
	if msg := <-outbox; msg.Presentation == nil || msg.Presentation.ChallengeID != "p3" {
		t.Errorf("first message = %+v, want presentation p3", msg)
	}
	if msg := <-outbox; msg.Type != "feedback" {
		t.Errorf("second message = %+v, want feedback", msg)
	}
}
