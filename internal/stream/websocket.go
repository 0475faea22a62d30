package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/ashureev/markdown-labs/internal/domain"
	"github.com/ashureev/markdown-labs/internal/identity"
	"github.com/ashureev/markdown-labs/internal/practice"
	"github.com/coder/websocket"
)

const outboxSize = 16

// Outbound message types beyond the session event types.
const (
	typeRevealed = "revealed"
	typeError    = "error"
	typePong     = "pong"
)

// inMessage is a command sent by the browser.
type inMessage struct {
	Type        string `json:"type"`
	ChallengeID string `json:"challenge_id,omitempty"`
	Answer      string `json:"answer,omitempty"`
	Tier        *int   `json:"tier,omitempty"`
}

// outMessage is pushed to the browser.
type outMessage struct {
	Type         string               `json:"type"`
	Presentation *domain.Presentation `json:"presentation,omitempty"`
	Feedback     *domain.Feedback     `json:"feedback,omitempty"`
	Reveal       *domain.Reveal       `json:"reveal,omitempty"`
	Error        string               `json:"error,omitempty"`
}

// Handler serves the practice event stream.
type Handler struct {
	registry      *practice.Registry
	conns         *ConnManager
	allowedOrigin string
	isDev         bool
}

// NewHandler creates a new WebSocket handler.
func NewHandler(registry *practice.Registry, conns *ConnManager, allowedOrigin string, isDev bool) *Handler {
	return &Handler{
		registry:      registry,
		conns:         conns,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	slog.Info("WebSocket connection request", "user_id", userID, "session_id", sessionID, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	h.conns.Register(userID, sessionID, ws)
	defer h.conns.Unregister(userID, sessionID, ws)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session, detach := h.registry.Attach(userID, sessionID)
	defer detach()
	outbox := make(chan outMessage, outboxSize)
	sink := newEventSink(outbox, userID, sessionID)

	unsubscribe := session.Subscribe(sink.push)
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		h.outputLoop(ctx, ws, outbox, userID)
	}()

	if p, err := session.Current(); err != nil {
		slog.Error("Failed to load initial challenge", "error", err, "user_id", userID)
		send(ctx, outbox, outMessage{Type: typeError, Error: "failed to load challenge"})
	} else {
		sink.push(domain.Event{Type: domain.EventPresented, Presentation: &p})
	}

	h.inputLoop(ctx, ws, session, outbox, userID, sessionID)
	cancel()
	<-done
	slog.Info("Practice stream ended", "user_id", userID, "session_id", sessionID)
}

// eventSink forwards session events to a connection outbox, dropping
// presentations not newer than the last one forwarded.
type eventSink struct {
	outbox    chan<- outMessage
	userID    string
	sessionID string

	mu      sync.Mutex
	lastSeq uint64
}

func newEventSink(outbox chan<- outMessage, userID, sessionID string) *eventSink {
	return &eventSink{outbox: outbox, userID: userID, sessionID: sessionID}
}

func (s *eventSink) push(ev domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Presentation != nil {
		if ev.Presentation.Seq <= s.lastSeq {
			slog.Debug("Dropping outdated presentation",
				"user_id", s.userID, "session_id", s.sessionID, "seq", ev.Presentation.Seq, "last_seq", s.lastSeq)
			return
		}
		s.lastSeq = ev.Presentation.Seq
	}

	msg := outMessage{Type: string(ev.Type), Presentation: ev.Presentation, Feedback: ev.Feedback}
	select {
	case s.outbox <- msg:
	default:
		slog.Warn("Practice stream outbox full, dropping event",
			"user_id", s.userID, "session_id", s.sessionID, "type", ev.Type)
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *Handler) inputLoop(ctx context.Context, ws *websocket.Conn, session *practice.Session, outbox chan<- outMessage, userID, sessionID string) {
	slog.Debug("Starting input loop", "user_id", userID)
	for {
		_, message, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "user_id", userID)
			} else if ctx.Err() == nil {
				slog.Warn("WebSocket read error", "error", err, "user_id", userID)
			}
			return
		}

		var msg inMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			send(ctx, outbox, outMessage{Type: typeError, Error: "invalid message"})
			continue
		}

		h.registry.Touch(userID, sessionID)
		if reply, ok := dispatch(session, msg); ok {
			send(ctx, outbox, reply)
		}
		slog.Debug("Practice command handled", "user_id", userID, "session_id", sessionID, "type", msg.Type)
	}
}

// dispatch applies one command to the session. Presentations and feedback
// arrive through the session subscription, so only replies that are not
// session events are returned.
func dispatch(session *practice.Session, msg inMessage) (outMessage, bool) {
	var err error
	switch msg.Type {
	case "ping":
		return outMessage{Type: typePong}, true
	case "submit":
		_, err = session.Submit(msg.ChallengeID, msg.Answer)
	case "next":
		_, err = session.Next()
	case "prev":
		_, err = session.Prev()
	case "load":
		if msg.Tier == nil {
			return outMessage{Type: typeError, Error: "tier is required"}, true
		}
		_, err = session.Load(*msg.Tier)
	case "reveal":
		rv, rerr := session.Reveal()
		if rerr == nil {
			return outMessage{Type: typeRevealed, Reveal: &rv}, true
		}
		err = rerr
	default:
		return outMessage{Type: typeError, Error: "unknown message type"}, true
	}
	if err != nil {
		return outMessage{Type: typeError, Error: errorCode(err)}, true
	}
	return outMessage{}, false
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, practice.ErrNotPresenting):
		return "not_presenting"
	case errors.Is(err, practice.ErrStaleChallenge):
		return "stale_challenge"
	case errors.Is(err, practice.ErrRevealLocked):
		return "reveal_locked"
	case errors.Is(err, practice.ErrUnknownTier):
		return "unknown_tier"
	default:
		return "internal_error"
	}
}

func (h *Handler) outputLoop(ctx context.Context, ws *websocket.Conn, outbox <-chan outMessage, userID string) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-outbox:
			if err := writeJSON(ctx, ws, msg); err != nil {
				if ctx.Err() == nil {
					slog.Debug("WebSocket write error", "error", err, "user_id", userID)
				}
				return
			}
		}
	}
}

func send(ctx context.Context, outbox chan<- outMessage, msg outMessage) {
	select {
	case outbox <- msg:
	case <-ctx.Done():
	}
}

func writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}
