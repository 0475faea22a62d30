package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/markdown-labs/internal/domain"
	"github.com/ashureev/markdown-labs/internal/identity"
	"github.com/ashureev/markdown-labs/internal/practice"
	"github.com/ashureev/markdown-labs/internal/report"
	"github.com/go-chi/chi/v5"
)

// PracticeHandler handles practice session endpoints.
type PracticeHandler struct {
	*Handler
}

// NewPracticeHandler creates a new practice handler.
func NewPracticeHandler(base *Handler) *PracticeHandler {
	return &PracticeHandler{Handler: base}
}

// RegisterRoutes registers practice routes.
func (h *PracticeHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/tiers", h.ListTiers)
		r.Post("/render", h.RenderPreview)

		r.Route("/practice", func(r chi.Router) {
			r.Get("/", h.Current)
			r.Post("/load", h.Load)
			r.Post("/next", h.Next)
			r.Post("/prev", h.Prev)
			r.Post("/submit", h.Submit)
			r.Post("/reveal", h.Reveal)
			r.Get("/stats", h.Stats)
			r.Get("/report", h.Report)
		})
	})
}

type tierInfo struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

type loadRequest struct {
	Tier *int `json:"tier"`
}

type submitRequest struct {
	ChallengeID string `json:"challenge_id"`
	Answer      string `json:"answer"`
}

type renderRequest struct {
	Markup string `json:"markup"`
}

func (h *PracticeHandler) session(r *http.Request) *practice.Session {
	ctx := r.Context()
	return h.registry.Get(identity.UserIDFromContext(ctx), identity.SessionIDFromContext(ctx))
}

// writeSessionError maps session errors to HTTP status codes.
func writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, practice.ErrUnknownTier):
		Error(w, http.StatusNotFound, "unknown_tier")
	case errors.Is(err, practice.ErrNotPresenting):
		Error(w, http.StatusConflict, "not_presenting")
	case errors.Is(err, practice.ErrStaleChallenge):
		Error(w, http.StatusConflict, "stale_challenge")
	case errors.Is(err, practice.ErrRevealLocked):
		Error(w, http.StatusConflict, "reveal_locked")
	default:
		slog.Error("Practice request failed", "error", err,
			"user_id", identity.UserIDFromContext(r.Context()), "path", r.URL.Path)
		Error(w, http.StatusInternalServerError, "internal_error")
	}
}

// ListTiers returns the tier table.
func (h *PracticeHandler) ListTiers(w http.ResponseWriter, _ *http.Request) {
	out := make([]tierInfo, len(h.tiers))
	for i, t := range h.tiers {
		out[i] = tierInfo{Index: i, Name: t.Name, Label: practice.Label(i, t)}
	}
	JSON(w, http.StatusOK, out)
}

// Current returns the live presentation, loading the first tier for a new session.
func (h *PracticeHandler) Current(w http.ResponseWriter, r *http.Request) {
	p, err := h.session(r).Current()
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, p)
}

// Load presents a fresh challenge from the requested tier.
func (h *PracticeHandler) Load(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Tier == nil {
		Error(w, http.StatusBadRequest, "tier is required")
		return
	}
	p, err := h.session(r).Load(*req.Tier)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, p)
}

// Next moves to the following tier.
func (h *PracticeHandler) Next(w http.ResponseWriter, r *http.Request) {
	p, err := h.session(r).Next()
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, p)
}

// Prev moves to the preceding tier.
func (h *PracticeHandler) Prev(w http.ResponseWriter, r *http.Request) {
	p, err := h.session(r).Prev()
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, p)
}

// Submit evaluates the learner's answer.
func (h *PracticeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	fb, err := h.session(r).Submit(req.ChallengeID, req.Answer)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, fb)
}

// Reveal returns the explanation and markup after a wrong attempt.
func (h *PracticeHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	rv, err := h.session(r).Reveal()
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, rv)
}

// Stats returns per-tier attempt counts for the current learner.
func (h *PracticeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tierStats(r)
	if err != nil {
		slog.Error("Failed to load tier stats", "error", err, "user_id", identity.UserIDFromContext(r.Context()))
		Error(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	JSON(w, http.StatusOK, stats)
}

// Report returns a PDF progress report for the current learner.
func (h *PracticeHandler) Report(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	stats, err := h.tierStats(r)
	if err != nil {
		slog.Error("Failed to load tier stats", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	now := time.Now()
	pdf, err := report.GeneratePDF(report.Data{
		Username: identity.UsernameFromContext(r.Context()),
		Date:     now,
		Stats:    stats,
	})
	if err != nil {
		slog.Error("Failed to generate report", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "failed to generate report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=markdown-progress-%s.pdf", now.Format("2006-01-02")))
	if _, err := w.Write(pdf); err != nil {
		slog.Debug("Failed to write report", "error", err, "user_id", userID)
	}
}

// RenderPreview renders the learner's in-progress markup.
func (h *PracticeHandler) RenderPreview(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	html, err := h.renderer.Render(req.Markup)
	if err != nil {
		slog.Error("Failed to render preview", "error", err)
		Error(w, http.StatusInternalServerError, "failed to render")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"html": html})
}

// tierStats returns one row per tier, filling tiers without attempts with zeros.
func (h *PracticeHandler) tierStats(r *http.Request) ([]domain.TierStat, error) {
	recorded, err := h.repo.TierStats(r.Context(), identity.UserIDFromContext(r.Context()))
	if err != nil {
		return nil, err
	}

	out := make([]domain.TierStat, len(h.tiers))
	for i, t := range h.tiers {
		out[i] = domain.TierStat{TierIndex: i, TierName: t.Name}
	}
	for _, s := range recorded {
		if s.TierIndex >= 0 && s.TierIndex < len(out) {
			out[s.TierIndex].Attempts = s.Attempts
			out[s.TierIndex].Correct = s.Correct
		}
	}
	return out, nil
}
