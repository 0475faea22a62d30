// Package api provides HTTP handlers for the practice API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ashureev/markdown-labs/internal/practice"
	"github.com/ashureev/markdown-labs/internal/render"
	"github.com/ashureev/markdown-labs/internal/store"
)

const maxBodyBytes = 64 << 10

// Handler provides common handler utilities.
type Handler struct {
	repo     store.Repository
	registry *practice.Registry
	tiers    []practice.Tier
	renderer render.Renderer
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(repo store.Repository, registry *practice.Registry, tiers []practice.Tier, renderer render.Renderer) *Handler {
	return &Handler{
		repo:     repo,
		registry: registry,
		tiers:    tiers,
		renderer: renderer,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
