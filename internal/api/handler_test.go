package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusCreated, map[string]int{"tier_index": 3})

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var got map[string]int
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["tier_index"] != 3 {
		t.Errorf("tier_index = %d, want 3", got["tier_index"])
	}
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusConflict, "challenge is not current")

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	var got map[string]string
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["error"] != "challenge is not current" {
		t.Errorf("error = %q", got["error"])
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"markup":"**Quiet Harbor**"}`, false},
		{"malformed", `{"markup":`, true},
		{"wrong type", `{"markup":7}`, true},
		{"oversized", `{"markup":"` + strings.Repeat("a", maxBodyBytes) + `"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(tt.body))

			var req renderRequest
			err := decodeJSON(w, r, &req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && req.Markup != "**Quiet Harbor**" {
				t.Errorf("Markup = %q", req.Markup)
			}
		})
	}
}

func TestRenderPreviewRejectsOversizedBody(t *testing.T) {
	env := newTestEnv(t)
	body := `{"markup":"` + strings.Repeat("#", maxBodyBytes+1) + `"}`

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
