package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSPAHandler(t *testing.T) {
	h := SPAHandler()

	tests := []struct {
		path string
		want string
	}{
		{"/", "<title>Markdown Labs</title>"},
		{"/app.js", "X-Practice-Session-ID"},
		{"/app.js", "e.metaKey"},
		{"/app.js", "p.seq < seq"},
		{"/some/client/route", "<title>Markdown Labs</title>"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
		})
	}
}
