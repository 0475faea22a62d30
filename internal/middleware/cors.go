// Package middleware provides HTTP middleware for the practice API.
package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns middleware that handles CORS headers. Credentials are only
// allowed when every origin is listed explicitly.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowCredentials := len(allowedOrigins) > 0
	for _, o := range allowedOrigins {
		if o == "*" {
			allowCredentials = false
			break
		}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Practice-Session-ID"},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	})
}

// SecurityHeaders sets conservative browser security headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; connect-src 'self' ws: wss:")
		next.ServeHTTP(w, r)
	})
}
