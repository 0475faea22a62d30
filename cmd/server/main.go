// Markdown Labs - practice server for Markdown syntax drills.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/markdown-labs/internal/api"
	"github.com/ashureev/markdown-labs/internal/config"
	"github.com/ashureev/markdown-labs/internal/identity"
	"github.com/ashureev/markdown-labs/internal/middleware"
	"github.com/ashureev/markdown-labs/internal/practice"
	"github.com/ashureev/markdown-labs/internal/render"
	"github.com/ashureev/markdown-labs/internal/shared"
	"github.com/ashureev/markdown-labs/internal/store"
	"github.com/ashureev/markdown-labs/internal/stream"
	"github.com/ashureev/markdown-labs/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	tiers := practice.DefaultTiers()
	if err := practice.ValidateTiers(tiers); err != nil {
		slog.Error("Invalid tier table", "error", err)
		os.Exit(1)
	}

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath, shared.RetryPolicy{
		MaxRetries: cfg.DBRetry.MaxRetries,
		BaseDelay:  cfg.DBRetry.BaseDelay,
	})
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	renderer := render.NewGoldmark()
	registry := practice.NewRegistry(func() *practice.Session {
		return practice.NewSession(practice.SessionConfig{
			Tiers:        tiers,
			Renderer:     renderer,
			AdvanceDelay: cfg.AdvanceDelay,
			Verify:       cfg.VerifyChallenges,
			Logger:       logger,
		})
	}, repo)
	conns := stream.NewConnManager()
	registry.OnEvict(conns.Close)

	// Initialize handlers.
	baseHandler := api.NewHandler(repo, registry, tiers, renderer)
	practiceHandler := api.NewPracticeHandler(baseHandler)
	healthHandler := api.NewHealthHandler(repo)
	wsHandler := stream.NewHandler(registry, conns, cfg.FrontendURL, cfg.IsDevelopment())

	allowedOrigins := []string{"*"}
	if !cfg.IsDevelopment() {
		allowedOrigins = []string{cfg.FrontendURL}
	}

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(allowedOrigins))

	// Public routes.
	healthHandler.RegisterHealth(r)

	// All remaining routes carry an anonymous learner identity.
	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(repo, cfg.IsDevelopment()))
		practiceHandler.RegisterRoutes(r)
		r.Get("/ws/practice", wsHandler.ServeHTTP)
	})

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // WebSocket streams are long-lived
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background workers.
	practice.StartSweeper(ctx, registry, cfg.SessionTTL)
	store.StartRetentionWorker(ctx, repo, cfg.AttemptRetention)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("Closing practice streams", "count", conns.Count())
	conns.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
