// Brutalytics - Brutally Honest AI Strategic Coach Server
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

	"github.com/brutalytics/server/internal/api"
	"github.com/brutalytics/server/internal/coach"
	"github.com/brutalytics/server/internal/config"
	"github.com/brutalytics/server/internal/domain"
	"github.com/brutalytics/server/internal/goals"
	"github.com/brutalytics/server/internal/identity"
	"github.com/brutalytics/server/internal/middleware"
	"github.com/brutalytics/server/internal/notify"
	"github.com/brutalytics/server/internal/store"
	"github.com/brutalytics/server/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "ai_configured", cfg.HasAPIKey())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
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

	// Initialize services.
	geminiClient := coach.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	coachService := coach.NewService(geminiClient, domain.DefaultResources)
	if !cfg.HasAPIKey() {
		slog.Info("Gemini API key not configured, coach runs in offline mode")
	}

	notifier := notify.NewNotifier()
	hub := notify.NewHub()
	worker := notify.NewWorker(repo, notifier, hub, cfg.ReminderInterval, cfg.UrgentInterval)
	limiter := coach.NewRateLimiter(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.WindowDuration)

	// Initialize handlers.
	baseHandler := api.NewHandler(repo, domain.DefaultResources)
	healthHandler := api.NewHealthHandler(repo)
	coachHandler := coach.NewHandler(coachService, repo, limiter)
	goalsHandler := goals.NewHandler(repo, notifier, worker)
	notifyHandler := notify.NewHandler(repo, hub, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(identity.Middleware(repo, cfg.IsDevelopment()))

	// Public routes.
	healthHandler.RegisterHealth(r)

	// All routes use identity middleware (no auth needed).
	baseHandler.RegisterRoutes(r)
	coachHandler.RegisterRoutes(r)
	goalsHandler.RegisterRoutes(r)
	notifyHandler.RegisterRoutes(r)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // WebSocket pushes need long-lived responses
		IdleTimeout:  120 * time.Second,
	}

	// Start notification worker.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker.Start(ctx)

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

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
