// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (we can create a test server without running main)
// - Reusable (multiple entry points could use the same server config)
// - Clean (main.go stays minimal — just "start the server")
//
// DEPENDENCY INJECTION FLOW:
// main.go reads config → passed to Server
//   Server.New() creates: sqlite.DB → Notifier → UserService → AuthService
//                         → handlers → routes
//
// This is the "composition root" pattern — all dependencies are wired
// in one place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/forgezone/forge-zone/internal/auth"
	"github.com/forgezone/forge-zone/internal/handler"
	"github.com/forgezone/forge-zone/internal/middleware"
	"github.com/forgezone/forge-zone/internal/notify"
	sqliteRepo "github.com/forgezone/forge-zone/internal/repository/sqlite"
	"github.com/forgezone/forge-zone/internal/service"
)

// Config holds server configuration.
// Using a struct for config (instead of individual parameters) makes it easy to:
// - Add new config options without changing function signatures
// - Pass config around as a single value
// - Load config from files/env vars in one place
type Config struct {
	Port   int
	DBPath string // path to the SQLite database file

	// Auth. If JWTSecret or the GitHub credentials are empty, the OAuth
	// routes and the protected API routes are not registered — the server
	// still starts and serves public profile reads.
	JWTSecret          string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	// Notifications. If ResendAPIKey is empty, welcome emails and contact
	// upserts are disabled (account creation still works) and /api/send
	// is not registered.
	ResendAPIKey     string
	ResendAudienceID string
	EmailFrom        string
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection (db). When the server shuts down,
// we must close this connection to flush any pending writes and release the
// file lock. This is handled in Start() during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB // database connection (owned by server, closed on shutdown)
}

// New creates a new Server with the given config.
//
// DEPENDENCY INJECTION & WIRING:
// This is where the entire dependency chain is assembled:
//  1. Create the database connection (sqlite.New)
//  2. Create the notifier (a nil sink when Resend isn't configured)
//  3. Create the service layer (UserService, AuthService)
//  4. Create the handlers and wire them to routes
//
// Each layer only receives what it needs:
// - Service gets the repository interface (not the concrete sqlite.DB)
// - Handler gets the service (not the repository or DB)
//
// IMPORT ALIAS:
// We import repository/sqlite as `sqliteRepo` to avoid confusion with
// the sqlite driver package. Import aliases are common in Go when
// package names would otherwise collide or be unclear.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	// === CREATE DATABASE ===
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz                → Liveness probe
// GET    /auth/github/login      → Redirect to GitHub authorization
// GET    /auth/github/callback   → Complete OAuth, sync account, set cookie
// POST   /auth/logout            → Clear the session cookie
// GET    /api/me                 → Current user (auth required)
// GET    /api/users/{id}         → Full profile graph (public)
// PUT    /api/users/{id}         → Update profile (auth, owner only)
// PATCH  /api/users/{id}/avatar  → Update avatar (auth, owner only)
// POST   /api/send               → Send the welcome email to an address
// PUT    /api/send               → Create/update a mailing-list contact
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Recoverer — catches panics and returns 500 instead of crashing
// 4. Logger — logs each request with timing info
func (s *Server) setupRoutes() error {
	// === Global Middleware ===
	// These run on EVERY request, in order

	// Chi's built-in middleware
	s.router.Use(chimiddleware.RequestID) // Adds X-Request-ID header
	s.router.Use(chimiddleware.RealIP)    // Extracts real IP from X-Forwarded-For
	s.router.Use(chimiddleware.Recoverer) // Recovers from panics, returns 500

	// Our custom logging middleware
	s.router.Use(middleware.Logger(s.logger))

	// === Liveness ===
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// === Notifications ===
	// With no Resend API key the sink stays nil: the Notifier treats a nil
	// sink as "notifications disabled" and account creation proceeds silently.
	var sink notify.Sink
	if s.config.ResendAPIKey != "" {
		sink = notify.NewClient(s.config.ResendAPIKey, s.config.ResendAudienceID, s.config.EmailFrom)
	} else {
		s.logger.Warn("RESEND_API_KEY not set — welcome notifications are disabled")
	}
	notifier := notify.NewNotifier(sink, s.logger)

	// === Services ===
	// DEPENDENCY CHAIN:
	//   s.db (sqlite.DB) → implements repository.UserRepository
	//   UserService receives the repository interface and the notifier
	//   Handlers receive the services
	//
	// Notice: the handlers never touch the database directly.
	// The services never touch HTTP. Clean separation!
	userService := service.NewUserService(s.db, notifier, s.logger)
	profileHandler := handler.NewProfileHandler(userService, s.logger)

	// === Auth wiring (optional) ===
	// Auth requires a JWT secret AND GitHub OAuth credentials. Without them
	// the server runs in read-only mode: public profile reads still work,
	// but login and all write routes are unregistered.
	var tokens *auth.TokenService
	authEnabled := s.config.JWTSecret != "" && s.config.GitHubClientID != "" && s.config.GitHubClientSecret != ""
	if authEnabled {
		var err error
		tokens, err = auth.NewTokenService(s.config.JWTSecret)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}

		github := auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
		authService := service.NewAuthService(userService, tokens, auth.NewPasswordService(), s.logger)
		authHandler := handler.NewAuthHandler(github, authService, userService, s.logger)

		s.router.Route("/auth", func(r chi.Router) {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
			r.Post("/logout", authHandler.HandleLogout)
		})

		s.router.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/api/me", authHandler.HandleMe)
			r.Put("/api/users/{id}", profileHandler.HandleUpdateProfile)
			r.Patch("/api/users/{id}/avatar", profileHandler.HandleUpdateAvatar)
		})
	} else {
		s.logger.Warn("auth not configured — login and profile writes are disabled")
	}

	// === Public API Routes ===
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/users/{id}", profileHandler.HandleGetProfile)

		if sink != nil {
			notifyHandler := handler.NewNotifyHandler(sink, s.logger)
			r.Post("/send", notifyHandler.HandleSendEmail)
			r.Put("/send", notifyHandler.HandleUpsertContact)
		}
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
//
// If we skip step 3, the database file might be left in an inconsistent state.
// The `defer s.db.Close()` ensures this happens even if something panics.
func (s *Server) Start() error {
	// Ensure the database is closed when the server stops.
	// This runs AFTER everything else in this function finishes.
	defer s.db.Close()

	// Create the HTTP server with sensible timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine (so it doesn't block)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		// Server failed to start
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		// Received shutdown signal
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give in-flight requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
