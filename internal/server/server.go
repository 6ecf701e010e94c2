// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer. It decides:
//   - Which URL patterns map to which handler functions
//   - What middleware runs on which routes
//   - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → Server.New() creates:
//	  sqlite.DB ─┬→ AccountService(+PasswordService, TokenService) → AccountHandler
//	             └→ PostService                                     → PostHandler
//	  TokenService → Guard (wraps the protected routes)
//
// This is the "composition root": every dependency is built here and nowhere
// else.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/devconnector/internal/auth"
	"github.com/sakif/devconnector/internal/config"
	"github.com/sakif/devconnector/internal/handler"
	"github.com/sakif/devconnector/internal/middleware"
	sqliteRepo "github.com/sakif/devconnector/internal/repository/sqlite"
	"github.com/sakif/devconnector/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database connection and closes it on shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB

	tokens    *auth.TokenService
	passwords *auth.PasswordService
}

// New opens the database, builds the services and registers every route.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	db, err := sqliteRepo.New(ctx, cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		logger:    logger,
		db:        db,
		tokens:    tokens,
		passwords: auth.NewPasswordService(cfg.BcryptCost),
	}

	s.setupRoutes()
	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST   /api/users/register     → create account
//	POST   /api/users/login        → exchange credentials for a token
//	GET    /api/users/current      → who am I            [auth]
//	GET    /api/posts              → list, newest first
//	GET    /api/posts/{id}         → single post
//	POST   /api/posts              → publish             [auth]
//	DELETE /api/posts/{id}         → delete own post     [auth]
//	POST   /api/posts/like/{id}    → like                [auth]
//	POST   /api/posts/unlike/{id}  → unlike              [auth]
//	GET    /healthz                → database reachable
//
// MIDDLEWARE ORDER MATTERS:
// RequestID runs first so the logger and error handler can read the id;
// Recoverer sits inside the logger so a panic is logged as a 500.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	guard := auth.NewGuard(s.tokens, s.logger)

	accountService := service.NewAccountService(s.db, s.passwords, s.tokens, s.logger)
	postService := service.NewPostService(s.db, s.logger)

	accountHandler := handler.NewAccountHandler(accountService, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/users/register", accountHandler.HandleRegister)
		r.Post("/users/login", accountHandler.HandleLogin)
		r.Get("/posts", postHandler.HandleList)
		r.Get("/posts/{id}", postHandler.HandleGetByID)

		// Everything in this group needs "Authorization: Bearer <token>".
		r.Group(func(r chi.Router) {
			r.Use(guard.Require)

			r.Get("/users/current", accountHandler.HandleCurrent)
			r.Post("/posts", postHandler.HandleCreate)
			r.Delete("/posts/{id}", postHandler.HandleDelete)
			r.Post("/posts/like/{id}", postHandler.HandleLike)
			r.Post("/posts/unlike/{id}", postHandler.HandleUnlike)
		})
	})
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// logStartup reports the settings the services actually run with. An out of
// range BCRYPT_COST has already been replaced by the default at this point.
func (s *Server) logStartup() {
	s.logger.Info("server starting",
		slog.Int("port", s.config.Port),
		slog.String("database", s.config.DBPath),
		slog.Duration("token_ttl", s.tokens.TTL()),
		slog.Int("bcrypt_cost", s.passwords.Cost()),
	)
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the database connection (flushes WAL, releases file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logStartup()
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
