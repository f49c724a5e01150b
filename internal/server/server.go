// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: the database, services, handlers and
// middleware are all wired together here, so nothing else in the codebase
// constructs its own dependencies.
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

	"github.com/hackerc/linkhub/internal/auth"
	"github.com/hackerc/linkhub/internal/handler"
	"github.com/hackerc/linkhub/internal/meta"
	"github.com/hackerc/linkhub/internal/middleware"
	sqliteRepo "github.com/hackerc/linkhub/internal/repository/sqlite"
	"github.com/hackerc/linkhub/internal/service"
)

// Config holds server configuration, loaded from the environment by main.
type Config struct {
	Port               int
	DBPath             string
	JWTSecret          string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and the resources that must be released on
// shutdown — today that is the database connection.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server: opens the database, builds the full dependency
// chain and registers every route.
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services. Handlers never touch the database,
// services never touch HTTP.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("server: JWT secret is required")
	}

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
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes wires the dependency chain and registers all routes.
//
// Route map:
//
//	POST /auth/register, /auth/login, /auth/logout
//	GET  /auth/github/login, /auth/github/callback   (when OAuth configured)
//	GET  /api/me
//	GET/POST /api/categories, PUT/DELETE /api/categories/{id}
//	POST /api/categories/{id}/toggle
//	GET/POST /api/bookmarks, PUT/DELETE /api/bookmarks/{id}
//	GET  /api/fetch-meta
//	GET  /share/{username}[/{ref}[/bookmarks]]
//
// Everything under /api sits behind RequireAuth; /auth and /share are open.
func (s *Server) setupRoutes() error {
	// Global middleware, in execution order: request IDs for tracing, real
	// client IPs behind proxies, structured request logs, panic recovery.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" && s.config.GitHubClientSecret != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	} else {
		s.logger.Warn("GitHub OAuth not configured, /auth/github routes disabled")
	}

	users := s.db.Users()
	categories := s.db.Categories()
	bookmarks := s.db.Bookmarks()

	authService := service.NewAuthService(users, tokens, passwords, s.logger)
	categoryService := service.NewCategoryService(categories, s.logger)
	bookmarkService := service.NewBookmarkService(bookmarks, categories, s.logger)
	shareService := service.NewShareService(users, categories, bookmarks, s.logger)

	authHandler := handler.NewAuthHandler(authService, github, s.logger)
	categoryHandler := handler.NewCategoryHandler(categoryService, s.logger)
	bookmarkHandler := handler.NewBookmarkHandler(bookmarkService, s.logger)
	shareHandler := handler.NewShareHandler(shareService, s.logger)
	metaHandler := handler.NewMetaHandler(meta.NewFetcher(), s.logger)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", authHandler.HandleMe)

		r.Get("/categories", categoryHandler.HandleTree)
		r.Post("/categories", categoryHandler.HandleCreate)
		r.Put("/categories/{id}", categoryHandler.HandleUpdate)
		r.Delete("/categories/{id}", categoryHandler.HandleDelete)
		r.Post("/categories/{id}/toggle", categoryHandler.HandleToggle)

		r.Get("/bookmarks", bookmarkHandler.HandleList)
		r.Post("/bookmarks", bookmarkHandler.HandleCreate)
		r.Put("/bookmarks/{id}", bookmarkHandler.HandleUpdate)
		r.Delete("/bookmarks/{id}", bookmarkHandler.HandleDelete)

		r.Get("/fetch-meta", metaHandler.HandleFetchMeta)
	})

	// Share links are the public surface; OptionalAuth so an owner browsing
	// their own link is still identifiable in logs and future features.
	s.router.Route("/share", func(r chi.Router) {
		r.Use(auth.OptionalAuth(tokens))

		r.Get("/{username}", shareHandler.HandleListPublic)
		r.Get("/{username}/{ref}", shareHandler.HandleResolve)
		r.Get("/{username}/{ref}/bookmarks", shareHandler.HandleBookmarks)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests for up
// to 30 seconds, close the database so the WAL is flushed.
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
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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
