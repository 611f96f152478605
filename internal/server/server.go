// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the wiring layer: it decides which URL patterns map to
// which handlers, what middleware runs on which routes, and how the server
// starts and stops. Services and stores are built by the caller (see
// cmd/server) and passed in through Deps.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sakif/course-registration/internal/auth"
	"github.com/sakif/course-registration/internal/handler"
	"github.com/sakif/course-registration/internal/middleware"
)

// Config holds server configuration.
type Config struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CookieSecure    bool
}

// DefaultConfig returns the timeouts used when none are configured.
func DefaultConfig() Config {
	return Config{
		Port:            8080,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Deps are the collaborators the routes are served by.
type Deps struct {
	Auth          handler.Authenticator
	Registrations handler.Registrar
	Tokens        *auth.TokenService
	DB            handler.Pinger
}

// Server represents the HTTP server and the resources it releases on
// shutdown.
type Server struct {
	router  *chi.Mux
	handler http.Handler
	config  Config
	logger  *slog.Logger

	// run in order after the listener has drained
	shutdownHooks []func(context.Context) error
}

// New creates a Server with all routes mounted.
func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}
	s.setupRoutes(deps)

	// otelhttp sits outside the router so every request, including 404s,
	// gets a server span. It is a no-op until a tracer provider is set.
	s.handler = otelhttp.NewHandler(s.router, "http.server",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)

	return s
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /healthz                           → liveness + DB ping
//	POST   /api/auth/register                 → create account
//	POST   /api/auth/login                    → start session
//	POST   /api/auth/logout                   → end session          [auth]
//	GET    /api/auth/me                       → current user         [auth]
//	GET    /api/courses/data                  → courses + lecturers
//	POST   /api/courses/register              → save selections      [auth]
//	GET    /api/courses/registration/{userId} → saved selections     [auth]
//
// MIDDLEWARE ORDER:
//  1. RequestID: assigns an ID to each request (logged by Logger)
//  2. RealIP: extracts the client IP from proxy headers
//  3. Logger: one line per request
//  4. Recoverer: turns panics into 500s
func (s *Server) setupRoutes(deps Deps) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	authHandler := handler.NewAuthHandler(deps.Auth, handler.CookieConfig{
		TTL:    deps.Tokens.TTL(),
		Secure: s.config.CookieSecure,
	}, s.logger)
	coursesHandler := handler.NewCoursesHandler(deps.Registrations, s.logger)
	healthHandler := handler.NewHealthHandler(deps.DB, s.logger)

	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Get("/courses/data", coursesHandler.HandleData)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(deps.Tokens))

			r.Post("/auth/logout", authHandler.HandleLogout)
			r.Get("/auth/me", authHandler.HandleMe)
			r.Post("/courses/register", coursesHandler.HandleRegister)
			r.Get("/courses/registration/{userId}", coursesHandler.HandleGetRegistration)
		})
	})
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// OnShutdown registers fn to run after the listener has drained, e.g.
// flushing traces or closing the database. Hooks run in registration order.
func (s *Server) OnShutdown(fn func(context.Context) error) {
	s.shutdownHooks = append(s.shutdownHooks, fn)
}

// Start serves HTTP until ctx is cancelled or the process receives SIGINT
// or SIGTERM, then shuts down gracefully:
//  1. Stop accepting new connections
//  2. Give in-flight requests up to ShutdownTimeout to finish
//  3. Run the shutdown hooks
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			serveErr = fmt.Errorf("graceful shutdown failed: %w", err)
		} else {
			s.logger.Info("server stopped gracefully")
		}
	}

	return errors.Join(serveErr, s.runShutdownHooks())
}

func (s *Server) runShutdownHooks() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	var errs []error
	for _, hook := range s.shutdownHooks {
		if err := hook(ctx); err != nil {
			s.logger.Error("shutdown hook failed", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
