package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driving"
	"github.com/custodia-labs/mufti/internal/logger"
)

// Services holds the driving ports the API is built on.
type Services struct {
	Search     driving.SearchService
	Categories driving.CategoryService
	Fatwas     driving.FatwaService
}

// Validate checks that all required services are present.
func (s *Services) Validate() error {
	if s.Search == nil {
		return errors.New("search service is required")
	}
	if s.Categories == nil {
		return errors.New("category service is required")
	}
	if s.Fatwas == nil {
		return errors.New("fatwa service is required")
	}
	return nil
}

// Config holds HTTP server configuration.
type Config struct {
	Addr            string
	AllowedOrigins  []string
	DefaultPageSize int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the server defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		AllowedOrigins:  []string{"*"},
		DefaultPageSize: domain.DefaultPageSize,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server is the HTTP API server.
type Server struct {
	services Services
	config   Config
	router   *mux.Router
	handler  http.Handler
}

// NewServer creates a new HTTP API server.
func NewServer(services Services, config Config) (*Server, error) {
	if err := services.Validate(); err != nil {
		return nil, fmt.Errorf("invalid services: %w", err)
	}

	defaults := DefaultConfig()
	if config.Addr == "" {
		config.Addr = defaults.Addr
	}
	if len(config.AllowedOrigins) == 0 {
		config.AllowedOrigins = defaults.AllowedOrigins
	}
	if config.DefaultPageSize <= 0 || config.DefaultPageSize > domain.MaxPageSize {
		config.DefaultPageSize = defaults.DefaultPageSize
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = defaults.ReadTimeout
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.IdleTimeout == 0 {
		config.IdleTimeout = defaults.IdleTimeout
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}

	s := &Server{
		services: services,
		config:   config,
		router:   mux.NewRouter(),
	}
	s.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins: config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	})
	s.handler = c.Handler(s.router)

	return s, nil
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Use(requestIDMiddleware, loggingMiddleware)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	fatwas := api.PathPrefix("/fatwas").Subrouter()
	fatwas.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	fatwas.HandleFunc("", s.handleListFatwas).Methods(http.MethodGet)
	fatwas.HandleFunc("", s.handleCreateFatwa).Methods(http.MethodPost)
	fatwas.HandleFunc("/{id:[0-9]+}", s.handleGetFatwa).Methods(http.MethodGet)
	fatwas.HandleFunc("/{id:[0-9]+}", s.handleUpdateFatwa).Methods(http.MethodPut)
	fatwas.HandleFunc("/{id:[0-9]+}", s.handleDeleteFatwa).Methods(http.MethodDelete)

	categories := api.PathPrefix("/categories").Subrouter()
	categories.HandleFunc("", s.handleCategoryTree).Methods(http.MethodGet)
	categories.HandleFunc("/{id:[0-9]+}", s.handleGetCategory).Methods(http.MethodGet)
	categories.HandleFunc("/{id:[0-9]+}", s.handleSaveCategory).Methods(http.MethodPut)
	categories.HandleFunc("/{id:[0-9]+}/fatwas", s.handleListByCategory).Methods(http.MethodGet)
	categories.HandleFunc("/{id:[0-9]+}/descendants", s.handleDescendants).Methods(http.MethodGet)
}

// Handler returns the root handler, including CORS.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.config.Addr
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
