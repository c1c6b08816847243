// Package http exposes the operator API: authentication, catalog
// administration, monitor configs, the review queue, and run history.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haulbridge/docpipe/internal/core/ports/driven"
	"github.com/haulbridge/docpipe/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	// Services
	authService    driving.AuthService
	pollService    driving.PollService
	monitorService driving.MonitorService
	reviewService  driving.ReviewService
	catalogService driving.CatalogService

	// Infrastructure
	taskQueue driven.TaskQueue
	db        Pinger
	redis     Pinger // optional
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// ServerDeps bundles the services and infrastructure the server needs.
type ServerDeps struct {
	AuthService    driving.AuthService
	PollService    driving.PollService
	MonitorService driving.MonitorService
	ReviewService  driving.ReviewService
	CatalogService driving.CatalogService
	TaskQueue      driven.TaskQueue
	DB             Pinger
	Redis          Pinger // can be nil
	Logger         *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:         http.NewServeMux(),
		version:        cfg.Version,
		logger:         logger,
		authService:    deps.AuthService,
		pollService:    deps.PollService,
		monitorService: deps.MonitorService,
		reviewService:  deps.ReviewService,
		catalogService: deps.CatalogService,
		taskQueue:      deps.TaskQueue,
		db:             deps.DB,
		redis:          deps.Redis,
	}

	logging := NewLoggingMiddleware(logger)
	recovery := NewRecoveryMiddleware(logger)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      recovery.Handler(logging.Handler(s.router)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	auth := NewAuthMiddleware(s.authService)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Auth endpoints
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.router.Handle("POST /api/v1/auth/logout",
		auth.Authenticate(http.HandlerFunc(s.handleLogout)))
	s.router.Handle("GET /api/v1/me",
		auth.Authenticate(http.HandlerFunc(s.handleGetMe)))

	// User management (admin-only)
	s.router.Handle("GET /api/v1/users",
		auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(s.handleListUsers))))
	s.router.Handle("POST /api/v1/users",
		auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(s.handleCreateUser))))
	s.router.Handle("DELETE /api/v1/users/{id}",
		auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(s.handleDeleteUser))))

	// Buckets (reads for any operator, mutations admin-only)
	s.router.Handle("GET /api/v1/buckets",
		auth.Authenticate(http.HandlerFunc(s.handleListBuckets)))
	s.router.Handle("POST /api/v1/buckets",
		auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(s.handleCreateBucket))))
	s.router.Handle("GET /api/v1/buckets/{id}",
		auth.Authenticate(http.HandlerFunc(s.handleGetBucket)))
	s.router.Handle("PUT /api/v1/buckets/{id}",
		auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(s.handleUpdateBucket))))
	s.router.Handle("DELETE /api/v1/buckets/{id}",
		auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(s.handleDeleteBucket))))

	// Document types
	s.router.Handle("GET /api/v1/document-types",
		auth.Authenticate(http.HandlerFunc(s.handleListDocumentTypes)))
	s.router.Handle("POST /api/v1/document-types",
		auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(s.handleCreateDocumentType))))
	s.router.Handle("PUT /api/v1/document-types/{id}",
		auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(s.handleUpdateDocumentType))))
	s.router.Handle("DELETE /api/v1/document-types/{id}",
		auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(s.handleDeleteDocumentType))))

	// Barcode patterns
	s.router.Handle("GET /api/v1/patterns",
		auth.Authenticate(http.HandlerFunc(s.handleListPatterns)))
	s.router.Handle("POST /api/v1/patterns",
		auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(s.handleCreatePattern))))
	s.router.Handle("PUT /api/v1/patterns/{id}",
		auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(s.handleUpdatePattern))))
	s.router.Handle("DELETE /api/v1/patterns/{id}",
		auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(s.handleDeletePattern))))

	// Document catalog
	s.router.Handle("GET /api/v1/documents",
		auth.Authenticate(http.HandlerFunc(s.handleListDocuments)))
	s.router.Handle("GET /api/v1/documents/{id}",
		auth.Authenticate(http.HandlerFunc(s.handleGetDocument)))

	// Review queue
	s.router.Handle("GET /api/v1/review",
		auth.Authenticate(http.HandlerFunc(s.handleListReviewQueue)))
	s.router.Handle("GET /api/v1/review/pending-count",
		auth.Authenticate(http.HandlerFunc(s.handlePendingCount)))
	s.router.Handle("GET /api/v1/review/{id}",
		auth.Authenticate(http.HandlerFunc(s.handleGetReviewItem)))
	s.router.Handle("POST /api/v1/review/{id}/resolve",
		auth.Authenticate(http.HandlerFunc(s.handleResolveReviewItem)))
	s.router.Handle("POST /api/v1/review/{id}/discard",
		auth.Authenticate(http.HandlerFunc(s.handleDiscardReviewItem)))

	// Monitor configs (admin-only)
	s.router.Handle("GET /api/v1/configs",
		auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(s.handleListConfigs))))
	s.router.Handle("POST /api/v1/configs",
		auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(s.handleCreateConfig))))
	s.router.Handle("GET /api/v1/configs/{id}",
		auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(s.handleGetConfig))))
	s.router.Handle("PUT /api/v1/configs/{id}",
		auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(s.handleUpdateConfig))))
	s.router.Handle("DELETE /api/v1/configs/{id}",
		auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(s.handleDeleteConfig))))

	// Poll runs
	s.router.Handle("POST /api/v1/configs/{id}/poll",
		auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(s.handleTriggerPoll))))
	s.router.Handle("GET /api/v1/configs/{id}/runs",
		auth.Authenticate(http.HandlerFunc(s.handleListConfigRuns)))
	s.router.Handle("GET /api/v1/configs/{id}/runs/latest",
		auth.Authenticate(http.HandlerFunc(s.handleLatestRun)))
	s.router.Handle("GET /api/v1/runs",
		auth.Authenticate(http.HandlerFunc(s.handleListRuns)))

	// Operator dashboard stats (admin-only)
	s.router.Handle("GET /api/v1/admin/stats",
		auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(s.handleAdminStats))))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("starting http server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	s.logger.Info("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the root handler. Used in tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
