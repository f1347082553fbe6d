// Package http exposes the ingestion and query pipeline over a JSON API.
package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/custodia-labs/ragpipe/internal/core/ports/driving"
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

	// Services
	ingestService driving.IngestService
	queryService  driving.QueryService
	docService    driving.DocumentService

	// Infrastructure
	index VectorIndexHealth
	db    Pinger // PostgreSQL health check (optional)
}

// VectorIndexHealth is the slice of the vector index used by readiness checks
type VectorIndexHealth interface {
	HealthCheck(ctx context.Context) error
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
		Port:    3001,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	ingestService driving.IngestService,
	queryService driving.QueryService,
	docService driving.DocumentService,
	index VectorIndexHealth,
	db Pinger, // can be nil
) *Server {
	s := &Server{
		router:        http.NewServeMux(),
		version:       cfg.Version,
		ingestService: ingestService,
		queryService:  queryService,
		docService:    docService,
		index:         index,
		db:            db,
	}

	logging := NewLoggingMiddleware()
	recovery := NewRecoveryMiddleware()

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      recovery.Handler(logging.Handler(s.router)),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second, // completion calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Pipeline endpoints
	s.router.HandleFunc("POST /api/ingest", s.handleIngest)
	s.router.HandleFunc("POST /api/ingest-file", s.handleIngestFile)
	s.router.HandleFunc("POST /api/query", s.handleQuery)
	s.router.HandleFunc("GET /api/documents", s.handleListDocuments)
}

// Handler returns the server's root handler, for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
