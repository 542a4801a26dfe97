// Package httpapi serves the knowledge base over HTTP.
//
// Every route except /healthz requires "Authorization: Bearer <token>". The
// token is looked up in the configured key table to find the caller's
// organisation, and all work happens inside that organisation's namespace.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/all-black-493/supportly/internal/core/ports/driven"
	"github.com/all-black-493/supportly/internal/core/ports/driving"
	"github.com/all-black-493/supportly/internal/logger"
)

// KeyResolver maps bearer tokens to organisation IDs.
type KeyResolver interface {
	ResolveAPIKey(token string) (string, bool)
}

// Config holds server configuration.
type Config struct {
	Addr            string
	AllowAllOrigins bool // allow all CORS origins (dev mode)

	// MaxUploadBytes bounds the multipart body. Zero means no limit.
	MaxUploadBytes int64
}

// Ports aggregates the services the HTTP API drives.
type Ports struct {
	Ingestion driving.IngestionService
	Retrieval driving.RetrievalService
	Lifecycle driving.LifecycleService
	Blobs     driven.BlobStore
	Keys      KeyResolver
}

// Server is the HTTP API server.
type Server struct {
	cfg        Config
	ports      Ports
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all routes registered.
func New(cfg Config, ports Ports) *Server {
	s := &Server{cfg: cfg, ports: ports}
	s.router = s.buildRouter()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAllOrigins {
		corsOpts.AllowedOrigins = []string{"*"}
		corsOpts.AllowCredentials = false
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticate(s.ports.Keys))

		r.Route("/api/entries", func(r chi.Router) {
			r.Post("/", s.handleUpload)
			r.Get("/", s.handleListEntries)
			r.Get("/{id}", s.handleGetEntry)
			r.Delete("/{id}", s.handleDeleteEntry)
		})
		r.Post("/api/query", s.handleQuery)
		r.Get("/files/{storageId}", s.handleFile)
	})

	return r
}

// Run listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      180 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown: %v", err)
		}
	}()

	logger.Info("listening on %s", s.cfg.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
