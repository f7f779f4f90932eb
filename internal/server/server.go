// Package server exposes the chat websocket, the browsable document
// endpoint, and operational routes over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/i2i-labs/tobi-backend/internal/blobstore"
	"github.com/i2i-labs/tobi-backend/internal/chat"
	"github.com/i2i-labs/tobi-backend/internal/transport"
)

// Handler processes one inbound chat request.
type Handler interface {
	Handle(ctx context.Context, sender transport.Sender, req chat.Request)
}

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server wires the chat dispatcher and document store to HTTP routes.
type Server struct {
	cfg        Config
	handler    Handler
	corpus     blobstore.Store
	links      *blobstore.Links
	sync       func(ctx context.Context) error
	router     chi.Router
	httpServer *http.Server

	mu          sync.Mutex
	connections map[string]struct{}
}

// New creates a server. sync runs on POST /admin/sync and may be nil.
func New(cfg Config, handler Handler, corpus blobstore.Store, links *blobstore.Links, sync func(ctx context.Context) error) *Server {
	s := &Server{
		cfg:         cfg,
		handler:     handler,
		corpus:      corpus,
		links:       links,
		sync:        sync,
		connections: make(map[string]struct{}),
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/docs/*", s.handleDocument)
	r.Post("/admin/sync", s.handleSync)

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	active := len(s.connections)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"connections": active,
	})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.sync == nil {
		http.Error(w, "sync not configured", http.StatusNotImplemented)
		return
	}
	if err := s.sync(r.Context()); err != nil {
		log.Printf("server: sync failed: %v", err)
		http.Error(w, "sync failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"synced"}`))
}

func (s *Server) register(id string) {
	s.mu.Lock()
	s.connections[id] = struct{}{}
	s.mu.Unlock()
	log.Printf("server: connection %s opened", id)
}

func (s *Server) unregister(id string) {
	s.mu.Lock()
	delete(s.connections, id)
	s.mu.Unlock()
	log.Printf("server: connection %s closed", id)
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("tobi server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
