package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/orderdesk/orderdesk/internal/assistant"
	"github.com/orderdesk/orderdesk/internal/session"
)

// Config holds server configuration.
type Config struct {
	Port     int
	SOPPath  string // support-procedure document, rendered at /procedures
	AllowAll bool   // allow all CORS origins (dev mode)
}

// Server exposes the assistant over HTTP and WebSocket.
type Server struct {
	cfg        Config
	engine     *assistant.Engine
	sessions   *session.Registry
	router     chi.Router
	httpServer *http.Server

	proceduresOnce sync.Once
	proceduresPage []byte
	proceduresErr  error
}

// New creates a server with all dependencies.
func New(cfg Config, engine *assistant.Engine, sessions *session.Registry) *Server {
	s := &Server{
		cfg:      cfg,
		engine:   engine,
		sessions: sessions,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
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

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/api/chat", s.handleChat)
	r.Post("/api/session/email", s.handleSetEmail)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/procedures", s.handleProcedures)

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("orderdesk server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
