// Package server provides the HTTP transport for the MCP gateway: one
// JSON-RPC framed MCP message per POST, no session state across
// requests.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"saltbox-mcp/internal/mcp"
	"saltbox-mcp/internal/tools"
)

const (
	serverName    = "saltbox-mcp"
	serverVersion = "0.4.0"
)

// Server wires the chi router to the tool registry.
type Server struct {
	log      *slog.Logger
	registry *tools.Registry
	token    string
	router   *chi.Mux
}

// New constructs a Server with middleware and routes configured. An
// empty token leaves the /mcp endpoint open; the listener is expected
// to be loopback-bound in that case.
func New(log *slog.Logger, registry *tools.Registry, token string) *Server {
	s := &Server{
		log:      log,
		registry: registry,
		token:    token,
		router:   chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(120 * time.Second))

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/mcp", func(r chi.Router) {
		r.Use(s.auth)
		r.MethodNotAllowed(s.handleMethodNotAllowed)
		r.Post("/", s.handleMCP)
	})

	return s
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+s.token {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Anything but POST on the MCP path gets a JSON-RPC flavored 405.
func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	s.writeRPC(w, http.StatusMethodNotAllowed, mcp.Response{
		JSONRPC: "2.0",
		ID:      json.RawMessage("null"),
		Error: &mcp.Error{
			Code:    mcp.CodeMethodNotAllowed,
			Message: "Method not allowed.",
		},
	})
}

func (s *Server) writeRPC(w http.ResponseWriter, status int, resp mcp.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("failed to write response", "error", err)
	}
}
