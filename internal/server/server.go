// Package server assembles the HTTP and WebSocket surface of the war room.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/scorewire/warroom/internal/server/handler"
	"github.com/scorewire/warroom/internal/server/middleware"
	"github.com/scorewire/warroom/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled
}

// Handlers aggregates the HTTP handlers the server registers.
type Handlers struct {
	Health   *handler.HealthHandler
	Sessions *handler.SessionHandler
	Rosters  *handler.RosterHandler
	History  *handler.HistoryHandler
}

// Server is the war-room HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer registers all routes on a ServeMux and wires the middleware
// chain (auth, logging, CORS) around it.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required once the chain sees an empty key, but
	// registered like everything else).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Session lifecycle.
	mux.HandleFunc("POST /api/sessions", handlers.Sessions.Create)
	mux.HandleFunc("GET /api/sessions/{id}", handlers.Sessions.Get)
	mux.HandleFunc("DELETE /api/sessions/{id}", handlers.Sessions.Close)

	// Trade construction.
	mux.HandleFunc("PUT /api/sessions/{id}/home", handlers.Sessions.SetHome)
	mux.HandleFunc("PUT /api/sessions/{id}/partner", handlers.Sessions.SetPartner)
	mux.HandleFunc("PUT /api/sessions/{id}/mode", handlers.Sessions.SetMode)
	mux.HandleFunc("POST /api/sessions/{id}/assets/toggle", handlers.Sessions.ToggleAsset)
	mux.HandleFunc("POST /api/sessions/{id}/picks", handlers.Sessions.AddPick)
	mux.HandleFunc("DELETE /api/sessions/{id}/picks/{index}", handlers.Sessions.RemovePick)
	mux.HandleFunc("POST /api/sessions/{id}/cash", handlers.Sessions.AddCash)
	mux.HandleFunc("PUT /api/sessions/{id}/retentions", handlers.Sessions.SetRetention)
	mux.HandleFunc("POST /api/sessions/{id}/destination", handlers.Sessions.ResolveDestination)
	mux.HandleFunc("DELETE /api/sessions/{id}/destination", handlers.Sessions.CancelDestination)
	mux.HandleFunc("POST /api/sessions/{id}/submit", handlers.Sessions.Submit)
	mux.HandleFunc("POST /api/sessions/{id}/reset", handlers.Sessions.Reset)
	mux.HandleFunc("DELETE /api/sessions/{id}/grade", handlers.Sessions.ClearGrade)

	// Rosters and cap data.
	mux.HandleFunc("GET /api/teams/{key}/roster", handlers.Rosters.Roster)
	mux.HandleFunc("GET /api/teams/{key}/prospects", handlers.Rosters.Prospects)
	mux.HandleFunc("GET /api/teams/{key}/cap", handlers.Rosters.Cap)

	// History and leaderboard.
	mux.HandleFunc("GET /api/sessions/{id}/trades", handlers.History.SessionTrades)
	mux.HandleFunc("GET /api/users/{key}/trades", handlers.History.UserTrades)
	mux.HandleFunc("GET /api/users/{key}/sessions", handlers.History.UserSessions)
	mux.HandleFunc("GET /api/trades/{id}", handlers.History.Trade)
	mux.HandleFunc("DELETE /api/trades/{id}", handlers.History.DeleteTrade)
	mux.HandleFunc("GET /api/leaderboard", handlers.History.Leaderboard)
	mux.HandleFunc("GET /api/leaderboard/{key}", handlers.History.UserStanding)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	var h http.Handler = mux
	h = middleware.Auth(cfg.APIKey)(h)
	h = middleware.Logging(logger)(h)
	h = corsMiddleware(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening. It blocks until the server errors or shuts down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// corsMiddleware sets CORS headers for the allowed origins; an empty list
// allows all.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" {
				allowed := len(allowedOrigins) == 0
				for _, o := range allowedOrigins {
					if strings.EqualFold(o, "*") || strings.EqualFold(o, origin) {
						allowed = true
						break
					}
				}

				if allowed {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-User-Key")
					w.Header().Set("Access-Control-Max-Age", "86400")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
