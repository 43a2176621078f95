// ABOUTME: HTTP server assembling all board endpoints onto one mux
// ABOUTME: JSON in, JSON out; the thread stream is the only SSE endpoint

package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yaam/agentboard/internal/agents"
	"github.com/yaam/agentboard/internal/audit"
	"github.com/yaam/agentboard/internal/auth"
	"github.com/yaam/agentboard/internal/dispatch"
	"github.com/yaam/agentboard/internal/store"
	"github.com/yaam/agentboard/internal/stream"
)

// Config wires the server's collaborators.
type Config struct {
	Store      *store.MemoryStore
	Registry   *agents.Registry
	Dispatcher *dispatch.Dispatcher
	Audit      *audit.Recorder
	Watcher    *stream.Watcher
	Auth       *auth.Middleware
	Logger     *slog.Logger

	MetricsEnabled bool
	MetricsPath    string
}

// Server serves the board's HTTP API.
type Server struct {
	store      *store.MemoryStore
	registry   *agents.Registry
	dispatcher *dispatch.Dispatcher
	audit      *audit.Recorder
	watcher    *stream.Watcher
	auth       *auth.Middleware
	logger     *slog.Logger
	startedAt  time.Time

	metricsEnabled bool
	metricsPath    string
}

// New creates the server.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	return &Server{
		store:          cfg.Store,
		registry:       cfg.Registry,
		dispatcher:     cfg.Dispatcher,
		audit:          cfg.Audit,
		watcher:        cfg.Watcher,
		auth:           cfg.Auth,
		logger:         cfg.Logger.With("component", "httpapi"),
		startedAt:      time.Now(),
		metricsEnabled: cfg.MetricsEnabled,
		metricsPath:    cfg.MetricsPath,
	}
}

// Handler builds the route table. Every request passes through identity
// resolution; write endpoints additionally require a user.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /posts", s.requireUser(s.handleCreatePost))
	mux.HandleFunc("GET /posts/{id}", s.handleGetPost)
	mux.Handle("DELETE /posts/{id}", s.requireUser(s.handleDeletePost))
	mux.Handle("POST /posts/{id}/like", s.requireUser(s.handleLikePost))
	mux.Handle("POST /posts/{id}/unlike", s.requireUser(s.handleUnlikePost))
	mux.HandleFunc("GET /timeline", s.handleTimeline)

	mux.HandleFunc("GET /threads/{id}", s.handleGetThread)
	mux.HandleFunc("GET /threads/{id}/agent-runs", s.handleThreadRuns)
	mux.HandleFunc("GET /threads/{id}/stream", s.handleStream)

	mux.HandleFunc("GET /agents", s.handleListAgents)
	mux.HandleFunc("GET /agents/{handle}", s.handleGetAgent)
	mux.Handle("POST /agents/prompt", s.requireUser(s.handleAgentPrompt))
	mux.Handle("POST /search/web", s.requireUser(s.handleWebSearch))
	mux.Handle("POST /scrape", s.requireUser(s.handleScrape))
	mux.Handle("POST /media/images/generate", s.requireUser(s.handleGenerateImage))
	mux.Handle("POST /media/videos/generate", s.requireUser(s.handleGenerateVideo))
	mux.Handle("POST /email/send", s.requireUser(s.handleSendEmail))
	mux.HandleFunc("GET /agent-runs/{id}", s.handleGetRun)
	mux.HandleFunc("POST /agent-runs/{id}/retry", s.handleRetryRun)

	mux.HandleFunc("GET /users/{handle}/posts", s.handleUserPosts)
	mux.HandleFunc("GET /users/{handle}/stats", s.handleUserStats)

	mux.HandleFunc("GET /audit/logs", s.handleAuditLogs)
	mux.HandleFunc("GET /audit/logs/export", s.handleAuditExport)
	mux.HandleFunc("GET /audit/stats", s.handleAuditStats)
	mux.HandleFunc("GET /audit/media", s.handleAuditMedia)
	mux.HandleFunc("GET /audit/conversations", s.handleAuditConversations)
	mux.HandleFunc("GET /audit/conversations/{id}", s.handleAuditConversation)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	if s.metricsEnabled {
		mux.Handle("GET "+s.metricsPath, promhttp.Handler())
	}

	return s.auth.Identify(mux)
}

func (s *Server) requireUser(h http.HandlerFunc) http.Handler {
	return s.auth.RequireUser(h)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"uptime":      time.Since(s.startedAt).String(),
		"agents":      len(s.registry.List()),
		"active_jobs": s.dispatcher.Pool().Count(),
		"services":    s.dispatcher.Services().Enabled(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
