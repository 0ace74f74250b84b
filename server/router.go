package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"uno-arbiter/server/agent"
	"uno-arbiter/server/engine"
	"uno-arbiter/server/llm"
	"uno-arbiter/server/session"
	"uno-arbiter/server/store"
)

const apiVersion = "2.0.0"

type server struct {
	log      *logrus.Logger
	registry *llm.Registry
	sessions session.Store
	db       *store.DB // nil when decision logging is disabled

	// newProposer is swappable so tests can stub the LLM boundary.
	newProposer func(provider, model, baseURL, apiKey string) (agent.Proposer, string, error)
}

func newServer(log *logrus.Logger, sessions session.Store, db *store.DB) *server {
	s := &server{
		log:      log,
		registry: llm.NewRegistry(),
		sessions: sessions,
		db:       db,
	}
	s.newProposer = func(provider, model, baseURL, apiKey string) (agent.Proposer, string, error) {
		client, err := s.registry.GetOrCreate(provider, model, baseURL, apiKey)
		if err != nil {
			return nil, "", err
		}
		return agent.NewLLMProposer(client), client.Config().Model, nil
	}
	return s
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/providers", s.handleProviders)
	r.Post("/move", s.handleMove)
	r.Post("/analysis", s.handleAnalysis)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleSessionCreate)
		r.Get("/{id}", s.handleSessionGet)
		r.Delete("/{id}", s.handleSessionDelete)
		r.Post("/{id}/move", s.handleSessionMove)
	})

	r.Get("/cache", s.handleCacheGet)
	r.Delete("/cache", s.handleCacheFlush)
	r.Get("/decisions", s.handleDecisions)

	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
			"remote":   r.RemoteAddr,
		}).Info("HTTP Request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func (s *server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "UNO LLM Backend API",
		"version": apiVersion,
		"features": []string{
			"Structured output with raw-text fallback parsing",
			"Multiple LLM provider support",
			"Advanced game analysis",
			"Intelligent move prediction",
			"Move validation and retry logic",
		},
		"endpoints": []string{
			"/health - Health check",
			"/providers - List supported providers",
			"/move - Get LLM move prediction",
			"/analysis - Get strategic game analysis",
			"/sessions - Session snapshots",
			"/cache - LLM client cache inspection",
			"/decisions - Recent decision audit log",
		},
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "LLM Backend is running",
	})
}

func (s *server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": llm.Providers(),
		"usage":     "Specify provider and optionally model in your requests",
	})
}

type moveRequest struct {
	GameState *engine.GameState `json:"gameState"`
	Provider  string            `json:"provider"`
	Model     string            `json:"model"`
	BaseURL   string            `json:"baseUrl"`
	APIKey    string            `json:"apiKey"`
}

type moveResponse struct {
	Action            string `json:"action"`
	CardID            string `json:"card_id,omitempty"`
	Color             string `json:"color,omitempty"`
	Reasoning         string `json:"reasoning"`
	IsValid           bool   `json:"isValid"`
	ValidationMessage string `json:"validationMessage,omitempty"`
	Provider          string `json:"provider"`
	Model             string `json:"model"`
	Attempts          int    `json:"attempts"`
	Fallback          bool   `json:"fallback"`
}

func (s *server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.GameState == nil {
		writeError(w, http.StatusBadRequest, "gameState is required")
		return
	}
	s.decide(r.Context(), w, req, nil)
}

// decide runs the supervisor against state and writes the move response.
// sessionID is non-nil for session-scoped decisions and rides into the audit
// log.
func (s *server) decide(ctx context.Context, w http.ResponseWriter, req moveRequest, sessionID *string) {
	proposer, model, err := s.newProposer(req.Provider, req.Model, req.BaseURL, req.APIKey)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to initialize LLM provider: "+err.Error())
		return
	}

	start := time.Now()
	sup := agent.NewSupervisor(proposer, s.log)
	outcome := sup.Decide(ctx, req.GameState)

	s.auditDecision(ctx, req.Provider, model, sessionID, outcome, time.Since(start))

	resp := moveResponse{
		Action:    string(outcome.Move.Action),
		CardID:    outcome.Move.CardID,
		Color:     string(outcome.Move.Color),
		Reasoning: outcome.Move.Reasoning,
		IsValid:   outcome.Valid,
		Provider:  req.Provider,
		Model:     model,
		Attempts:  outcome.Attempts,
		Fallback:  outcome.Fallback,
	}
	if !outcome.Valid {
		resp.ValidationMessage = outcome.Message
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) auditDecision(ctx context.Context, provider, model string, sessionID *string, outcome agent.Outcome, latency time.Duration) {
	if s.db == nil {
		return
	}
	d := store.Decision{
		SessionID: sessionID,
		Provider:  provider,
		Model:     model,
		Action:    string(outcome.Move.Action),
		Reasoning: outcome.Move.Reasoning,
		IsValid:   outcome.Valid,
		Message:   outcome.Message,
		Attempts:  outcome.Attempts,
		Fallback:  outcome.Fallback,
		LatencyMS: int(latency.Milliseconds()),
	}
	if outcome.Move.CardID != "" {
		v := outcome.Move.CardID
		d.CardID = &v
	}
	if outcome.Move.Color != "" {
		v := string(outcome.Move.Color)
		d.Color = &v
	}
	if err := s.db.InsertDecision(ctx, d); err != nil {
		s.log.WithError(err).Warn("decision audit insert failed")
	}
}

type analysisRequest struct {
	GameState *engine.GameState `json:"gameState"`
	Provider  string            `json:"provider"`
	Model     string            `json:"model"`
	BaseURL   string            `json:"baseUrl"`
	APIKey    string            `json:"apiKey"`
}

func (s *server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.GameState == nil {
		writeError(w, http.StatusBadRequest, "gameState is required")
		return
	}

	proposer, model, err := s.newProposer(req.Provider, req.Model, req.BaseURL, req.APIKey)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to initialize LLM provider: "+err.Error())
		return
	}

	analysis := proposer.AnalyzeGame(r.Context(), req.GameState)
	writeJSON(w, http.StatusOK, map[string]any{
		"provider": req.Provider,
		"model":    model,
		"analysis": analysis,
	})
}

type sessionCreateRequest struct {
	GameState *engine.GameState `json:"gameState"`
}

func (s *server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var req sessionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.GameState == nil {
		writeError(w, http.StatusBadRequest, "gameState is required")
		return
	}
	if req.GameState.Direction == 0 {
		req.GameState.Direction = 1
	}

	id, err := s.sessions.Create(r.Context(), req.GameState)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

func (s *server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.sessionError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": id, "gameState": state})
}

func (s *server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.sessionError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"session_id": id, "status": "deleted"})
}

func (s *server) handleSessionMove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.sessionError(w, id, err)
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	// The stored snapshot is authoritative; the request only selects the
	// provider.
	req.GameState = state

	rec := &persistingWriter{ResponseWriter: w}
	s.decide(r.Context(), rec, req, &id)
	if rec.status == http.StatusOK {
		if err := s.sessions.Save(r.Context(), id, state); err != nil {
			s.log.WithError(err).WithField("session_id", id).Warn("session save failed after decision")
		}
	}
}

// persistingWriter captures the status so the session is only saved when the
// decision succeeded.
type persistingWriter struct {
	http.ResponseWriter
	status int
}

func (p *persistingWriter) WriteHeader(status int) {
	p.status = status
	p.ResponseWriter.WriteHeader(status)
}

func (s *server) sessionError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session "+id+" not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *server) handleCacheGet(w http.ResponseWriter, r *http.Request) {
	keys := s.registry.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{"size": len(keys), "keys": keys})
}

func (s *server) handleCacheFlush(w http.ResponseWriter, r *http.Request) {
	n := s.registry.Flush()
	writeJSON(w, http.StatusOK, map[string]any{"evicted": n})
}

func (s *server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "decision logging is disabled: set DATABASE_URL to enable")
		return
	}
	limit := atoiDef(strings.TrimSpace(r.URL.Query().Get("limit")), 50)
	decisions, err := s.db.RecentDecisions(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"decisions": decisions})
}
