// Package httpapi exposes the interpreter over a JSON/HTTP surface for
// screen-rendering clients. The voice agent usually rides the websocket
// bridge instead; both funnel into the same per-run mailbox.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	wayfarer "github.com/wayfarerhq/wayfarer"
	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/internal/metrics"
	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

// Server handles the HTTP surface over an Interpreter.
type Server struct {
	itp    *wayfarer.Interpreter
	logger *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler builds the HTTP handler for the interpreter.
func NewHandler(itp *wayfarer.Interpreter, opts ...Option) http.Handler {
	s := &Server{
		itp:    itp,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/runs", func(r chi.Router) {
		r.Post("/", s.createRun)
		r.Get("/", s.listRuns)
		r.Route("/{runID}", func(r chi.Router) {
			r.Get("/screen", s.getScreen)
			r.Get("/state", s.getState)
			r.Post("/events", s.dispatchEvent)
			r.Post("/tool-calls", s.dispatchToolCall)
			r.Post("/handoff", s.handoff)
			r.Delete("/", s.deleteRun)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type createRunRequest struct {
	ModuleSeed map[string]any `json:"module_seed,omitempty"`
}

type eventRequest struct {
	EventID   string         `json:"event_id"`
	ElementID string         `json:"element_id,omitempty"`
	Args      map[string]any `json:"args,omitempty"`
}

type toolCallRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type handoffRequest struct {
	AgentID string `json:"agent_id"`
}

type dispatchResponse struct {
	Matched   bool                    `json:"matched"`
	Navigated bool                    `json:"navigated"`
	Seq       uint64                  `json:"seq"`
	Signal    domain.AgentSignal      `json:"signal"`
	Warnings  []domain.Warning        `json:"warnings,omitempty"`
	Screen    *domain.EffectiveScreen `json:"screen,omitempty"`
}

func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	var body createRunRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	run, err := s.itp.StartRun(r.Context(), body.ModuleSeed)
	if err != nil {
		s.internalError(w, "failed to start run", err)
		return
	}

	screen, err := run.Screen(r.Context())
	if err != nil {
		s.internalError(w, "failed to resolve screen", err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"run_id": run.ID(),
		"screen": screen,
	})
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := s.itp.Runs(r.Context())
	if err != nil {
		s.internalError(w, "failed to list runs", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": ids})
}

func (s *Server) getScreen(w http.ResponseWriter, r *http.Request) {
	run, ok := s.resolveRun(w, r)
	if !ok {
		return
	}
	screen, err := run.Screen(r.Context())
	if err != nil {
		s.internalError(w, "failed to resolve screen", err)
		return
	}
	s.writeJSON(w, http.StatusOK, screen)
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	run, ok := s.resolveRun(w, r)
	if !ok {
		return
	}
	state, err := run.State(r.Context())
	if err != nil {
		s.internalError(w, "failed to load state", err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) dispatchEvent(w http.ResponseWriter, r *http.Request) {
	run, ok := s.resolveRun(w, r)
	if !ok {
		return
	}

	var body eventRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.EventID == "" {
		http.Error(w, "invalid request body: event_id required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	res, err := run.Dispatch(r.Context(), body.EventID, body.ElementID, body.Args)
	if err != nil {
		s.dispatchError(w, err)
		return
	}
	s.observe(res, time.Since(start))
	s.writeDispatch(w, r, run, res)
}

func (s *Server) dispatchToolCall(w http.ResponseWriter, r *http.Request) {
	run, ok := s.resolveRun(w, r)
	if !ok {
		return
	}

	var body toolCallRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Tool == "" {
		http.Error(w, "invalid request body: tool required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	res, err := run.HandleToolCall(r.Context(), body.Tool, body.Args)
	if err != nil {
		s.dispatchError(w, err)
		return
	}
	s.observe(res, time.Since(start))
	s.writeDispatch(w, r, run, res)
}

func (s *Server) handoff(w http.ResponseWriter, r *http.Request) {
	run, ok := s.resolveRun(w, r)
	if !ok {
		return
	}

	var body handoffRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.AgentID == "" {
		http.Error(w, "invalid request body: agent_id required", http.StatusBadRequest)
		return
	}

	res, err := run.Handoff(r.Context(), body.AgentID)
	if err != nil {
		s.dispatchError(w, err)
		return
	}
	s.writeDispatch(w, r, run, res)
}

func (s *Server) deleteRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	run, err := s.itp.Run(r.Context(), runID)
	if err == nil {
		run.Close()
	} else if !errors.Is(err, domain.ErrRunNotFound) {
		s.internalError(w, "failed to resolve run", err)
		return
	}

	if err := s.itp.Manager().Delete(r.Context(), runID); err != nil {
		s.internalError(w, "failed to delete run", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) resolveRun(w http.ResponseWriter, r *http.Request) (*wayfarer.Run, bool) {
	runID := chi.URLParam(r, "runID")
	run, err := s.itp.Run(r.Context(), runID)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			http.Error(w, "run not found", http.StatusNotFound)
		} else {
			s.internalError(w, "failed to resolve run", err)
		}
		return nil, false
	}
	return run, true
}

func (s *Server) writeDispatch(w http.ResponseWriter, r *http.Request, run *wayfarer.Run, res *domain.DispatchResult) {
	resp := dispatchResponse{
		Matched:   res.Matched,
		Navigated: res.Navigated,
		Seq:       res.Seq,
		Signal:    res.Signal,
		Warnings:  res.Warnings,
	}
	if screen, err := run.Screen(r.Context()); err == nil {
		resp.Screen = screen
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) observe(res *domain.DispatchResult, elapsed time.Duration) {
	metrics.ObserveDispatch(res.Matched, elapsed)
	for _, warn := range res.Warnings {
		metrics.ObserveWarning(warn.Code)
	}
	if res.Signal.Completed {
		metrics.ObserveRunCompleted()
	}
}

func (s *Server) dispatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRunNotFound):
		http.Error(w, "run not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrRunClosed):
		http.Error(w, "run is closed", http.StatusConflict)
	default:
		s.internalError(w, "dispatch failed", err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, "err", err)
	http.Error(w, fmt.Sprintf("%s: %v", msg, err), http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
