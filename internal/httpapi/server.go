// Package httpapi is the external HTTP interface over pkg/scheduler
// (spec §6): a request builds or reuses a session-scoped Engine, runs
// a solve, and returns the portable schedule record.
package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/paiban/scheduler/pkg/cpmodel"
	apperrors "github.com/paiban/scheduler/pkg/errors"
	"github.com/paiban/scheduler/pkg/logger"
	"github.com/paiban/scheduler/pkg/model"
	"github.com/paiban/scheduler/pkg/scheduler"
)

// BackendFactory builds the cpsolve.Backend each session's Engine
// solves against; see scheduler.BackendFactory.
type BackendFactory = scheduler.BackendFactory

// Server adapts pkg/scheduler.Engine to HTTP. Each solved scenario
// gets a session id the caller passes back to request an alternative
// (spec §4.3 constraint 12, §6) without resending the scenario.
type Server struct {
	factory BackendFactory
	weights cpmodel.Weights

	mu       sync.Mutex
	sessions map[string]*scheduler.Engine
}

// NewServer creates an httpapi.Server backed by factory, using the
// spec's default objective weights.
func NewServer(factory BackendFactory) *Server {
	return NewServerWithWeights(factory, cpmodel.DefaultWeights())
}

// NewServerWithWeights is NewServer with operator-supplied objective
// weight overrides (internal/config.SolverConfig.Weights).
func NewServerWithWeights(factory BackendFactory, weights cpmodel.Weights) *Server {
	return &Server{
		factory:  factory,
		weights:  weights,
		sessions: make(map[string]*scheduler.Engine),
	}
}

// Mux builds the routed http.Handler for the scheduling API (spec
// §6): /v1/schedules/solve, /v1/schedules/alternative, /health.
func (s *Server) Mux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/schedules/solve", s.handleSolve)
	mux.HandleFunc("/v1/schedules/alternative", s.handleAlternative)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type solveRequest struct {
	Scenario         *model.BusinessScenario `json:"scenario"`
	Policy           *model.SchedulingPolicy `json:"policy,omitempty"`
	TimeLimitSeconds int                     `json:"time_limit_seconds,omitempty"`
}

type solveResponse struct {
	SessionID string                 `json:"session_id"`
	Schedule  map[string]interface{} `json:"schedule"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, apperrors.New(apperrors.CodeInvalidInput, "method not allowed"))
		return
	}

	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "malformed JSON: "+err.Error()))
		return
	}
	if req.Scenario == nil {
		writeError(w, apperrors.InvalidInput("scenario", "required"))
		return
	}
	policy := model.DefaultPolicy()
	if req.Policy != nil {
		policy = *req.Policy
	}
	timeLimit := timeLimitOrDefault(req.TimeLimitSeconds)

	engine, err := scheduler.NewEngineWithWeights(req.Scenario, s.factory, s.weights)
	if err != nil {
		writeError(w, err)
		return
	}

	schedule, err := engine.Solve(policy, timeLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	sessionID := uuid.New().String()
	s.mu.Lock()
	s.sessions[sessionID] = engine
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, solveResponse{SessionID: sessionID, Schedule: schedule.ToRecord()})
}

type alternativeRequest struct {
	SessionID        string                  `json:"session_id"`
	Policy           *model.SchedulingPolicy `json:"policy,omitempty"`
	TimeLimitSeconds int                     `json:"time_limit_seconds,omitempty"`
}

func (s *Server) handleAlternative(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, apperrors.New(apperrors.CodeInvalidInput, "method not allowed"))
		return
	}

	var req alternativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "malformed JSON: "+err.Error()))
		return
	}

	s.mu.Lock()
	engine, ok := s.sessions[req.SessionID]
	s.mu.Unlock()
	if !ok {
		writeError(w, apperrors.InvalidInput("session_id", "unknown or expired session"))
		return
	}

	policy := model.DefaultPolicy()
	if req.Policy != nil {
		policy = *req.Policy
	}
	timeLimit := timeLimitOrDefault(req.TimeLimitSeconds)

	schedule, err := engine.SolveAlternative(policy, timeLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, solveResponse{SessionID: req.SessionID, Schedule: schedule.ToRecord()})
}

func timeLimitOrDefault(seconds int) time.Duration {
	if seconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(seconds) * time.Second
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WithError(err).Msg("failed to encode response body")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := apperrors.GetHTTPStatus(err)
	code := apperrors.GetCode(err)
	writeJSON(w, status, map[string]interface{}{
		"error":   true,
		"code":    code,
		"message": err.Error(),
	})
}
