// Package web serves the timeline engine as a stateless JSON API.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/metalagman/timeline/internal/document"
	"github.com/metalagman/timeline/internal/planner"
	"github.com/metalagman/timeline/internal/reducer"
	"github.com/metalagman/timeline/internal/relation"
	"github.com/metalagman/timeline/internal/task"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 8 << 20

// Options configures a Server.
type Options struct {
	Planner *planner.Planner
	Reducer *reducer.Reducer
	Logger  zerolog.Logger
	// Mode and PreSteps apply to range requests that leave them out.
	Mode     planner.ViewMode
	PreSteps int
	// MCP, when set, is mounted at /mcp.
	MCP http.Handler
}

// Server provides the API handlers. Every request carries its own
// collection, so handlers share no mutable state.
type Server struct {
	planner  *planner.Planner
	reducer  *reducer.Reducer
	log      zerolog.Logger
	mode     planner.ViewMode
	preSteps int
	mcp      http.Handler
}

// NewServer creates a new API server.
func NewServer(opts Options) (*Server, error) {
	if opts.Mode == "" {
		opts.Mode = planner.Day
	}
	if !opts.Mode.Valid() {
		return nil, fmt.Errorf("%w: %q", planner.ErrUnknownViewMode, opts.Mode)
	}
	if opts.PreSteps < 0 {
		return nil, planner.ErrNegativePreSteps
	}
	if opts.Planner == nil {
		opts.Planner = planner.New(time.Sunday)
	}
	if opts.Reducer == nil {
		opts.Reducer = reducer.New()
	}
	return &Server{
		planner:  opts.Planner,
		reducer:  opts.Reducer,
		log:      opts.Logger,
		mode:     opts.Mode,
		preSteps: opts.PreSteps,
		mcp:      opts.MCP,
	}, nil
}

// Routes returns the router for the API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /v1/range", s.handleRange)
	mux.HandleFunc("POST /v1/reduce", s.handleReduce)
	mux.HandleFunc("POST /v1/audit", s.handleAudit)
	if s.mcp != nil {
		mux.Handle("/mcp", s.mcp)
	}
	return s.withLogging(mux)
}

type rangeRequest struct {
	Tasks    json.RawMessage `json:"tasks"`
	ViewMode string          `json:"view_mode,omitempty"`
	PreSteps *int            `json:"pre_steps,omitempty"`
	Columns  bool            `json:"columns,omitempty"`
}

type rangeResponse struct {
	planner.Range
	ViewMode planner.ViewMode `json:"view_mode"`
	Columns  []time.Time      `json:"columns,omitempty"`
}

type reduceRequest struct {
	Tasks  json.RawMessage   `json:"tasks"`
	Intent document.Envelope `json:"intent"`
}

type reduceResponse struct {
	Tasks     []task.Task            `json:"tasks"`
	Intent    document.WrappedIntent `json:"intent"`
	Changed   bool                   `json:"changed"`
	Rejection string                 `json:"rejection,omitempty"`
}

type auditRequest struct {
	Tasks json.RawMessage `json:"tasks"`
}

type auditResponse struct {
	Issues []task.Issue `json:"issues"`
	// Cycle is a dependency cycle, if the collection has one.
	Cycle []string `json:"dependency_cycle,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	var req rangeRequest
	if !s.decode(w, r, &req) {
		return
	}
	tasks, ok := s.tasks(w, req.Tasks)
	if !ok {
		return
	}

	mode := s.mode
	if req.ViewMode != "" {
		m, err := planner.ParseViewMode(req.ViewMode)
		if err != nil {
			s.fail(w, http.StatusUnprocessableEntity, err)
			return
		}
		mode = m
	}
	preSteps := s.preSteps
	if req.PreSteps != nil {
		preSteps = *req.PreSteps
	}

	rng, err := s.planner.ComputeRange(tasks, mode, preSteps)
	if err != nil {
		s.fail(w, http.StatusUnprocessableEntity, err)
		return
	}
	resp := rangeResponse{Range: rng, ViewMode: mode}
	if req.Columns {
		resp.Columns = rng.Columns(mode)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReduce(w http.ResponseWriter, r *http.Request) {
	var req reduceRequest
	if !s.decode(w, r, &req) {
		return
	}
	tasks, ok := s.tasks(w, req.Tasks)
	if !ok {
		return
	}
	intent, err := req.Intent.Intent()
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, reducer.ErrUnknownIntent) {
			status = http.StatusUnprocessableEntity
		}
		s.fail(w, status, err)
		return
	}

	res, err := s.reducer.Reduce(tasks, intent)
	if err != nil {
		s.fail(w, http.StatusUnprocessableEntity, err)
		return
	}
	out := res.Tasks
	if out == nil {
		out = []task.Task{}
	}
	writeJSON(w, http.StatusOK, reduceResponse{
		Tasks:     out,
		Intent:    document.Wrap(res.Intent),
		Changed:   res.Changed,
		Rejection: res.Rejection,
	})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	var req auditRequest
	if !s.decode(w, r, &req) {
		return
	}
	tasks, ok := s.tasks(w, req.Tasks)
	if !ok {
		return
	}
	issues := task.Audit(tasks)
	if issues == nil {
		issues = []task.Issue{}
	}
	writeJSON(w, http.StatusOK, auditResponse{
		Issues: issues,
		Cycle:  relation.DetectCycle(tasks),
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return false
	}
	return true
}

// tasks validates the raw collection the same way document files are read.
func (s *Server) tasks(w http.ResponseWriter, raw json.RawMessage) ([]task.Task, bool) {
	if len(raw) == 0 {
		return nil, true
	}
	tasks, err := document.DecodeTasks(raw)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return nil, false
	}
	return tasks, true
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	s.log.Debug().Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}
