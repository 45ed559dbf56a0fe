// Package server exposes the pipeline and graph store over HTTP. Routing is
// chi; handlers translate between JSON and the pkg types and hold no logic
// of their own.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/strataviz/strataviz/pkg/errors"
	"github.com/strataviz/strataviz/pkg/pipeline"
	"github.com/strataviz/strataviz/pkg/store"
)

// Server holds the shared dependencies of all handlers.
// st may be nil, in which case the graph CRUD endpoints answer 503.
type Server struct {
	runner *pipeline.Runner
	st     store.Store
	logger *log.Logger
}

// New creates a server. logger may be nil.
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, st: st, logger: logger}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/connections/check", s.handleConnectionCheck)

		r.Route("/graphs", func(r chi.Router) {
			r.Get("/", s.handleListGraphs)
			r.Post("/", s.handleCreateGraph)
			r.Get("/{id}", s.handleGetGraph)
			r.Put("/{id}", s.handleUpdateGraph)
			r.Delete("/{id}", s.handleDeleteGraph)
			r.Post("/{id}/edges", s.handleAddEdge)
		})
	})

	return r
}

// logRequests emits one structured log line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ===== JSON helpers =====

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  errors.GetCode(err),
	})
}

// statusFor maps error codes onto HTTP statuses. Unknown errors are 500.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidGraph, errors.ErrCodeInvalidOptions, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeSolverFailure:
		return http.StatusBadGateway
	case errors.ErrCodeSuperseded:
		return http.StatusConflict
	case errors.ErrCodeStore:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
