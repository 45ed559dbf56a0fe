package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/strataviz/strataviz/pkg/cache"
	"github.com/strataviz/strataviz/pkg/errors"
	"github.com/strataviz/strataviz/pkg/graph"
	"github.com/strataviz/strataviz/pkg/integrity"
	"github.com/strataviz/strataviz/pkg/layout"
	"github.com/strataviz/strataviz/pkg/pipeline"
)

// ===== Layout =====

type layoutRequest struct {
	Graph   *graph.Graph     `json:"graph"`
	Options pipeline.Options `json:"options"`
}

// handleLayout runs one pipeline pass for the posted graph. A pass that is
// superseded by a newer one answers 409 so the client simply drops it.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Graph == nil {
		writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidGraph, "request body must carry a graph"))
		return
	}

	result, err := s.runner.Execute(r.Context(), req.Graph, req.Options)
	if err != nil {
		if err == layout.ErrSuperseded {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scene":      result.Scene,
		"graph_hash": result.GraphHash,
		"cache_hit":  result.CacheInfo.SceneHit,
	})
}

// ===== Connection checking =====

type connectionCheckRequest struct {
	Graph *graph.Graph `json:"graph"`
	Edge  graph.Edge   `json:"edge"`
}

// handleConnectionCheck validates a prospective edge. The verdict is a
// value, so the response is 200 whether or not the edge is legal.
func (s *Server) handleConnectionCheck(w http.ResponseWriter, r *http.Request) {
	var req connectionCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Graph == nil {
		writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidGraph, "request body must carry a graph and an edge"))
		return
	}
	writeJSON(w, http.StatusOK, integrity.Check(req.Graph, req.Edge))
}

// ===== Graph CRUD =====

// requireStore answers 503 when no store is configured.
func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.st == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New(errors.ErrCodeStore, "no graph store configured"))
		return false
	}
	return true
}

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	infos, err := s.st.ListGraphs(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleCreateGraph(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	var g graph.Graph
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidGraph, "malformed graph body"))
		return
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if err := s.st.SaveGraph(r.Context(), &g); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, &g)
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	g, err := s.loadGraph(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// loadGraph reads through the cache: a hit skips the store, a miss populates
// the cache with the store's copy. Mutating handlers invalidate via
// invalidateGraph before answering.
func (s *Server) loadGraph(ctx context.Context, id string) (*graph.Graph, error) {
	key := s.runner.Keyer.GraphKey(id)
	if data, hit, err := s.runner.Cache.Get(ctx, key); err == nil && hit {
		if g, err := graph.UnmarshalGraph(data); err == nil {
			return g, nil
		}
	}
	g, err := s.st.LoadGraph(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := graph.MarshalGraph(g); err == nil {
		_ = s.runner.Cache.Set(ctx, key, data, cache.TTLGraph)
	}
	return g, nil
}

func (s *Server) invalidateGraph(ctx context.Context, id string) {
	_ = s.runner.Cache.Delete(ctx, s.runner.Keyer.GraphKey(id))
}

func (s *Server) handleUpdateGraph(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	var g graph.Graph
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidGraph, "malformed graph body"))
		return
	}
	g.ID = chi.URLParam(r, "id")
	if err := s.st.SaveGraph(r.Context(), &g); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.invalidateGraph(r.Context(), g.ID)
	writeJSON(w, http.StatusOK, &g)
}

func (s *Server) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.st.DeleteGraph(r.Context(), id); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.invalidateGraph(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

// ===== Edge creation =====

type addEdgeRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
	Layer  string `json:"layer,omitempty"`
}

type addEdgeResponse struct {
	Edge       *graph.Edge          `json:"edge,omitempty"`
	Connection integrity.Connection `json:"connection"`
}

// handleAddEdge validates a new edge against the stored graph and persists
// it only if it passes. An illegal edge answers 422 with the verdict so the
// editor can show the reason.
func (s *Server) handleAddEdge(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	var req addEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidGraph, "malformed edge body"))
		return
	}

	g, err := s.st.LoadGraph(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	candidate := graph.Edge{Source: req.Source, Target: req.Target, Label: req.Label, Layer: req.Layer}
	conn := integrity.Check(g, candidate)
	if !conn.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, addEdgeResponse{Connection: conn})
		return
	}

	candidate.ID = uuid.NewString()
	g.Edges = append(g.Edges, candidate)
	if err := s.st.SaveGraph(r.Context(), g); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.invalidateGraph(r.Context(), g.ID)
	writeJSON(w, http.StatusCreated, addEdgeResponse{Edge: &candidate, Connection: conn})
}
