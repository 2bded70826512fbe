package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/loomviz/loom/pkg/cache"
	"github.com/loomviz/loom/pkg/errors"
	"github.com/loomviz/loom/pkg/graph"
	"github.com/loomviz/loom/pkg/render"
	"github.com/loomviz/loom/pkg/store"
)

const maxBodyBytes = 10 << 20

// renderRequest is the body of POST /api/render and the render options
// of POST /api/diagrams/{id}/render.
type renderRequest struct {
	Doc       *graph.Doc      `json:"doc,omitempty"`
	Algorithm string          `json:"algorithm,omitempty"`
	Direction graph.Direction `json:"direction,omitempty"`
	Formats   []string        `json:"formats,omitempty"`
	Curve     string          `json:"curve,omitempty"`
	Refresh   bool            `json:"refresh,omitempty"`
}

// renderResponse returns layout geometry plus text artifacts. Binary
// formats are reported by size only; clients fetch those separately.
type renderResponse struct {
	GraphHash string            `json:"graph_hash"`
	Doc       graph.Doc         `json:"doc"`
	Artifacts map[string]string `json:"artifacts,omitempty"`
	Stats     renderStats       `json:"stats"`
	CacheInfo render.CacheInfo  `json:"cache_info"`
}

type renderStats struct {
	Nodes         int    `json:"nodes"`
	Edges         int    `json:"edges"`
	ReversedEdges int    `json:"reversed_edges"`
	LayoutTime    string `json:"layout_time"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Doc == nil {
		writeError(w, errors.New(errors.ErrCodeInvalidOptions, "doc is required"))
		return
	}
	s.runRender(w, r, s.runner, req, *req.Doc)
}

func (s *Server) runRender(w http.ResponseWriter, r *http.Request, runner *render.Runner, req renderRequest, doc graph.Doc) {
	g, err := graph.FromDoc(doc)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidGraph, err, "invalid document"))
		return
	}

	result, err := runner.Execute(r.Context(), render.Options{
		Graph:     g,
		Algorithm: req.Algorithm,
		Direction: req.Direction,
		Formats:   req.Formats,
		Curve:     req.Curve,
		Refresh:   req.Refresh,
		Logger:    s.logger,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := renderResponse{
		GraphHash: result.GraphHash,
		Doc:       graph.ToDoc(result.Graph),
		Artifacts: map[string]string{},
		Stats: renderStats{
			Nodes:         result.Stats.NodeCount,
			Edges:         result.Stats.EdgeCount,
			ReversedEdges: result.Stats.ReversedEdges,
			LayoutTime:    result.Stats.LayoutTime.String(),
		},
		CacheInfo: result.CacheInfo,
	}
	for format, data := range result.Artifacts {
		switch format {
		case render.FormatJSON, render.FormatSVG, render.FormatDOT:
			resp.Artifacts[format] = string(data)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type diagramRequest struct {
	Name string    `json:"name"`
	Doc  graph.Doc `json:"doc"`
}

func (s *Server) handleCreateDiagram(w http.ResponseWriter, r *http.Request) {
	var req diagramRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := graph.FromDoc(req.Doc); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidGraph, err, "invalid document"))
		return
	}

	now := time.Now().UTC()
	d := store.Diagram{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Doc:       req.Doc,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Put(r.Context(), d); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleListDiagrams(w http.ResponseWriter, r *http.Request) {
	diagrams, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, diagrams)
}

func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handlePutDiagram(w http.ResponseWriter, r *http.Request) {
	var req diagramRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := graph.FromDoc(req.Doc); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidGraph, err, "invalid document"))
		return
	}

	id := chi.URLParam(r, "id")
	existing, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	existing.Name = req.Name
	existing.Doc = req.Doc
	existing.UpdatedAt = time.Now().UTC()
	if err := s.store.Put(r.Context(), existing); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (s *Server) handleDeleteDiagram(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenderDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	// render options are optional for stored diagrams
	var req renderRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	// stored diagrams get their own cache namespace, so edits to one
	// diagram never collide with ad-hoc renders of the same document
	runner := s.runner.WithKeyer(cache.NewScopedKeyer(s.runner.Keyer, "diagram:"+d.ID))
	s.runRender(w, r, runner, req, d.Doc)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer io.Copy(io.Discard, body)

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps error codes onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidGeometry, errors.ErrCodeInvalidGraph, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidOptions, errors.ErrCodeDanglingEdge, errors.ErrCodeDanglingParent,
		errors.ErrCodeCyclicParentage:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeAlgorithmUnavailable, errors.ErrCodeUnsupported:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]string{
		"code":  string(errors.GetCode(err)),
		"error": err.Error(),
	})
}
