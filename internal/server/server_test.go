package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/loomviz/loom/pkg/cache"
	"github.com/loomviz/loom/pkg/graph"
	"github.com/loomviz/loom/pkg/layout"
	"github.com/loomviz/loom/pkg/layout/layered"
	"github.com/loomviz/loom/pkg/render"
	"github.com/loomviz/loom/pkg/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	reg := layout.NewRegistry(layout.WithFallback(layout.AlgoLayered))
	reg.Register(layout.Definition{
		Name:   layout.AlgoLayered,
		Loader: layout.Static(layered.New()),
	})
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := render.NewRunner(reg, nil, nil, logger)
	return NewServer(Config{}, runner, store.NewMemoryStore(), logger)
}

func testDoc(t *testing.T) graph.Doc {
	t.Helper()
	g := graph.New(graph.TopDown)
	for _, n := range []graph.Node{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}} {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.AddEdge(graph.Edge{From: "a", To: "b", ArrowEnd: "arrow"}); err != nil {
		t.Fatal(err)
	}
	return graph.ToDoc(g)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := doJSON(t, testServer(t), http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRenderEndpoint(t *testing.T) {
	s := testServer(t)
	doc := testDoc(t)

	w := doJSON(t, s, http.MethodPost, "/api/render", renderRequest{
		Doc:     &doc,
		Formats: []string{render.FormatJSON},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}

	var resp renderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Stats.Nodes != 2 || resp.Stats.Edges != 1 {
		t.Errorf("stats = %+v", resp.Stats)
	}
	if resp.GraphHash == "" {
		t.Error("missing graph hash")
	}
	if resp.Artifacts[render.FormatJSON] == "" {
		t.Error("missing json artifact")
	}
	// layout geometry must be present in the returned doc
	for _, n := range resp.Doc.Nodes {
		if n.Width == 0 || n.Height == 0 {
			t.Errorf("node %s has no geometry", n.ID)
		}
	}
}

func TestRenderEndpointValidation(t *testing.T) {
	s := testServer(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"MissingDoc", renderRequest{}, http.StatusBadRequest},
		{"NotJSON", "plaintext", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodPost, "/api/render", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body)
			}
		})
	}
}

func TestRenderDanglingEdgeRejected(t *testing.T) {
	s := testServer(t)
	doc := testDoc(t)
	doc.Edges[0].To = "ghost"

	w := doJSON(t, s, http.MethodPost, "/api/render", renderRequest{Doc: &doc})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", w.Code, w.Body)
	}
}

func TestDiagramRenderUsesScopedCache(t *testing.T) {
	reg := layout.NewRegistry(layout.WithFallback(layout.AlgoLayered))
	reg.Register(layout.Definition{
		Name:   layout.AlgoLayered,
		Loader: layout.Static(layered.New()),
	})
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := render.NewRunner(reg, c, nil, logger)
	s := NewServer(Config{}, runner, store.NewMemoryStore(), logger)

	doc := testDoc(t)

	// warm the shared namespace with an ad-hoc render
	for i := 0; i < 2; i++ {
		w := doJSON(t, s, http.MethodPost, "/api/render", renderRequest{Doc: &doc})
		if w.Code != http.StatusOK {
			t.Fatalf("render status = %d, body = %s", w.Code, w.Body)
		}
	}

	w := doJSON(t, s, http.MethodPost, "/api/diagrams/", diagramRequest{Name: "scoped", Doc: doc})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body)
	}
	var created store.Diagram
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	renderDiagram := func() renderResponse {
		req := httptest.NewRequest(http.MethodPost, "/api/diagrams/"+created.ID+"/render", nil)
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("diagram render status = %d, body = %s", rec.Code, rec.Body)
		}
		var resp renderResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		return resp
	}

	// the diagram's namespace starts cold even though the same document
	// is already cached for ad-hoc renders
	if first := renderDiagram(); first.CacheInfo.LayoutHit {
		t.Error("first diagram render should not see the shared cache entries")
	}
	if second := renderDiagram(); !second.CacheInfo.LayoutHit {
		t.Error("second diagram render should hit its own cache entry")
	}
}

func TestDiagramLifecycle(t *testing.T) {
	s := testServer(t)

	// create
	w := doJSON(t, s, http.MethodPost, "/api/diagrams/", diagramRequest{
		Name: "pipeline",
		Doc:  testDoc(t),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body)
	}
	var created store.Diagram
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("created diagram has no ID")
	}

	// fetch
	w = doJSON(t, s, http.MethodGet, "/api/diagrams/"+created.ID+"/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	// list
	w = doJSON(t, s, http.MethodGet, "/api/diagrams/", nil)
	var list []store.Diagram
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("list has %d diagrams, want 1", len(list))
	}

	// update
	w = doJSON(t, s, http.MethodPut, "/api/diagrams/"+created.ID+"/", diagramRequest{
		Name: "renamed",
		Doc:  testDoc(t),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("put status = %d, body = %s", w.Code, w.Body)
	}

	// render stored diagram without a body
	req := httptest.NewRequest(http.MethodPost, "/api/diagrams/"+created.ID+"/render", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("render status = %d, body = %s", rec.Code, rec.Body)
	}

	// delete
	w = doJSON(t, s, http.MethodDelete, "/api/diagrams/"+created.ID+"/", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/diagrams/"+created.ID+"/", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", w.Code)
	}
}

func TestUnknownAlgorithmUnprocessable(t *testing.T) {
	reg := layout.NewRegistry() // no engines, no fallback
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := NewServer(Config{}, render.NewRunner(reg, nil, nil, logger), nil, logger)

	doc := testDoc(t)
	w := doJSON(t, s, http.MethodPost, "/api/render", renderRequest{
		Doc:       &doc,
		Algorithm: "spiral",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (body %s)", w.Code, w.Body)
	}
}
