package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/strataviz/strataviz/pkg/graph"
	"github.com/strataviz/strataviz/pkg/integrity"
	"github.com/strataviz/strataviz/pkg/layout"
	"github.com/strataviz/strataviz/pkg/pipeline"
	"github.com/strataviz/strataviz/pkg/store"
)

// stackSolver assigns trivial vertical geometry so server tests run without
// Graphviz.
type stackSolver struct{}

func (stackSolver) Solve(ctx context.Context, root *layout.Tree, opts layout.Options) (*layout.Tree, error) {
	solved := root.Clone()
	var y float64
	var place func(t *layout.Tree)
	place = func(t *layout.Tree) {
		for _, c := range t.Children {
			c.X, c.Y = 0, y
			if c.Width == 0 {
				c.Width, c.Height = 200, 100
			}
			y += c.Height
			place(c)
		}
	}
	place(solved)
	solved.Width, solved.Height = 400, y
	return solved, nil
}

func newTestServer(t *testing.T, st store.Store) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger, layout.NewEngine(stackSolver{}, logger))
	srv := httptest.NewServer(New(runner, st, logger).Router())
	t.Cleanup(srv.Close)
	return srv
}

func testGraph() *graph.Graph {
	return &graph.Graph{
		ID: "plan-1",
		Nodes: []graph.Node{
			{ID: "src", Type: graph.TypeDataSource},
			{ID: "t", Type: graph.TypeTransform},
			{ID: "out", Type: graph.TypeOutput},
		},
		Edges: []graph.Edge{
			{ID: "e1", Source: "src", Target: "t"},
		},
	}
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestLayoutEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/api/layout", map[string]any{
		"graph": testGraph(),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["scene"] == nil {
		t.Error("response should carry a scene")
	}
	if body["graph_hash"] == "" {
		t.Error("response should carry the graph hash")
	}
}

func TestLayoutEndpointRejectsMissingGraph(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := postJSON(t, srv.URL+"/api/layout", map[string]any{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestConnectionCheckEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	// Valid edge: still 200, verdict in the body.
	resp := postJSON(t, srv.URL+"/api/connections/check", map[string]any{
		"graph": testGraph(),
		"edge":  map[string]string{"source": "t", "target": "out"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	conn := decode[integrity.Connection](t, resp)
	if !conn.Valid {
		t.Errorf("t→out should be valid: %s", conn.Reason)
	}

	// Illegal edge: also 200.
	resp = postJSON(t, srv.URL+"/api/connections/check", map[string]any{
		"graph": testGraph(),
		"edge":  map[string]string{"source": "out", "target": "src"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	conn = decode[integrity.Connection](t, resp)
	if conn.Valid {
		t.Error("out→src should be invalid")
	}
	if conn.Reason == "" {
		t.Error("invalid verdict should carry a reason")
	}
}

func TestGraphCRUDWithoutStore(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/api/graphs/")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestGraphCRUD(t *testing.T) {
	st := store.NewMemoryStore()
	srv := newTestServer(t, st)

	// Create without an ID: one is assigned.
	resp := postJSON(t, srv.URL+"/api/graphs/", &graph.Graph{Name: "fresh"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	created := decode[graph.Graph](t, resp)
	if created.ID == "" {
		t.Fatal("created graph should get an ID")
	}

	// Get it back.
	resp, err := http.Get(fmt.Sprintf("%s/api/graphs/%s", srv.URL, created.ID))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	got := decode[graph.Graph](t, resp)
	if got.Name != "fresh" {
		t.Errorf("name = %q, want fresh", got.Name)
	}

	// List contains it.
	resp, err = http.Get(srv.URL + "/api/graphs/")
	if err != nil {
		t.Fatal(err)
	}
	infos := decode[[]store.GraphInfo](t, resp)
	if len(infos) != 1 || infos[0].ID != created.ID {
		t.Errorf("list = %+v", infos)
	}

	// Unknown ID is 404.
	resp, err = http.Get(srv.URL + "/api/graphs/nope")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get unknown status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	// Delete.
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/graphs/%s", srv.URL, created.ID), nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAddEdgeEndpoint(t *testing.T) {
	st := store.NewMemoryStore()
	srv := newTestServer(t, st)
	if err := st.SaveGraph(context.Background(), testGraph()); err != nil {
		t.Fatal(err)
	}
	url := srv.URL + "/api/graphs/plan-1/edges"

	// Legal edge is persisted with a fresh ID.
	resp := postJSON(t, url, map[string]string{"source": "t", "target": "out"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	body := decode[addEdgeResponse](t, resp)
	if body.Edge == nil || body.Edge.ID == "" {
		t.Fatal("persisted edge should carry an ID")
	}
	g, err := st.LoadGraph(context.Background(), "plan-1")
	if err != nil {
		t.Fatal(err)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("stored edges = %d, want 2", g.EdgeCount())
	}

	// Illegal edge: 422, nothing persisted.
	resp = postJSON(t, url, map[string]string{"source": "out", "target": "src"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	body = decode[addEdgeResponse](t, resp)
	if body.Connection.Valid {
		t.Error("verdict should be invalid")
	}
	g, _ = st.LoadGraph(context.Background(), "plan-1")
	if g.EdgeCount() != 2 {
		t.Errorf("illegal edge persisted: %d", g.EdgeCount())
	}

	// Cycle-inducing edge: 422 with the cycle flag.
	resp = postJSON(t, url, map[string]string{"source": "t", "target": "t"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	body = decode[addEdgeResponse](t, resp)
	if body.Connection.Valid {
		t.Error("cycle edge should be invalid")
	}
	if !body.Connection.WouldCreateCycle {
		t.Error("cycle rejection should set would_create_cycle")
	}
}
