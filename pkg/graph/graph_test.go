package graph

import (
	"path/filepath"
	"testing"
)

func testGraph() *Graph {
	return &Graph{
		ID:   "plan-1",
		Name: "test plan",
		Nodes: []Node{
			{ID: "p", Label: "Pipeline", IsPartition: true, Layer: "infra"},
			{ID: "src", Type: TypeDataSource, BelongsTo: "p"},
			{ID: "t", Type: TypeTransform, BelongsTo: "p"},
			{ID: "out", Type: TypeOutput},
		},
		Edges: []Edge{
			{ID: "e1", Source: "src", Target: "t"},
			{ID: "e2", Source: "t", Target: "out"},
		},
		Layers: []Layer{
			{ID: "infra", Name: "Infrastructure", Background: "#ccccff"},
		},
	}
}

func TestDisplayLabel(t *testing.T) {
	n := Node{ID: "n1", Label: "Nice Name"}
	if n.DisplayLabel() != "Nice Name" {
		t.Errorf("DisplayLabel = %q", n.DisplayLabel())
	}
	n.Label = ""
	if n.DisplayLabel() != "n1" {
		t.Errorf("DisplayLabel should fall back to ID, got %q", n.DisplayLabel())
	}
}

func TestGraphFileRoundTrip(t *testing.T) {
	g := testGraph()
	path := filepath.Join(t.TempDir(), "plan.json")

	if err := WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile error: %v", err)
	}
	got, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile error: %v", err)
	}

	if got.ID != g.ID || got.Name != g.Name {
		t.Errorf("metadata = %s/%s, want %s/%s", got.ID, got.Name, g.ID, g.Name)
	}
	if got.NodeCount() != g.NodeCount() || got.EdgeCount() != g.EdgeCount() {
		t.Errorf("counts = %d/%d, want %d/%d", got.NodeCount(), got.EdgeCount(), g.NodeCount(), g.EdgeCount())
	}
	if got.Nodes[1].Type != TypeDataSource {
		t.Errorf("node type lost in round trip: %v", got.Nodes[1].Type)
	}
	if got.Layers[0].Background != "#ccccff" {
		t.Errorf("layer color lost in round trip: %v", got.Layers[0].Background)
	}
}

func TestReadGraphFileMissing(t *testing.T) {
	if _, err := ReadGraphFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("ReadGraphFile should fail for a missing file")
	}
}
