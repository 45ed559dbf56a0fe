package integrity

import (
	"strings"
	"testing"

	"github.com/strataviz/strataviz/pkg/graph"
)

func TestValidateConnection(t *testing.T) {
	tests := []struct {
		name   string
		source graph.NodeType
		target graph.NodeType
		valid  bool
	}{
		{"source to transform", graph.TypeDataSource, graph.TypeTransform, true},
		{"source to graph", graph.TypeDataSource, graph.TypeGraph, true},
		{"source to output", graph.TypeDataSource, graph.TypeOutput, true},
		{"transform chain", graph.TypeTransform, graph.TypeTransform, true},
		{"filter to merge", graph.TypeFilter, graph.TypeMerge, true},
		{"graph to projection", graph.TypeGraph, graph.TypeProjection, true},
		{"merge to tree artefact", graph.TypeMerge, graph.TypeTreeArtefact, true},

		{"into data source", graph.TypeTransform, graph.TypeDataSource, false},
		{"source to source", graph.TypeDataSource, graph.TypeDataSource, false},
		{"output originates", graph.TypeOutput, graph.TypeTransform, false},
		{"projection originates", graph.TypeProjection, graph.TypeOutput, false},
		{"graph artefact originates", graph.TypeGraphArtefact, graph.TypeGraphArtefact, false},
		{"copy to copy", graph.TypeCopy, graph.TypeCopy, false},
		{"unknown source", graph.NodeType("MysteryNode"), graph.TypeOutput, false},
		{"unknown target", graph.TypeTransform, graph.NodeType("MysteryNode"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := ValidateConnection(tt.source, tt.target)
			if conn.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v (reason: %s)", conn.Valid, tt.valid, conn.Reason)
			}
			if !tt.valid && conn.Reason == "" {
				t.Error("invalid connection must carry a reason")
			}
			if tt.valid && conn.Reason != "" {
				t.Errorf("valid connection should not carry a reason: %s", conn.Reason)
			}
		})
	}
}

func TestValidateConnectionDeterministic(t *testing.T) {
	a := ValidateConnection(graph.TypeTransform, graph.TypeFilter)
	b := ValidateConnection(graph.TypeTransform, graph.TypeFilter)
	if a != b {
		t.Errorf("same pair should produce identical results: %+v vs %+v", a, b)
	}
}

func TestValidateConnectionMessages(t *testing.T) {
	conn := ValidateConnection(graph.TypeOutput, graph.TypeTransform)
	if !strings.Contains(conn.Reason, "terminal") {
		t.Errorf("terminal-source rejection should name the pattern: %s", conn.Reason)
	}

	conn = ValidateConnection(graph.TypeTransform, graph.TypeDataSource)
	if !strings.Contains(conn.Reason, "data source") {
		t.Errorf("into-source rejection should name the pattern: %s", conn.Reason)
	}

	conn = ValidateConnection(graph.TypeCopy, graph.TypeCopy)
	if !strings.Contains(conn.Reason, "cannot connect") {
		t.Errorf("generic rejection message unexpected: %s", conn.Reason)
	}
}

func TestDataKindFor(t *testing.T) {
	if DataKindFor(graph.TypeGraph) != DataKindReference {
		t.Error("graph nodes should emit references")
	}
	for _, typ := range graph.NodeTypes {
		if typ == graph.TypeGraph {
			continue
		}
		if DataKindFor(typ) != DataKindData {
			t.Errorf("%s should emit data", typ)
		}
	}
}

func TestCheck(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "src", Type: graph.TypeDataSource},
			{ID: "t1", Type: graph.TypeTransform},
			{ID: "t2", Type: graph.TypeTransform},
			{ID: "out", Type: graph.TypeOutput},
		},
		Edges: []graph.Edge{
			{ID: "e1", Source: "src", Target: "t1"},
			{ID: "e2", Source: "t1", Target: "t2"},
		},
	}

	// Legal new edge.
	conn := Check(g, graph.Edge{Source: "t2", Target: "out"})
	if !conn.Valid {
		t.Errorf("t2→out should be valid: %s", conn.Reason)
	}
	if conn.WouldCreateCycle {
		t.Error("t2→out should not flag a cycle")
	}

	// Type violation short-circuits before cycle detection.
	conn = Check(g, graph.Edge{Source: "out", Target: "src"})
	if conn.Valid {
		t.Error("out→src should be invalid")
	}
	if conn.WouldCreateCycle {
		t.Error("type rejection must not set WouldCreateCycle")
	}

	// Cycle: t2 → t1 closes t1 → t2 → t1.
	conn = Check(g, graph.Edge{Source: "t2", Target: "t1"})
	if conn.Valid {
		t.Error("t2→t1 should be invalid")
	}
	if !conn.WouldCreateCycle {
		t.Error("t2→t1 rejection should set WouldCreateCycle")
	}
	if conn.Reason == "" {
		t.Error("cycle rejection must carry a reason")
	}

	// Unknown endpoints are invalid, not panics.
	conn = Check(g, graph.Edge{Source: "ghost", Target: "t1"})
	if conn.Valid {
		t.Error("edge from unknown node should be invalid")
	}
	conn = Check(g, graph.Edge{Source: "t1", Target: "ghost"})
	if conn.Valid {
		t.Error("edge to unknown node should be invalid")
	}
}

func TestCheckSelfLoop(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{{ID: "t1", Type: graph.TypeTransform}},
	}
	conn := Check(g, graph.Edge{Source: "t1", Target: "t1"})
	if conn.Valid {
		t.Error("self loop should be invalid")
	}
	if !conn.WouldCreateCycle {
		t.Error("self loop should be flagged as a cycle")
	}
}
