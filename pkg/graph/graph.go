package graph

import (
	"encoding/json"
	"os"

	"github.com/strataviz/strataviz/pkg/errors"
)

// =============================================================================
// Node Types - Single Source of Truth
// =============================================================================

// NodeType tags a node with its role in the plan. The set is closed: the
// connection rules in pkg/integrity are keyed on these tags, and a tag
// outside this set has no outbound connections.
type NodeType string

const (
	// TypeDataSource produces concrete data. Pure source: never receives edges.
	TypeDataSource NodeType = "DataSourceNode"
	// TypeGraph is a structural graph reference. It is the one type that
	// emits references to reusable sub-graphs rather than concrete data.
	TypeGraph NodeType = "GraphNode"
	// TypeTransform rewrites the data flowing through it.
	TypeTransform NodeType = "TransformNode"
	// TypeFilter removes data flowing through it.
	TypeFilter NodeType = "FilterNode"
	// TypeMerge combines multiple inputs into one output.
	TypeMerge NodeType = "MergeNode"
	// TypeCopy duplicates its input.
	TypeCopy NodeType = "CopyNode"
	// TypeOutput is a terminal sink.
	TypeOutput NodeType = "OutputNode"

	// Artefact/export variants. All terminal.
	TypeGraphArtefact NodeType = "GraphArtefactNode"
	TypeTreeArtefact  NodeType = "TreeArtefactNode"
	TypeProjection    NodeType = "ProjectionNode"
)

// NodeTypes lists every known node type.
// Used by tests and the interactive inspector to enumerate the closed set.
var NodeTypes = []NodeType{
	TypeDataSource,
	TypeGraph,
	TypeTransform,
	TypeFilter,
	TypeMerge,
	TypeCopy,
	TypeOutput,
	TypeGraphArtefact,
	TypeTreeArtefact,
	TypeProjection,
}

// =============================================================================
// Model - Nodes, Edges, Layers
// =============================================================================

// Node is a vertex in the plan graph.
//
// BelongsTo points at the containing partition node, if any. A node whose
// BelongsTo does not resolve to an existing partition node is treated as a
// root, never as an error: during drag operations a child is briefly
// detached from its parent and the graph must stay renderable.
type Node struct {
	ID          string   `json:"id" bson:"id"`
	Label       string   `json:"label,omitempty" bson:"label,omitempty"`
	Layer       string   `json:"layer,omitempty" bson:"layer,omitempty"` // styling group, not structural
	Weight      float64  `json:"weight,omitempty" bson:"weight,omitempty"`
	IsPartition bool     `json:"is_partition,omitempty" bson:"is_partition,omitempty"`
	BelongsTo   string   `json:"belongs_to,omitempty" bson:"belongs_to,omitempty"`
	Type        NodeType `json:"type,omitempty" bson:"type,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed data-flow connection between two nodes.
// The edge set must stay acyclic at all times; this is enforced before an
// edge is ever added (pkg/integrity), not corrected after.
type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
	Layer  string `json:"layer,omitempty" bson:"layer,omitempty"`
	Label  string `json:"label,omitempty" bson:"label,omitempty"`
}

// Layer is a purely cosmetic grouping tag shared by nodes and edges.
// It resolves display colors and has no bearing on structural validity.
type Layer struct {
	ID         string `json:"layer_id" bson:"layer_id"`
	Name       string `json:"name,omitempty" bson:"name,omitempty"`
	Background string `json:"background_color,omitempty" bson:"background_color,omitempty"`
	Border     string `json:"border_color,omitempty" bson:"border_color,omitempty"`
	Text       string `json:"text_color,omitempty" bson:"text_color,omitempty"`
}

// Graph is the canonical serialization format for plan graphs.
// It is owned by the persistence/collaboration layer and mutated only
// through edit actions that pass the integrity checks first.
type Graph struct {
	ID     string  `json:"id,omitempty" bson:"id,omitempty"`
	Name   string  `json:"name,omitempty" bson:"name,omitempty"`
	Nodes  []Node  `json:"nodes" bson:"nodes"`
	Edges  []Edge  `json:"edges" bson:"edges"`
	Layers []Layer `json:"layers,omitempty" bson:"layers,omitempty"`
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// =============================================================================
// Serialization
// =============================================================================

// MarshalGraph serializes a Graph to pretty-printed JSON bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// UnmarshalGraph deserializes JSON bytes into a Graph.
func UnmarshalGraph(data []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal graph")
	}
	return &g, nil
}

// ReadGraphFile reads a Graph from a JSON file.
func ReadGraphFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph file %s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s", path)
	}
	return UnmarshalGraph(data)
}

// WriteGraphFile writes a Graph to a JSON file.
func WriteGraphFile(g *Graph, path string) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
