package integrity

import (
	"fmt"

	"github.com/strataviz/strataviz/pkg/graph"
)

// DataKind is the semantic kind of data an edge carries, derived from the
// source node's type alone. It is display/consumer metadata attached to the
// edge; it has no effect on validity.
type DataKind string

const (
	// DataKindData marks edges carrying concrete graph data.
	DataKindData DataKind = "data"
	// DataKindReference marks edges carrying a reference to a reusable
	// sub-graph rather than the data itself.
	DataKindReference DataKind = "reference"
)

// Connection is the result of validating a prospective edge.
// It is always returned by value; validation never fails with an error.
type Connection struct {
	Source           graph.NodeType `json:"source_type"`
	Target           graph.NodeType `json:"target_type"`
	DataKind         DataKind       `json:"data_kind,omitempty"`
	Valid            bool           `json:"is_valid"`
	Reason           string         `json:"error_message,omitempty"`
	WouldCreateCycle bool           `json:"would_create_cycle,omitempty"`
}

// allowedTargets is the adjacency table encoding the domain rules: each node
// type maps to the set of types it may connect to. Types absent from the
// table (or mapping to an empty set) have no outbound connections — unknown
// tags fail closed.
//
// The shape of the rules:
//   - DataSource is a pure source. It emits to structural, transform, merge
//     and output types, and no type lists it as a target.
//   - Graph, Transform, Filter, Merge and Copy form the interior of the
//     plan and may feed each other and every terminal type.
//   - Output and the artefact/export variants are terminal sinks.
var allowedTargets = map[graph.NodeType][]graph.NodeType{
	graph.TypeDataSource: {
		graph.TypeGraph, graph.TypeTransform, graph.TypeFilter,
		graph.TypeMerge, graph.TypeCopy, graph.TypeOutput,
	},
	graph.TypeGraph: {
		graph.TypeTransform, graph.TypeFilter, graph.TypeMerge, graph.TypeCopy,
		graph.TypeOutput, graph.TypeGraphArtefact, graph.TypeTreeArtefact, graph.TypeProjection,
	},
	graph.TypeTransform: {
		graph.TypeGraph, graph.TypeTransform, graph.TypeFilter, graph.TypeMerge, graph.TypeCopy,
		graph.TypeOutput, graph.TypeGraphArtefact, graph.TypeTreeArtefact, graph.TypeProjection,
	},
	graph.TypeFilter: {
		graph.TypeGraph, graph.TypeTransform, graph.TypeFilter, graph.TypeMerge, graph.TypeCopy,
		graph.TypeOutput, graph.TypeGraphArtefact, graph.TypeTreeArtefact, graph.TypeProjection,
	},
	graph.TypeMerge: {
		graph.TypeGraph, graph.TypeTransform, graph.TypeFilter, graph.TypeMerge, graph.TypeCopy,
		graph.TypeOutput, graph.TypeGraphArtefact, graph.TypeTreeArtefact, graph.TypeProjection,
	},
	graph.TypeCopy: {
		graph.TypeGraph, graph.TypeTransform, graph.TypeFilter, graph.TypeMerge,
		graph.TypeOutput, graph.TypeGraphArtefact, graph.TypeTreeArtefact, graph.TypeProjection,
	},
	// Terminal types: empty outbound sets.
	graph.TypeOutput:        {},
	graph.TypeGraphArtefact: {},
	graph.TypeTreeArtefact:  {},
	graph.TypeProjection:    {},
}

// terminalTypes are the types with no outbound connections, kept explicit
// so misuse messages can name the pattern instead of the generic fallback.
var terminalTypes = map[graph.NodeType]bool{
	graph.TypeOutput:        true,
	graph.TypeGraphArtefact: true,
	graph.TypeTreeArtefact:  true,
	graph.TypeProjection:    true,
}

// DataKindFor returns the kind of data a node of the given type emits.
// Graph nodes emit references to reusable sub-graphs; everything else emits
// concrete data.
func DataKindFor(source graph.NodeType) DataKind {
	if source == graph.TypeGraph {
		return DataKindReference
	}
	return DataKindData
}

// ValidateConnection decides whether an edge from source to target is legal
// under the type rules. Deterministic and side-effect free: the same pair
// always produces the same result.
//
// The two common misuse patterns get specific messages: originating an edge
// from a terminal type, and drawing an edge into a pure source. Everything
// else invalid gets the generic message.
func ValidateConnection(source, target graph.NodeType) Connection {
	conn := Connection{
		Source:   source,
		Target:   target,
		DataKind: DataKindFor(source),
	}

	for _, t := range allowedTargets[source] {
		if t == target {
			conn.Valid = true
			return conn
		}
	}

	switch {
	case terminalTypes[source]:
		conn.Reason = fmt.Sprintf("%s is a terminal node and cannot originate connections", source)
	case target == graph.TypeDataSource:
		conn.Reason = fmt.Sprintf("%s is a data source and cannot receive connections", target)
	default:
		conn.Reason = fmt.Sprintf("cannot connect %s to %s", source, target)
	}
	return conn
}

// Check validates a candidate edge against the full graph: the type rules
// first, then — only if the types are compatible — cycle detection over the
// existing edge set plus the candidate. A cycle-inducing edge is reported
// with WouldCreateCycle set so the editor can phrase the rejection
// differently from a type mismatch.
func Check(g *graph.Graph, candidate graph.Edge) Connection {
	ix := graph.NewIndex(g)

	src, ok := ix.Node(candidate.Source)
	if !ok {
		return Connection{Reason: fmt.Sprintf("source node %q does not exist", candidate.Source)}
	}
	dst, ok := ix.Node(candidate.Target)
	if !ok {
		return Connection{Source: src.Type, Reason: fmt.Sprintf("target node %q does not exist", candidate.Target)}
	}

	conn := ValidateConnection(src.Type, dst.Type)
	if !conn.Valid {
		return conn
	}

	if WouldCreateCycle(g.Nodes, g.Edges, candidate) {
		conn.Valid = false
		conn.WouldCreateCycle = true
		conn.Reason = "connection would create a cycle"
	}
	return conn
}
