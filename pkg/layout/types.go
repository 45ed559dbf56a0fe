// Package layout computes positions for nested plan graphs.
//
// The geometry itself is delegated to a Solver — the production solver shells
// out to Graphviz through goccy/go-graphviz — while this package owns the
// tree contract handed to the solver and the concurrency rules around it:
// layout runs asynchronously and only the most recently requested pass may
// publish its result.
package layout

import "context"

// Direction is the main flow axis of a layout pass.
type Direction string

const (
	// DirectionDown ranks nodes top to bottom.
	DirectionDown Direction = "DOWN"
	// DirectionRight ranks nodes left to right.
	DirectionRight Direction = "RIGHT"
)

// Spacing bounds. Values outside this range produce layouts that are either
// unreadable or mostly whitespace, so Normalize clamps rather than erroring.
const (
	MinSpacing = 20.0
	MaxSpacing = 200.0
)

// Default node box, in pixels. Leaves carry no intrinsic size; the solver
// sizes partitions to fit their children.
const (
	DefaultNodeWidth  = 120.0
	DefaultNodeHeight = 48.0
)

// Options configures a layout pass.
type Options struct {
	Direction     Direction `json:"direction"`
	NodeSpacing   float64   `json:"node_spacing"`
	RankSpacing   float64   `json:"rank_spacing"`
	MinEdgeLength float64   `json:"min_edge_length"`
	NodeWidth     float64   `json:"node_width"`
	NodeHeight    float64   `json:"node_height"`
}

// DefaultOptions returns the options used when the caller specifies nothing.
func DefaultOptions() Options {
	return Options{
		Direction:     DirectionDown,
		NodeSpacing:   40,
		RankSpacing:   60,
		MinEdgeLength: 20,
		NodeWidth:     DefaultNodeWidth,
		NodeHeight:    DefaultNodeHeight,
	}
}

// Normalize fills zero values with defaults and clamps spacings into the
// supported range. It never fails: a layout pass with odd spacing beats no
// layout pass at all.
func (o Options) Normalize() Options {
	def := DefaultOptions()
	if o.Direction != DirectionDown && o.Direction != DirectionRight {
		o.Direction = def.Direction
	}
	if o.NodeSpacing == 0 {
		o.NodeSpacing = def.NodeSpacing
	}
	if o.RankSpacing == 0 {
		o.RankSpacing = def.RankSpacing
	}
	if o.MinEdgeLength == 0 {
		o.MinEdgeLength = def.MinEdgeLength
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = def.NodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = def.NodeHeight
	}
	o.NodeSpacing = clamp(o.NodeSpacing, MinSpacing, MaxSpacing)
	o.RankSpacing = clamp(o.RankSpacing, MinSpacing, MaxSpacing)
	o.MinEdgeLength = clamp(o.MinEdgeLength, MinSpacing, MaxSpacing)
	return o
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TreeEdge is an edge between two nodes of the same nesting level, or between
// two top-level containers when the endpoints live in different partitions.
type TreeEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Tree is the compound-node contract handed to the solver: every node the
// solver positions, with containment expressed by nesting. The solver fills
// in X, Y, Width and Height; for containers the size is derived from the
// children, for leaves it is the configured node box.
//
// Positions are absolute within the root coordinate space. Consumers needing
// parent-relative coordinates (the scene materializer does) convert on read.
type Tree struct {
	ID       string       `json:"id"`
	X        float64      `json:"x"`
	Y        float64      `json:"y"`
	Width    float64      `json:"width"`
	Height   float64      `json:"height"`
	Children []*Tree      `json:"children,omitempty"`
	Edges    []TreeEdge   `json:"edges,omitempty"`
	Spacing  LevelSpacing `json:"spacing"`
}

// LevelSpacing is the per-level layout density recorded on each container.
type LevelSpacing struct {
	NodeSpacing float64   `json:"node_spacing"`
	RankSpacing float64   `json:"rank_spacing"`
	Direction   Direction `json:"direction"`
}

// IsContainer reports whether the tree node nests children.
func (t *Tree) IsContainer() bool { return len(t.Children) > 0 }

// Walk visits t and every descendant in depth-first order.
func (t *Tree) Walk(fn func(*Tree)) {
	fn(t)
	for _, c := range t.Children {
		c.Walk(fn)
	}
}

// Clone returns a deep copy of the tree. Solvers operate on a clone so a
// failed pass never mutates the caller's tree.
func (t *Tree) Clone() *Tree {
	cp := *t
	cp.Edges = append([]TreeEdge(nil), t.Edges...)
	cp.Children = make([]*Tree, len(t.Children))
	for i, c := range t.Children {
		cp.Children[i] = c.Clone()
	}
	return &cp
}

// Solver computes geometry for a compound tree. Implementations must not
// mutate the input tree and must honor ctx cancellation.
type Solver interface {
	Solve(ctx context.Context, root *Tree, opts Options) (*Tree, error)
}
