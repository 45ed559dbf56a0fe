package graph

import "slices"

// Index provides O(1) lookups over a Graph: id → node, parent → children,
// and layer id → layer. It is built once per layout pass so that tree
// construction never rescans the full node list per parent lookup.
//
// The Index holds pointers into the Graph it was built from; it must be
// rebuilt after the Graph is mutated.
type Index struct {
	nodes    map[string]*Node
	children map[string][]*Node
	layers   map[string]*Layer
}

// NewIndex builds an index over g. Children and roots are sorted by node ID
// for deterministic traversal order.
func NewIndex(g *Graph) *Index {
	ix := &Index{
		nodes:    make(map[string]*Node, len(g.Nodes)),
		children: make(map[string][]*Node),
		layers:   make(map[string]*Layer, len(g.Layers)),
	}
	for i := range g.Nodes {
		n := &g.Nodes[i]
		ix.nodes[n.ID] = n
	}
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if parent, ok := ix.resolveParent(n); ok {
			ix.children[parent.ID] = append(ix.children[parent.ID], n)
		}
	}
	for id := range ix.children {
		slices.SortFunc(ix.children[id], compareByID)
	}
	for i := range g.Layers {
		l := &g.Layers[i]
		ix.layers[l.ID] = l
	}
	return ix
}

// Node returns the node with the given ID.
func (ix *Index) Node(id string) (*Node, bool) {
	n, ok := ix.nodes[id]
	return n, ok
}

// Layer returns the layer with the given ID.
func (ix *Index) Layer(id string) (*Layer, bool) {
	l, ok := ix.layers[id]
	return l, ok
}

// Children returns the nodes directly contained by the partition node with
// the given ID, sorted by ID. Returns nil for leaves and unknown IDs.
func (ix *Index) Children(id string) []*Node { return ix.children[id] }

// Parent returns the node's resolvable containing partition. A BelongsTo
// reference that is absent, dangling, or points at a non-partition node
// yields (nil, false): the node is a root for layout purposes.
func (ix *Index) Parent(n *Node) (*Node, bool) {
	return ix.resolveParent(n)
}

// Roots returns every node without a resolvable parent, sorted by ID.
func (ix *Index) Roots() []*Node {
	var roots []*Node
	for _, n := range ix.nodes {
		if _, ok := ix.resolveParent(n); !ok {
			roots = append(roots, n)
		}
	}
	slices.SortFunc(roots, compareByID)
	return roots
}

func (ix *Index) resolveParent(n *Node) (*Node, bool) {
	if n.BelongsTo == "" {
		return nil, false
	}
	parent, ok := ix.nodes[n.BelongsTo]
	if !ok || !parent.IsPartition || parent.ID == n.ID {
		return nil, false
	}
	return parent, true
}

func compareByID(a, b *Node) int {
	if a.ID < b.ID {
		return -1
	}
	if a.ID > b.ID {
		return 1
	}
	return 0
}
