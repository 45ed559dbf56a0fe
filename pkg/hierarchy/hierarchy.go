// Package hierarchy converts the flat, parent-referencing node collection
// into the nested forest consumed by the layout adapter.
//
// Roots are the nodes without a resolvable BelongsTo. A dangling parent
// reference promotes the node to root instead of erroring: that state is
// transiently valid while a child is detached mid-drag, and the layout must
// keep working through it.
package hierarchy

import "github.com/strataviz/strataviz/pkg/graph"

// Direction of flow within one nesting level.
const (
	DirectionDown  = "DOWN"
	DirectionRight = "RIGHT"
)

// LevelConfig carries the layout density for one nesting level. Every
// partition subtree gets its own copy so nested regions can, in principle,
// be laid out denser or sparser than the root.
type LevelConfig struct {
	NodeSpacing float64 `json:"node_spacing"`
	RankSpacing float64 `json:"rank_spacing"`
	Direction   string  `json:"direction"`
}

// TreeNode is one node of the nested layout tree. Partition nodes carry
// their children and the edges local to that nesting level; leaves carry
// neither.
type TreeNode struct {
	Node     graph.Node
	Depth    int
	Children []*TreeNode
	Edges    []graph.Edge
	Config   LevelConfig
}

// IsPartition reports whether this tree node nests children.
func (t *TreeNode) IsPartition() bool { return t.Node.IsPartition }

// Forest is the nested form of a whole graph: one root per node without a
// resolvable parent, plus the edges attached at the root level.
//
// An edge is attached at the deepest level that contains both endpoints as
// direct children; edges crossing partition boundaries are not pushed down —
// they stay at the root so the solver treats them as connections between
// compound nodes.
type Forest struct {
	Roots []*TreeNode
	Edges []graph.Edge
}

// Build constructs the forest for g. cfg is applied to the root level and
// propagated to every partition subtree.
func Build(g *graph.Graph, cfg LevelConfig) *Forest {
	ix := graph.NewIndex(g)

	// Partition edges by owning level: the shared parent's ID, or "" for
	// root-level and cross-partition edges.
	local := make(map[string][]graph.Edge)
	for _, e := range g.Edges {
		local[edgeLevel(ix, e)] = append(local[edgeLevel(ix, e)], e)
	}

	f := &Forest{Edges: local[""]}
	seen := make(map[string]bool, len(g.Nodes))
	for _, root := range ix.Roots() {
		f.Roots = append(f.Roots, buildSubtree(ix, root, 0, cfg, local, seen))
	}
	return f
}

func buildSubtree(ix *graph.Index, n *graph.Node, depth int, cfg LevelConfig, local map[string][]graph.Edge, seen map[string]bool) *TreeNode {
	t := &TreeNode{Node: *n, Depth: depth, Config: cfg}
	if !n.IsPartition || seen[n.ID] {
		return t
	}
	seen[n.ID] = true

	t.Edges = local[n.ID]
	for _, child := range ix.Children(n.ID) {
		t.Children = append(t.Children, buildSubtree(ix, child, depth+1, cfg, local, seen))
	}
	return t
}

// edgeLevel returns the ID of the partition owning the edge, or "" when the
// endpoints do not share a parent (or share none).
func edgeLevel(ix *graph.Index, e graph.Edge) string {
	src, ok := ix.Node(e.Source)
	if !ok {
		return ""
	}
	dst, ok := ix.Node(e.Target)
	if !ok {
		return ""
	}
	srcParent, srcOK := ix.Parent(src)
	dstParent, dstOK := ix.Parent(dst)
	if srcOK && dstOK && srcParent.ID == dstParent.ID {
		return srcParent.ID
	}
	return ""
}

// Depths computes the nesting depth of every node by walking the parent
// relation. Roots are depth 0. The result is used for z-ordering only, never
// for layout geometry.
//
// A containment cycle would make depth undefined; the walk stops at the
// first repeated node and the chain is treated as rooted there.
func Depths(g *graph.Graph) map[string]int {
	ix := graph.NewIndex(g)
	depths := make(map[string]int, len(g.Nodes))

	var depthOf func(n *graph.Node, onPath map[string]bool) int
	depthOf = func(n *graph.Node, onPath map[string]bool) int {
		if d, ok := depths[n.ID]; ok {
			return d
		}
		parent, ok := ix.Parent(n)
		if !ok || onPath[parent.ID] {
			depths[n.ID] = 0
			return 0
		}
		onPath[n.ID] = true
		d := depthOf(parent, onPath) + 1
		delete(onPath, n.ID)
		depths[n.ID] = d
		return d
	}

	for i := range g.Nodes {
		depthOf(&g.Nodes[i], map[string]bool{})
	}
	return depths
}
