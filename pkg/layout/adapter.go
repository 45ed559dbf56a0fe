package layout

import "github.com/strataviz/strataviz/pkg/hierarchy"

// RootID is the synthetic container wrapping the whole forest. The solver
// needs a single compound root; the wrapper is stripped again when the scene
// is materialized.
const RootID = "root"

// FromForest converts the nested hierarchy into the solver's tree contract.
// Leaves get the configured node box; containers are left unsized for the
// solver to fit around their children. Per-level spacing comes from each
// subtree's own config so nested partitions keep their density settings.
func FromForest(f *hierarchy.Forest, opts Options) *Tree {
	opts = opts.Normalize()
	root := &Tree{
		ID: RootID,
		Spacing: LevelSpacing{
			NodeSpacing: opts.NodeSpacing,
			RankSpacing: opts.RankSpacing,
			Direction:   opts.Direction,
		},
	}
	for _, e := range f.Edges {
		root.Edges = append(root.Edges, TreeEdge{ID: e.ID, Source: e.Source, Target: e.Target})
	}
	for _, r := range f.Roots {
		root.Children = append(root.Children, fromTreeNode(r, opts))
	}
	return root
}

func fromTreeNode(n *hierarchy.TreeNode, opts Options) *Tree {
	t := &Tree{
		ID:      n.Node.ID,
		Spacing: spacingFor(n.Config, opts),
	}
	if len(n.Children) == 0 {
		t.Width = opts.NodeWidth
		t.Height = opts.NodeHeight
		return t
	}
	for _, e := range n.Edges {
		t.Edges = append(t.Edges, TreeEdge{ID: e.ID, Source: e.Source, Target: e.Target})
	}
	for _, c := range n.Children {
		t.Children = append(t.Children, fromTreeNode(c, opts))
	}
	return t
}

func spacingFor(cfg hierarchy.LevelConfig, opts Options) LevelSpacing {
	s := LevelSpacing{
		NodeSpacing: clamp(cfg.NodeSpacing, MinSpacing, MaxSpacing),
		RankSpacing: clamp(cfg.RankSpacing, MinSpacing, MaxSpacing),
		Direction:   Direction(cfg.Direction),
	}
	if cfg.NodeSpacing == 0 {
		s.NodeSpacing = opts.NodeSpacing
	}
	if cfg.RankSpacing == 0 {
		s.RankSpacing = opts.RankSpacing
	}
	if s.Direction != DirectionDown && s.Direction != DirectionRight {
		s.Direction = opts.Direction
	}
	return s
}
