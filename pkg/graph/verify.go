package graph

import "fmt"

// VerifyIntegrity checks referential consistency and returns a list of
// human-readable problems, or nil if the graph is clean. It reports:
//
//   - edges whose source or target does not exist
//   - BelongsTo references that dangle or point at a non-partition node
//   - containment cycles (a partition containing itself transitively)
//
// Containment and data-flow are two independent graphs that must each stay
// acyclic; data-flow acyclicity is enforced per edit by pkg/integrity, while
// this check covers graphs loaded from external sources.
//
// Problems found here do not stop a layout pass: the hierarchy builder
// tolerates dangling parents by promoting the node to root. VerifyIntegrity
// exists so that editors and imports can surface the issues to the user.
func VerifyIntegrity(g *Graph) []string {
	ix := NewIndex(g)
	var problems []string

	for _, e := range g.Edges {
		if _, ok := ix.Node(e.Source); !ok {
			problems = append(problems, fmt.Sprintf("edge %s: source node %q does not exist", e.ID, e.Source))
		}
		if _, ok := ix.Node(e.Target); !ok {
			problems = append(problems, fmt.Sprintf("edge %s: target node %q does not exist", e.ID, e.Target))
		}
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.BelongsTo == "" {
			continue
		}
		parent, ok := ix.Node(n.BelongsTo)
		if !ok {
			problems = append(problems, fmt.Sprintf("node %s: belongs_to %q does not exist", n.ID, n.BelongsTo))
			continue
		}
		if !parent.IsPartition {
			problems = append(problems, fmt.Sprintf("node %s: belongs_to %q is not a partition", n.ID, n.BelongsTo))
		}
	}

	problems = append(problems, containmentCycles(g, ix)...)
	return problems
}

// containmentCycles walks the BelongsTo relation from every node and reports
// nodes that reach themselves again.
func containmentCycles(g *Graph, ix *Index) []string {
	var problems []string
	for i := range g.Nodes {
		start := &g.Nodes[i]
		seen := map[string]bool{start.ID: true}
		n := start
		for {
			parent, ok := ix.Node(n.BelongsTo)
			if n.BelongsTo == "" || !ok {
				break
			}
			if seen[parent.ID] {
				problems = append(problems, fmt.Sprintf("node %s: containment cycle through %q", start.ID, parent.ID))
				break
			}
			seen[parent.ID] = true
			n = parent
		}
	}
	return problems
}
