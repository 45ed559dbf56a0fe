package integrity

import "github.com/strataviz/strataviz/pkg/graph"

// HasCycle reports whether the directed edge set contains a cycle.
// Depth-first search with white/gray/black coloring: a back-edge into a node
// still on the recursion stack (gray) signals a cycle. O(V+E).
//
// Edges whose endpoints are not in nodes are ignored; they are a referential
// problem, not a structural one, and are reported by graph.VerifyIntegrity.
func HasCycle(nodes []graph.Node, edges []graph.Edge) bool {
	const (
		white = iota
		gray
		black
	)

	known := make(map[string]bool, len(nodes))
	for i := range nodes {
		known[nodes[i].ID] = true
	}

	outgoing := make(map[string][]string, len(nodes))
	for _, e := range edges {
		if !known[e.Source] || !known[e.Target] {
			continue
		}
		outgoing[e.Source] = append(outgoing[e.Source], e.Target)
	}

	color := make(map[string]int, len(nodes))
	var found bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, next := range outgoing[id] {
			switch color[next] {
			case white:
				dfs(next)
				if found {
					return
				}
			case gray:
				found = true
				return
			}
		}
		color[id] = black
	}

	for i := range nodes {
		if color[nodes[i].ID] == white {
			dfs(nodes[i].ID)
			if found {
				return true
			}
		}
	}
	return false
}

// WouldCreateCycle reports whether accepting the candidate edge on top of
// the existing edge set would close a cycle. For a currently acyclic graph
// this is true exactly when the candidate's target can already reach its
// source.
func WouldCreateCycle(nodes []graph.Node, edges []graph.Edge, candidate graph.Edge) bool {
	withCandidate := make([]graph.Edge, 0, len(edges)+1)
	withCandidate = append(withCandidate, edges...)
	withCandidate = append(withCandidate, candidate)
	return HasCycle(nodes, withCandidate)
}
