// Package integrity guards the two invariants a plan graph must never lose:
// every edge is legal for its endpoint types, and the data-flow edge set is
// a DAG.
//
// Both checks run on the interactive "attempt to draw an edge" path and
// return their results as values, never as errors — an illegal connection is
// an expected, frequent outcome of normal editing, not a failure.
//
//	conn := integrity.Check(g, graph.Edge{Source: "a", Target: "b"})
//	if !conn.Valid {
//	    // conn.Reason is user-facing; conn.WouldCreateCycle distinguishes
//	    // structural rejections from type rejections.
//	}
//
// Type rules are a static adjacency table over the closed node-type set.
// Cycle detection is a depth-first search over the edge set plus the
// candidate edge, O(V+E) per call.
package integrity
