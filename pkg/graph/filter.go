package graph

// FilterVisible returns a copy of g containing only the nodes and edges
// whose layers are visible. The visibility map is keyed by layer ID; layers
// absent from the map are visible. Nodes and edges without a layer are
// always visible.
//
// Filtering happens here, before the hierarchy builder ever sees the
// collections — the materializer downstream does no visibility filtering.
// An edge survives only if its own layer is visible and both of its
// endpoints survived.
func FilterVisible(g *Graph, visible map[string]bool) *Graph {
	out := &Graph{
		ID:     g.ID,
		Name:   g.Name,
		Layers: g.Layers,
	}

	kept := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if !layerVisible(n.Layer, visible) {
			continue
		}
		out.Nodes = append(out.Nodes, n)
		kept[n.ID] = true
	}

	for _, e := range g.Edges {
		if !layerVisible(e.Layer, visible) {
			continue
		}
		if !kept[e.Source] || !kept[e.Target] {
			continue
		}
		out.Edges = append(out.Edges, e)
	}

	return out
}

func layerVisible(layerID string, visible map[string]bool) bool {
	if layerID == "" {
		return true
	}
	v, ok := visible[layerID]
	if !ok {
		return true
	}
	return v
}
