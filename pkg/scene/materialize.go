package scene

import (
	"github.com/strataviz/strataviz/pkg/graph"
	"github.com/strataviz/strataviz/pkg/integrity"
	"github.com/strataviz/strataviz/pkg/layout"
)

// Label geometry inside a container, in pixels from the container's
// top-left corner.
const (
	labelInsetX   = 8.0
	labelInsetY   = 4.0
	labelHeight   = 24.0
	labelIDSuffix = "__label"
)

// Materialize flattens a solved layout tree into scene elements.
//
// The solver works in absolute coordinates; the scene stores every position
// relative to its parent so a renderer can move a container without touching
// the children. Each partition additionally gets a synthetic, non-selectable
// label element pinned to its top-left corner.
//
// depths carries each node's nesting depth for z-ordering. Pass nil to
// compute it from the tree itself.
func Materialize(solved *layout.Tree, g *graph.Graph, depths map[string]int) *Scene {
	ix := graph.NewIndex(g)
	labels := make(map[string]string, len(g.Edges))
	for _, e := range g.Edges {
		labels[e.ID] = e.Label
	}
	s := &Scene{}

	var walk func(t *layout.Tree, parentID string, parentX, parentY float64, depth int)
	walk = func(t *layout.Tree, parentID string, parentX, parentY float64, depth int) {
		d := depth
		if depths != nil {
			if v, ok := depths[t.ID]; ok {
				d = v
			}
		}

		n := Node{
			ID:       t.ID,
			ParentID: parentID,
			Position: Position{X: t.X - parentX, Y: t.Y - parentY},
			Width:    t.Width,
			Height:   t.Height,
			Label:    labelFor(ix, t.ID),
			Style:    styleFor(ix, t.ID),
		}
		if t.IsContainer() {
			n.Kind = KindContainer
			n.Z = d
		} else {
			n.Kind = KindLeaf
			n.Z = leafZBase + d
		}
		n.Selectable = true
		s.Nodes = append(s.Nodes, n)

		if n.Kind == KindContainer {
			s.Nodes = append(s.Nodes, Node{
				ID:       t.ID + labelIDSuffix,
				ParentID: t.ID,
				Kind:     KindLabel,
				Position: Position{X: labelInsetX, Y: labelInsetY},
				Width:    max(t.Width-2*labelInsetX, 0),
				Height:   labelHeight,
				Z:        n.Z + 1,
				Label:    n.Label,
				Style:    n.Style,
			})
		}

		for _, e := range t.Edges {
			s.Edges = append(s.Edges, edgeFor(ix, e, labels[e.ID]))
		}
		for _, c := range t.Children {
			walk(c, t.ID, t.X, t.Y, depth+1)
		}
	}

	// The synthetic root wrapper is not an element; its children are the
	// top-level scene nodes.
	for _, e := range solved.Edges {
		s.Edges = append(s.Edges, edgeFor(ix, e, labels[e.ID]))
	}
	for _, c := range solved.Children {
		walk(c, "", solved.X, solved.Y, 0)
	}
	return s
}

func labelFor(ix *graph.Index, id string) string {
	if n, ok := ix.Node(id); ok {
		return n.DisplayLabel()
	}
	return id
}

// styleFor resolves a node's colors from its layer, falling back to the
// defaults field by field so a layer that only sets a background still gets
// readable text and borders.
func styleFor(ix *graph.Index, id string) Style {
	style := Style{
		Background: DefaultBackground,
		Border:     DefaultBorder,
		Text:       DefaultText,
	}
	n, ok := ix.Node(id)
	if !ok {
		return style
	}
	l, ok := ix.Layer(n.Layer)
	if !ok {
		return style
	}
	if l.Background != "" {
		style.Background = l.Background
	}
	if l.Border != "" {
		style.Border = l.Border
	}
	if l.Text != "" {
		style.Text = l.Text
	}
	return style
}

func edgeFor(ix *graph.Index, e layout.TreeEdge, label string) Edge {
	out := Edge{
		ID:       e.ID,
		Source:   e.Source,
		Target:   e.Target,
		Label:    label,
		Stroke:   DefaultBorder,
		Arrow:    DefaultArrow,
		DataKind: string(integrity.DataKindData),
	}
	if src, ok := ix.Node(e.Source); ok {
		out.DataKind = string(integrity.DataKindFor(src.Type))
		if l, ok := ix.Layer(src.Layer); ok && l.Border != "" {
			out.Stroke = l.Border
		}
	}
	return out
}
