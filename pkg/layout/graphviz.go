package layout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// GraphvizSolver computes geometry by translating the compound tree to DOT,
// laying it out with the dot engine, and reading positions back from the
// json0 output. Partitions become clusters; edges ending at a partition are
// routed to an invisible anchor node inside it with lhead/ltail so the edge
// visually attaches to the cluster boundary.
//
// dot applies nodesep/ranksep to the whole graph, so the root level's spacing
// wins; per-level spacing stays recorded on the tree for solvers that can
// honor it.
type GraphvizSolver struct{}

// NewGraphvizSolver returns a solver backed by the dot layout engine.
func NewGraphvizSolver() *GraphvizSolver { return &GraphvizSolver{} }

const anchorSuffix = "__anchor"

// Solve implements Solver.
func (s *GraphvizSolver) Solve(ctx context.Context, root *Tree, opts Options) (*Tree, error) {
	opts = opts.Normalize()
	dot := buildDOT(root, opts)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.Format("json0"), &buf); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	return applyPositions(root, buf.Bytes())
}

// buildDOT serializes the tree as a compound digraph. Containers become
// nested clusters, leaves become fixed-size box nodes, and every container
// additionally holds an invisible anchor point so edges can target it.
// Graphviz works in inches; pixel sizes are divided by 72 on the way in and
// multiplied back on the way out.
func buildDOT(root *Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph plan {\n")
	buf.WriteString("  compound=true;\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir(opts.Direction))
	fmt.Fprintf(&buf, "  nodesep=%.4f;\n", opts.NodeSpacing/72)
	fmt.Fprintf(&buf, "  ranksep=%.4f;\n", opts.RankSpacing/72)
	fmt.Fprintf(&buf, "  node [shape=box, fixedsize=true, width=%.4f, height=%.4f, label=\"\"];\n",
		opts.NodeWidth/72, opts.NodeHeight/72)
	fmt.Fprintf(&buf, "  edge [minlen=1, arrowsize=0.5];\n")
	buf.WriteString("\n")

	for _, c := range root.Children {
		writeSubtree(&buf, c, opts, 1)
	}

	buf.WriteString("\n")
	writeEdges(&buf, root)
	buf.WriteString("}\n")
	return buf.String()
}

func writeSubtree(buf *bytes.Buffer, t *Tree, opts Options, depth int) {
	pad := strings.Repeat("  ", depth)
	if !t.IsContainer() {
		fmt.Fprintf(buf, "%s%q [width=%.4f, height=%.4f];\n", pad, t.ID, t.Width/72, t.Height/72)
		return
	}
	fmt.Fprintf(buf, "%ssubgraph %q {\n", pad, "cluster_"+t.ID)
	fmt.Fprintf(buf, "%s  margin=%.4f;\n", pad, opts.NodeSpacing/2)
	fmt.Fprintf(buf, "%s  %q [shape=point, style=invis, width=0.01, height=0.01];\n", pad, t.ID+anchorSuffix)
	for _, c := range t.Children {
		writeSubtree(buf, c, opts, depth+1)
	}
	fmt.Fprintf(buf, "%s}\n", pad)
}

// writeEdges emits all edges of every level at the top of the digraph. An
// endpoint that is a container is replaced by its anchor node and the edge
// gets lhead/ltail so dot clips it at the cluster boundary.
func writeEdges(buf *bytes.Buffer, root *Tree) {
	byID := make(map[string]*Tree)
	root.Walk(func(n *Tree) { byID[n.ID] = n })

	var emit func(level *Tree)
	emit = func(level *Tree) {
		for _, e := range level.Edges {
			src, dst := e.Source, e.Target
			var attrs []string
			if n, ok := byID[src]; ok && n.IsContainer() {
				src = n.ID + anchorSuffix
				attrs = append(attrs, fmt.Sprintf("ltail=%q", "cluster_"+n.ID))
			}
			if n, ok := byID[dst]; ok && n.IsContainer() {
				dst = n.ID + anchorSuffix
				attrs = append(attrs, fmt.Sprintf("lhead=%q", "cluster_"+n.ID))
			}
			if len(attrs) > 0 {
				fmt.Fprintf(buf, "  %q -> %q [%s];\n", src, dst, strings.Join(attrs, ", "))
			} else {
				fmt.Fprintf(buf, "  %q -> %q;\n", src, dst)
			}
		}
		for _, c := range level.Children {
			emit(c)
		}
	}
	emit(root)
}

func rankdir(d Direction) string {
	if d == DirectionRight {
		return "LR"
	}
	return "TB"
}

// ===== json0 output parsing =====

// json0 flattens the whole layout into one objects array: clusters carry a
// bounding box ("llx,lly,urx,ury"), nodes carry a center position ("cx,cy")
// plus width/height in inches. Coordinates are points with the origin at the
// bottom-left, so the Y axis is flipped into screen space here.
type gvDoc struct {
	BoundingBox string     `json:"bb"`
	Objects     []gvObject `json:"objects"`
}

type gvObject struct {
	Name   string `json:"name"`
	BB     string `json:"bb"`
	Pos    string `json:"pos"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

func applyPositions(root *Tree, out []byte) (*Tree, error) {
	var doc gvDoc
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, fmt.Errorf("parse layout output: %w", err)
	}

	_, _, rootW, rootH, err := parseRect(doc.BoundingBox)
	if err != nil {
		return nil, fmt.Errorf("graph bounding box: %w", err)
	}

	byName := make(map[string]gvObject, len(doc.Objects))
	for _, o := range doc.Objects {
		byName[o.Name] = o
	}

	solved := root.Clone()
	solved.X, solved.Y = 0, 0
	solved.Width, solved.Height = rootW, rootH

	var place func(t *Tree) error
	place = func(t *Tree) error {
		for _, c := range t.Children {
			if err := placeNode(c, byName, rootH); err != nil {
				return err
			}
			if err := place(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := place(solved); err != nil {
		return nil, err
	}
	return solved, nil
}

func placeNode(t *Tree, byName map[string]gvObject, rootH float64) error {
	if t.IsContainer() {
		o, ok := byName["cluster_"+t.ID]
		if !ok {
			return fmt.Errorf("layout output missing cluster %q", t.ID)
		}
		llx, lly, urx, ury, err := parseRect(o.BB)
		if err != nil {
			return fmt.Errorf("cluster %q: %w", t.ID, err)
		}
		t.X = llx
		t.Y = rootH - ury
		t.Width = urx - llx
		t.Height = ury - lly
		return nil
	}

	o, ok := byName[t.ID]
	if !ok {
		return fmt.Errorf("layout output missing node %q", t.ID)
	}
	cx, cy, err := parsePoint(o.Pos)
	if err != nil {
		return fmt.Errorf("node %q: %w", t.ID, err)
	}
	w, err := strconv.ParseFloat(o.Width, 64)
	if err != nil {
		return fmt.Errorf("node %q width: %w", t.ID, err)
	}
	h, err := strconv.ParseFloat(o.Height, 64)
	if err != nil {
		return fmt.Errorf("node %q height: %w", t.ID, err)
	}
	t.Width = w * 72
	t.Height = h * 72
	t.X = cx - t.Width/2
	t.Y = rootH - cy - t.Height/2
	return nil
}

func parsePoint(s string) (x, y float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed point %q", s)
	}
	if x, err = strconv.ParseFloat(parts[0], 64); err != nil {
		return 0, 0, fmt.Errorf("malformed point %q", s)
	}
	if y, err = strconv.ParseFloat(parts[1], 64); err != nil {
		return 0, 0, fmt.Errorf("malformed point %q", s)
	}
	return x, y, nil
}

func parseRect(s string) (llx, lly, urx, ury float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("malformed rect %q", s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		vals[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, 0, 0, 0, fmt.Errorf("malformed rect %q", s)
		}
	}
	return vals[0], vals[1], vals[2], vals[3], nil
}
