package layout

import (
	"math"
	"strings"
	"testing"
)

func approx(got, want, eps float64) bool {
	return math.Abs(got-want) <= eps
}

func nestedTree() *Tree {
	return &Tree{
		ID: RootID,
		Edges: []TreeEdge{
			{ID: "e1", Source: "a", Target: "p"},
		},
		Children: []*Tree{
			{ID: "a", Width: 120, Height: 48},
			{
				ID: "p",
				Edges: []TreeEdge{
					{ID: "e2", Source: "b", Target: "c"},
				},
				Children: []*Tree{
					{ID: "b", Width: 120, Height: 48},
					{ID: "c", Width: 120, Height: 48},
				},
			},
		},
	}
}

func TestBuildDOT(t *testing.T) {
	dot := buildDOT(nestedTree(), DefaultOptions())

	for _, want := range []string{
		"compound=true",
		"rankdir=TB",
		`subgraph "cluster_p"`,
		`"a" ->`,
		`lhead="cluster_p"`,
		`"b" -> "c"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	// Edges into a cluster are routed to its anchor, never to the cluster name.
	if strings.Contains(dot, `-> "p"`) {
		t.Errorf("edge should target the cluster anchor, not the cluster:\n%s", dot)
	}
	if !strings.Contains(dot, `"p`+anchorSuffix+`"`) {
		t.Errorf("DOT missing anchor node:\n%s", dot)
	}
}

func TestBuildDOTHorizontal(t *testing.T) {
	opts := DefaultOptions()
	opts.Direction = DirectionRight
	dot := buildDOT(nestedTree(), opts)
	if !strings.Contains(dot, "rankdir=LR") {
		t.Errorf("DOT missing rankdir=LR:\n%s", dot)
	}
}

func TestApplyPositions(t *testing.T) {
	// Hand-built json0 output for nestedTree: the graph is 400x300 points,
	// cluster p occupies the lower-right quadrant.
	out := []byte(`{
		"bb": "0,0,400,300",
		"objects": [
			{"name": "a", "pos": "60,270", "width": "1.6667", "height": "0.6667"},
			{"name": "cluster_p", "bb": "200,0,400,150"},
			{"name": "b", "pos": "260,100", "width": "1.6667", "height": "0.6667"},
			{"name": "c", "pos": "260,40", "width": "1.6667", "height": "0.6667"},
			{"name": "p__anchor", "pos": "210,140", "width": "0.01", "height": "0.01"}
		]
	}`)

	solved, err := applyPositions(nestedTree(), out)
	if err != nil {
		t.Fatalf("applyPositions error: %v", err)
	}

	if solved.Width != 400 || solved.Height != 300 {
		t.Errorf("root size = %vx%v, want 400x300", solved.Width, solved.Height)
	}

	byID := map[string]*Tree{}
	solved.Walk(func(n *Tree) { byID[n.ID] = n })

	// Node a: center (60,270) in graphviz coords, size ~120x48
	// (1.6667in x 0.6667in at 72 dpi).
	a := byID["a"]
	if !approx(a.Width, 120, 0.1) || !approx(a.Height, 48, 0.1) {
		t.Errorf("a size = %vx%v, want ~120x48", a.Width, a.Height)
	}
	if !approx(a.X, 60-a.Width/2, 0.001) {
		t.Errorf("a.X = %v, want center 60", a.X)
	}
	// Y flip: 300 - 270 - h/2
	if !approx(a.Y, 300-270-a.Height/2, 0.001) {
		t.Errorf("a.Y = %v, want %v", a.Y, 300-270-a.Height/2)
	}

	// Cluster p: bb 200,0,400,150 → top-left (200, 300-150), 200x150.
	p := byID["p"]
	if p.X != 200 || p.Y != 150 || p.Width != 200 || p.Height != 150 {
		t.Errorf("p geometry = (%v,%v) %vx%v, want (200,150) 200x150", p.X, p.Y, p.Width, p.Height)
	}

	// The input tree is never mutated.
	orig := nestedTree()
	if orig.Children[0].X != 0 {
		t.Error("input tree mutated")
	}
}

func TestApplyPositionsMissingNode(t *testing.T) {
	out := []byte(`{"bb": "0,0,100,100", "objects": []}`)
	if _, err := applyPositions(leafTree("a"), out); err == nil {
		t.Fatal("applyPositions should fail when the output lacks a node")
	}
}

func TestParseHelpers(t *testing.T) {
	if _, _, err := parsePoint("1,2,3"); err == nil {
		t.Error("parsePoint should reject three components")
	}
	x, y, err := parsePoint("1.5,2.5")
	if err != nil || x != 1.5 || y != 2.5 {
		t.Errorf("parsePoint = %v,%v (%v)", x, y, err)
	}

	if _, _, _, _, err := parseRect("1,2,3"); err == nil {
		t.Error("parseRect should reject three components")
	}
	llx, lly, urx, ury, err := parseRect("0,0,10,20")
	if err != nil || llx != 0 || lly != 0 || urx != 10 || ury != 20 {
		t.Errorf("parseRect = %v,%v,%v,%v (%v)", llx, lly, urx, ury, err)
	}
}
