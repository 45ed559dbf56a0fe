package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/strataviz/strataviz/pkg/graph"
)

func inspectFixture() *graph.Graph {
	return &graph.Graph{
		ID:   "plan-1",
		Name: "demo",
		Nodes: []graph.Node{
			{ID: "src", Label: "Source", Type: graph.TypeDataSource},
			{ID: "t", Label: "Transform", Type: graph.TypeTransform},
			{ID: "out", Label: "Output", Type: graph.TypeOutput},
		},
	}
}

func key(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func step(t *testing.T, m tea.Model, msg tea.Msg) inspectModel {
	t.Helper()
	next, _ := m.Update(msg)
	im, ok := next.(inspectModel)
	if !ok {
		t.Fatalf("model type = %T", next)
	}
	return im
}

func TestInspectPickValidConnection(t *testing.T) {
	m := newInspectModel(inspectFixture())

	// Pick src as the source.
	m = step(t, m, key("enter"))
	if m.phase != phaseTarget {
		t.Fatal("enter should move to target phase")
	}
	if m.source == nil || m.source.ID != "src" {
		t.Fatalf("source = %+v", m.source)
	}

	// Move to the transform and pick it as the target.
	m = step(t, m, key("j"))
	m = step(t, m, key("enter"))
	if m.verdict == nil {
		t.Fatal("picking a target should produce a verdict")
	}
	if !m.verdict.Valid {
		t.Errorf("src→t should be valid: %s", m.verdict.Reason)
	}
	if m.phase != phaseSource {
		t.Error("verdict should reset to the source phase")
	}

	view := m.View()
	if !strings.Contains(view, "legal connection") {
		t.Errorf("view should show the verdict:\n%s", view)
	}
}

func TestInspectInvalidConnection(t *testing.T) {
	m := newInspectModel(inspectFixture())

	// out as source, src as target: into a data source is illegal.
	m = step(t, m, key("j"))
	m = step(t, m, key("j"))
	m = step(t, m, key("enter"))
	m = step(t, m, key("k"))
	m = step(t, m, key("k"))
	m = step(t, m, key("enter"))

	if m.verdict == nil {
		t.Fatal("expected a verdict")
	}
	if m.verdict.Valid {
		t.Error("out→src should be invalid")
	}
}

func TestInspectEscBacksOut(t *testing.T) {
	m := newInspectModel(inspectFixture())
	m = step(t, m, key("enter"))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.phase != phaseSource || m.source != nil {
		t.Error("esc should return to the source phase")
	}
}

func TestInspectScrollClamping(t *testing.T) {
	g := inspectFixture()
	m := newInspectModel(g)
	m.height = 2

	m = step(t, m, key("j"))
	m = step(t, m, key("j"))
	if m.offset != 1 {
		t.Errorf("offset = %d, want 1", m.offset)
	}
	m = step(t, m, key("k"))
	m = step(t, m, key("k"))
	if m.offset != 0 {
		t.Errorf("offset = %d, want 0", m.offset)
	}
}
