package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/strataviz/strataviz/pkg/graph"
	"github.com/strataviz/strataviz/pkg/integrity"
)

// inspectCommand opens an interactive connection checker for a plan graph.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [graph.json]",
		Short: "Interactively test connections between nodes",
		Long: `Browse the nodes of a plan graph and test candidate connections.

Pick a source node, then a target node; the verdict shows whether the
connection is legal, the data kind it would carry, and whether it would
create a cycle.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graph.ReadGraphFile(args[0])
			if err != nil {
				return err
			}
			if g.NodeCount() == 0 {
				printWarning("graph has no nodes")
				return nil
			}
			p := tea.NewProgram(newInspectModel(g))
			_, err = p.Run()
			return err
		},
	}
}

// =============================================================================
// Model
// =============================================================================

// inspectPhase tracks which endpoint is being picked.
type inspectPhase int

const (
	phaseSource inspectPhase = iota
	phaseTarget
)

// inspectModel is a bubbletea model for browsing nodes and checking
// candidate connections.
type inspectModel struct {
	g      *graph.Graph
	nodes  []graph.Node
	cursor int
	offset int
	height int

	phase   inspectPhase
	source  *graph.Node
	verdict *integrity.Connection
}

func newInspectModel(g *graph.Graph) inspectModel {
	nodes := make([]graph.Node, len(g.Nodes))
	copy(nodes, g.Nodes)
	return inspectModel{
		g:      g,
		nodes:  nodes,
		height: 12,
	}
}

func (m inspectModel) Init() tea.Cmd {
	return nil
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Leave room for the header, hints and verdict.
		m.height = max(3, msg.Height-7)
		m.clampScroll()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			m.clampScroll()

		case "down", "j":
			if m.cursor < len(m.nodes)-1 {
				m.cursor++
			}
			m.clampScroll()

		case "esc":
			// Back out of the target pick.
			m.phase = phaseSource
			m.source = nil
			m.verdict = nil

		case "enter":
			picked := m.nodes[m.cursor]
			if m.phase == phaseSource {
				m.source = &picked
				m.phase = phaseTarget
				m.verdict = nil
				break
			}
			conn := integrity.Check(m.g, graph.Edge{Source: m.source.ID, Target: picked.ID})
			m.verdict = &conn
			m.phase = phaseSource
			m.source = nil
		}
	}
	return m, nil
}

func (m *inspectModel) clampScroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m inspectModel) View() string {
	var b strings.Builder

	title := m.g.Name
	if title == "" {
		title = m.g.ID
	}
	b.WriteString(StyleTitle.Render("Inspect "+title) + "\n")

	switch m.phase {
	case phaseSource:
		b.WriteString(StyleDim.Render("pick a source node") + "\n\n")
	case phaseTarget:
		b.WriteString(StyleDim.Render("source: ") + StyleValue.Render(m.source.DisplayLabel()) +
			StyleDim.Render("  pick a target node") + "\n\n")
	}

	end := min(m.offset+m.height, len(m.nodes))
	for i := m.offset; i < end; i++ {
		n := m.nodes[i]
		line := fmt.Sprintf("%s %s", n.DisplayLabel(), StyleDim.Render(string(n.Type)))
		if i == m.cursor {
			b.WriteString(StyleTitle.Render("> ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	if m.verdict != nil {
		b.WriteString("\n" + renderVerdict(*m.verdict) + "\n")
	}

	b.WriteString("\n" + StyleDim.Render("↑/↓ move · enter select · esc back · q quit") + "\n")
	return b.String()
}

func renderVerdict(conn integrity.Connection) string {
	if conn.Valid {
		return StyleSuccess.Render(iconSuccess) +
			fmt.Sprintf(" legal connection (%s)", conn.DataKind)
	}
	line := StyleWarning.Render(iconError) + " " + conn.Reason
	if conn.WouldCreateCycle {
		line += StyleDim.Render(" (would create a cycle)")
	}
	return line
}
