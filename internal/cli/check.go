package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strataviz/strataviz/pkg/graph"
	"github.com/strataviz/strataviz/pkg/integrity"
)

// checkCommand verifies graph integrity and, optionally, a single candidate
// connection.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		source string
		target string
	)

	cmd := &cobra.Command{
		Use:   "check [graph.json]",
		Short: "Verify the integrity of a plan graph",
		Long: `Check a plan graph for structural problems: dangling edge endpoints,
broken containment references and cycles.

With --source and --target, additionally report whether connecting those
two nodes would be legal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graph.ReadGraphFile(args[0])
			if err != nil {
				return err
			}

			problems := graph.VerifyIntegrity(g)
			if integrity.HasCycle(g.Nodes, g.Edges) {
				problems = append(problems, "graph contains a cycle")
			}

			if (source == "") != (target == "") {
				return fmt.Errorf("--source and --target must be given together")
			}
			if source != "" {
				printConnectionVerdict(g, source, target)
			}

			if len(problems) == 0 {
				printSuccess("%s is valid", StyleValue.Render(g.Name))
				printStats(g.NodeCount(), g.EdgeCount(), false)
				return nil
			}

			printError("%s has %d problem(s)", StyleValue.Render(g.Name), len(problems))
			for _, p := range problems {
				printDetail("%s", p)
			}
			return fmt.Errorf("%d integrity problem(s) found", len(problems))
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "source node ID of a candidate connection")
	cmd.Flags().StringVar(&target, "target", "", "target node ID of a candidate connection")

	return cmd
}

func printConnectionVerdict(g *graph.Graph, source, target string) {
	conn := integrity.Check(g, graph.Edge{Source: source, Target: target})
	if conn.Valid {
		printSuccess("%s %s %s is a legal %s connection",
			StyleValue.Render(source), iconArrow, StyleValue.Render(target), conn.DataKind)
		return
	}
	printError("%s %s %s: %s", StyleValue.Render(source), iconArrow, StyleValue.Render(target), conn.Reason)
	if conn.WouldCreateCycle {
		printDetail("connecting these nodes would create a cycle")
	}
}
