package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strataviz/strataviz/pkg/graph"
	"github.com/strataviz/strataviz/pkg/pipeline"
	"github.com/strataviz/strataviz/pkg/scene"
)

// layoutCommand computes a renderable scene from a plan graph file.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output      string
		noCache     bool
		refresh     bool
		orientation string
		nodeSpacing float64
		rankSpacing float64
		hideLayers  []string
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute a scene layout for a plan graph",
		Long: `Compute positions and visual elements for a plan graph.

The graph is read from the given JSON file, laid out with the configured
orientation and spacing, and the resulting scene is written as JSON next
to the input (or to --output).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if output == "" {
				output = strings.TrimSuffix(input, filepath.Ext(input)) + ".scene.json"
			}

			g, err := graph.ReadGraphFile(input)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := pipeline.Options{
				Orientation:  orientation,
				NodeSpacing:  nodeSpacing,
				RankSpacing:  rankSpacing,
				HiddenLayers: hideLayers,
				Refresh:      refresh,
				Logger:       c.Logger,
			}

			sp := NewSpinner("Computing layout...")
			result, err := runner.Execute(cmd.Context(), g, opts)
			if err != nil {
				sp.StopWithError("layout failed: %v", err)
				return err
			}
			sp.Stop()

			data, err := scene.MarshalScene(result.Scene)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write scene: %w", err)
			}

			printSuccess("Laid out %s", StyleValue.Render(g.Name))
			printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.SceneHit)
			printFile(output)
			printNextStep("Verify integrity", appName+" check "+input)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output scene file (default: <input>.scene.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the scene cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when a cached scene exists")
	cmd.Flags().StringVar(&orientation, "orientation", pipeline.OrientationVertical, "layout direction (vertical or horizontal)")
	cmd.Flags().Float64Var(&nodeSpacing, "node-spacing", pipeline.DefaultNodeSpacing, "spacing between sibling nodes in pixels")
	cmd.Flags().Float64Var(&rankSpacing, "rank-spacing", pipeline.DefaultRankSpacing, "spacing between ranks in pixels")
	cmd.Flags().StringSliceVar(&hideLayers, "hide-layer", nil, "layer IDs to exclude from the layout (repeatable)")

	return cmd
}
