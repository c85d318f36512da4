package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/graph"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/pipeline"
)

// layoutCommand creates the layout command: assign positions and write the
// laid-out graph JSON.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout <patch-or-graph-file>",
		Short: "Auto-layout a composition and write the positioned graph",
		Long: `Layout assigns node positions by longest-path layering: nodes flow
left to right by layer, so no edge ever points backward. The positioned
graph is written in the canonical JSON wire format.

Examples:
  cardplay layout wobble.toml -o wobble.json
  cardplay layout patch.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache, "")
			if err != nil {
				return err
			}
			defer runner.Cache.Close()

			g, err := runner.Load(ctx, pipeline.Options{Input: args[0]})
			if err != nil {
				return err
			}

			laid, hit, err := runner.LayoutWithCacheInfo(ctx, g, pipeline.Options{})
			if err != nil {
				return err
			}
			printStats(laid.NodeCount(), laid.EdgeCount(), hit)

			if output == "" {
				return graph.Write(laid, os.Stdout)
			}
			if err := graph.WriteFile(laid, output); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
