package cli

import (
	"github.com/spf13/cobra"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/pipeline"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "validate <patch-or-graph-file>",
		Short: "Validate a composition and report all problems",
		Long: `Validate checks a composition for structural problems: cycles,
disconnected islands, and port type mismatches. All problems are collected
and reported at once rather than stopping at the first.

Examples:
  cardplay validate wobble.toml
  cardplay validate patch.json --no-cache`,
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

			report, hit, err := runner.ValidateWithCacheInfo(ctx, g, pipeline.Options{})
			if err != nil {
				return err
			}

			printStats(g.NodeCount(), g.EdgeCount(), hit)
			printReport(report)
			if !report.Valid {
				cmd.SilenceErrors = true
				return errInvalidComposition
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
