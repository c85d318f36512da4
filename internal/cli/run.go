package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/pipeline"
)

// runCommand creates the run command: compile a composition to a single
// card and process one input value through it.
func (c *CLI) runCommand() *cobra.Command {
	var (
		noCache   bool
		autoAdapt bool
		input     string
	)

	cmd := &cobra.Command{
		Use:   "run <patch-or-graph-file>",
		Short: "Run a composition on an input value",
		Long: `Run compiles the composition into a single card and processes the
given input value through it, printing the resulting signal. Numeric
inputs are parsed as numbers; anything else is passed as text.

Examples:
  cardplay run wobble.toml --input 5
  cardplay run chain.toml --input hello --auto-adapt`,
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
			if autoAdapt {
				g = runner.AutoAdapt(ctx, g)
			}

			compiled, err := g.ToCard(card.Meta{ID: "run:" + args[0], Name: args[0]}, c.Library)
			if err != nil {
				return err
			}
			if compiled == nil {
				return errInvalidComposition
			}

			prog := newProgress(loggerFromContext(ctx))
			out, err := compiled.Process(card.Mono(parseInput(input)), card.NewContext())
			if err != nil {
				return err
			}
			prog.done("Processed input")

			if v, ok := out.Single(); ok {
				printKeyValue("output", fmt.Sprintf("%v", v))
				return nil
			}
			for port, v := range out {
				printKeyValue(port, fmt.Sprintf("%v", v))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&autoAdapt, "auto-adapt", false, "insert adapters on incompatible edges")
	cmd.Flags().StringVarP(&input, "input", "i", "", "input value to process")
	return cmd
}

// parseInput converts a CLI input string into a signal payload: a float64
// when it parses as a number, the raw string otherwise.
func parseInput(s string) any {
	if x, err := strconv.ParseFloat(s, 64); err == nil {
		return x
	}
	return s
}
