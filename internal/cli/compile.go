package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/pipeline"
)

// errInvalidComposition signals a failing validation without extra output;
// the report has already been printed.
var errInvalidComposition = errors.New("composition is invalid")

// compileCommand creates the compile command.
func (c *CLI) compileCommand() *cobra.Command {
	var noCache, autoAdapt bool

	cmd := &cobra.Command{
		Use:   "compile <patch-or-graph-file>",
		Short: "Compile a composition into an execution plan",
		Long: `Compile orders the composition's nodes topologically and prints the
execution plan: the step order plus the exposed input and output ports.
Cyclic compositions cannot be compiled.

Examples:
  cardplay compile wobble.toml
  cardplay compile patch.json --auto-adapt`,
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

			prog := newProgress(loggerFromContext(ctx))
			plan, err := runner.Compile(ctx, g)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Compiled %d steps", len(plan.Steps)))

			printKeyValue("steps", strings.Join(plan.Steps, " "+iconArrow+" "))
			printKeyValue("inputs", strings.Join(plan.Inputs, ", "))
			printKeyValue("outputs", strings.Join(plan.Outputs, ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&autoAdapt, "auto-adapt", false, "insert adapters on incompatible edges")
	return cmd
}
