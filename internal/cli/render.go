package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string // output file path (or base path for multiple formats)
	formats   []string
	detailed  bool
	autoAdapt bool
	optimize  bool
	noCache   bool
	refresh   bool
}

// renderCommand creates the render command for generating diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render <patch-or-graph-file>",
		Short: "Render a composition as DOT or SVG",
		Long: `Render runs the full pipeline and writes diagram artifacts. The DOT
output is the re-renderable intermediate form; SVG is produced from it
with Graphviz.

Examples:
  cardplay render wobble.toml -o wobble.svg -f svg
  cardplay render patch.json -f dot,svg -o out/patch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): dot (default), svg, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include card IDs and port types in labels")
	cmd.Flags().BoolVar(&opts.autoAdapt, "auto-adapt", false, "insert adapters on incompatible edges")
	cmd.Flags().BoolVar(&opts.optimize, "optimize", false, "remove identity pass-through nodes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cache for every stage")
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, opts.noCache, "")
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	spin := newSpinnerWithContext(ctx, "Rendering "+input)
	spin.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		Input:     input,
		Formats:   opts.formats,
		Detailed:  opts.detailed,
		AutoAdapt: opts.autoAdapt,
		Optimize:  opts.optimize,
		Refresh:   opts.refresh,
	})
	if err != nil {
		spin.StopWithError(fmt.Sprintf("Render failed: %v", err))
		return err
	}
	spin.StopWithSuccess(fmt.Sprintf("Rendered %s", input))

	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)
	if !result.Report.Valid {
		printReport(result.Report)
	}

	for format, data := range result.Artifacts {
		path := outputPath(opts.output, input, format, len(opts.formats) > 1)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// outputPath derives the artifact file path from the output flag, falling
// back to the input name with the format as extension.
func outputPath(output, input, format string, multi bool) string {
	if output == "" {
		base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		return base + "." + format
	}
	if multi {
		return output + "." + format
	}
	return output
}
