// Package cli implements the cardplay command-line interface.
//
// This package provides commands for validating, compiling, running, and
// rendering card compositions, plus a serve mode exposing the same pipeline
// over HTTP. The CLI is built using cobra and supports verbose logging via
// the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - validate: Check a patch or graph file and report all problems
//   - compile: Produce the topological execution plan
//   - run: Compile a composition to a card and process an input value
//   - render: Generate DOT or SVG diagrams
//   - layout: Assign node positions and write the laid-out graph
//   - inspect: Interactive node and edge diagnostics
//   - serve: Expose the pipeline as an HTTP API
//   - cache: Manage the pipeline cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/adapter"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/buildinfo"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/cache"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "cardplay"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger   *log.Logger
	Library  *card.Library
	Registry *adapter.Registry
}

// New creates a new CLI instance with a default logger and the builtin
// card library and adapter registry.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:   newLogger(w, level),
		Library:  builtinLibrary(),
		Registry: builtinRegistry(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands
// registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Cardplay composes typed processing cards into stacks and graphs",
		Long:         `Cardplay is a CLI for building card compositions: validate the wiring, compile execution plans, run compositions on input values, and render them as diagrams.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.validateCommand())
	root.AddCommand(c.compileCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cardsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use. With a Redis address the
// cache is shared; otherwise it is file-based under the XDG cache dir.
func (c *CLI) newRunner(ctx context.Context, noCache bool, redisAddr string) (*pipeline.Runner, error) {
	store, err := newCache(ctx, noCache, redisAddr)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Library, c.Registry, c.Logger), nil
}

func newCache(ctx context.Context, noCache bool, redisAddr string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisAddr != "" {
		return cache.NewRedisCache(ctx, redisAddr)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/cardplay/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatDOT}
	}
	return strings.Split(s, ",")
}

// cardsCommand lists the registered builtin cards and adapters.
func (c *CLI) cardsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cards",
		Short: "List available cards and adapters",
		RunE: func(cmd *cobra.Command, args []string) error {
			printInfo("Cards")
			for _, id := range c.Library.IDs() {
				crd, err := c.Library.Resolve(id)
				if err != nil {
					continue
				}
				printKeyValue(id, describeSignature(crd.Signature()))
			}
			printInfo("Adapters")
			for _, a := range c.Registry.Adapters() {
				printKeyValue(a.ID, describeAdapter(a))
			}
			return nil
		},
	}
}
