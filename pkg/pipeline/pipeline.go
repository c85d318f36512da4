// Package pipeline provides the core composition pipeline for cardplay.
//
// This package implements the complete load → validate → compile → layout →
// render pipeline used by both the CLI and the HTTP API. Centralizing the
// logic keeps behavior identical across entry points.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: Build a composition graph from a patch file or serialized JSON
//  2. Validate: Collect structural problems (cycles, type mismatches)
//  3. Compile: Produce an execution plan and optionally auto-insert adapters
//  4. Layout/Render: Assign positions and generate DOT or SVG artifacts
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, library, registry, logger)
//	opts := pipeline.Options{
//	    Input:   "wobble.toml",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"strings"
	"time"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/errors"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/graph"
)

// Default frame dimensions for minimap projection.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatJSON: true,
}

// Options contains all configuration for the composition pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input is a path to a TOML patch file or a JSON graph file. The
	// format is detected by extension.
	Input string `json:"input,omitempty"`

	// Graph supplies an in-memory graph instead of Input (API usage).
	Graph *graph.Graph `json:"-"`

	// AutoAdapt inserts registered adapters on type-incompatible edges
	// before compiling.
	AutoAdapt bool `json:"auto_adapt,omitempty"`

	// Optimize removes identity pass-through nodes before layout.
	Optimize bool `json:"optimize,omitempty"`

	// Layout options
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Refresh bypasses the cache for every stage.
	Refresh bool `json:"refresh,omitempty"`
}

// ValidateAndSetDefaults checks option consistency and fills defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Input == "" && o.Graph == nil {
		return errors.New(errors.ErrCodeInvalidInput, "either input path or graph is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatDOT}
	}
	for _, f := range o.Formats {
		if !ValidFormats[f] {
			return errors.New(errors.ErrCodeUnsupported, "unsupported format %q", f)
		}
	}
	return nil
}

// isPatch reports whether the input path looks like a TOML patch file.
func (o Options) isPatch() bool {
	return strings.HasSuffix(o.Input, ".toml")
}

// Stats records per-stage timing and graph dimensions.
type Stats struct {
	LoadTime     time.Duration `json:"load_time"`
	ValidateTime time.Duration `json:"validate_time"`
	CompileTime  time.Duration `json:"compile_time"`
	LayoutTime   time.Duration `json:"layout_time"`
	RenderTime   time.Duration `json:"render_time"`
	NodeCount    int           `json:"node_count"`
	EdgeCount    int           `json:"edge_count"`
}

// CacheInfo records which stages were served from cache.
type CacheInfo struct {
	ValidateHit bool `json:"validate_hit"`
	LayoutHit   bool `json:"layout_hit"`
	RenderHit   bool `json:"render_hit"`
}

// Result is the output of a full pipeline execution.
type Result struct {
	Graph     graph.Graph       `json:"-"`
	GraphHash string            `json:"graph_hash"`
	Report    card.Report       `json:"report"`
	Plan      *graph.Plan       `json:"plan,omitempty"`
	Artifacts map[string][]byte `json:"-"`
	Stats     Stats             `json:"stats"`
	CacheInfo CacheInfo         `json:"cache_info"`
}
