package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/adapter"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/cache"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/errors"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/graph"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/observability"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/patch"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators - it doesn't store
// pipeline results. Multiple goroutines can safely share one Runner with
// different options.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Resolver card.Resolver
	Registry *adapter.Registry
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses the default, a nil registry uses the process-wide default.
func NewRunner(c cache.Cache, keyer cache.Keyer, res card.Resolver, reg *adapter.Registry, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if reg == nil {
		reg = adapter.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Resolver: res,
		Registry: reg,
		Logger:   logger,
	}
}

// Execute runs the complete load → validate → compile → layout → render
// pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Load
	loadStart := time.Now()
	g, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.GraphHash = graphHash(g)

	r.Logger.Info("loaded composition",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Validate
	validateStart := time.Now()
	report, validateHit, err := r.ValidateWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	result.Report = report
	result.Stats.ValidateTime = time.Since(validateStart)
	result.CacheInfo.ValidateHit = validateHit

	r.Logger.Info("validated composition",
		"valid", report.Valid,
		"errors", len(report.Errors),
		"warnings", len(report.Warnings),
		"duration", result.Stats.ValidateTime)

	// Stage 3: Compile
	compileStart := time.Now()
	if opts.AutoAdapt {
		g = r.AutoAdapt(ctx, g)
	}
	if opts.Optimize {
		g = g.Optimize(isIdentityNode)
	}
	plan, err := r.Compile(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	result.Plan = plan
	result.Stats.CompileTime = time.Since(compileStart)

	r.Logger.Info("compiled composition",
		"steps", len(plan.Steps),
		"duration", result.Stats.CompileTime)

	// Stage 4: Layout and render
	layoutStart := time.Now()
	laid, layoutHit, err := r.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Graph = laid
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, laid, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load builds the composition graph from the configured input.
func (r *Runner) Load(ctx context.Context, opts Options) (graph.Graph, error) {
	if opts.Graph != nil {
		return opts.Graph.Clone(), nil
	}
	if opts.isPatch() {
		f, err := patch.Load(opts.Input)
		if err != nil {
			return graph.Graph{}, err
		}
		return f.BuildGraph(r.Resolver)
	}
	return graph.ReadFile(opts.Input)
}

// ValidateWithCacheInfo validates the graph with caching and returns cache
// hit info.
func (r *Runner) ValidateWithCacheInfo(ctx context.Context, g graph.Graph, opts Options) (card.Report, bool, error) {
	key := r.Keyer.ValidationKey(graphHash(g))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached card.Report
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "validate")
				return cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "validate")
	}

	start := time.Now()
	observability.Engine().OnValidateStart(ctx, g.NodeCount(), g.EdgeCount())
	report := g.Validate()
	observability.Engine().OnValidateComplete(ctx, report.Valid, len(report.Errors), time.Since(start))

	if data, err := json.Marshal(report); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLValidation)
		observability.Cache().OnCacheSet(ctx, "validate", len(data))
	}
	return report, false, nil
}

// AutoAdapt returns a new graph with adapters spliced onto every
// type-incompatible edge that has a registered adapter path. Edges with no
// path are left untouched; validation reports them.
func (r *Runner) AutoAdapt(ctx context.Context, g graph.Graph) graph.Graph {
	for _, e := range g.Edges {
		srcPort, dstPort, ok := r.edgePorts(g, e)
		if !ok || srcPort.Compatible(dstPort) {
			continue
		}
		p := r.Registry.FindPath(srcPort.Type, dstPort.Type)
		observability.Engine().OnAdapterSearch(ctx, srcPort.Type, dstPort.Type, p != nil, pathHops(p))
		if p == nil {
			continue
		}

		n := graph.NewNodeFor(p.Wrap(fmt.Sprintf("adapt:%s->%s", srcPort.Type, dstPort.Type)))
		next, err := g.AddNode(n)
		if err != nil {
			continue
		}
		next, _ = next.Disconnect(e.ID)
		next, _ = next.Connect(e.Source, e.SourcePort, n.ID, card.PortIn)
		next, _ = next.Connect(n.ID, card.PortOut, e.Target, e.TargetPort)
		g = next
	}
	return g
}

// Compile produces the execution plan. A cyclic graph is a structured
// error here: callers asking for a plan need one.
func (r *Runner) Compile(ctx context.Context, g graph.Graph) (*graph.Plan, error) {
	start := time.Now()
	observability.Engine().OnCompileStart(ctx, g.NodeCount())
	plan := g.Compile()
	if plan == nil {
		err := errors.New(errors.ErrCodeGraphCycle, "graph contains a cycle and cannot be compiled")
		observability.Engine().OnCompileComplete(ctx, g.NodeCount(), time.Since(start), err)
		return nil, err
	}
	observability.Engine().OnCompileComplete(ctx, g.NodeCount(), time.Since(start), nil)
	return plan, nil
}

// LayoutWithCacheInfo assigns node positions with caching and returns cache
// hit info. The cached value is the laid-out graph's JSON.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g graph.Graph, opts Options) (graph.Graph, bool, error) {
	key := r.Keyer.LayoutKey(graphHash(g), cache.LayoutKeyOpts{
		SpacingX: graph.LayerSpacingX,
		SpacingY: graph.NodeSpacingY,
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if cached, err := graph.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return withCards(cached, g), true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	laid := g.AutoLayout()
	if data, err := graph.Marshal(laid); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}
	return laid, false, nil
}

// RenderWithCacheInfo generates the requested artifacts with per-format
// caching. The reported hit is true only if every format was cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g graph.Graph, opts Options) (map[string][]byte, bool, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit := true
	hash := graphHash(g)

	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(hash, cache.ArtifactKeyOpts{Format: format})
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		allHit = false

		start := time.Now()
		observability.Engine().OnRenderStart(ctx, format)
		data, err := r.renderFormat(g, format, opts)
		observability.Engine().OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}

		artifacts[format] = data
		_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return artifacts, allHit, nil
}

func (r *Runner) renderFormat(g graph.Graph, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(render.ToDOT(g, render.Options{Detailed: opts.Detailed, Resolver: r.Resolver})), nil
	case FormatSVG:
		dot := render.ToDOT(g, render.Options{Detailed: opts.Detailed, Resolver: r.Resolver})
		return render.RenderSVG(dot)
	case FormatJSON:
		return graph.Marshal(g)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
	}
}

// graphHash content-addresses a graph by its canonical JSON.
func graphHash(g graph.Graph) string {
	data, err := graph.Marshal(g)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// withCards copies attached cards from src nodes onto the deserialized
// graph, which carries only card IDs.
func withCards(g, src graph.Graph) graph.Graph {
	for i := range g.Nodes {
		if n, ok := src.Node(g.Nodes[i].ID); ok {
			g.Nodes[i].Card = n.Card
		}
	}
	return g
}

func (r *Runner) edgePorts(g graph.Graph, e graph.Edge) (card.Port, card.Port, bool) {
	src, ok := g.Node(e.Source)
	if !ok {
		return card.Port{}, card.Port{}, false
	}
	dst, ok := g.Node(e.Target)
	if !ok {
		return card.Port{}, card.Port{}, false
	}
	srcCard := src.Card
	if srcCard == nil && r.Resolver != nil {
		srcCard, _ = r.Resolver.Resolve(src.CardID)
	}
	dstCard := dst.Card
	if dstCard == nil && r.Resolver != nil {
		dstCard, _ = r.Resolver.Resolve(dst.CardID)
	}
	if srcCard == nil || dstCard == nil {
		return card.Port{}, card.Port{}, false
	}
	srcPort, okOut := srcCard.Signature().Output(e.SourcePort)
	dstPort, okIn := dstCard.Signature().Input(e.TargetPort)
	return srcPort, dstPort, okOut && okIn
}

func pathHops(p *adapter.Path) int {
	if p == nil {
		return 0
	}
	return p.Hops()
}

// isIdentityNode reports whether a node's card is a pass-through, making it
// removable by Optimize.
func isIdentityNode(n graph.Node) bool {
	if n.Card == nil {
		return false
	}
	m := n.Card.Meta()
	return m.Category == "util" && m.Name == "identity"
}
