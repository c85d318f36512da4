package pipeline

import (
	"context"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/adapter"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/cache"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/errors"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/graph"
)

func mono(id string, fn func(x float64) float64) card.Card {
	return card.NewFunc(
		card.Meta{ID: id, Name: id},
		card.MonoSignature("number"),
		func(in card.Signal, _ *card.Context) (card.Signal, error) {
			v, _ := in.Value(card.PortIn)
			return card.Signal{card.PortOut: fn(v.(float64))}, nil
		},
	)
}

// quietRunner builds a runner that logs nowhere.
func quietRunner(c cache.Cache, reg *adapter.Registry) *Runner {
	return NewRunner(c, nil, nil, reg, log.New(io.Discard))
}

// linearGraph builds double -> addOne with cards attached.
func linearGraph(t *testing.T) graph.Graph {
	t.Helper()
	g := graph.New(nil)
	a := graph.NewNodeFor(mono("double", func(x float64) float64 { return x * 2 }))
	b := graph.NewNodeFor(mono("addOne", func(x float64) float64 { return x + 1 }))
	g, _ = g.AddNode(a)
	g, _ = g.AddNode(b)
	g, _ = g.Connect(a.ID, card.PortOut, b.ID, card.PortIn)
	return g
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty options error = %v, want INVALID_INPUT", err)
	}

	o = Options{Input: "x.toml"}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults error: %v", err)
	}
	if o.Width != DefaultWidth || o.Height != DefaultHeight {
		t.Errorf("dimensions = %v x %v", o.Width, o.Height)
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatDOT {
		t.Errorf("Formats = %v", o.Formats)
	}

	o = Options{Input: "x.toml", Formats: []string{"png"}}
	if err := o.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("bad format error = %v, want UNSUPPORTED", err)
	}
}

func TestExecute(t *testing.T) {
	g := linearGraph(t)
	r := quietRunner(nil, nil)

	result, err := r.Execute(context.Background(), Options{
		Graph:   &g,
		Formats: []string{FormatDOT, FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if !result.Report.Valid {
		t.Errorf("report = %+v", result.Report)
	}
	if result.Plan == nil || len(result.Plan.Steps) != 2 {
		t.Errorf("plan = %+v", result.Plan)
	}
	if result.GraphHash == "" {
		t.Error("missing graph hash")
	}
	if result.Stats.NodeCount != 2 || result.Stats.EdgeCount != 1 {
		t.Errorf("stats = %+v", result.Stats)
	}

	dot := string(result.Artifacts[FormatDOT])
	if !strings.Contains(dot, "digraph") {
		t.Errorf("dot artifact = %q", dot)
	}
	if len(result.Artifacts[FormatJSON]) == 0 {
		t.Error("missing json artifact")
	}

	// The laid-out graph has assigned positions.
	var moved bool
	for _, n := range result.Graph.Nodes {
		if n.Position.X != 0 || n.Position.Y != 0 {
			moved = true
		}
	}
	if !moved {
		t.Error("layout left every node at the origin")
	}
}

func TestExecuteCacheHits(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	g := linearGraph(t)
	r := quietRunner(c, nil)
	opts := Options{Graph: &g, Formats: []string{FormatDOT}}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute error: %v", err)
	}
	if first.CacheInfo.ValidateHit || first.CacheInfo.RenderHit {
		t.Errorf("cold run cache info = %+v", first.CacheInfo)
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute error: %v", err)
	}
	if !second.CacheInfo.ValidateHit || !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("warm run cache info = %+v", second.CacheInfo)
	}

	// Refresh bypasses every stage.
	opts.Refresh = true
	third, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("third Execute error: %v", err)
	}
	if third.CacheInfo.ValidateHit || third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh run cache info = %+v", third.CacheInfo)
	}
}

func TestExecuteCycleFails(t *testing.T) {
	g := graph.New(nil)
	g, _ = g.AddNode(graph.Node{ID: "a", Card: card.Identity("a")})
	g, _ = g.AddNode(graph.Node{ID: "b", Card: card.Identity("b")})
	g, _ = g.Connect("a", card.PortOut, "b", card.PortIn)
	g, _ = g.Connect("b", card.PortOut, "a", card.PortIn)

	r := quietRunner(nil, nil)
	_, err := r.Execute(context.Background(), Options{Graph: &g})
	if !errors.Is(err, errors.ErrCodeGraphCycle) {
		t.Errorf("Execute error = %v, want GRAPH_CYCLE", err)
	}
}

func TestAutoAdaptSplicesAdapter(t *testing.T) {
	reg := adapter.NewRegistry()
	err := reg.Register(&adapter.Adapter{
		ID:         "num-to-text",
		SourceType: "number",
		TargetType: "text",
		Cost:       1,
		Lossless:   true,
		Fn: func(in card.Signal, _ *card.Context) (card.Signal, error) {
			v, _ := in.Value(card.PortIn)
			return card.Signal{card.PortOut: strconv.FormatFloat(v.(float64), 'g', -1, 64)}, nil
		},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	shout := card.NewFunc(
		card.Meta{ID: "shout"},
		card.MonoSignature("text"),
		func(in card.Signal, _ *card.Context) (card.Signal, error) {
			v, _ := in.Value(card.PortIn)
			return card.Signal{card.PortOut: v.(string) + "!"}, nil
		},
	)

	g := graph.New(nil)
	a := graph.NewNodeFor(mono("double", func(x float64) float64 { return x * 2 }))
	b := graph.NewNodeFor(shout)
	g, _ = g.AddNode(a)
	g, _ = g.AddNode(b)
	g, _ = g.Connect(a.ID, card.PortOut, b.ID, card.PortIn)

	r := quietRunner(nil, reg)
	adapted := r.AutoAdapt(context.Background(), g)

	if adapted.NodeCount() != 3 || adapted.EdgeCount() != 2 {
		t.Fatalf("adapted sizes = %d nodes, %d edges", adapted.NodeCount(), adapted.EdgeCount())
	}

	c, err := adapted.ToCard(card.Meta{ID: "compiled"}, nil)
	if err != nil {
		t.Fatalf("ToCard error: %v", err)
	}
	out, err := c.Process(card.Mono(5.0), card.NewContext())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if v, _ := out.Single(); v != "10!" {
		t.Errorf("adapted output = %v, want 10!", v)
	}
}

func TestExecuteOptimizeDropsIdentity(t *testing.T) {
	g := graph.New(nil)
	a := graph.NewNodeFor(mono("double", func(x float64) float64 { return x * 2 }))
	pass := graph.NewNodeFor(card.Identity("pass"))
	b := graph.NewNodeFor(mono("addOne", func(x float64) float64 { return x + 1 }))
	g, _ = g.AddNode(a)
	g, _ = g.AddNode(pass)
	g, _ = g.AddNode(b)
	g, _ = g.Connect(a.ID, card.PortOut, pass.ID, card.PortIn)
	g, _ = g.Connect(pass.ID, card.PortOut, b.ID, card.PortIn)

	r := quietRunner(nil, nil)
	result, err := r.Execute(context.Background(), Options{Graph: &g, Optimize: true})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(result.Plan.Steps) != 2 {
		t.Errorf("plan steps = %v, want identity node removed", result.Plan.Steps)
	}
}
