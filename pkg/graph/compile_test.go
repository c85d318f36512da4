package graph

import (
	"testing"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
)

// cycle builds a two-node graph with edges in both directions.
func cycle(t *testing.T) Graph {
	t.Helper()
	g := New(nil)
	g, _ = g.AddNode(Node{ID: "a"})
	g, _ = g.AddNode(Node{ID: "b"})
	g, _ = g.Connect("a", "out", "b", "in")
	g, _ = g.Connect("b", "out", "a", "in")
	return g
}

func TestTopologicalSort(t *testing.T) {
	g := New(nil)
	g, _ = g.AddNode(Node{ID: "c"})
	g, _ = g.AddNode(Node{ID: "a"})
	g, _ = g.AddNode(Node{ID: "b"})
	g, _ = g.Connect("a", "out", "b", "in")
	g, _ = g.Connect("b", "out", "c", "in")

	order := g.TopologicalSort()
	if len(order) != 3 {
		t.Fatalf("order = %v", order)
	}
	pos := map[string]int{}
	for i, id := range order {
		pos[id] = i
	}
	if pos["a"] > pos["b"] || pos["b"] > pos["c"] {
		t.Errorf("order %v violates edge direction", order)
	}
}

func TestCycleYieldsNil(t *testing.T) {
	g := cycle(t)

	if order := g.TopologicalSort(); order != nil {
		t.Errorf("TopologicalSort on cycle = %v, want nil", order)
	}
	if plan := g.Compile(); plan != nil {
		t.Errorf("Compile on cycle = %v, want nil", plan)
	}
	c, err := g.ToCard(card.Meta{ID: "loop"}, nil)
	if err != nil {
		t.Fatalf("ToCard error: %v", err)
	}
	if c != nil {
		t.Error("ToCard on cycle should return nil card")
	}
}

func TestCompilePlan(t *testing.T) {
	g, ids := chain(t,
		numCard("double", func(x float64) float64 { return x * 2 }),
		numCard("addOne", func(x float64) float64 { return x + 1 }),
	)

	plan := g.Compile()
	if plan == nil {
		t.Fatal("Compile returned nil for an acyclic graph")
	}
	if len(plan.Steps) != 2 {
		t.Errorf("Steps = %v", plan.Steps)
	}
	if len(plan.Inputs) != 1 || plan.Inputs[0] != ids[0] {
		t.Errorf("Inputs = %v, want [%s]", plan.Inputs, ids[0])
	}
	if len(plan.Outputs) != 1 || plan.Outputs[0] != ids[1] {
		t.Errorf("Outputs = %v, want [%s]", plan.Outputs, ids[1])
	}
}

func TestToCardProcess(t *testing.T) {
	g, _ := chain(t,
		numCard("double", func(x float64) float64 { return x * 2 }),
		numCard("addOne", func(x float64) float64 { return x + 1 }),
	)

	c, err := g.ToCard(card.Meta{ID: "pipeline", Name: "pipeline"}, nil)
	if err != nil {
		t.Fatalf("ToCard error: %v", err)
	}
	if c == nil {
		t.Fatal("ToCard returned nil card")
	}

	out, err := c.Process(card.Mono(5.0), card.NewContext())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if v, ok := out.Single(); !ok || v != 11.0 {
		t.Errorf("Process(5) = %v, want 11", v)
	}
}

func TestToCardFanOutRunsSourceOnce(t *testing.T) {
	runs := 0
	source := card.NewFunc(
		card.Meta{ID: "source"},
		card.MonoSignature("number"),
		func(in card.Signal, _ *card.Context) (card.Signal, error) {
			runs++
			v, _ := in.Value(card.PortIn)
			return card.Signal{card.PortOut: v}, nil
		},
	)
	double := numCard("double", func(x float64) float64 { return x * 2 })
	negate := numCard("negate", func(x float64) float64 { return -x })

	g := New(nil)
	sn := NewNodeFor(source)
	dn := NewNodeFor(double)
	nn := NewNodeFor(negate)
	g, _ = g.AddNode(sn)
	g, _ = g.AddNode(dn)
	g, _ = g.AddNode(nn)
	g, _ = g.Connect(sn.ID, card.PortOut, dn.ID, card.PortIn)
	g, _ = g.Connect(sn.ID, card.PortOut, nn.ID, card.PortIn)

	c, err := g.ToCard(card.Meta{ID: "fanout"}, nil)
	if err != nil {
		t.Fatalf("ToCard error: %v", err)
	}

	out, err := c.Process(card.Mono(3.0), card.NewContext())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if runs != 1 {
		t.Errorf("source ran %d times, want 1", runs)
	}
	if v, ok := out.Value(dn.ID + "." + card.PortOut); !ok || v != 6.0 {
		t.Errorf("double branch = %v, %v", v, ok)
	}
	if v, ok := out.Value(nn.ID + "." + card.PortOut); !ok || v != -3.0 {
		t.Errorf("negate branch = %v, %v", v, ok)
	}
}

func TestFindPathBFS(t *testing.T) {
	g, ids := chain(t,
		numCard("a", func(x float64) float64 { return x }),
		numCard("b", func(x float64) float64 { return x }),
		numCard("c", func(x float64) float64 { return x }),
	)

	path := g.FindPath(ids[0], ids[2])
	if len(path) != 3 || path[0] != ids[0] || path[2] != ids[2] {
		t.Errorf("FindPath = %v", path)
	}
	if p := g.FindPath(ids[2], ids[0]); p != nil {
		t.Errorf("reverse FindPath = %v, want nil", p)
	}
	if p := g.FindPath(ids[1], ids[1]); len(p) != 1 {
		t.Errorf("self FindPath = %v, want one element", p)
	}
	if p := g.FindPath("missing", ids[0]); p != nil {
		t.Errorf("FindPath from missing node = %v, want nil", p)
	}
}
