package adapter

import (
	"testing"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
)

func TestFindPathSameType(t *testing.T) {
	p := NewRegistry().FindPath("number", "number")
	if p == nil {
		t.Fatal("same-type path should exist")
	}
	if p.Hops() != 0 || p.TotalCost != 0 || !p.Lossless {
		t.Errorf("same-type path = %+v", p)
	}
}

func TestFindPathNil(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(mkAdapter("ab", "a", "b", 1, true))

	if p := reg.FindPath("a", "z"); p != nil {
		t.Errorf("path to unknown type = %v, want nil", p)
	}
	if p := reg.FindPath("z", "a"); p != nil {
		t.Errorf("path from unknown type = %v, want nil", p)
	}
	// Adapters are directed: the reverse is not implied.
	if p := reg.FindPath("b", "a"); p != nil {
		t.Errorf("reverse path = %v, want nil", p)
	}
}

func TestFindPathMultiHopCost(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(mkAdapter("ab", "a", "b", 5, true))
	_ = reg.Register(mkAdapter("bc", "b", "c", 3, true))
	_ = reg.Register(mkAdapter("ac", "a", "c", 10, true))

	p := reg.FindPath("a", "c")
	if p == nil {
		t.Fatal("path should exist")
	}
	if p.TotalCost != 8 {
		t.Errorf("TotalCost = %v, want 8", p.TotalCost)
	}
	if p.Hops() != 2 {
		t.Errorf("Hops = %d, want 2", p.Hops())
	}
	if p.Adapters[0].ID != "ab" || p.Adapters[1].ID != "bc" {
		t.Errorf("chain = %v", []string{p.Adapters[0].ID, p.Adapters[1].ID})
	}
}

func TestFindPathPrefersFewerHopsOnTie(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(mkAdapter("ab", "a", "b", 4, true))
	_ = reg.Register(mkAdapter("bc", "b", "c", 4, true))
	_ = reg.Register(mkAdapter("ac", "a", "c", 8, true))

	p := reg.FindPath("a", "c")
	if p == nil {
		t.Fatal("path should exist")
	}
	if p.Hops() != 1 || p.Adapters[0].ID != "ac" {
		t.Errorf("tie should prefer the direct adapter, got %d hops", p.Hops())
	}
}

func TestFindPathLossless(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(mkAdapter("ab", "a", "b", 1, true))
	_ = reg.Register(mkAdapter("bc", "b", "c", 1, false))

	p := reg.FindPath("a", "c")
	if p == nil {
		t.Fatal("path should exist")
	}
	if p.Lossless {
		t.Error("path through a lossy hop should not be lossless")
	}
}

func TestPathWrapProcessesChain(t *testing.T) {
	double := &Adapter{
		ID: "double", SourceType: "int", TargetType: "even", Lossless: true,
		Fn: func(in card.Signal, _ *card.Context) (card.Signal, error) {
			v, _ := in.Value(card.PortIn)
			return card.Signal{card.PortOut: v.(int) * 2}, nil
		},
	}
	inc := &Adapter{
		ID: "inc", SourceType: "even", TargetType: "odd", Lossless: true,
		Fn: func(in card.Signal, _ *card.Context) (card.Signal, error) {
			v, _ := in.Value(card.PortIn)
			return card.Signal{card.PortOut: v.(int) + 1}, nil
		},
	}

	reg := NewRegistry()
	_ = reg.Register(double)
	_ = reg.Register(inc)

	p := reg.FindPath("int", "odd")
	if p == nil {
		t.Fatal("path should exist")
	}

	c := p.Wrap("int-to-odd")
	out, err := c.Process(card.Mono(5), card.NewContext())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if v, _ := out.Single(); v != 11 {
		t.Errorf("wrapped chain output = %v, want 11", v)
	}

	sig := c.Signature()
	if sig.Inputs[0].Type != "int" || sig.Outputs[0].Type != "odd" {
		t.Errorf("wrapped signature = %+v", sig)
	}
}

func TestWrapEmptyPathIsIdentity(t *testing.T) {
	p := &Path{Lossless: true}
	c := p.Wrap("noop")
	out, err := c.Process(card.Mono("x"), card.NewContext())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if v, _ := out.Single(); v != "x" {
		t.Errorf("identity wrap output = %v", v)
	}
}

func TestSuggestOrdering(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(mkAdapter("lossy-direct", "a", "c", 1, false))
	_ = reg.Register(mkAdapter("ab", "a", "b", 1, true))
	_ = reg.Register(mkAdapter("bc", "b", "c", 1, true))

	// The lossy direct adapter is cost-minimal, but the lossless chain must
	// still be surfaced and ranked above it: 0.9 beats 0.7.
	suggestions := reg.Suggest("a", "c")
	if len(suggestions) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(suggestions))
	}
	if suggestions[0].Path.Hops() != 2 || !suggestions[0].Path.Lossless {
		t.Errorf("top suggestion = %+v, want lossless two-hop chain", suggestions[0].Path)
	}
	if suggestions[0].Confidence <= suggestions[1].Confidence {
		t.Errorf("confidences not ordered: %v", []float64{suggestions[0].Confidence, suggestions[1].Confidence})
	}

	if got := reg.Suggest("a", "nope"); len(got) != 0 {
		t.Errorf("Suggest to unknown type = %v, want empty", got)
	}
}

func TestSuggestDirectOnly(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(mkAdapter("ab", "a", "b", 1, true))

	suggestions := reg.Suggest("a", "b")
	if len(suggestions) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(suggestions))
	}
	if suggestions[0].Path.Hops() != 1 || suggestions[0].Confidence != 1.0 {
		t.Errorf("suggestion = %+v", suggestions[0])
	}
}
