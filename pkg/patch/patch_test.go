package patch

import (
	"testing"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/errors"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/stack"
)

func testLibrary(t *testing.T) *card.Library {
	t.Helper()
	lib := card.NewLibrary()
	for _, c := range []card.Card{
		card.Identity("identity"),
		mono("double", func(x float64) float64 { return x * 2 }),
		mono("addOne", func(x float64) float64 { return x + 1 }),
	} {
		if err := lib.Register(c); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	return lib
}

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

func TestParseStack(t *testing.T) {
	f, err := Parse([]byte(`
name = "wobble"
kind = "stack"
mode = "serial"

[[cards]]
card = "double"

[[cards]]
card = "addOne"
mix = 0.5
bypassed = true
`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if f.Name != "wobble" || f.Kind != KindStack || f.Mode != "serial" {
		t.Errorf("header = %+v", f)
	}
	if len(f.Cards) != 2 || f.Cards[1].Mix != 0.5 || !f.Cards[1].Bypassed {
		t.Errorf("cards = %+v", f.Cards)
	}
}

func TestParseInfersKind(t *testing.T) {
	f, err := Parse([]byte(`
[[nodes]]
id = "a"
card = "identity"
`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if f.Kind != KindGraph {
		t.Errorf("Kind = %q, want graph", f.Kind)
	}

	f, err = Parse([]byte(`[[cards]]
card = "identity"
`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if f.Kind != KindStack || f.Mode != string(stack.ModeSerial) {
		t.Errorf("defaults = kind %q, mode %q", f.Kind, f.Mode)
	}
}

func TestParseRejects(t *testing.T) {
	if _, err := Parse([]byte(`kind = "sideways"`)); !errors.Is(err, errors.ErrCodeInvalidPatch) {
		t.Errorf("unknown kind error = %v, want INVALID_PATCH", err)
	}
	if _, err := Parse([]byte(`name = [broken`)); !errors.Is(err, errors.ErrCodeInvalidPatch) {
		t.Errorf("malformed TOML error = %v, want INVALID_PATCH", err)
	}
}

func TestBuildStack(t *testing.T) {
	f, err := Parse([]byte(`
name = "pipeline"

[[cards]]
card = "double"

[[cards]]
card = "addOne"
mix = 0.5
`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	s, err := f.BuildStack(testLibrary(t))
	if err != nil {
		t.Fatalf("BuildStack error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if s.Entries[0].Card.Meta().ID != "double" {
		t.Errorf("first entry = %q", s.Entries[0].Card.Meta().ID)
	}
	if s.Entries[1].Mix != 0.5 {
		t.Errorf("Mix = %v, want 0.5", s.Entries[1].Mix)
	}
	if s.Meta["name"] != "pipeline" {
		t.Errorf("meta = %v", s.Meta)
	}
}

func TestBuildStackUnknownCard(t *testing.T) {
	f, _ := Parse([]byte(`[[cards]]
card = "mystery"
`))
	if _, err := f.BuildStack(testLibrary(t)); !errors.Is(err, errors.ErrCodeUnknownCard) {
		t.Errorf("BuildStack error = %v, want UNKNOWN_CARD", err)
	}
}

func TestBuildGraph(t *testing.T) {
	f, err := Parse([]byte(`
kind = "graph"

[[nodes]]
id = "src"
card = "double"

[[nodes]]
id = "dst"
card = "addOne"
x = 220.0

[[edges]]
source = "src"
source_port = "out"
target = "dst"
target_port = "in"
`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	g, err := f.BuildGraph(testLibrary(t))
	if err != nil {
		t.Fatalf("BuildGraph error: %v", err)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Fatalf("graph sizes = %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
	n, ok := g.Node("dst")
	if !ok || n.Position.X != 220 {
		t.Errorf("node dst = %+v, %v", n, ok)
	}

	// The built graph runs end to end.
	c, err := g.ToCard(card.Meta{ID: "compiled"}, nil)
	if err != nil {
		t.Fatalf("ToCard error: %v", err)
	}
	out, err := c.Process(card.Mono(5.0), card.NewContext())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if v, _ := out.Single(); v != 11.0 {
		t.Errorf("compiled output = %v, want 11", v)
	}
}

func TestBuildGraphFromStackPatch(t *testing.T) {
	f, _ := Parse([]byte(`[[cards]]
card = "double"

[[cards]]
card = "addOne"
`))
	g, err := f.BuildGraph(testLibrary(t))
	if err != nil {
		t.Fatalf("BuildGraph error: %v", err)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("converted graph sizes = %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
}
