package render

import (
	"strings"
	"testing"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/graph"
)

func testGraph(t *testing.T) graph.Graph {
	t.Helper()
	g := graph.New(nil)
	g, _ = g.AddNode(graph.Node{ID: "osc", CardID: "sine"})
	g, _ = g.AddNode(graph.Node{ID: "amp", CardID: "gain"})
	g, _ = g.Connect("osc", "out", "amp", "in")
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testGraph(t), Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=LR",
		`"osc"`,
		`"amp"`,
		`"osc" -> "amp"`,
		"out → in",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	// Compact labels carry the card ID but no port types.
	if strings.Contains(dot, "number") {
		t.Errorf("compact DOT leaked port types:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	lib := card.NewLibrary()
	_ = lib.Register(card.NewFunc(
		card.Meta{ID: "sine", Name: "sine"},
		card.MonoSignature("number"),
		func(in card.Signal, _ *card.Context) (card.Signal, error) { return in, nil },
	))

	dot := ToDOT(testGraph(t), Options{Detailed: true, Resolver: lib})
	if !strings.Contains(dot, "in: number") || !strings.Contains(dot, "out: number") {
		t.Errorf("detailed DOT missing port types:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	svg := []byte(`<svg width="8pt" height="6pt" viewBox="0.00 0.00 116.00 48.00" xmlns="http://www.w3.org/2000/svg">`)
	out := string(normalizeViewBox(svg))

	if !strings.Contains(out, `viewBox="0 0 116.00 48.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="116"`) || !strings.Contains(out, `height="48"`) {
		t.Errorf("pixel dimensions missing: %s", out)
	}

	// Content without a viewBox passes through untouched.
	plain := []byte("<svg>")
	if got := normalizeViewBox(plain); string(got) != "<svg>" {
		t.Errorf("plain svg rewritten: %s", got)
	}
}
