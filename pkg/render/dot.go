// Package render turns compositions into Graphviz artifacts. A graph is
// first converted to DOT, which serves as the re-renderable intermediate
// form; SVG output is produced from the DOT string with Graphviz.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/graph"
)

// Options configures DOT generation.
type Options struct {
	// Detailed includes card IDs and port types in labels. When false,
	// only node IDs and port names are shown.
	Detailed bool

	// Resolver supplies cards for nodes that carry only a card ID, so
	// detailed labels can include port types. Optional.
	Resolver card.Resolver
}

// ToDOT converts a composition graph to Graphviz DOT format. Edges are
// labeled with their source and target ports. The resulting string can be
// rendered with [RenderSVG].
func ToDOT(g graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		label := nodeLabel(g, n, opts)
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.ID, label)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q, fontsize=10];\n",
			e.Source, e.Target, e.SourcePort+" → "+e.TargetPort)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(g graph.Graph, n graph.Node, opts Options) string {
	label := n.ID
	if n.CardID != "" && n.CardID != n.ID {
		label += "\n" + n.CardID
	}
	if !opts.Detailed {
		return label
	}

	c := n.Card
	if c == nil && opts.Resolver != nil {
		c, _ = opts.Resolver.Resolve(n.CardID)
	}
	if c == nil {
		return label
	}

	sig := c.Signature()
	var ports []string
	for _, p := range sig.Inputs {
		ports = append(ports, fmt.Sprintf("%s: %s", p.ID, p.Type))
	}
	for _, p := range sig.Outputs {
		ports = append(ports, fmt.Sprintf("%s: %s", p.ID, p.Type))
	}
	if len(ports) > 0 {
		label += "\n" + strings.Join(ports, "\n")
	}
	return label
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element to a zero-origin viewBox
// with explicit pixel dimensions, so artifacts embed predictably.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
