// Package patch loads composition descriptions from TOML patch files. A
// patch file names cards by library ID and describes either a stack (an
// ordered card list with per-entry state) or a graph (nodes and edges),
// which the CLI and server build into live compositions with a resolver.
package patch

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/errors"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/graph"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/stack"
)

// Kinds of composition a patch file can describe.
const (
	KindStack = "stack"
	KindGraph = "graph"
)

// File is the decoded form of a patch file.
//
//	name = "wobble"
//	kind = "stack"
//	mode = "serial"
//
//	[[cards]]
//	card = "osc"
//
//	[[cards]]
//	card = "filter"
//	mix = 0.5
type File struct {
	Name string `toml:"name"`
	Kind string `toml:"kind"`

	// Stack form
	Mode  string      `toml:"mode"`
	Cards []CardEntry `toml:"cards"`

	// Graph form
	Nodes []NodeEntry `toml:"nodes"`
	Edges []EdgeEntry `toml:"edges"`
}

// CardEntry is one stack slot in a patch file.
type CardEntry struct {
	Card     string  `toml:"card"`
	Bypassed bool    `toml:"bypassed"`
	Solo     bool    `toml:"solo"`
	Mix      float64 `toml:"mix"`
}

// NodeEntry is one graph node in a patch file.
type NodeEntry struct {
	ID   string  `toml:"id"`
	Card string  `toml:"card"`
	X    float64 `toml:"x"`
	Y    float64 `toml:"y"`
}

// EdgeEntry is one graph edge in a patch file.
type EdgeEntry struct {
	Source     string `toml:"source"`
	SourcePort string `toml:"source_port"`
	Target     string `toml:"target"`
	TargetPort string `toml:"target_port"`
}

// Parse decodes patch file bytes.
func Parse(data []byte) (File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return File{}, errors.Wrap(errors.ErrCodeInvalidPatch, err, "decode patch")
	}
	if f.Kind == "" {
		if len(f.Nodes) > 0 {
			f.Kind = KindGraph
		} else {
			f.Kind = KindStack
		}
	}
	if f.Kind != KindStack && f.Kind != KindGraph {
		return File{}, errors.New(errors.ErrCodeInvalidPatch, "unknown patch kind %q", f.Kind)
	}
	if f.Mode == "" {
		f.Mode = string(stack.ModeSerial)
	}
	return f, nil
}

// Load reads and decodes a patch file from disk.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, errors.Wrap(errors.ErrCodeInvalidPatch, err, "read patch %s", path)
	}
	return Parse(data)
}

// BuildStack builds the stack described by a stack-kind patch, resolving
// card IDs through res.
func (f File) BuildStack(res card.Resolver) (stack.Stack, error) {
	if f.Kind != KindStack {
		return stack.Stack{}, errors.New(errors.ErrCodeInvalidPatch, "patch %q is not a stack", f.Name)
	}

	s, err := stack.New(nil, stack.Mode(f.Mode), stack.Metadata(f.meta()))
	if err != nil {
		return stack.Stack{}, err
	}
	for i, e := range f.Cards {
		c, err := res.Resolve(e.Card)
		if err != nil {
			return stack.Stack{}, err
		}
		s = s.InsertCard(c, i)
		id := s.Entries[i].ID
		if e.Bypassed {
			s, _ = s.Bypass(id, true)
		}
		if e.Solo {
			s, _ = s.Solo(id, true)
		}
		if e.Mix > 0 && e.Mix < 1 {
			s, _ = s.SetMix(id, e.Mix)
		}
	}
	return s, nil
}

// BuildGraph builds the graph described by the patch. Stack-kind patches
// are built and converted, so every patch yields a graph.
func (f File) BuildGraph(res card.Resolver) (graph.Graph, error) {
	if f.Kind == KindStack {
		s, err := f.BuildStack(res)
		if err != nil {
			return graph.Graph{}, err
		}
		return s.ToGraph(), nil
	}

	g := graph.New(graph.Metadata(f.meta()))
	for _, ne := range f.Nodes {
		c, err := res.Resolve(ne.Card)
		if err != nil {
			return graph.Graph{}, err
		}
		n := graph.NewNodeFor(c)
		if ne.ID != "" {
			n.ID = ne.ID
		}
		n.Position = graph.Position{X: ne.X, Y: ne.Y}
		if g, err = g.AddNode(n); err != nil {
			return graph.Graph{}, err
		}
	}
	for _, ee := range f.Edges {
		var err error
		if g, err = g.Connect(ee.Source, ee.SourcePort, ee.Target, ee.TargetPort); err != nil {
			return graph.Graph{}, err
		}
	}
	return g, nil
}

func (f File) meta() map[string]any {
	m := map[string]any{}
	if f.Name != "" {
		m["name"] = f.Name
	}
	return m
}
