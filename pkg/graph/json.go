package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// nodeJSON and edgeJSON define the canonical wire format:
//
//	{
//	  "nodes": [{"id": "a", "card_id": "osc", "position": {"x": 0, "y": 0}}],
//	  "edges": [{"id": "e1", "source": "a", "source_port": "out",
//	             "target": "b", "target_port": "in"}],
//	  "meta": {"name": "patch"}
//	}
//
// The round trip through Marshal/Unmarshal is exact on IDs, positions and
// metadata. Card behavior is not serialized; deserialized graphs carry only
// card IDs and need a card.Resolver to compile.
type graphJSON struct {
	Nodes []nodeJSON `json:"nodes"`
	Edges []edgeJSON `json:"edges"`
	Meta  Metadata   `json:"meta,omitempty"`
}

type nodeJSON struct {
	ID       string   `json:"id"`
	CardID   string   `json:"card_id,omitempty"`
	Position Position `json:"position"`
	Meta     Metadata `json:"meta,omitempty"`
}

type edgeJSON struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	SourcePort string `json:"source_port"`
	Target     string `json:"target"`
	TargetPort string `json:"target_port"`
}

// Marshal serializes the graph to indented JSON bytes.
func Marshal(g Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes the graph as JSON to w.
func Write(g Graph, w io.Writer) error {
	out := graphJSON{
		Nodes: make([]nodeJSON, len(g.Nodes)),
		Edges: make([]edgeJSON, len(g.Edges)),
		Meta:  g.Meta,
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = nodeJSON{ID: n.ID, CardID: n.CardID, Position: n.Position, Meta: n.Meta}
	}
	for i, e := range g.Edges {
		out.Edges[i] = edgeJSON{ID: e.ID, Source: e.Source, SourcePort: e.SourcePort, Target: e.Target, TargetPort: e.TargetPort}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes the graph to a JSON file with 0644 permissions.
func WriteFile(g Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, f)
}

// Unmarshal deserializes JSON bytes into a graph.
func Unmarshal(data []byte) (Graph, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes a JSON graph from r.
func Read(r io.Reader) (Graph, error) {
	var data graphJSON
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return Graph{}, fmt.Errorf("decode: %w", err)
	}

	g := New(data.Meta)
	for _, n := range data.Nodes {
		g.Nodes = append(g.Nodes, Node{ID: n.ID, CardID: n.CardID, Position: n.Position, Meta: n.Meta})
	}
	for _, e := range data.Edges {
		g.Edges = append(g.Edges, Edge{ID: e.ID, Source: e.Source, SourcePort: e.SourcePort, Target: e.Target, TargetPort: e.TargetPort})
	}
	return g, nil
}

// ReadFile reads a JSON file and returns the decoded graph.
func ReadFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
