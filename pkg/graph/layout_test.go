package graph

import "testing"

// diamond builds a -> {b, c} -> d.
func diamond(t *testing.T) Graph {
	t.Helper()
	g := New(nil)
	for _, id := range []string{"a", "b", "c", "d"} {
		g, _ = g.AddNode(Node{ID: id})
	}
	g, _ = g.Connect("a", "out", "b", "in")
	g, _ = g.Connect("a", "out", "c", "in")
	g, _ = g.Connect("b", "out", "d", "in")
	g, _ = g.Connect("c", "out", "d", "in")
	return g
}

func TestLayersLongestPath(t *testing.T) {
	g := diamond(t)
	// Add a shortcut a -> d; d's layer stays the longest path, not the shortest.
	g, _ = g.Connect("a", "out", "d", "in")

	layers := g.Layers()
	want := map[string]int{"a": 0, "b": 1, "c": 1, "d": 2}
	for id, layer := range want {
		if layers[id] != layer {
			t.Errorf("layer[%s] = %d, want %d", id, layers[id], layer)
		}
	}
}

func TestAutoLayoutPositions(t *testing.T) {
	g := diamond(t).AutoLayout()

	pos := map[string]Position{}
	for _, n := range g.Nodes {
		pos[n.ID] = n.Position
	}

	if pos["a"].X != 0 || pos["a"].Y != 0 {
		t.Errorf("a at %+v, want origin", pos["a"])
	}
	if pos["b"].X != LayerSpacingX || pos["c"].X != LayerSpacingX {
		t.Errorf("layer 1 at X %v and %v, want %v", pos["b"].X, pos["c"].X, LayerSpacingX)
	}
	if pos["b"].Y == pos["c"].Y {
		t.Error("nodes sharing a layer should be stacked vertically")
	}
	if pos["d"].X != 2*LayerSpacingX {
		t.Errorf("d at X %v, want %v", pos["d"].X, 2*LayerSpacingX)
	}
}

func TestMinimap(t *testing.T) {
	if m := New(nil).Minimap(100, 100); len(m.Nodes) != 0 || m.Width != 0 {
		t.Errorf("empty minimap = %+v", m)
	}

	g := diamond(t).AutoLayout()
	m := g.Minimap(100, 50)
	if len(m.Nodes) != 4 || len(m.Edges) != 4 {
		t.Fatalf("minimap sizes = %d nodes, %d edges", len(m.Nodes), len(m.Edges))
	}
	if m.Width > 100.0001 || m.Height > 50.0001 {
		t.Errorf("minimap %vx%v exceeds the bounding box", m.Width, m.Height)
	}
	for _, n := range m.Nodes {
		if n.X < 0 || n.X > 100.0001 || n.Y < 0 || n.Y > 50.0001 {
			t.Errorf("node %s projected outside the box: (%v, %v)", n.ID, n.X, n.Y)
		}
	}
}
