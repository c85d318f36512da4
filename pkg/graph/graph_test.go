package graph

import (
	"testing"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/errors"
)

// numCard builds a single-in/single-out number card applying fn.
func numCard(id string, fn func(x float64) float64) card.Card {
	return card.NewFunc(
		card.Meta{ID: id, Name: id},
		card.MonoSignature("number"),
		func(in card.Signal, _ *card.Context) (card.Signal, error) {
			v, ok := in.Value(card.PortIn)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "missing input")
			}
			return card.Signal{card.PortOut: fn(v.(float64))}, nil
		},
	)
}

// chain builds a linear graph from the given cards and returns it with the
// node IDs in order.
func chain(t *testing.T, cards ...card.Card) (Graph, []string) {
	t.Helper()
	g := New(nil)
	var ids []string
	var err error
	for _, c := range cards {
		n := NewNodeFor(c)
		if g, err = g.AddNode(n); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
		ids = append(ids, n.ID)
	}
	for i := 0; i < len(ids)-1; i++ {
		if g, err = g.Connect(ids[i], card.PortOut, ids[i+1], card.PortIn); err != nil {
			t.Fatalf("Connect: %v", err)
		}
	}
	return g, ids
}

func TestAddNode(t *testing.T) {
	g := New(nil)

	g2, err := g.AddNode(Node{ID: "a"})
	if err != nil {
		t.Fatalf("AddNode error: %v", err)
	}
	if g.NodeCount() != 0 {
		t.Error("AddNode must not modify the receiver")
	}
	if g2.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1", g2.NodeCount())
	}

	if _, err := g2.AddNode(Node{ID: "a"}); !errors.Is(err, errors.ErrCodeDuplicateNode) {
		t.Errorf("duplicate AddNode error = %v, want DUPLICATE_NODE", err)
	}
	if _, err := g.AddNode(Node{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty-ID AddNode error = %v, want INVALID_INPUT", err)
	}
}

func TestRemoveNodeCascades(t *testing.T) {
	g := New(nil)
	g, _ = g.AddNode(Node{ID: "a"})
	g, _ = g.AddNode(Node{ID: "b"})
	g, _ = g.AddNode(Node{ID: "c"})
	g, _ = g.Connect("a", "out", "b", "in")
	g, _ = g.Connect("b", "out", "c", "in")

	g2, err := g.RemoveNode("b")
	if err != nil {
		t.Fatalf("RemoveNode error: %v", err)
	}
	if g2.NodeCount() != 2 {
		t.Errorf("NodeCount = %d, want 2", g2.NodeCount())
	}
	if g2.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d, want 0 after cascade", g2.EdgeCount())
	}
	if g.EdgeCount() != 2 {
		t.Error("RemoveNode must not modify the receiver")
	}

	if _, err := g2.RemoveNode("b"); !errors.Is(err, errors.ErrCodeUnknownNode) {
		t.Errorf("absent RemoveNode error = %v, want UNKNOWN_NODE", err)
	}
}

func TestConnectIdempotent(t *testing.T) {
	g := New(nil)
	g, _ = g.AddNode(Node{ID: "a"})
	g, _ = g.AddNode(Node{ID: "b"})

	g, err := g.Connect("a", "out", "b", "in")
	if err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	g, err = g.Connect("a", "out", "b", "in")
	if err != nil {
		t.Fatalf("repeat Connect error: %v", err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1 after repeated Connect", g.EdgeCount())
	}

	// A different port tuple is a distinct edge.
	g, _ = g.Connect("a", "out", "b", "mod")
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount = %d, want 2", g.EdgeCount())
	}

	if _, err := g.Connect("a", "out", "nope", "in"); !errors.Is(err, errors.ErrCodeUnknownNode) {
		t.Errorf("Connect to missing node error = %v, want UNKNOWN_NODE", err)
	}
}

func TestDisconnect(t *testing.T) {
	g := New(nil)
	g, _ = g.AddNode(Node{ID: "a"})
	g, _ = g.AddNode(Node{ID: "b"})
	g, _ = g.Connect("a", "out", "b", "in")

	edgeID := g.Edges[0].ID
	g2, err := g.Disconnect(edgeID)
	if err != nil {
		t.Fatalf("Disconnect error: %v", err)
	}
	if g2.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d, want 0", g2.EdgeCount())
	}

	if _, err := g2.Disconnect(edgeID); !errors.Is(err, errors.ErrCodeUnknownEdge) {
		t.Errorf("absent Disconnect error = %v, want UNKNOWN_EDGE", err)
	}
}

func TestSnapshotRestore(t *testing.T) {
	g := New(Metadata{"name": "patch"})
	g, _ = g.AddNode(Node{ID: "a"})
	snap := g.Snapshot()

	g, _ = g.AddNode(Node{ID: "b"})
	if g.NodeCount() != 2 {
		t.Fatalf("NodeCount = %d", g.NodeCount())
	}

	restored := Restore(snap)
	if restored.NodeCount() != 1 {
		t.Errorf("restored NodeCount = %d, want 1", restored.NodeCount())
	}
	if restored.Meta["name"] != "patch" {
		t.Errorf("restored meta = %v", restored.Meta)
	}

	// Mutating the restored value must not leak into the snapshot.
	restored.Nodes[0].ID = "mutated"
	if snap.Nodes[0].ID != "a" {
		t.Error("snapshot shares state with restored value")
	}
}

func TestDegreesAndEndpoints(t *testing.T) {
	g := New(nil)
	g, _ = g.AddNode(Node{ID: "a"})
	g, _ = g.AddNode(Node{ID: "b"})
	g, _ = g.AddNode(Node{ID: "c"})
	g, _ = g.Connect("a", "out", "b", "in")
	g, _ = g.Connect("a", "out", "c", "in")

	if d := g.OutDegree("a"); d != 2 {
		t.Errorf("OutDegree(a) = %d, want 2", d)
	}
	if d := g.InDegree("b"); d != 1 {
		t.Errorf("InDegree(b) = %d, want 1", d)
	}
	if src := g.Sources(); len(src) != 1 || src[0] != "a" {
		t.Errorf("Sources = %v", src)
	}
	if sinks := g.Sinks(); len(sinks) != 2 {
		t.Errorf("Sinks = %v", sinks)
	}
}
