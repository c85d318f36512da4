package graph

import (
	"slices"

	"github.com/google/uuid"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/errors"
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
type Metadata map[string]any

func (m Metadata) clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Position is a node's 2D coordinate in the editing surface.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a vertex of a composition graph. A node references its card either
// by ID (for serialized graphs, resolved by a card.Resolver at compile time)
// or directly via Card (for in-memory composition).
type Node struct {
	ID       string
	CardID   string
	Card     card.Card // not serialized; takes precedence over CardID
	Position Position
	Meta     Metadata
}

func (n Node) clone() Node {
	n.Meta = n.Meta.clone()
	return n
}

// Edge is a directed connection from one node's output port to another
// node's input port. At most one edge exists per
// (source, sourcePort, target, targetPort) tuple.
type Edge struct {
	ID         string
	Source     string
	SourcePort string
	Target     string
	TargetPort string
}

// Graph is a node/edge composition of arbitrary topology. A graph may be
// transiently invalid (cyclic, disconnected) while being edited; validity is
// checked on demand by Validate, never enforced per mutation.
//
// All mutators are pure: they return a new Graph and never modify their
// receiver. Snapshot, restore and diff therefore reduce to plain value
// operations.
type Graph struct {
	Nodes []Node
	Edges []Edge
	Meta  Metadata
}

// New creates an empty graph with optional graph-level metadata.
func New(meta Metadata) Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return Graph{Meta: meta}
}

// NewNode creates a node with a generated unique ID referencing the given
// card ID. Position defaults to the origin.
func NewNode(cardID string) Node {
	return Node{ID: uuid.NewString(), CardID: cardID, Meta: Metadata{}}
}

// NewNodeFor creates a node with a generated unique ID holding the card
// directly. The node's CardID mirrors the card's meta ID for serialization.
func NewNodeFor(c card.Card) Node {
	n := NewNode(c.Meta().ID)
	n.Card = c
	return n
}

// NewEdge creates an edge with a generated unique ID.
func NewEdge(source, sourcePort, target, targetPort string) Edge {
	return Edge{
		ID:         uuid.NewString(),
		Source:     source,
		SourcePort: sourcePort,
		Target:     target,
		TargetPort: targetPort,
	}
}

// Clone returns a deep copy of the graph.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: slices.Clone(g.Edges),
		Meta:  g.Meta.clone(),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = n.clone()
	}
	return out
}

// Snapshot returns an opaque deep copy suitable for undo. Restoring is
// value assignment of the snapshot.
func (g Graph) Snapshot() Graph { return g.Clone() }

// Restore returns the snapshot as the current graph value. Provided for
// symmetry with Snapshot.
func Restore(snapshot Graph) Graph { return snapshot.Clone() }

// Node returns the node with the given ID.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Edge returns the edge with the given ID.
func (g Graph) Edge(id string) (Edge, bool) {
	for _, e := range g.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// NodeCount returns the number of nodes.
func (g Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g Graph) EdgeCount() int { return len(g.Edges) }

// Incoming returns the edges targeting the node, in insertion order.
func (g Graph) Incoming(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Target == id {
			out = append(out, e)
		}
	}
	return out
}

// Outgoing returns the edges originating at the node, in insertion order.
func (g Graph) Outgoing(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// InDegree returns the number of incoming edges of the node.
func (g Graph) InDegree(id string) int { return len(g.Incoming(id)) }

// OutDegree returns the number of outgoing edges of the node.
func (g Graph) OutDegree(id string) int { return len(g.Outgoing(id)) }

// Sources returns the IDs of nodes with no incoming edges, in node order.
func (g Graph) Sources() []string {
	var out []string
	for _, n := range g.Nodes {
		if g.InDegree(n.ID) == 0 {
			out = append(out, n.ID)
		}
	}
	return out
}

// Sinks returns the IDs of nodes with no outgoing edges, in node order.
func (g Graph) Sinks() []string {
	var out []string
	for _, n := range g.Nodes {
		if g.OutDegree(n.ID) == 0 {
			out = append(out, n.ID)
		}
	}
	return out
}

// AddNode returns a new graph with the node appended.
// Node IDs are a primary key: a duplicate ID is a structured error.
func (g Graph) AddNode(n Node) (Graph, error) {
	if n.ID == "" {
		return Graph{}, errors.New(errors.ErrCodeInvalidInput, "node ID must not be empty")
	}
	if _, exists := g.Node(n.ID); exists {
		return Graph{}, errors.New(errors.ErrCodeDuplicateNode, "node %q already exists", n.ID)
	}
	out := g.Clone()
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	out.Nodes = append(out.Nodes, n)
	return out, nil
}

// RemoveNode returns a new graph without the node, cascading removal of all
// incident edges. Returns ErrCodeUnknownNode if the node is absent.
func (g Graph) RemoveNode(id string) (Graph, error) {
	if _, ok := g.Node(id); !ok {
		return Graph{}, errors.New(errors.ErrCodeUnknownNode, "node %q not found", id)
	}
	out := g.Clone()
	out.Nodes = slices.DeleteFunc(out.Nodes, func(n Node) bool { return n.ID == id })
	out.Edges = slices.DeleteFunc(out.Edges, func(e Edge) bool {
		return e.Source == id || e.Target == id
	})
	return out, nil
}

// Connect returns a new graph with an edge from the source node's output
// port to the target node's input port. Connect is idempotent: repeated
// identical calls create no duplicate edge. Returns ErrCodeUnknownNode if
// either endpoint is missing.
func (g Graph) Connect(source, sourcePort, target, targetPort string) (Graph, error) {
	if _, ok := g.Node(source); !ok {
		return Graph{}, errors.New(errors.ErrCodeUnknownNode, "source node %q not found", source)
	}
	if _, ok := g.Node(target); !ok {
		return Graph{}, errors.New(errors.ErrCodeUnknownNode, "target node %q not found", target)
	}
	for _, e := range g.Edges {
		if e.Source == source && e.SourcePort == sourcePort && e.Target == target && e.TargetPort == targetPort {
			return g.Clone(), nil
		}
	}
	out := g.Clone()
	out.Edges = append(out.Edges, NewEdge(source, sourcePort, target, targetPort))
	return out, nil
}

// Disconnect returns a new graph without the edge.
// Returns ErrCodeUnknownEdge if the edge is absent.
func (g Graph) Disconnect(edgeID string) (Graph, error) {
	if _, ok := g.Edge(edgeID); !ok {
		return Graph{}, errors.New(errors.ErrCodeUnknownEdge, "edge %q not found", edgeID)
	}
	out := g.Clone()
	out.Edges = slices.DeleteFunc(out.Edges, func(e Edge) bool { return e.ID == edgeID })
	return out, nil
}

// resolveCard returns the runnable card for a node: the attached Card if
// set, otherwise the card resolved from CardID.
func (g Graph) resolveCard(n Node, res card.Resolver) (card.Card, error) {
	if n.Card != nil {
		return n.Card, nil
	}
	if res == nil {
		return nil, errors.New(errors.ErrCodeUnknownCard, "node %q has no card and no resolver was supplied", n.ID)
	}
	return res.Resolve(n.CardID)
}
