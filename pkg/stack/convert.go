package stack

import (
	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/graph"
)

// ToGraph converts the stack into an equivalent graph. Each entry becomes a
// node carrying the entry's card, keyed by the entry ID so round trips keep
// identity. Serial stacks emit one edge per adjacent pair, wired first
// output to first input; parallel stacks emit no edges and rely on the
// compiler's fan-out.
func (s Stack) ToGraph() graph.Graph {
	meta := make(graph.Metadata, len(s.Meta))
	for k, v := range s.Meta {
		meta[k] = v
	}
	g := graph.New(meta)

	for _, e := range s.Entries {
		n := graph.NewNodeFor(e.Card)
		n.ID = e.ID
		g, _ = g.AddNode(n)
	}
	if s.Mode != ModeSerial {
		return g
	}

	for i := 0; i < len(s.Entries)-1; i++ {
		a, b := s.Entries[i], s.Entries[i+1]
		srcPort, dstPort := card.PortOut, card.PortIn
		if p, ok := a.Card.Signature().FirstOutput(); ok {
			srcPort = p.ID
		}
		if p, ok := b.Card.Signature().FirstInput(); ok {
			dstPort = p.ID
		}
		g, _ = g.Connect(a.ID, srcPort, b.ID, dstPort)
	}
	return g
}

// FromGraph converts a graph into a serial stack when the graph forms a
// single simple path: every node has in-degree and out-degree at most one,
// with exactly one source, one sink and one connected component. Any
// branching, cycle or disconnection makes the graph unrepresentable and
// returns nil; this is an expected outcome, not an error. Node cards are
// taken from the nodes when attached, otherwise resolved via res. An empty
// graph converts to an empty stack.
func FromGraph(g graph.Graph, res card.Resolver) *Stack {
	meta := make(Metadata, len(g.Meta))
	for k, v := range g.Meta {
		meta[k] = v
	}
	s := Stack{Mode: ModeSerial, Meta: meta}
	if len(g.Nodes) == 0 {
		return &s
	}

	var start string
	for _, n := range g.Nodes {
		in, out := g.InDegree(n.ID), g.OutDegree(n.ID)
		if in > 1 || out > 1 {
			return nil
		}
		if in == 0 {
			if start != "" {
				return nil
			}
			start = n.ID
		}
	}
	if start == "" { // every node has a predecessor, so the graph is cyclic
		return nil
	}

	visited := 0
	for cur := start; cur != ""; {
		n, ok := g.Node(cur)
		if !ok {
			return nil
		}
		c := n.Card
		if c == nil {
			if res == nil {
				return nil
			}
			resolved, err := res.Resolve(n.CardID)
			if err != nil {
				return nil
			}
			c = resolved
		}
		s.Entries = append(s.Entries, Entry{ID: n.ID, Card: c, Mix: 1})
		visited++

		next := ""
		if out := g.Outgoing(cur); len(out) == 1 {
			next = out[0].Target
		}
		cur = next
	}
	if visited != len(g.Nodes) { // nodes off the path mean extra components
		return nil
	}
	return &s
}
