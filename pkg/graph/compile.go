package graph

import (
	"fmt"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
)

// Plan is the execution plan of a compiled graph: node IDs in topological
// order plus the designated input (zero in-degree) and output (zero
// out-degree) nodes. Multiple inputs and outputs are legal.
type Plan struct {
	Steps   []string `json:"steps"`
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
}

// TopologicalSort returns the node IDs in an order consistent with edge
// direction, using Kahn's algorithm. Returns nil immediately if any node
// never reaches zero in-degree (a cycle is present); a partial order is
// never returned. Ordering is deterministic: ties resolve in node insertion
// order.
func (g Graph) TopologicalSort() []string {
	inDegree := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		inDegree[n.ID] = g.InDegree(n.ID)
	}

	var queue []string
	for _, n := range g.Nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	order := make([]string, 0, len(g.Nodes))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)

		for _, e := range g.Outgoing(cur) {
			inDegree[e.Target]--
			if inDegree[e.Target] == 0 {
				queue = append(queue, e.Target)
			}
		}
	}

	if len(order) != len(g.Nodes) {
		return nil
	}
	return order
}

// FindPath returns a directed path of node IDs from source to target using
// breadth-first search. The same source and target yield a one-element
// path. Returns nil if target is unreachable or either node is absent.
func (g Graph) FindPath(source, target string) []string {
	if _, ok := g.Node(source); !ok {
		return nil
	}
	if _, ok := g.Node(target); !ok {
		return nil
	}
	if source == target {
		return []string{source}
	}

	prev := make(map[string]string)
	seen := map[string]bool{source: true}
	queue := []string{source}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.Outgoing(cur) {
			if seen[e.Target] {
				continue
			}
			seen[e.Target] = true
			prev[e.Target] = cur
			if e.Target == target {
				var path []string
				for at := target; ; at = prev[at] {
					path = append(path, at)
					if at == source {
						break
					}
				}
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path
			}
			queue = append(queue, e.Target)
		}
	}
	return nil
}

// Compile turns a validated acyclic graph into an execution plan.
// Returns nil on a cyclic graph - an expected, common outcome during
// editing, not an exception.
func (g Graph) Compile() *Plan {
	order := g.TopologicalSort()
	if order == nil {
		return nil
	}
	return &Plan{
		Steps:   order,
		Inputs:  g.Sources(),
		Outputs: g.Sinks(),
	}
}

// portRef identifies a port on a specific node of the compiled graph.
type portRef struct {
	node string
	port card.Port
}

func (p portRef) qualified() string { return p.node + "." + p.port.ID }

// exposedPorts computes the compiled card's own ports: the unconnected
// input ports of input nodes and the unconnected output ports of output
// nodes.
func (g Graph) exposedPorts(res card.Resolver, plan *Plan) (ins, outs []portRef, err error) {
	connectedIn := make(map[string]bool)
	connectedOut := make(map[string]bool)
	for _, e := range g.Edges {
		connectedIn[e.Target+"."+e.TargetPort] = true
		connectedOut[e.Source+"."+e.SourcePort] = true
	}

	for _, id := range plan.Inputs {
		n, _ := g.Node(id)
		c, err := g.resolveCard(n, res)
		if err != nil {
			return nil, nil, err
		}
		for _, p := range c.Signature().Inputs {
			if !connectedIn[id+"."+p.ID] {
				ins = append(ins, portRef{node: id, port: p})
			}
		}
	}
	for _, id := range plan.Outputs {
		n, _ := g.Node(id)
		c, err := g.resolveCard(n, res)
		if err != nil {
			return nil, nil, err
		}
		for _, p := range c.Signature().Outputs {
			if !connectedOut[id+"."+p.ID] {
				outs = append(outs, portRef{node: id, port: p})
			}
		}
	}
	return ins, outs, nil
}

// ToCard compiles the graph into a single card, enabling arbitrary nesting:
// the result can itself be a node's card in an outer graph.
//
// Returns nil, nil if the graph is cyclic (compilation failure is signaled
// by nil, matching Compile). Returns an error only for structural problems
// such as an unresolvable card ID.
//
// The compiled card's Process invokes each node's card exactly once, in
// topological order, feeding each edge's source output into the matching
// target input port. A node with multiple incoming edges runs only after all
// its inputs are available, which topological order guarantees. Exposed
// ports are addressed by their qualified "node.port" ID; an unqualified port
// ID (or a single-valued signal) is accepted when unambiguous.
func (g Graph) ToCard(meta card.Meta, res card.Resolver) (card.Card, error) {
	plan := g.Compile()
	if plan == nil {
		return nil, nil
	}

	cards := make(map[string]card.Card, len(g.Nodes))
	for _, n := range g.Nodes {
		c, err := g.resolveCard(n, res)
		if err != nil {
			return nil, err
		}
		cards[n.ID] = c
	}

	ins, outs, err := g.exposedPorts(res, plan)
	if err != nil {
		return nil, err
	}

	sig := card.Signature{}
	for _, p := range ins {
		sig.Inputs = append(sig.Inputs, card.Port{ID: p.qualified(), Type: p.port.Type})
	}
	for _, p := range outs {
		sig.Outputs = append(sig.Outputs, card.Port{ID: p.qualified(), Type: p.port.Type})
	}

	// Snapshot structure so later edits to g cannot affect the compiled card.
	compiled := g.Clone()

	process := func(in card.Signal, ctx *card.Context) (card.Signal, error) {
		produced := make(map[string]card.Signal, len(plan.Steps))

		for _, id := range plan.Steps {
			nodeIn := card.Signal{}
			for _, e := range compiled.Incoming(id) {
				src, ok := produced[e.Source]
				if !ok {
					return nil, fmt.Errorf("node %s ran before its input %s", id, e.Source)
				}
				if v, ok := src.Value(e.SourcePort); ok {
					nodeIn[e.TargetPort] = v
				}
			}
			for _, p := range ins {
				if p.node != id {
					continue
				}
				if v, ok := lookupExposed(in, p, ins); ok {
					nodeIn[p.port.ID] = v
				}
			}

			out, err := cards[id].Process(nodeIn, ctx)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", id, err)
			}
			produced[id] = out
		}

		result := card.Signal{}
		for _, p := range outs {
			if v, ok := produced[p.node].Value(p.port.ID); ok {
				result[p.qualified()] = v
			}
		}
		return result, nil
	}

	return card.NewFunc(meta, sig, process), nil
}

// lookupExposed finds the caller-supplied value for an exposed input port:
// first by qualified "node.port" ID, then by bare port ID when unique among
// the exposed inputs, then the sole value of a single-valued signal when the
// card exposes exactly one input.
func lookupExposed(in card.Signal, p portRef, all []portRef) (any, bool) {
	if v, ok := in[p.qualified()]; ok {
		return v, true
	}
	unique := true
	for _, q := range all {
		if q != p && q.port.ID == p.port.ID {
			unique = false
			break
		}
	}
	if unique {
		if v, ok := in[p.port.ID]; ok {
			return v, true
		}
	}
	if len(all) == 1 {
		return in.Single()
	}
	return nil, false
}
