package graph

import (
	"github.com/thehalleyyoung/cardplay-sub002/pkg/adapter"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
)

// NodeDiagnostics describes a node for inspection: its declared ports and
// incident edges.
type NodeDiagnostics struct {
	ID       string      `json:"id"`
	CardID   string      `json:"card_id,omitempty"`
	Inputs   []card.Port `json:"inputs,omitempty"`
	Outputs  []card.Port `json:"outputs,omitempty"`
	Incoming []Edge      `json:"-"`
	Outgoing []Edge      `json:"-"`
}

// EdgeDiagnostics describes an edge for inspection. IsValid means both
// endpoint nodes exist and the connected ports are type-compatible, either
// directly or via a registered adapter path. Reason is empty for valid
// edges.
type EdgeDiagnostics struct {
	Edge    Edge   `json:"-"`
	ID      string `json:"id"`
	IsValid bool   `json:"is_valid"`
	Reason  string `json:"reason,omitempty"`
}

// Diagnostics is the inspector output for a whole graph.
type Diagnostics struct {
	Nodes []NodeDiagnostics `json:"nodes"`
	Edges []EdgeDiagnostics `json:"edges"`
}

// Inspect produces per-node and per-edge diagnostics. Port types come from
// each node's card, resolved via res when not attached; nodes whose cards
// cannot be resolved are reported without port information and make their
// incident edges invalid.
func (g Graph) Inspect(res card.Resolver, reg *adapter.Registry) Diagnostics {
	sigs := make(map[string]card.Signature, len(g.Nodes))
	var d Diagnostics

	for _, n := range g.Nodes {
		nd := NodeDiagnostics{
			ID:       n.ID,
			CardID:   n.CardID,
			Incoming: g.Incoming(n.ID),
			Outgoing: g.Outgoing(n.ID),
		}
		if c, err := g.resolveCard(n, res); err == nil {
			sig := c.Signature()
			sigs[n.ID] = sig
			nd.Inputs = sig.Inputs
			nd.Outputs = sig.Outputs
		}
		d.Nodes = append(d.Nodes, nd)
	}

	for _, e := range g.Edges {
		d.Edges = append(d.Edges, g.inspectEdge(e, sigs, reg))
	}
	return d
}

func (g Graph) inspectEdge(e Edge, sigs map[string]card.Signature, reg *adapter.Registry) EdgeDiagnostics {
	ed := EdgeDiagnostics{Edge: e, ID: e.ID}

	srcSig, srcOK := sigs[e.Source]
	dstSig, dstOK := sigs[e.Target]
	if !srcOK || !dstOK {
		ed.Reason = "endpoint node missing or card unresolved"
		return ed
	}

	srcPort, ok := srcSig.Output(e.SourcePort)
	if !ok {
		ed.Reason = "source port " + e.SourcePort + " not declared"
		return ed
	}
	dstPort, ok := dstSig.Input(e.TargetPort)
	if !ok {
		ed.Reason = "target port " + e.TargetPort + " not declared"
		return ed
	}

	if srcPort.Compatible(dstPort) {
		ed.IsValid = true
		return ed
	}
	if reg != nil && reg.FindPath(srcPort.Type, dstPort.Type) != nil {
		ed.IsValid = true
		return ed
	}

	ed.Reason = "no adapter path from " + srcPort.Type + " to " + dstPort.Type
	return ed
}
