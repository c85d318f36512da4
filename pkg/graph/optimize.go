package graph

// Optimize returns a new graph with every node flagged by isNoOp removed.
// Each removed node's incoming edges are rewired directly to its outgoing
// edges' targets (the cross product over predecessors and successors), so
// connectivity and observable behavior are preserved.
func (g Graph) Optimize(isNoOp func(Node) bool) Graph {
	out := g.Clone()

	for {
		var victim *Node
		for i := range out.Nodes {
			if isNoOp(out.Nodes[i]) {
				victim = &out.Nodes[i]
				break
			}
		}
		if victim == nil {
			return out
		}

		incoming := out.Incoming(victim.ID)
		outgoing := out.Outgoing(victim.ID)

		next, err := out.RemoveNode(victim.ID)
		if err != nil {
			return out
		}
		out = next

		for _, in := range incoming {
			for _, og := range outgoing {
				rewired, err := out.Connect(in.Source, in.SourcePort, og.Target, og.TargetPort)
				if err == nil {
					out = rewired
				}
			}
		}
	}
}
