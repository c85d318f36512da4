package graph

import (
	"fmt"
	"sort"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/errors"
)

// Validate checks the graph for well-formedness and returns a collected
// report rather than failing on the first problem.
//
// Cycles are errors: every node on any detected cycle is reported, not only
// the first one found. Disconnected components are warnings: disjoint
// subgraphs (independent parallel chains) are legal, so every component
// beyond the first produces a warning, never an error.
func (g Graph) Validate() card.Report {
	report := card.NewReport()

	if cyclic := g.cycleNodes(); len(cyclic) > 0 {
		sort.Strings(cyclic)
		report.AddError(errors.ErrCodeGraphCycle,
			fmt.Sprintf("graph contains a cycle through %d node(s)", len(cyclic)),
			cyclic...)
	}

	components := g.components()
	for i := 1; i < len(components); i++ {
		report.AddWarning(errors.ErrCodeGraphDisconnected,
			fmt.Sprintf("component %d is disconnected from the first", i+1),
			components[i]...)
	}

	return report
}

// cycleNodes returns the IDs of every node that lies on a detected cycle.
// Detection is depth-first search with an explicit recursion stack: when a
// back edge to a node still on the stack is found, every stack entry from
// that node upward is on the cycle.
func (g Graph) cycleNodes() []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.Nodes))
	onCycle := make(map[string]bool)
	var stack []string

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		stack = append(stack, id)

		for _, e := range g.Outgoing(id) {
			switch color[e.Target] {
			case white:
				dfs(e.Target)
			case gray:
				// Back edge: everything on the stack from the target up is cyclic.
				for i := len(stack) - 1; i >= 0; i-- {
					onCycle[stack[i]] = true
					if stack[i] == e.Target {
						break
					}
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = black
	}

	for _, n := range g.Nodes {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	out := make([]string, 0, len(onCycle))
	for id := range onCycle {
		out = append(out, id)
	}
	return out
}

// components returns the connected components of the undirected view of the
// graph, ordered by first appearance in node order.
func (g Graph) components() [][]string {
	neighbors := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		neighbors[e.Source] = append(neighbors[e.Source], e.Target)
		neighbors[e.Target] = append(neighbors[e.Target], e.Source)
	}

	seen := make(map[string]bool, len(g.Nodes))
	var components [][]string

	for _, n := range g.Nodes {
		if seen[n.ID] {
			continue
		}
		var comp []string
		queue := []string{n.ID}
		seen[n.ID] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp = append(comp, cur)
			for _, next := range neighbors[cur] {
				if !seen[next] {
					seen[next] = true
					queue = append(queue, next)
				}
			}
		}
		components = append(components, comp)
	}

	return components
}
