package adapter

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
)

// Path is an ordered adapter chain converting a source type to a target
// type, possibly across multiple hops.
type Path struct {
	Adapters  []*Adapter
	TotalCost float64 // sum of hop costs
	Lossless  bool    // AND over hops
}

// Hops returns the number of adapters on the path.
func (p *Path) Hops() int { return len(p.Adapters) }

// Wrap composes the path's hops into a single card. An empty path (same-type
// query) wraps to an identity card.
func (p *Path) Wrap(id string) card.Card {
	if len(p.Adapters) == 0 {
		return card.Identity(id)
	}
	first := p.Adapters[0]
	last := p.Adapters[len(p.Adapters)-1]
	hops := make([]*Adapter, len(p.Adapters))
	copy(hops, p.Adapters)

	return card.NewFunc(
		card.Meta{ID: id, Name: fmt.Sprintf("adapt %s to %s", first.SourceType, last.TargetType), Category: "adapter"},
		card.Signature{
			Inputs:  []card.Port{{ID: card.PortIn, Type: first.SourceType}},
			Outputs: []card.Port{{ID: card.PortOut, Type: last.TargetType}},
		},
		func(in card.Signal, ctx *card.Context) (card.Signal, error) {
			sig := in
			for _, a := range hops {
				out, err := a.Process(sig.Rekeyed(card.PortIn, card.PortIn), ctx)
				if err != nil {
					return nil, err
				}
				sig = out
			}
			return sig, nil
		},
	)
}

// pathItem is a frontier entry in the Dijkstra search.
type pathItem struct {
	typ  string
	cost float64
	hops int
	seq  int // insertion counter for heap stability
}

type pathHeap []pathItem

func (h pathHeap) Len() int { return len(h) }
func (h pathHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	if h[i].hops != h[j].hops {
		return h[i].hops < h[j].hops
	}
	return h[i].seq < h[j].seq
}
func (h pathHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *pathHeap) Push(x any)   { *h = append(*h, x.(pathItem)) }
func (h *pathHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// FindPath returns the minimum-total-cost adapter chain converting source to
// target, or nil if no chain exists. Ties break on lowest cost, then fewest
// hops, then registration order; the result is deterministic for a given
// registration sequence. A same-type query returns a zero-cost, lossless
// empty path. Hop count is unbounded.
func (r *Registry) FindPath(source, target string) *Path {
	return r.findPath(source, target, false)
}

// findPath runs the search. With skipDirect set, single-hop source to target
// edges are excluded from the frontier, so any result has at least two hops.
func (r *Registry) findPath(source, target string, skipDirect bool) *Path {
	if source == target {
		return &Path{TotalCost: 0, Lossless: true}
	}

	type best struct {
		cost float64
		hops int
		via  *Adapter // edge taken into this type
		prev string
	}
	settled := make(map[string]best)
	visited := make(map[string]bool)

	h := &pathHeap{{typ: source, cost: 0, hops: 0, seq: 0}}
	settled[source] = best{}
	seq := 1

	for h.Len() > 0 {
		cur := heap.Pop(h).(pathItem)
		if visited[cur.typ] {
			continue
		}
		visited[cur.typ] = true
		if cur.typ == target {
			break
		}

		// Outgoing adapters in registration order; strict improvement only,
		// so the earliest-registered adapter wins exact ties.
		for _, a := range r.bySource[cur.typ] {
			if skipDirect && cur.typ == source && a.TargetType == target {
				continue
			}
			cost := cur.cost + a.cost()
			hops := cur.hops + 1
			if b, ok := settled[a.TargetType]; ok {
				if cost > b.cost || (cost == b.cost && hops >= b.hops) {
					continue
				}
			}
			settled[a.TargetType] = best{cost: cost, hops: hops, via: a, prev: cur.typ}
			heap.Push(h, pathItem{typ: a.TargetType, cost: cost, hops: hops, seq: seq})
			seq++
		}
	}

	if !visited[target] {
		return nil
	}

	// Walk predecessors back to the source.
	var chain []*Adapter
	for t := target; t != source; {
		b := settled[t]
		chain = append(chain, b.via)
		t = b.prev
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	p := &Path{Adapters: chain, Lossless: true}
	for _, a := range chain {
		p.TotalCost += a.cost()
		p.Lossless = p.Lossless && a.Lossless
	}
	return p
}

// Suggestion is a candidate conversion with a confidence score in (0, 1].
type Suggestion struct {
	Path       *Path
	Confidence float64
}

// Confidence discounts applied on top of the 1.0 baseline for a direct
// lossless conversion.
const (
	lossyDiscount = 0.7
	hopDiscount   = 0.9
)

// Suggest ranks candidate conversions from source to target by confidence:
// 1.0 for a direct lossless adapter, discounted for lossy conversions and
// for every additional hop. Direct adapters are all listed; the best
// multi-hop chain is searched with direct edges excluded and appended when
// one exists, so a cheap lossy direct adapter never hides a lossless chain.
// Returns an empty slice when no conversion exists.
func (r *Registry) Suggest(source, target string) []Suggestion {
	var out []Suggestion

	for _, a := range r.bySource[source] {
		if a.TargetType != target {
			continue
		}
		p := &Path{Adapters: []*Adapter{a}, TotalCost: a.cost(), Lossless: a.Lossless}
		out = append(out, Suggestion{Path: p, Confidence: confidence(p)})
	}

	if chain := r.findPath(source, target, true); chain != nil && chain.Hops() > 1 {
		out = append(out, Suggestion{Path: chain, Confidence: confidence(chain)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

func confidence(p *Path) float64 {
	c := 1.0
	if !p.Lossless {
		c *= lossyDiscount
	}
	if p.Hops() > 1 {
		c *= math.Pow(hopDiscount, float64(p.Hops()-1))
	}
	return c
}
