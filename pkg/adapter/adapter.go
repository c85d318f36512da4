// Package adapter provides typed-conversion bridges between card port types.
//
// Adapters are card-shaped units narrowed to exactly one input and one output
// port, plus a conversion cost and a losslessness flag. The registry treats
// registered port types as graph nodes and adapters as weighted directed
// edges, so finding a conversion between two incompatible types is a
// minimum-cost path search.
//
// # Usage
//
//	reg := adapter.NewRegistry()
//	reg.Register(&adapter.Adapter{ID: "midi-to-freq", SourceType: "midi", TargetType: "freq", Fn: convert})
//
//	path := reg.FindPath("midi", "freq")
//	if path == nil {
//	    // No conversion exists - an explicit, queryable result.
//	}
//
// The absence of a path is always an explicit nil, never a silent drop.
package adapter

import (
	"sync"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/errors"
)

// DefaultCost is the conversion cost assumed when an adapter declares none.
const DefaultCost = 1

// Adapter converts values of SourceType to TargetType. It satisfies
// card.Card, so stack and graph logic never special-cases adapters.
type Adapter struct {
	ID         string
	Name       string
	Category   string
	SourceType string
	TargetType string

	// Cost is the conversion cost used by path search. Zero means DefaultCost.
	Cost float64

	// Lossless reports whether the conversion preserves all information.
	Lossless bool

	// Fn performs the conversion.
	Fn card.ProcessFunc
}

// Meta implements card.Card.
func (a *Adapter) Meta() card.Meta {
	return card.Meta{ID: a.ID, Name: a.Name, Category: a.Category}
}

// Signature implements card.Card: one input of SourceType, one output of
// TargetType.
func (a *Adapter) Signature() card.Signature {
	return card.Signature{
		Inputs:  []card.Port{{ID: card.PortIn, Type: a.SourceType}},
		Outputs: []card.Port{{ID: card.PortOut, Type: a.TargetType}},
	}
}

// Process implements card.Card.
func (a *Adapter) Process(in card.Signal, ctx *card.Context) (card.Signal, error) {
	return a.Fn(in, ctx)
}

// cost returns the effective conversion cost.
func (a *Adapter) cost() float64 {
	if a.Cost == 0 {
		return DefaultCost
	}
	return a.Cost
}

var _ card.Card = (*Adapter)(nil)

// Registry is a catalog of adapters. Registration order is significant: it
// is the final tie-break in path search and the order of direct lookups.
//
// Registry is not safe for concurrent mutation; the process-wide default
// registry (see Default) guards itself with a mutex.
type Registry struct {
	adapters []*Adapter
	bySource map[string][]*Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{bySource: make(map[string][]*Adapter)}
}

// Register appends an adapter to the registry. Multiple adapters per type
// pair are allowed (differentiated by category). Returns a structured error
// if the adapter is missing its ID or type tags.
func (r *Registry) Register(a *Adapter) error {
	if a.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "adapter ID must not be empty")
	}
	if a.SourceType == "" || a.TargetType == "" {
		return errors.New(errors.ErrCodeInvalidInput, "adapter %q must declare source and target types", a.ID)
	}
	if a.Fn == nil {
		return errors.New(errors.ErrCodeInvalidInput, "adapter %q must declare a conversion function", a.ID)
	}
	r.adapters = append(r.adapters, a)
	r.bySource[a.SourceType] = append(r.bySource[a.SourceType], a)
	return nil
}

// Find returns the first registered adapter converting source directly to
// target, or nil if none exists.
func (r *Registry) Find(source, target string) *Adapter {
	for _, a := range r.bySource[source] {
		if a.TargetType == target {
			return a
		}
	}
	return nil
}

// Adapters returns all registered adapters in registration order.
func (r *Registry) Adapters() []*Adapter {
	out := make([]*Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int { return len(r.adapters) }

// The process-wide default registry. Registering an adapter from any call
// site is visible to every later path search. Tests must call ResetDefault
// between cases.
var (
	defaultMu  sync.Mutex
	defaultReg = NewRegistry()
)

// Default returns the process-wide adapter registry.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultReg
}

// ResetDefault replaces the process-wide registry with an empty one.
// This is primarily useful for test isolation.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultReg = NewRegistry()
}
