package card

import (
	"github.com/thehalleyyoung/cardplay-sub002/pkg/errors"
)

// TypeAny is the wildcard port type. A port typed TypeAny accepts or produces
// any payload; it is the only exception to nominal type-tag equality.
const TypeAny = "any"

// Conventional port IDs for single-input/single-output cards.
const (
	PortIn  = "in"
	PortOut = "out"
)

// Port declares a typed input or output of a card. Type is a nominal tag;
// two ports are compatible iff their tags are equal (or either is TypeAny).
type Port struct {
	ID   string `json:"id" toml:"id"`
	Type string `json:"type" toml:"type"`
}

// Compatible reports whether a value produced on p can feed q directly,
// without an adapter.
func (p Port) Compatible(q Port) bool {
	return p.Type == q.Type || p.Type == TypeAny || q.Type == TypeAny
}

// Signature declares the typed ports of a card. Params carries optional
// card-specific parameter defaults; the engine never interprets it.
type Signature struct {
	Inputs  []Port         `json:"inputs"`
	Outputs []Port         `json:"outputs"`
	Params  map[string]any `json:"params,omitempty"`
}

// Input returns the input port with the given ID.
func (s Signature) Input(id string) (Port, bool) {
	for _, p := range s.Inputs {
		if p.ID == id {
			return p, true
		}
	}
	return Port{}, false
}

// Output returns the output port with the given ID.
func (s Signature) Output(id string) (Port, bool) {
	for _, p := range s.Outputs {
		if p.ID == id {
			return p, true
		}
	}
	return Port{}, false
}

// FirstInput returns the first declared input port, if any.
func (s Signature) FirstInput() (Port, bool) {
	if len(s.Inputs) == 0 {
		return Port{}, false
	}
	return s.Inputs[0], true
}

// FirstOutput returns the first declared output port, if any.
func (s Signature) FirstOutput() (Port, bool) {
	if len(s.Outputs) == 0 {
		return Port{}, false
	}
	return s.Outputs[0], true
}

// Meta identifies a card. ID must be unique within a library.
type Meta struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Card is an atomic processing unit with typed ports. The engine treats
// implementations as opaque: it reads Meta and Signature, and calls Process.
//
// Process must be pure with respect to the engine: the same input signal and
// context produce the same output, and the input signal is never mutated.
// Compiled stacks and graphs satisfy Card themselves, so compositions nest to
// arbitrary depth.
type Card interface {
	Meta() Meta
	Signature() Signature
	Process(in Signal, ctx *Context) (Signal, error)
}

// ProcessFunc is the processing step of a function-backed card.
type ProcessFunc func(in Signal, ctx *Context) (Signal, error)

// funcCard adapts a closure to the Card interface. This is the standard way
// to define leaf cards in Go, replacing inline function values on records.
type funcCard struct {
	meta Meta
	sig  Signature
	fn   ProcessFunc
}

// NewFunc creates a card from a meta, signature and processing function.
func NewFunc(meta Meta, sig Signature, fn ProcessFunc) Card {
	return &funcCard{meta: meta, sig: sig, fn: fn}
}

func (c *funcCard) Meta() Meta           { return c.meta }
func (c *funcCard) Signature() Signature { return c.sig }

func (c *funcCard) Process(in Signal, ctx *Context) (Signal, error) {
	return c.fn(in, ctx)
}

// MonoSignature is the signature shared by single-in/single-out cards:
// one input port "in" and one output port "out" of the given type.
func MonoSignature(typ string) Signature {
	return Signature{
		Inputs:  []Port{{ID: PortIn, Type: typ}},
		Outputs: []Port{{ID: PortOut, Type: typ}},
	}
}

// Identity returns a pass-through card: its output signal is its input
// signal, unchanged. Empty stacks compile to it, and bypassed entries
// behave like it.
func Identity(id string) Card {
	return NewFunc(
		Meta{ID: id, Name: "identity", Category: "util"},
		MonoSignature(TypeAny),
		func(in Signal, _ *Context) (Signal, error) {
			return in, nil
		},
	)
}

// Resolver resolves a card ID to a Card. Serialized compositions carry only
// card IDs, so deserialization requires a host-supplied resolver.
type Resolver interface {
	Resolve(cardID string) (Card, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(cardID string) (Card, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(cardID string) (Card, error) { return f(cardID) }

// Library is a map-backed Resolver. The zero value is not usable; use
// NewLibrary.
type Library struct {
	cards map[string]Card
	order []string
}

// NewLibrary creates an empty card library.
func NewLibrary() *Library {
	return &Library{cards: make(map[string]Card)}
}

// Register adds a card to the library, keyed by its meta ID.
// Returns ErrCodeDuplicateEntry if the ID is already registered.
func (l *Library) Register(c Card) error {
	id := c.Meta().ID
	if id == "" {
		return errors.New(errors.ErrCodeInvalidInput, "card ID must not be empty")
	}
	if _, exists := l.cards[id]; exists {
		return errors.New(errors.ErrCodeDuplicateEntry, "card %q already registered", id)
	}
	l.cards[id] = c
	l.order = append(l.order, id)
	return nil
}

// Resolve returns the card registered under cardID.
// Returns ErrCodeUnknownCard if no card is registered.
func (l *Library) Resolve(cardID string) (Card, error) {
	c, ok := l.cards[cardID]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownCard, "card %q not found", cardID)
	}
	return c, nil
}

// IDs returns the registered card IDs in registration order.
func (l *Library) IDs() []string {
	ids := make([]string, len(l.order))
	copy(ids, l.order)
	return ids
}

var _ Resolver = (*Library)(nil)
var _ Resolver = ResolverFunc(nil)
