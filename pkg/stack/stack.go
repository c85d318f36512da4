package stack

import (
	"slices"

	"github.com/google/uuid"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/errors"
)

// Mode selects how a stack composes its entries.
type Mode string

const (
	// ModeSerial chains entries: each entry's output feeds the next entry's
	// input.
	ModeSerial Mode = "serial"

	// ModeParallel fans the same input out to every entry; outputs collect
	// as an ordered tuple keyed by entry ID.
	ModeParallel Mode = "parallel"
)

// Metadata stores arbitrary key-value pairs attached to a stack.
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

// Entry is a card slotted into a stack with its per-entry state.
type Entry struct {
	ID       string
	Card     card.Card
	Bypassed bool
	Solo     bool
	Mix      float64 // dry/wet blend in [0, 1]; 1 = fully processed
}

// Stack is an ordered composition of cards. Entry IDs are unique and order
// is significant. All mutators are pure: they return a new Stack and never
// modify their receiver, so snapshot/restore and diffing are plain value
// operations.
type Stack struct {
	Entries []Entry
	Mode    Mode
	Meta    Metadata
}

// New creates a stack from a card list. Each entry gets a generated unique
// ID and the default state (not bypassed, not soloed, mix 1).
func New(cards []card.Card, mode Mode, meta Metadata) (Stack, error) {
	if mode != ModeSerial && mode != ModeParallel {
		return Stack{}, errors.New(errors.ErrCodeInvalidMode, "unknown stack mode %q", mode)
	}
	if meta == nil {
		meta = Metadata{}
	}
	s := Stack{Mode: mode, Meta: meta}
	for _, c := range cards {
		s.Entries = append(s.Entries, newEntry(c))
	}
	return s, nil
}

func newEntry(c card.Card) Entry {
	return Entry{ID: uuid.NewString(), Card: c, Mix: 1}
}

// Clone returns a deep copy of the stack. Cards themselves are shared; they
// are opaque and never mutated by the engine.
func (s Stack) Clone() Stack {
	return Stack{
		Entries: slices.Clone(s.Entries),
		Mode:    s.Mode,
		Meta:    s.Meta.clone(),
	}
}

// Snapshot returns an opaque deep copy capturing entries and metadata.
func (s Stack) Snapshot() Stack { return s.Clone() }

// Restore returns the snapshot as the current stack value.
func Restore(snapshot Stack) Stack { return snapshot.Clone() }

// Entry returns the entry with the given ID and its position.
func (s Stack) Entry(id string) (Entry, int, bool) {
	for i, e := range s.Entries {
		if e.ID == id {
			return e, i, true
		}
	}
	return Entry{}, -1, false
}

// Len returns the number of entries.
func (s Stack) Len() int { return len(s.Entries) }

// Signature infers the stack's exposed ports from its mode. Serial stacks
// expose the first entry's inputs and the last entry's outputs. Parallel
// stacks expose one shared input and one output per entry, keyed by entry
// ID. An empty stack has the identity signature.
func (s Stack) Signature() card.Signature {
	if len(s.Entries) == 0 {
		return card.MonoSignature(card.TypeAny)
	}

	if s.Mode == ModeSerial {
		first := s.Entries[0].Card.Signature()
		last := s.Entries[len(s.Entries)-1].Card.Signature()
		return card.Signature{Inputs: first.Inputs, Outputs: last.Outputs}
	}

	sig := card.Signature{}
	if in, ok := s.Entries[0].Card.Signature().FirstInput(); ok {
		sig.Inputs = []card.Port{in}
	}
	for _, e := range s.Entries {
		typ := card.TypeAny
		if out, ok := e.Card.Signature().FirstOutput(); ok {
			typ = out.Type
		}
		sig.Outputs = append(sig.Outputs, card.Port{ID: e.ID, Type: typ})
	}
	return sig
}

// InsertCard returns a new stack with the card inserted at position pos
// (clamped to the valid range) as a fresh entry with default state.
func (s Stack) InsertCard(c card.Card, pos int) Stack {
	out := s.Clone()
	pos = max(0, min(pos, len(out.Entries)))
	out.Entries = slices.Insert(out.Entries, pos, newEntry(c))
	return out
}

// RemoveCard returns a new stack without the entry. Entries are addressed
// by entry ID, never by index. Returns ErrCodeUnknownEntry if absent.
func (s Stack) RemoveCard(entryID string) (Stack, error) {
	if _, _, ok := s.Entry(entryID); !ok {
		return Stack{}, errors.New(errors.ErrCodeUnknownEntry, "entry %q not found", entryID)
	}
	out := s.Clone()
	out.Entries = slices.DeleteFunc(out.Entries, func(e Entry) bool { return e.ID == entryID })
	return out, nil
}

// Reorder returns a new stack with entries arranged in the given ID order.
// The order must be a permutation of the current entry IDs.
func (s Stack) Reorder(order []string) (Stack, error) {
	if len(order) != len(s.Entries) {
		return Stack{}, errors.New(errors.ErrCodeInvalidInput,
			"reorder needs %d entry IDs, got %d", len(s.Entries), len(order))
	}
	out := s.Clone()
	reordered := make([]Entry, 0, len(order))
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		e, _, ok := s.Entry(id)
		if !ok {
			return Stack{}, errors.New(errors.ErrCodeUnknownEntry, "entry %q not found", id)
		}
		if seen[id] {
			return Stack{}, errors.New(errors.ErrCodeInvalidInput, "entry %q repeated in order", id)
		}
		seen[id] = true
		reordered = append(reordered, e)
	}
	out.Entries = reordered
	return out, nil
}

// Bypass returns a new stack with the entry's bypass flag set. A bypassed
// entry passes its input through unchanged at compile time; the stack
// itself does not resolve mute semantics.
func (s Stack) Bypass(entryID string, bypassed bool) (Stack, error) {
	return s.setEntry(entryID, func(e *Entry) { e.Bypassed = bypassed })
}

// Solo returns a new stack with the entry's solo flag set. Solo semantics
// are resolved at compile time: soloing any entries restricts execution to
// exactly the soloed set.
func (s Stack) Solo(entryID string, solo bool) (Stack, error) {
	return s.setEntry(entryID, func(e *Entry) { e.Solo = solo })
}

// SetMix returns a new stack with the entry's dry/wet mix set, clamped to
// [0, 1].
func (s Stack) SetMix(entryID string, mix float64) (Stack, error) {
	return s.setEntry(entryID, func(e *Entry) { e.Mix = max(0, min(mix, 1)) })
}

func (s Stack) setEntry(entryID string, apply func(*Entry)) (Stack, error) {
	_, i, ok := s.Entry(entryID)
	if !ok {
		return Stack{}, errors.New(errors.ErrCodeUnknownEntry, "entry %q not found", entryID)
	}
	out := s.Clone()
	apply(&out.Entries[i])
	return out, nil
}

// Merge returns the concatenation of a and b, keeping a's mode and
// metadata. Entry IDs colliding with a's are re-keyed to stay unique.
func Merge(a, b Stack) Stack {
	out := a.Clone()
	used := make(map[string]bool, len(a.Entries))
	for _, e := range a.Entries {
		used[e.ID] = true
	}
	for _, e := range b.Entries {
		if used[e.ID] {
			e.ID = uuid.NewString()
		}
		used[e.ID] = true
		out.Entries = append(out.Entries, e)
	}
	return out
}
