package stack

import (
	"fmt"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/adapter"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/errors"
)

// Validate checks the stack and collects all findings rather than stopping
// at the first. Serial stacks require every adjacent pair to be directly
// type-compatible or bridgeable through a registered adapter path; a
// bridgeable pair is a warning, an unbridgeable one an error. Parallel
// stacks have no adjacency constraint. An empty stack is valid with a
// warning. reg may be nil, in which case only direct compatibility counts.
func (s Stack) Validate(reg *adapter.Registry) card.Report {
	r := card.NewReport()

	if len(s.Entries) == 0 {
		r.AddWarning(errors.ErrCodeEmptyComposition, "stack has no entries")
		return r
	}
	if s.Mode != ModeSerial {
		return r
	}

	for i := 0; i < len(s.Entries)-1; i++ {
		a, b := s.Entries[i], s.Entries[i+1]
		out, okOut := a.Card.Signature().FirstOutput()
		in, okIn := b.Card.Signature().FirstInput()
		if !okOut || !okIn {
			r.AddError(errors.ErrCodeTypeMismatch,
				fmt.Sprintf("entries %s and %s cannot connect: missing ports", a.ID, b.ID),
				a.ID, b.ID)
			continue
		}
		if out.Compatible(in) {
			continue
		}
		if reg != nil && reg.FindPath(out.Type, in.Type) != nil {
			r.AddWarning(errors.ErrCodeTypeMismatch,
				fmt.Sprintf("entries %s and %s need an adapter from %s to %s", a.ID, b.ID, out.Type, in.Type),
				a.ID, b.ID)
			continue
		}
		r.AddError(errors.ErrCodeNoAdapterPath,
			fmt.Sprintf("no adapter path from %s to %s between entries %s and %s", out.Type, in.Type, a.ID, b.ID),
			a.ID, b.ID)
	}
	return r
}

// InsertAdapter returns a new stack with the adapter spliced in at position
// pos as a regular entry.
func (s Stack) InsertAdapter(a *adapter.Adapter, pos int) Stack {
	return s.InsertCard(a, pos)
}

// AutoInsertAdapters returns a new stack with the cheapest adapter path
// wrapped and spliced between every serially adjacent incompatible pair.
// Pairs with no registered path are left untouched and reported as errors;
// the returned stack reflects every insertion that was possible.
func (s Stack) AutoInsertAdapters(reg *adapter.Registry) (Stack, card.Report) {
	r := card.NewReport()
	out := s.Clone()
	if out.Mode != ModeSerial || reg == nil {
		return out, r
	}

	for i := 0; i < len(out.Entries)-1; i++ {
		a, b := out.Entries[i], out.Entries[i+1]
		src, okOut := a.Card.Signature().FirstOutput()
		dst, okIn := b.Card.Signature().FirstInput()
		if !okOut || !okIn || src.Compatible(dst) {
			continue
		}
		p := reg.FindPath(src.Type, dst.Type)
		if p == nil {
			r.AddError(errors.ErrCodeNoAdapterPath,
				fmt.Sprintf("no adapter path from %s to %s between entries %s and %s", src.Type, dst.Type, a.ID, b.ID),
				a.ID, b.ID)
			continue
		}
		out = out.InsertCard(p.Wrap(fmt.Sprintf("adapt:%s->%s", src.Type, dst.Type)), i+1)
		i++ // skip the freshly inserted entry
	}
	return out, r
}
