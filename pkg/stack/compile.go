package stack

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
)

// Compile flattens the stack into a single runnable card with the stack's
// inferred signature. The compiled card resolves bypass, solo and mix at
// call time from the state captured at compile time:
//
//   - a bypassed entry passes its input through unchanged
//   - if any entries are soloed, only the soloed set executes
//   - an entry's mix blends its processed output with its input when both
//     are numeric; non-numeric payloads pass through unblended
//
// An empty stack compiles to the identity card. The result satisfies
// card.Card and can be slotted into another stack or graph, nesting to
// arbitrary depth.
func (s Stack) Compile() card.Card {
	if len(s.Entries) == 0 {
		return card.Identity("stack:" + uuid.NewString())
	}

	frozen := s.Clone()
	meta := card.Meta{ID: "stack:" + uuid.NewString(), Name: frozen.name(), Category: "composite"}
	sig := frozen.Signature()

	fn := frozen.serialProcess
	if frozen.Mode == ModeParallel {
		fn = frozen.parallelProcess
	}
	return card.NewFunc(meta, sig, fn)
}

func (s Stack) name() string {
	if v, ok := s.Meta["name"].(string); ok && v != "" {
		return v
	}
	return fmt.Sprintf("%s stack (%d entries)", s.Mode, len(s.Entries))
}

func (s Stack) anySolo() bool {
	for _, e := range s.Entries {
		if e.Solo {
			return true
		}
	}
	return false
}

// active reports whether the entry executes: soloing any entries restricts
// execution to exactly the soloed set, and bypass always wins.
func active(e Entry, anySolo bool) bool {
	if e.Bypassed {
		return false
	}
	return !anySolo || e.Solo
}

func (s Stack) serialProcess(in card.Signal, ctx *card.Context) (card.Signal, error) {
	anySolo := s.anySolo()
	cur := in.Clone()

	for _, e := range s.Entries {
		if !active(e, anySolo) {
			continue
		}
		out, err := runEntry(e, cur, ctx)
		if err != nil {
			return nil, err
		}
		cur = out
	}
	return cur, nil
}

func (s Stack) parallelProcess(in card.Signal, ctx *card.Context) (card.Signal, error) {
	anySolo := s.anySolo()
	result := card.Signal{}

	for _, e := range s.Entries {
		if !active(e, anySolo) {
			continue
		}
		out, err := runEntry(e, in.Clone(), ctx)
		if err != nil {
			return nil, err
		}
		if v, ok := out.Single(); ok {
			result[e.ID] = v
		} else if fo, ok := e.Card.Signature().FirstOutput(); ok {
			if v, ok := out.Value(fo.ID); ok {
				result[e.ID] = v
			}
		}
	}
	return result, nil
}

// runEntry feeds the signal into the entry's card, re-keyed onto its first
// input port, then applies the dry/wet mix to the processed output.
func runEntry(e Entry, in card.Signal, ctx *card.Context) (card.Signal, error) {
	sig := e.Card.Signature()
	feed := in
	if fi, ok := sig.FirstInput(); ok {
		feed = in.Rekeyed("", fi.ID)
	}

	out, err := e.Card.Process(feed, ctx)
	if err != nil {
		return nil, fmt.Errorf("entry %s (%s): %w", e.ID, e.Card.Meta().ID, err)
	}

	if e.Mix >= 1 {
		return out, nil
	}
	fo, ok := sig.FirstOutput()
	if !ok {
		return out, nil
	}
	wetVal, _ := out.Value(fo.ID)
	dryVal, _ := in.Single()
	wet, wetOK := toFloat(wetVal)
	dry, dryOK := toFloat(dryVal)
	if !wetOK || !dryOK {
		return out, nil
	}
	blended := out.Clone()
	blended[fo.ID] = e.Mix*wet + (1-e.Mix)*dry
	return blended, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
