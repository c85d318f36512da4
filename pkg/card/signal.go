package card

// Signal is the value set flowing between cards, keyed by port ID.
// Signals are treated as immutable: cards return new signals rather than
// mutating their input.
type Signal map[string]any

// Mono wraps a single value as a signal on the conventional "in" port.
func Mono(v any) Signal {
	return Signal{PortIn: v}
}

// Single returns the sole value of the signal, regardless of its port key.
// Returns false if the signal is empty or carries more than one value.
func (s Signal) Single() (any, bool) {
	if len(s) != 1 {
		return nil, false
	}
	for _, v := range s {
		return v, true
	}
	return nil, false
}

// Clone returns a shallow copy of the signal.
func (s Signal) Clone() Signal {
	if s == nil {
		return nil
	}
	out := make(Signal, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Rekeyed returns a copy of the signal with the value under from moved to
// under to. If from is absent but the signal carries exactly one value, that
// value is moved instead; this lets single-valued signals thread through
// chains without callers spelling out port IDs.
func (s Signal) Rekeyed(from, to string) Signal {
	if v, ok := s[from]; ok {
		out := s.Clone()
		delete(out, from)
		out[to] = v
		return out
	}
	if v, ok := s.Single(); ok {
		return Signal{to: v}
	}
	return s.Clone()
}

// Value returns the value under port id, falling back to the sole value of a
// single-valued signal. This is the read-side counterpart of Rekeyed.
func (s Signal) Value(id string) (any, bool) {
	if v, ok := s[id]; ok {
		return v, true
	}
	return s.Single()
}
