package stack

import (
	"slices"
	"testing"
)

func TestCompareIdentical(t *testing.T) {
	s := mkStack(t, ModeSerial, numCard("a", func(x float64) float64 { return x }))
	if d := Compare(s, s.Clone()); !d.Empty() {
		t.Errorf("diff of identical stacks = %+v", d)
	}
}

func TestCompareAddRemove(t *testing.T) {
	a := mkStack(t, ModeSerial,
		numCard("a", func(x float64) float64 { return x }),
		numCard("b", func(x float64) float64 { return x }),
	)
	removedID := a.Entries[1].ID

	b, err := a.RemoveCard(removedID)
	if err != nil {
		t.Fatalf("RemoveCard error: %v", err)
	}
	b = b.InsertCard(numCard("c", func(x float64) float64 { return x }), 1)
	addedID := b.Entries[1].ID

	d := Compare(a, b)
	if !slices.Contains(d.Removed, removedID) {
		t.Errorf("Removed = %v, want %s", d.Removed, removedID)
	}
	if !slices.Contains(d.Added, addedID) {
		t.Errorf("Added = %v, want %s", d.Added, addedID)
	}
}

func TestCompareStateChanges(t *testing.T) {
	a := mkStack(t, ModeSerial,
		numCard("a", func(x float64) float64 { return x }),
		numCard("b", func(x float64) float64 { return x }),
	)
	first, second := a.Entries[0].ID, a.Entries[1].ID

	b, _ := a.Bypass(first, true)
	b, _ = b.SetMix(first, 0.25)
	b, _ = b.Reorder([]string{second, first})

	d := Compare(a, b)
	fields := d.Changed[first]
	for _, want := range []string{"bypassed", "mix", "position"} {
		if !slices.Contains(fields, want) {
			t.Errorf("Changed[%s] = %v, missing %q", first, fields, want)
		}
	}
	if slices.Contains(fields, "card") || slices.Contains(fields, "solo") {
		t.Errorf("Changed[%s] = %v has spurious fields", first, fields)
	}
	// The other entry only moved.
	if got := d.Changed[second]; !slices.Contains(got, "position") || len(got) != 1 {
		t.Errorf("Changed[%s] = %v, want only position", second, got)
	}
}
