package stack

// Diff describes how one stack differs from another: entry IDs only present
// in the newer stack, entry IDs only present in the older one, and for
// entries present in both, the set of changed state fields per entry ID.
// Field names are "card", "bypassed", "solo", "mix" and "position".
type Diff struct {
	Added   []string            `json:"added,omitempty"`
	Removed []string            `json:"removed,omitempty"`
	Changed map[string][]string `json:"changed,omitempty"`
}

// Empty reports whether the two stacks were identical.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Compare diffs the newer stack against the older one. Entries are matched
// by entry ID; positional moves of surviving entries show up as a "position"
// field change.
func Compare(older, newer Stack) Diff {
	d := Diff{Changed: map[string][]string{}}

	oldIdx := make(map[string]int, len(older.Entries))
	for i, e := range older.Entries {
		oldIdx[e.ID] = i
	}
	newIdx := make(map[string]int, len(newer.Entries))
	for i, e := range newer.Entries {
		newIdx[e.ID] = i
	}

	for _, e := range older.Entries {
		if _, ok := newIdx[e.ID]; !ok {
			d.Removed = append(d.Removed, e.ID)
		}
	}
	for i, e := range newer.Entries {
		j, ok := oldIdx[e.ID]
		if !ok {
			d.Added = append(d.Added, e.ID)
			continue
		}
		if fields := changedFields(older.Entries[j], e, j, i); len(fields) > 0 {
			d.Changed[e.ID] = fields
		}
	}
	if len(d.Changed) == 0 {
		d.Changed = nil
	}
	return d
}

func changedFields(before, after Entry, oldPos, newPos int) []string {
	var fields []string
	if before.Card.Meta().ID != after.Card.Meta().ID {
		fields = append(fields, "card")
	}
	if before.Bypassed != after.Bypassed {
		fields = append(fields, "bypassed")
	}
	if before.Solo != after.Solo {
		fields = append(fields, "solo")
	}
	if before.Mix != after.Mix {
		fields = append(fields, "mix")
	}
	if oldPos != newPos {
		fields = append(fields, "position")
	}
	return fields
}
