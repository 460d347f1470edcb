// Package ledger tracks which participants consumed how many units (or
// shares) of a single expense item.
//
// A Ledger is a multiset of participant IDs stored as a count map, so a
// participant can never hold a negative number of occurrences.
package ledger

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Ledger is the assignment multiset for one item.
// The zero value is an empty ledger ready to use.
type Ledger struct {
	counts map[string]int
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{counts: make(map[string]int)}
}

// FromCounts builds a ledger from a participant→count map.
// Non-positive counts are ignored.
func FromCounts(counts map[string]int) *Ledger {
	l := New()
	for id, n := range counts {
		if n > 0 {
			l.counts[id] = n
		}
	}
	return l
}

// FromList builds a ledger from a list of participant IDs where duplicates
// mean multiple occurrences.
func FromList(ids []string) *Ledger {
	l := New()
	for _, id := range ids {
		l.Increment(id)
	}
	return l
}

// Increment adds one occurrence of id.
func (l *Ledger) Increment(id string) {
	if l.counts == nil {
		l.counts = make(map[string]int)
	}
	l.counts[id]++
}

// Decrement removes one occurrence of id. It is a no-op when id has none.
func (l *Ledger) Decrement(id string) {
	if l == nil {
		return
	}
	n := l.counts[id]
	switch {
	case n > 1:
		l.counts[id] = n - 1
	case n == 1:
		delete(l.counts, id)
	}
}

// Remove drops every occurrence of id.
func (l *Ledger) Remove(id string) {
	if l == nil {
		return
	}
	delete(l.counts, id)
}

// TogglePerson clears id if it holds any occurrence, otherwise adds exactly one.
func (l *Ledger) TogglePerson(id string) {
	if l.Count(id) > 0 {
		l.Remove(id)
		return
	}
	l.Increment(id)
}

// ToggleAll clears every id in ids when all of them are present. Otherwise
// each absent id gets one occurrence and present ids are left untouched.
// An empty ids slice is a no-op.
func (l *Ledger) ToggleAll(ids []string) {
	if len(ids) == 0 {
		return
	}
	if l.ContainsAll(ids) {
		for _, id := range ids {
			l.Remove(id)
		}
		return
	}
	for _, id := range ids {
		if l.Count(id) == 0 {
			l.Increment(id)
		}
	}
}

// ContainsAll reports whether every id in ids has at least one occurrence.
func (l *Ledger) ContainsAll(ids []string) bool {
	for _, id := range ids {
		if l.Count(id) == 0 {
			return false
		}
	}
	return true
}

// Count returns the occurrences held by id.
func (l *Ledger) Count(id string) int {
	if l == nil {
		return 0
	}
	return l.counts[id]
}

// Total returns the number of occurrences across all participants.
func (l *Ledger) Total() int {
	if l == nil {
		return 0
	}
	total := 0
	for _, n := range l.counts {
		total += n
	}
	return total
}

// Len returns the number of distinct participants with an occurrence.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.counts)
}

// Counts returns a copy of the participant→count map.
func (l *Ledger) Counts() map[string]int {
	out := make(map[string]int, l.Len())
	if l == nil {
		return out
	}
	for id, n := range l.counts {
		out[id] = n
	}
	return out
}

// IDs returns the participants with at least one occurrence, sorted.
func (l *Ledger) IDs() []string {
	if l == nil {
		return nil
	}
	ids := make([]string, 0, len(l.counts))
	for id := range l.counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy.
func (l *Ledger) Clone() *Ledger {
	if l == nil {
		return New()
	}
	return FromCounts(l.counts)
}

// MarshalJSON encodes the ledger as {"participantId": count}.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Counts())
}

// UnmarshalJSON accepts the count-map form as well as the legacy list form
// (["p1", "p1", "p2"]).
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var counts map[string]int
	if err := json.Unmarshal(data, &counts); err == nil {
		for id, n := range counts {
			if n < 0 {
				return fmt.Errorf("negative assignment count %d for %q", n, id)
			}
		}
		*l = *FromCounts(counts)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("failed to decode assignments: %w", err)
	}
	*l = *FromList(list)
	return nil
}
