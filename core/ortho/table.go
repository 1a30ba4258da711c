// core/ortho/table.go
package ortho

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotSearched is returned when the table is used before a search has
// populated it.
var ErrNotSearched = errors.New("no ortholog table: search has not run")

// Table maps each marker id to the set of sequence ids chosen to represent it,
// at most one per sample.
type Table struct {
	hits map[string]map[string]bool
}

func NewTable() *Table {
	return &Table{hits: make(map[string]map[string]bool)}
}

// Add records seqID as a representative of marker, creating the marker's set
// on first use.
func (t *Table) Add(marker, seqID string) {
	set, ok := t.hits[marker]
	if !ok {
		set = make(map[string]bool)
		t.hits[marker] = set
	}
	set[seqID] = true
}

// Len reports the number of markers with at least one hit.
func (t *Table) Len() int { return len(t.hits) }

// Markers returns all marker ids in sorted order.
func (t *Table) Markers() []string {
	out := make([]string, 0, len(t.hits))
	for m := range t.hits {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Hits returns the sorted hit ids recorded for marker.
func (t *Table) Hits(marker string) []string {
	set := t.hits[marker]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Support reports the hit-set cardinality for marker. One hit is recorded per
// contributing sample, so this equals the number of distinct samples.
func (t *Table) Support(marker string) int { return len(t.hits[marker]) }

// Filter removes every marker supported by fewer than minSamples samples.
// A tree cannot be inferred from fewer than 3 taxa, so minSamples should not
// drop below that.
func Filter(t *Table, minSamples int) error {
	if t == nil || t.hits == nil {
		return ErrNotSearched
	}
	if minSamples < 1 {
		return fmt.Errorf("min samples must be positive, got %d", minSamples)
	}
	for m, set := range t.hits {
		if len(set) < minSamples {
			delete(t.hits, m)
		}
	}
	return nil
}
