// core/msa/alignment.go
package msa

import (
	"errors"
	"fmt"
	"sort"

	"github.com/TuftsBCB/seq"
)

// Gap is the alignment gap character.
const Gap seq.Residue = '-'

var (
	// ErrAlign marks a per-marker alignment failure (external aligner exit,
	// unusable output). Scoped to one marker; the pipeline's error policy
	// decides whether it aborts the run.
	ErrAlign = errors.New("alignment")

	// ErrRagged is returned when a row's length disagrees with the
	// alignment's column count.
	ErrRagged = errors.New("alignment rows differ in length")

	// ErrMissingTaxon marks a supermatrix assembly attempt over an alignment
	// that lacks a row for some taxon. Always fatal: concatenating it would
	// silently misalign columns.
	ErrMissingTaxon = errors.New("alignment missing taxon")
)

// Alignment is an ordered set of aligned rows for one marker. Row names are
// taxon (sample) ids, not original sequence names; every row has the same
// column count.
type Alignment struct {
	Marker string
	Rows   []seq.Sequence
}

func New(marker string) *Alignment {
	return &Alignment{Marker: marker}
}

// Columns reports the shared row length, 0 when the alignment is empty.
func (a *Alignment) Columns() int {
	if len(a.Rows) == 0 {
		return 0
	}
	return a.Rows[0].Len()
}

// Append adds one aligned row, enforcing the uniform column count.
func (a *Alignment) Append(taxon string, residues []seq.Residue) error {
	if len(a.Rows) > 0 && len(residues) != a.Columns() {
		return fmt.Errorf("%w: marker %s: row %s has %d columns, want %d",
			ErrRagged, a.Marker, taxon, len(residues), a.Columns())
	}
	a.Rows = append(a.Rows, seq.Sequence{Name: taxon, Residues: residues})
	return nil
}

// Taxa returns the row names in row order.
func (a *Alignment) Taxa() []string {
	out := make([]string, len(a.Rows))
	for i, r := range a.Rows {
		out[i] = r.Name
	}
	return out
}

// Row retrieves the row for taxon.
func (a *Alignment) Row(taxon string) (seq.Sequence, bool) {
	for _, r := range a.Rows {
		if r.Name == taxon {
			return r, true
		}
	}
	return seq.Sequence{}, false
}

// SortRows orders rows lexicographically by taxon id for deterministic
// output.
func (a *Alignment) SortRows() {
	sort.Slice(a.Rows, func(i, j int) bool { return a.Rows[i].Name < a.Rows[j].Name })
}

// Scrub replaces aligner placeholder and ambiguity codes (Z, B, X in either
// case, '*' and '.') with the gap character so downstream stages see one
// uniform non-residue symbol.
func Scrub(a *Alignment) {
	for _, r := range a.Rows {
		for i, c := range r.Residues {
			switch c {
			case 'Z', 'z', 'B', 'b', 'X', 'x', '*', '.':
				r.Residues[i] = Gap
			}
		}
	}
}

// FillMissing appends an all-gap row for every taxon absent from a, so the
// alignment spans the full taxon set. Rows keep the alignment's column count.
func FillMissing(taxa []string, a *Alignment) {
	present := make(map[string]bool, len(a.Rows))
	for _, r := range a.Rows {
		present[r.Name] = true
	}
	cols := a.Columns()
	for _, t := range taxa {
		if present[t] {
			continue
		}
		row := make([]seq.Residue, cols)
		for i := range row {
			row[i] = Gap
		}
		a.Rows = append(a.Rows, seq.Sequence{Name: t, Residues: row})
	}
}

// Concat builds the supermatrix: one row per taxon (sorted), formed by
// appending each marker's row for that taxon in the order markers are given.
// Every alignment must already contain a row for every taxon.
func Concat(taxa []string, markers []string, alns map[string]*Alignment) (*Alignment, error) {
	order := make([]string, len(taxa))
	copy(order, taxa)
	sort.Strings(order)

	rows := make(map[string][]seq.Residue, len(order))
	for _, t := range order {
		rows[t] = nil
	}
	for _, m := range markers {
		aln := alns[m]
		if aln == nil {
			return nil, fmt.Errorf("%w: marker %s absent from alignment set", ErrMissingTaxon, m)
		}
		for _, t := range order {
			r, ok := aln.Row(t)
			if !ok {
				return nil, fmt.Errorf("%w: marker %s has no row for %s", ErrMissingTaxon, m, t)
			}
			rows[t] = append(rows[t], r.Residues...)
		}
	}

	out := New("concat")
	for _, t := range order {
		if err := out.Append(t, rows[t]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
