package msa

import (
	"errors"
	"testing"

	"github.com/TuftsBCB/seq"
)

func row(s string) []seq.Residue {
	return []seq.Residue(s)
}

func mustAppend(t *testing.T, a *Alignment, taxon, residues string) {
	t.Helper()
	if err := a.Append(taxon, row(residues)); err != nil {
		t.Fatalf("append %s: %v", taxon, err)
	}
}

func TestAppendRejectsRaggedRows(t *testing.T) {
	a := New("COG1")
	mustAppend(t, a, "spA", "MKVL")
	if err := a.Append("spB", row("MK")); !errors.Is(err, ErrRagged) {
		t.Fatalf("expected ErrRagged, got %v", err)
	}
}

func TestScrubReplacesAmbiguityCodes(t *testing.T) {
	a := New("COG1")
	mustAppend(t, a, "spA", "MZxB*.L")
	Scrub(a)
	if got := string(a.Rows[0].Bytes()); got != "M-----L" {
		t.Fatalf("scrubbed row = %q, want %q", got, "M-----L")
	}
}

func TestFillMissingAppendsGapRows(t *testing.T) {
	// Scenario: 5 samples, marker matched by 3. After imputation the
	// alignment has 5 rows, 2 of which are all-gap of full length.
	a := New("COG1")
	mustAppend(t, a, "spA", "MKVL-")
	mustAppend(t, a, "spC", "MK-LL")
	mustAppend(t, a, "spE", "MKV--")

	taxa := []string{"spA", "spB", "spC", "spD", "spE"}
	FillMissing(taxa, a)

	if len(a.Rows) != 5 {
		t.Fatalf("expected 5 rows after imputation, got %d", len(a.Rows))
	}
	seen := make(map[string]bool)
	for _, r := range a.Rows {
		seen[r.Name] = true
		if r.Len() != 5 {
			t.Fatalf("row %s has %d columns, want 5", r.Name, r.Len())
		}
	}
	for _, want := range taxa {
		if !seen[want] {
			t.Fatalf("row set missing %s", want)
		}
	}
	for _, imputed := range []string{"spB", "spD"} {
		r, ok := a.Row(imputed)
		if !ok {
			t.Fatalf("imputed row %s missing", imputed)
		}
		for _, c := range r.Residues {
			if c != Gap {
				t.Fatalf("imputed row %s contains non-gap %q", imputed, c)
			}
		}
	}
}

func TestFillMissingNoop(t *testing.T) {
	a := New("COG1")
	mustAppend(t, a, "spA", "MK")
	FillMissing([]string{"spA"}, a)
	if len(a.Rows) != 1 {
		t.Fatalf("expected no imputed rows, got %d", len(a.Rows))
	}
}

func TestConcatSupermatrix(t *testing.T) {
	// Scenario: 2 markers over 4 samples; rows concatenate column-wise in
	// marker order and every supermatrix row has the summed length.
	taxa := []string{"spD", "spB", "spA", "spC"}

	m1 := New("COG1")
	for _, tx := range []string{"spA", "spB", "spC", "spD"} {
		mustAppend(t, m1, tx, "AAAAA")
	}
	m2 := New("COG2")
	for _, tx := range []string{"spA", "spB", "spC", "spD"} {
		mustAppend(t, m2, tx, "CCC")
	}

	sm, err := Concat(taxa, []string{"COG1", "COG2"}, map[string]*Alignment{
		"COG1": m1, "COG2": m2,
	})
	if err != nil {
		t.Fatalf("concat: %v", err)
	}
	if len(sm.Rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(sm.Rows))
	}
	wantOrder := []string{"spA", "spB", "spC", "spD"}
	for i, r := range sm.Rows {
		if r.Name != wantOrder[i] {
			t.Fatalf("row %d = %s, want %s (sorted order)", i, r.Name, wantOrder[i])
		}
		if r.Len() != 8 {
			t.Fatalf("row %s has %d columns, want 8", r.Name, r.Len())
		}
		if got := string(r.Bytes()); got != "AAAAACCC" {
			t.Fatalf("row %s = %q, column order must follow marker order", r.Name, got)
		}
	}
}

func TestConcatMissingTaxonFails(t *testing.T) {
	m1 := New("COG1")
	mustAppend(t, m1, "spA", "AAA")

	_, err := Concat([]string{"spA", "spB"}, []string{"COG1"},
		map[string]*Alignment{"COG1": m1})
	if !errors.Is(err, ErrMissingTaxon) {
		t.Fatalf("expected ErrMissingTaxon, got %v", err)
	}
}

func TestSortRowsDeterministic(t *testing.T) {
	a := New("COG1")
	mustAppend(t, a, "spC", "AA")
	mustAppend(t, a, "spA", "CC")
	mustAppend(t, a, "spB", "GG")
	a.SortRows()
	want := []string{"spA", "spB", "spC"}
	for i, r := range a.Rows {
		if r.Name != want[i] {
			t.Fatalf("row %d = %s, want %s", i, r.Name, want[i])
		}
	}
}
