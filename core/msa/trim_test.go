package msa

import (
	"errors"
	"testing"
)

func TestGapTrimmerDropsGappyColumns(t *testing.T) {
	a := New("COG1")
	// Column 0: no gaps. Column 1: 2/4 gaps. Column 2: 3/4 gaps.
	mustAppend(t, a, "spA", "M-X")
	mustAppend(t, a, "spB", "MK-")
	mustAppend(t, a, "spC", "M--")
	mustAppend(t, a, "spD", "MKK")
	Scrub(a)

	out, err := GapTrimmer{Threshold: 0.5}.Trim(a)
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	if out.Columns() != 2 {
		t.Fatalf("expected 2 columns after trimming, got %d", out.Columns())
	}
	r, _ := out.Row("spB")
	if got := string(r.Bytes()); got != "MK" {
		t.Fatalf("spB row = %q, want %q", got, "MK")
	}
}

func TestGapTrimmerKeepsColumnsAtThreshold(t *testing.T) {
	a := New("COG1")
	mustAppend(t, a, "spA", "-")
	mustAppend(t, a, "spB", "K")
	// Gap fraction is exactly 0.5; only columns strictly above the
	// threshold are dropped.
	out, err := GapTrimmer{Threshold: 0.5}.Trim(a)
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	if out.Columns() != 1 {
		t.Fatalf("column at threshold must be kept, got %d columns", out.Columns())
	}
}

func TestGapTrimmerAllColumnsTrimmed(t *testing.T) {
	a := New("COG9")
	mustAppend(t, a, "spA", "--")
	mustAppend(t, a, "spB", "--")
	mustAppend(t, a, "spC", "-K")

	_, err := GapTrimmer{Threshold: 0.2}.Trim(a)
	if !errors.Is(err, ErrAllColumnsTrimmed) {
		t.Fatalf("expected ErrAllColumnsTrimmed, got %v", err)
	}
}

func TestGapTrimmerEmptyAlignment(t *testing.T) {
	out, err := GapTrimmer{Threshold: 0.9}.Trim(New("COG1"))
	if err != nil {
		t.Fatalf("trim of empty alignment: %v", err)
	}
	if out.Columns() != 0 || len(out.Rows) != 0 {
		t.Fatal("empty alignment should pass through empty")
	}
}
