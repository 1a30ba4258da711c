package hmmer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/TuftsBCB/seq"

	"phylomsa-core/msa"
)

func TestHmmalignScrubsAmbiguityCodes(t *testing.T) {
	dir := t.TempDir()

	// A stand-in that emits a fixed aligned FASTA on stdout, the way
	// hmmalign does with --outformat afa.
	fake := filepath.Join(dir, "fake-hmmalign")
	script := `#!/bin/sh
printf '>spA\nMZxB*.L\n>spB\nMKVLLLL\n'
`
	if err := os.WriteFile(fake, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake hmmalign: %v", err)
	}

	h := Hmmalign{Path: fake, MarkerDir: dir}
	hits := []seq.Sequence{
		{Name: "spA", Residues: []seq.Residue("MZBL")},
		{Name: "spB", Residues: []seq.Residue("MKVLLLL")},
	}
	aln, err := h.Align(context.Background(), "COG1", hits)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	row, ok := aln.Row("spA")
	if !ok {
		t.Fatal("spA row missing")
	}
	if got := string(row.Bytes()); got != "M-----L" {
		t.Fatalf("spA row = %q, want ambiguity codes rewritten to gaps", got)
	}
	row, _ = aln.Row("spB")
	if got := string(row.Bytes()); got != "MKVLLLL" {
		t.Fatalf("spB row = %q", got)
	}
}

func TestHmmalignMissingExecutable(t *testing.T) {
	dir := t.TempDir()
	h := Hmmalign{Path: filepath.Join(dir, "no-such-hmmalign"), MarkerDir: dir}
	hits := []seq.Sequence{{Name: "spA", Residues: []seq.Residue("MKVL")}}
	_, err := h.Align(context.Background(), "COG1", hits)
	if !errors.Is(err, msa.ErrAlign) {
		t.Fatalf("expected ErrAlign, got %v", err)
	}
}
