package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeSample(t *testing.T, dir, name, content string) string {
	t.Helper()
	fn := filepath.Join(dir, name)
	if err := os.WriteFile(fn, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return fn
}

func TestBuildRangesAndIndex(t *testing.T) {
	dir := t.TempDir()
	a := writeSample(t, dir, "spA.faa", ">s1\nMKVL\n>s2\nGGHH\n")
	b := writeSample(t, dir, "spB.faa", ">s1\nAATT\n")

	c, err := Build([]string{a, b})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 sequences, got %d", c.Len())
	}

	samples := c.Samples()
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0].Start != 0 || samples[0].End != 2 {
		t.Fatalf("spA range = [%d,%d), want [0,2)", samples[0].Start, samples[0].End)
	}
	if samples[1].Start != 2 || samples[1].End != 3 {
		t.Fatalf("spB range = [%d,%d), want [2,3)", samples[1].Start, samples[1].End)
	}

	// Raw name "s1" exists in both samples; the rewritten ids keep them apart.
	sa, ok := c.Get("spA|s1")
	if !ok {
		t.Fatal("spA|s1 not found")
	}
	if string(sa.Bytes()) != "MKVL" {
		t.Fatalf("spA|s1 residues = %q", string(sa.Bytes()))
	}
	sb, ok := c.Get("spB|s1")
	if !ok {
		t.Fatal("spB|s1 not found")
	}
	if string(sb.Bytes()) != "AATT" {
		t.Fatalf("spB|s1 residues = %q", string(sb.Bytes()))
	}

	if tx, _ := c.Taxon("spB|s1"); tx != "spB" {
		t.Fatalf("taxon of spB|s1 = %q", tx)
	}
	if got := c.TaxonIDs(); len(got) != 2 || got[0] != "spA" || got[1] != "spB" {
		t.Fatalf("taxon ids = %v", got)
	}
}

func TestBuildEmptySampleTolerated(t *testing.T) {
	dir := t.TempDir()
	a := writeSample(t, dir, "spA.faa", ">s1\nMKVL\n")
	b := writeSample(t, dir, "spB.faa", "")

	c, err := Build([]string{a, b})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	samples := c.Samples()
	if samples[1].Start != samples[1].End {
		t.Fatalf("empty sample should own an empty range, got [%d,%d)",
			samples[1].Start, samples[1].End)
	}
	if len(c.SampleBlock(1)) != 0 {
		t.Fatal("empty sample block should have no sequences")
	}
}

func TestBuildUnreadableFile(t *testing.T) {
	_, err := Build([]string{filepath.Join(t.TempDir(), "missing.faa")})
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
}

func TestBuildDuplicateIDWithinSample(t *testing.T) {
	dir := t.TempDir()
	a := writeSample(t, dir, "spA.faa", ">s1\nMKVL\n>s1\nGGHH\n")
	_, err := Build([]string{a})
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("expected ErrLoad for duplicate id, got %v", err)
	}
}

func TestBuildDuplicateSampleName(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()
	a := writeSample(t, dir1, "sp.faa", ">s1\nMKVL\n")
	b := writeSample(t, dir2, "sp.faa", ">s2\nGGHH\n")
	_, err := Build([]string{a, b})
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("expected ErrLoad for duplicate sample name, got %v", err)
	}
}

func TestSampleName(t *testing.T) {
	cases := map[string]string{
		"/data/spA.faa":    "spA",
		"/data/spB.faa.gz": "spB",
		"spC":              "spC",
	}
	for in, want := range cases {
		if got := SampleName(in); got != want {
			t.Errorf("SampleName(%q) = %q, want %q", in, got, want)
		}
	}
}
