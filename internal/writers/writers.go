// internal/writers/writers.go
package writers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"phylomsa-core/msa"
	"phylomsa-core/seqio"
)

// ErrAssembly marks output materialization failures.
var ErrAssembly = errors.New("assembly")

// SupermatrixFile is the file name of the concatenated alignment.
const SupermatrixFile = "concat_alignments.faa"

// EmitMarkers writes one FASTA per marker into dir, rows sorted by taxon.
// Files land under their final names only after a complete write, so a
// failed run never leaves a truncated alignment behind.
func EmitMarkers(dir string, alns map[string]*msa.Alignment) error {
	for _, marker := range markerIDs(alns) {
		aln := alns[marker]
		aln.SortRows()
		if err := writeAlignment(filepath.Join(dir, marker+".faa"), aln); err != nil {
			return fmt.Errorf("%w: marker %s: %v", ErrAssembly, marker, err)
		}
	}
	return nil
}

// EmitSupermatrix concatenates every alignment in sorted marker order into
// one supermatrix and writes it as SupermatrixFile under dir.
func EmitSupermatrix(dir string, taxa []string, alns map[string]*msa.Alignment) error {
	cat, err := msa.Concat(taxa, markerIDs(alns), alns)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAssembly, err)
	}
	cat.SortRows()
	if err := writeAlignment(filepath.Join(dir, SupermatrixFile), cat); err != nil {
		return fmt.Errorf("%w: %v", ErrAssembly, err)
	}
	return nil
}

// writeAlignment writes rows to a scratch file in the target directory and
// renames it into place.
func writeAlignment(path string, aln *msa.Alignment) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".phylomsa-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := seqio.WriteSeqs(tmp, aln.Rows); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func markerIDs(alns map[string]*msa.Alignment) []string {
	ids := make([]string, 0, len(alns))
	for m := range alns {
		ids = append(ids, m)
	}
	sort.Strings(ids)
	return ids
}
