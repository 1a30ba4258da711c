// core/seqio/read.go
package seqio

import (
	"fmt"
	"io"
	"os"

	"github.com/TuftsBCB/io/fasta"
	"github.com/TuftsBCB/seq"
)

// ReadSeqs loads every record of a FASTA file (plain or gzipped; "-" for
// stdin) into memory. An empty file yields zero records and no error.
func ReadSeqs(path string) ([]seq.Sequence, error) {
	rc, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	r := fasta.NewReader(rc)
	var seqs []seq.Sequence
	for {
		s, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		seqs = append(seqs, s)
	}
	return seqs, nil
}

// WriteSeqs writes sequences as FASTA to w.
func WriteSeqs(w io.Writer, seqs []seq.Sequence) error {
	fw := fasta.NewWriter(w)
	for _, s := range seqs {
		if err := fw.Write(s); err != nil {
			return err
		}
	}
	return fw.Flush()
}

// WriteFile writes sequences as a FASTA file at path.
func WriteFile(path string, seqs []seq.Sequence) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSeqs(f, seqs); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
