// core/msa/trim.go
package msa

import (
	"errors"
	"fmt"

	"github.com/TuftsBCB/seq"
)

// ErrAllColumnsTrimmed is returned when trimming would leave an alignment
// with zero columns. A zero-length marker corrupts supermatrix concatenation,
// so this is a hard failure, never a silent skip.
var ErrAllColumnsTrimmed = errors.New("all alignment columns trimmed")

// Trimmer removes poorly supported columns from an alignment. Implementations
// must return ErrAllColumnsTrimmed (wrapped) rather than an empty alignment.
type Trimmer interface {
	Trim(a *Alignment) (*Alignment, error)
}

// GapTrimmer drops every column whose gap fraction exceeds Threshold, the
// "gappy" trimming mode on the amino-acid alphabet.
type GapTrimmer struct {
	Threshold float64 // columns with gap fraction > Threshold are dropped
}

func (g GapTrimmer) Trim(a *Alignment) (*Alignment, error) {
	cols := a.Columns()
	n := len(a.Rows)
	keep := make([]int, 0, cols)
	for c := 0; c < cols; c++ {
		gaps := 0
		for _, r := range a.Rows {
			if r.Residues[c] == Gap {
				gaps++
			}
		}
		if float64(gaps)/float64(n) <= g.Threshold {
			keep = append(keep, c)
		}
	}
	if cols > 0 && len(keep) == 0 {
		return nil, fmt.Errorf("%w: marker %s", ErrAllColumnsTrimmed, a.Marker)
	}

	out := New(a.Marker)
	for _, r := range a.Rows {
		res := make([]seq.Residue, len(keep))
		for i, c := range keep {
			res[i] = r.Residues[c]
		}
		if err := out.Append(r.Name, res); err != nil {
			return nil, err
		}
	}
	return out, nil
}
