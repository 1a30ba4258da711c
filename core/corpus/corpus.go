// core/corpus/corpus.go
package corpus

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/TuftsBCB/seq"

	"phylomsa-core/seqio"
)

// ErrLoad marks corpus construction failures: unreadable sample files and
// identifier collisions.
var ErrLoad = errors.New("corpus load")

// Sample is one input proteome: a name and the contiguous index range its
// sequences occupy in the corpus block.
type Sample struct {
	Name  string
	Start int // first sequence index owned by this sample
	End   int // one past the last owned index
}

// Corpus is an immutable, 0-indexed store of every sample's sequences with an
// id → index lookup. Record ids are rewritten to "<sample>|<original id>" so
// that equal raw names in different samples cannot collide, and so the owning
// sample is recoverable from any retrieved sequence.
type Corpus struct {
	samples []Sample
	seqs    []seq.Sequence
	index   map[string]int
	taxon   map[string]string
}

// SampleName derives the taxon name from a sample file path: the base name
// with one extension stripped (two when gzipped).
func SampleName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".gz")
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// Build reads each sample file, in order, into one addressable sequence
// block. A sample file with zero records is tolerated; an unreadable file or
// a duplicate identifier is not.
func Build(paths []string) (*Corpus, error) {
	c := &Corpus{
		index: make(map[string]int),
		taxon: make(map[string]string),
	}
	for _, p := range paths {
		name := SampleName(p)
		for _, s := range c.samples {
			if s.Name == name {
				return nil, fmt.Errorf("%w: duplicate sample name %q (%s)", ErrLoad, name, p)
			}
		}
		recs, err := seqio.ReadSeqs(p)
		if err != nil {
			return nil, fmt.Errorf("%w: sample %q: %v", ErrLoad, name, err)
		}
		start := len(c.seqs)
		for _, r := range recs {
			id := name + "|" + headerID(r.Name)
			if _, dup := c.index[id]; dup {
				return nil, fmt.Errorf("%w: duplicate sequence id %q in sample %q",
					ErrLoad, headerID(r.Name), name)
			}
			c.index[id] = len(c.seqs)
			c.taxon[id] = name
			c.seqs = append(c.seqs, seq.Sequence{Name: id, Residues: r.Residues})
		}
		c.samples = append(c.samples, Sample{Name: name, Start: start, End: len(c.seqs)})
	}
	return c, nil
}

// headerID is the FASTA header up to the first whitespace.
func headerID(hdr string) string {
	hdr = strings.TrimSpace(hdr)
	if i := strings.IndexAny(hdr, " \t"); i >= 0 {
		return hdr[:i]
	}
	return hdr
}

// Len returns the total number of sequences in the corpus.
func (c *Corpus) Len() int { return len(c.seqs) }

// Samples returns the samples in input order.
func (c *Corpus) Samples() []Sample {
	out := make([]Sample, len(c.samples))
	copy(out, c.samples)
	return out
}

// TaxonIDs returns every sample name in input order.
func (c *Corpus) TaxonIDs() []string {
	out := make([]string, len(c.samples))
	for i, s := range c.samples {
		out[i] = s.Name
	}
	return out
}

// SampleBlock returns the contiguous sub-range of sequences owned by the i'th
// sample. The returned slice aliases the corpus block and must not be
// modified.
func (c *Corpus) SampleBlock(i int) []seq.Sequence {
	s := c.samples[i]
	return c.seqs[s.Start:s.End]
}

// Get retrieves a sequence by its rewritten id.
func (c *Corpus) Get(id string) (seq.Sequence, bool) {
	i, ok := c.index[id]
	if !ok {
		return seq.Sequence{}, false
	}
	return c.seqs[i], true
}

// Taxon reports the sample name owning the sequence with the given id.
func (c *Corpus) Taxon(id string) (string, bool) {
	t, ok := c.taxon[id]
	return t, ok
}
