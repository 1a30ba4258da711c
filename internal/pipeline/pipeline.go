// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/TuftsBCB/seq"

	"phylomsa-core/corpus"
	"phylomsa-core/msa"
	"phylomsa-core/ortho"
)

// Aligner turns one marker's hit sequences into a multiple sequence
// alignment. Row names of hits are taxon ids and must survive into the
// alignment rows.
type Aligner interface {
	Align(ctx context.Context, markerID string, hits []seq.Sequence) (*msa.Alignment, error)
}

// OnError selects how a per-marker failure propagates.
type OnError int

const (
	// Abort cancels all in-flight markers and fails the stage on the
	// first error.
	Abort OnError = iota
	// Skip drops the failing marker, logs it, and lets the rest finish.
	Skip
)

func ParseOnError(s string) (OnError, error) {
	switch s {
	case "abort":
		return Abort, nil
	case "skip":
		return Skip, nil
	}
	return 0, fmt.Errorf("unknown error policy %q", s)
}

// Config controls the per-marker stages.
type Config struct {
	Threads int // worker goroutines (>=1 effective)
	OnError OnError
	Logf    func(format string, args ...interface{}) // nil disables logging
}

func (c Config) logf(format string, args ...interface{}) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}

// forEach runs fn over ids with a bounded worker pool. Under Abort the
// first error cancels the remaining work and is returned; under Skip
// failing ids are logged and dropped, and the survivors are returned.
// Parent cancellation always wins over either policy.
func forEach(ctx context.Context, cfg Config, stage string, ids []string, fn func(ctx context.Context, id string) error) ([]string, error) {
	threads := cfg.Threads
	if threads < 1 {
		threads = 1
	}
	if threads > len(ids) {
		threads = len(ids)
	}
	if threads < 1 {
		threads = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan string, threads)
	var (
		mu       sync.Mutex
		werr     error
		survived []string
		wg       sync.WaitGroup
	)

	wg.Add(threads)
	for w := 0; w < threads; w++ {
		go func() {
			defer wg.Done()
			for id := range jobs {
				if ctx.Err() != nil {
					return
				}
				err := fn(ctx, id)
				if err == nil {
					mu.Lock()
					survived = append(survived, id)
					mu.Unlock()
					continue
				}
				if cfg.OnError == Skip && ctx.Err() == nil {
					cfg.logf("%s: skipping %s: %v", stage, id, err)
					continue
				}
				mu.Lock()
				if werr == nil {
					werr = err
				}
				mu.Unlock()
				cancel()
				return
			}
		}()
	}

feed:
	for _, id := range ids {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- id:
		}
	}
	close(jobs)
	wg.Wait()

	if werr != nil {
		return nil, werr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Strings(survived)
	return survived, nil
}

// AlignAll aligns every marker in the table. Hit sequences are pulled
// from the corpus and relabeled to their owning taxon before alignment,
// so every row of every result is keyed by taxon id. Aligner output is
// taken as-is; any residue rewriting is the aligner's own business.
func AlignAll(ctx context.Context, cfg Config, table *ortho.Table, c *corpus.Corpus, al Aligner) (map[string]*msa.Alignment, error) {
	out := make(map[string]*msa.Alignment, table.Len())
	var mu sync.Mutex

	_, err := forEach(ctx, cfg, "align", table.Markers(), func(ctx context.Context, marker string) error {
		hits, err := materialize(c, table.Hits(marker))
		if err != nil {
			return fmt.Errorf("%w: marker %s: %v", msa.ErrAlign, marker, err)
		}
		aln, err := al.Align(ctx, marker, hits)
		if err != nil {
			return err
		}
		mu.Lock()
		out[marker] = aln
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// materialize resolves hit ids into sequences named by taxon. One hit
// per sample per marker keeps the relabeled names unique.
func materialize(c *corpus.Corpus, ids []string) ([]seq.Sequence, error) {
	hits := make([]seq.Sequence, 0, len(ids))
	for _, id := range ids {
		s, ok := c.Get(id)
		if !ok {
			return nil, fmt.Errorf("hit %q not in corpus", id)
		}
		taxon, ok := c.Taxon(id)
		if !ok {
			return nil, fmt.Errorf("hit %q has no sample", id)
		}
		hits = append(hits, seq.Sequence{Name: taxon, Residues: s.Residues})
	}
	return hits, nil
}

// FillAll pads every alignment with all-gap rows for the taxa it lacks,
// so each alignment covers the full taxon set.
func FillAll(ctx context.Context, cfg Config, taxa []string, alns map[string]*msa.Alignment) error {
	_, err := forEach(ctx, cfg, "fill", markerIDs(alns), func(ctx context.Context, marker string) error {
		msa.FillMissing(taxa, alns[marker])
		return nil
	})
	return err
}

// TrimAll applies tr to every alignment in place. Under Skip, markers
// whose trim fails are removed from alns.
func TrimAll(ctx context.Context, cfg Config, tr msa.Trimmer, alns map[string]*msa.Alignment) error {
	var mu sync.Mutex
	keep, err := forEach(ctx, cfg, "trim", markerIDs(alns), func(ctx context.Context, marker string) error {
		trimmed, err := tr.Trim(alns[marker])
		if err != nil {
			return fmt.Errorf("marker %s: %w", marker, err)
		}
		mu.Lock()
		alns[marker] = trimmed
		mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}
	kept := make(map[string]bool, len(keep))
	for _, m := range keep {
		kept[m] = true
	}
	for m := range alns {
		if !kept[m] {
			delete(alns, m)
		}
	}
	return nil
}

func markerIDs(alns map[string]*msa.Alignment) []string {
	ids := make([]string, 0, len(alns))
	for m := range alns {
		ids = append(ids, m)
	}
	sort.Strings(ids)
	return ids
}
