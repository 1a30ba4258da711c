// internal/search/search.go
package search

import (
	"context"
	"fmt"
	"io"

	"github.com/TuftsBCB/seq"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"phylomsa-core/corpus"
	"phylomsa-core/ortho"

	"phylomsa/internal/hmmer"
)

// Engine searches one sample's sequence block against a marker set and
// returns its hits in the engine's own rank order.
type Engine interface {
	Search(ctx context.Context, markers []hmmer.Marker, block []seq.Sequence, evalue float64, cpus int) ([]ortho.Hit, error)
}

// Options controls one search pass over the corpus.
type Options struct {
	EValue   float64
	Policy   ortho.Policy
	Threads  int       // compute lanes per engine call; >=1 effective
	Progress io.Writer // progress bar sink; nil disables the bar
}

// Run searches every sample against markers and accumulates the selected
// representatives into one ortholog table. Samples are searched one at a
// time, each engine call getting the full thread count: parallelism lives
// inside the engine, so only one profile database is ever resident. The
// first sample failure aborts the run.
func Run(ctx context.Context, eng Engine, c *corpus.Corpus, markers []hmmer.Marker, opt Options) (*ortho.Table, error) {
	samples := c.Samples()
	threads := opt.Threads
	if threads < 1 {
		threads = 1
	}

	var pbs *mpb.Progress
	var bar *mpb.Bar
	if opt.Progress != nil {
		pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(opt.Progress))
		bar = pbs.AddBar(int64(len(samples)),
			mpb.PrependDecorators(
				decor.Name("searched samples: ", decor.WC{W: len("searched samples: "), C: decor.DindentRight}),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
		)
	}
	finish := func() {
		if bar != nil {
			bar.Abort(true)
			pbs.Wait()
		}
	}

	table := ortho.NewTable()
	for i, s := range samples {
		if err := ctx.Err(); err != nil {
			finish()
			return nil, err
		}
		hits, err := eng.Search(ctx, markers, c.SampleBlock(i), opt.EValue, threads)
		if err != nil {
			finish()
			return nil, fmt.Errorf("sample %q: %w", s.Name, err)
		}
		for marker, target := range ortho.Select(hits, opt.Policy) {
			table.Add(marker, target)
		}
		if bar != nil {
			bar.Increment()
		}
	}
	if bar != nil {
		pbs.Wait()
	}
	return table, nil
}
