// internal/hmmer/hmmsearch.go
package hmmer

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/TuftsBCB/seq"

	"phylomsa-core/ortho"
	"phylomsa-core/seqio"
)

// Hmmsearch runs the external hmmsearch executable over one sample's
// sequence block. Internal parallelism is the engine's (--cpu); callers do
// not fan out across samples.
type Hmmsearch struct {
	Path string // executable name or path; "hmmsearch" when empty
}

func (h Hmmsearch) exe() string {
	if h.Path == "" {
		return "hmmsearch"
	}
	return h.Path
}

// Search runs one engine call: the full marker library against block, with
// evalue as both the reporting and inclusion threshold. Hits come back in
// the engine's per-marker rank order.
func (h Hmmsearch) Search(ctx context.Context, markers []Marker, block []seq.Sequence,
	evalue float64, cpus int) ([]ortho.Hit, error) {

	if len(block) == 0 {
		return nil, nil
	}

	db, err := OpenProfileDB(markers)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	seqFile, err := os.CreateTemp("", "phylomsa-seqs-*.faa")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}
	defer func() { _ = os.Remove(seqFile.Name()) }()
	if err := seqio.WriteSeqs(seqFile, block); err != nil {
		_ = seqFile.Close()
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}
	if err := seqFile.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}

	tbl, err := os.CreateTemp("", "phylomsa-tblout-*.tsv")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}
	tblPath := tbl.Name()
	_ = tbl.Close()
	defer func() { _ = os.Remove(tblPath) }()

	ev := strconv.FormatFloat(evalue, 'g', -1, 64)
	cmd := exec.CommandContext(ctx, h.exe(),
		"--noali", "--notextw",
		"-E", ev, "--incE", ev,
		"--cpu", strconv.Itoa(cpus),
		"--tblout", tblPath,
		db.Path(), seqFile.Name(),
	)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v: %s",
			ErrSearch, h.exe(), err, strings.TrimSpace(stderr.String()))
	}

	f, err := os.Open(tblPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}
	defer func() { _ = f.Close() }()
	return ParseTblout(f)
}

// ParseTblout reads hmmsearch --tblout output: '#' comment lines, then one
// whitespace-separated row per hit with the free-text description last. The
// per-query row order is hmmsearch's rank order and is preserved. A hit is
// included when its "inc" column is nonzero.
func ParseTblout(r io.Reader) ([]ortho.Hit, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var hits []ortho.Hit
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f := strings.Fields(line)
		if len(f) < 18 {
			return nil, fmt.Errorf("%w: malformed tblout line: %q", ErrSearch, line)
		}
		ev, err := strconv.ParseFloat(f[4], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad E-value in tblout line: %q", ErrSearch, line)
		}
		score, err := strconv.ParseFloat(f[5], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad score in tblout line: %q", ErrSearch, line)
		}
		inc, err := strconv.Atoi(f[17])
		if err != nil {
			return nil, fmt.Errorf("%w: bad inclusion count in tblout line: %q", ErrSearch, line)
		}
		hits = append(hits, ortho.Hit{
			Marker:   f[2],
			Target:   f[0],
			EValue:   ev,
			Score:    score,
			Included: inc > 0,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}
	return hits, nil
}
