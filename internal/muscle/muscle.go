// internal/muscle/muscle.go
package muscle

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/TuftsBCB/seq"
	"github.com/google/uuid"

	"phylomsa-core/msa"
	"phylomsa-core/seqio"
)

// Muscle is the de-novo alignment strategy. Unlike profile-guided
// alignment it ignores the marker profile entirely and aligns the raw
// hit sequences against each other.
type Muscle struct {
	Path    string // executable name or path; "muscle" when empty
	Scratch string // scratch parent dir; os.TempDir() when empty
}

func (m Muscle) exe() string {
	if m.Path == "" {
		return "muscle"
	}
	return m.Path
}

// Align runs muscle on hits and returns the resulting alignment. Row
// names of hits must already be taxon ids; they are preserved.
//
// Muscle is always run single-threaded here; parallelism lives at the
// marker level, not inside each invocation.
func (m Muscle) Align(ctx context.Context, markerID string, hits []seq.Sequence) (*msa.Alignment, error) {
	parent := m.Scratch
	if parent == "" {
		parent = os.TempDir()
	}
	dir := filepath.Join(parent, "phylomsa-muscle-"+uuid.New().String())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: marker %s: %v", msa.ErrAlign, markerID, err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	in := filepath.Join(dir, markerID+".faa")
	out := filepath.Join(dir, markerID+".aln.faa")
	if err := seqio.WriteFile(in, hits); err != nil {
		return nil, fmt.Errorf("%w: marker %s: %v", msa.ErrAlign, markerID, err)
	}

	cmd := exec.CommandContext(ctx, m.exe(),
		"-align", in,
		"-output", out,
		"-threads", "1",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: marker %s: %s: %v: %s",
			msa.ErrAlign, markerID, m.exe(), err, strings.TrimSpace(stderr.String()))
	}

	rows, err := seqio.ReadSeqs(out)
	if err != nil {
		return nil, fmt.Errorf("%w: marker %s: read alignment: %v", msa.ErrAlign, markerID, err)
	}
	aln := msa.New(markerID)
	for _, s := range rows {
		if err := aln.Append(headerID(s.Name), s.Residues); err != nil {
			return nil, fmt.Errorf("%w: marker %s: %v", msa.ErrAlign, markerID, err)
		}
	}
	return aln, nil
}

func headerID(hdr string) string {
	hdr = strings.TrimSpace(hdr)
	if i := strings.IndexAny(hdr, " \t"); i >= 0 {
		return hdr[:i]
	}
	return hdr
}
