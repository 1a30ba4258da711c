// internal/hmmer/hmmalign.go
package hmmer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/TuftsBCB/io/fasta"
	"github.com/TuftsBCB/seq"

	"phylomsa-core/msa"
	"phylomsa-core/seqio"
)

// Hmmalign is the profile-guided alignment strategy: each marker's hits are
// aligned against that marker's own profile, trimmed to match columns.
type Hmmalign struct {
	Path      string // executable name or path; "hmmalign" when empty
	MarkerDir string
}

func (h Hmmalign) exe() string {
	if h.Path == "" {
		return "hmmalign"
	}
	return h.Path
}

// Align aligns hits against the markerID profile. Row names of hits must
// already be taxon ids; they are preserved in the result.
func (h Hmmalign) Align(ctx context.Context, markerID string, hits []seq.Sequence) (*msa.Alignment, error) {
	hitFile, err := os.CreateTemp("", "phylomsa-hits-*.faa")
	if err != nil {
		return nil, fmt.Errorf("%w: marker %s: %v", msa.ErrAlign, markerID, err)
	}
	defer func() { _ = os.Remove(hitFile.Name()) }()
	if err := seqio.WriteSeqs(hitFile, hits); err != nil {
		_ = hitFile.Close()
		return nil, fmt.Errorf("%w: marker %s: %v", msa.ErrAlign, markerID, err)
	}
	if err := hitFile.Close(); err != nil {
		return nil, fmt.Errorf("%w: marker %s: %v", msa.ErrAlign, markerID, err)
	}

	profile := filepath.Join(h.MarkerDir, markerID+".hmm")
	cmd := exec.CommandContext(ctx, h.exe(),
		"--trim", "--amino", "--outformat", "afa",
		profile, hitFile.Name(),
	)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: marker %s: %s: %v: %s",
			msa.ErrAlign, markerID, h.exe(), err, strings.TrimSpace(stderr.String()))
	}

	aln := msa.New(markerID)
	r := fasta.NewReader(&out)
	for {
		s, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: marker %s: parse alignment: %v", msa.ErrAlign, markerID, err)
		}
		if err := aln.Append(headerID(s.Name), s.Residues); err != nil {
			return nil, fmt.Errorf("%w: marker %s: %v", msa.ErrAlign, markerID, err)
		}
	}
	// hmmalign emits nonmatch states and ambiguity codes; downstream
	// stages expect gaps. Other aligners' output is left untouched.
	msa.Scrub(aln)
	return aln, nil
}

// headerID is the FASTA header up to the first whitespace.
func headerID(hdr string) string {
	hdr = strings.TrimSpace(hdr)
	if i := strings.IndexAny(hdr, " \t"); i >= 0 {
		return hdr[:i]
	}
	return hdr
}
