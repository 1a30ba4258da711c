// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"

	"phylomsa/internal/cliutil"
	"phylomsa/internal/version"
)

// Alignment strategies.
const (
	MethodHmmalign = "hmmalign"
	MethodMuscle   = "muscle"
)

// Options holds all CLI flags and arguments.
type Options struct {
	// Input
	SampleFiles []string
	MarkerDir   string
	OutDir      string

	// Search
	EValue     float64
	HitPolicy  string // first | best-score
	MinSamples int

	// Alignment
	Method       string // hmmalign | muscle
	NonTrim      bool
	GapThreshold float64
	Concat       bool
	OnError      string // abort | skip

	// Performance
	Threads int

	// Collaborator executables
	HmmsearchPath string
	HmmalignPath  string
	MusclePath    string

	// Misc
	Quiet   bool
	Version bool
}

// sliceValue appends each value to a *[]string (for --samples/-s).
type sliceValue struct{ dst *[]string }

func (s *sliceValue) String() string {
	if s.dst == nil {
		return ""
	}
	return fmt.Sprint(*s.dst)
}
func (s *sliceValue) Set(v string) error {
	*s.dst = append(*s.dst, v)
	return nil
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: per-marker ortholog alignments for phylogenomics

Searches each sample proteome against an HMM marker set, keeps markers shared
by enough samples, aligns each marker's best hits, pads missing samples with
gaps, optionally trims gap-rich columns, and writes one FASTA alignment per
marker or a single concatenated supermatrix.

Version: %s

Usage of %s:
`, name, version.Version, name)
		fs.PrintDefaults()
	}
	return fs
}

// Register wires all flags onto fs.
func Register(fs *flag.FlagSet, o *Options) {
	// Input
	samples := &sliceValue{dst: &o.SampleFiles}
	fs.Var(samples, "samples", "sample FASTA file(s) (repeatable; globs accepted as positionals)")
	fs.Var(samples, "s", "alias of --samples")
	fs.StringVar(&o.MarkerDir, "markers", "", "directory of HMM marker profiles (one .hmm per marker)")
	fs.StringVar(&o.MarkerDir, "m", "", "alias of --markers")
	fs.StringVar(&o.OutDir, "output", "", "output directory (must be empty or absent)")
	fs.StringVar(&o.OutDir, "o", "", "alias of --output")

	// Search
	fs.Float64Var(&o.EValue, "evalue", 1e-10, "hmmsearch reporting/inclusion E-value threshold [1e-10]")
	fs.Float64Var(&o.EValue, "E", 1e-10, "alias of --evalue")
	fs.StringVar(&o.HitPolicy, "hit-policy", "first", "representative hit per sample: first | best-score [first]")
	fs.IntVar(&o.MinSamples, "min-samples", 3, "keep markers shared by at least this many samples [3]")

	// Alignment
	fs.StringVar(&o.Method, "method", MethodHmmalign, "alignment strategy: hmmalign | muscle [hmmalign]")
	fs.BoolVar(&o.NonTrim, "non-trim", false, "skip gap-fraction column trimming [false]")
	fs.Float64Var(&o.GapThreshold, "gap-threshold", 0.9, "drop columns with gap fraction above this [0.9]")
	fs.BoolVar(&o.Concat, "concat", false, "write one concatenated supermatrix instead of per-marker files [false]")
	fs.BoolVar(&o.Concat, "c", false, "alias of --concat")
	fs.StringVar(&o.OnError, "on-error", "abort", "per-marker failure policy: abort | skip [abort]")

	// Performance
	fs.IntVar(&o.Threads, "threads", 0, "worker threads (0=all CPUs) [0]")
	fs.IntVar(&o.Threads, "t", 0, "alias of --threads")

	// Collaborator executables
	fs.StringVar(&o.HmmsearchPath, "hmmsearch", "hmmsearch", "hmmsearch executable [hmmsearch]")
	fs.StringVar(&o.HmmalignPath, "hmmalign", "hmmalign", "hmmalign executable [hmmalign]")
	fs.StringVar(&o.MusclePath, "muscle", "muscle", "muscle executable [muscle]")

	// Misc
	fs.BoolVar(&o.Quiet, "quiet", false, "suppress progress output [false]")
	fs.BoolVar(&o.Quiet, "q", false, "alias of --quiet")
	fs.BoolVar(&o.Version, "version", false, "print version and exit [false]")
	fs.BoolVar(&o.Version, "v", false, "print version and exit [false]")
}

// ParseArgs parses argv; positionals (after glob expansion) are appended to
// the sample file list.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var o Options
	Register(fs, &o)

	flagArgs, posArgs := cliutil.SplitFlagsAndPositionals(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return o, err
	}
	if len(posArgs) > 0 {
		exp, err := cliutil.ExpandPositionals(posArgs)
		if err != nil {
			return o, err
		}
		o.SampleFiles = append(o.SampleFiles, exp...)
	}
	if o.Version {
		return o, nil
	}
	return o, Validate(&o)
}

// Validate applies the CLI invariants.
func Validate(o *Options) error {
	if len(o.SampleFiles) < 3 {
		return errors.New("at least 3 sample files are required to build a tree")
	}
	if o.MarkerDir == "" {
		return errors.New("--markers directory is required")
	}
	if o.OutDir == "" {
		return errors.New("--output directory is required")
	}
	if o.EValue <= 0 {
		return errors.New("--evalue must be > 0")
	}
	switch o.HitPolicy {
	case "first", "best-score":
	default:
		return fmt.Errorf("invalid --hit-policy %q", o.HitPolicy)
	}
	if o.MinSamples < 3 {
		return errors.New("--min-samples must be >= 3")
	}
	switch o.Method {
	case MethodHmmalign, MethodMuscle:
	default:
		return fmt.Errorf("invalid --method %q", o.Method)
	}
	if o.GapThreshold <= 0 || o.GapThreshold > 1 {
		return errors.New("--gap-threshold must be in (0, 1]")
	}
	switch o.OnError {
	case "abort", "skip":
	default:
		return fmt.Errorf("invalid --on-error %q", o.OnError)
	}
	if o.Threads < 0 {
		return errors.New("--threads must be >= 0")
	}
	return nil
}
