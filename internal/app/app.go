// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"phylomsa-core/corpus"
	"phylomsa-core/msa"
	"phylomsa-core/ortho"

	"phylomsa/internal/cli"
	"phylomsa/internal/hmmer"
	"phylomsa/internal/muscle"
	"phylomsa/internal/pipeline"
	"phylomsa/internal/search"
	"phylomsa/internal/version"
	"phylomsa/internal/writers"
)

// Exit codes.
const (
	exitOK        = 0
	exitNoMarkers = 1
	exitUsage     = 2
	exitRuntime   = 3
)

// RunContext is the full program: parse, validate, and run the pipeline.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet("phylomsa")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		argv = []string{"-h"}
	}

	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(outw)
			fs.Usage()
			return exitOK
		}
		_, _ = fmt.Fprintln(stderr, err)
		fs.SetOutput(outw)
		fs.Usage()
		return exitUsage
	}

	if opts.Version {
		_, _ = fmt.Fprintf(outw, "phylomsa version %s\n", version.Version)
		return exitOK
	}

	if err := run(parent, opts, stderr); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			_, _ = fmt.Fprintln(stderr, "phylomsa: cancelled")
			return 130
		}
		if errors.Is(err, errNoMarkers) {
			_, _ = fmt.Fprintln(stderr, err)
			return exitNoMarkers
		}
		_, _ = fmt.Fprintln(stderr, err)
		return exitRuntime
	}
	return exitOK
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

// errNoMarkers means the pipeline ran but nothing survived filtering.
var errNoMarkers = errors.New("no marker is shared by enough samples")

func run(ctx context.Context, opts cli.Options, stderr io.Writer) error {
	logf := func(format string, args ...interface{}) {
		if !opts.Quiet {
			_, _ = fmt.Fprintf(stderr, "phylomsa: "+format+"\n", args...)
		}
	}

	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	if err := prepareOutDir(opts.OutDir); err != nil {
		return err
	}

	markers, err := hmmer.ScanMarkers(opts.MarkerDir)
	if err != nil {
		return err
	}
	logf("loaded %d marker profiles from %s", len(markers), opts.MarkerDir)

	corp, err := corpus.Build(opts.SampleFiles)
	if err != nil {
		return err
	}
	logf("loaded %d sequences from %d samples", corp.Len(), len(corp.Samples()))

	policy, err := ortho.ParsePolicy(opts.HitPolicy)
	if err != nil {
		return err
	}
	var progress io.Writer
	if !opts.Quiet {
		progress = stderr
	}
	table, err := search.Run(ctx, hmmer.Hmmsearch{Path: opts.HmmsearchPath}, corp, markers, search.Options{
		EValue:   opts.EValue,
		Policy:   policy,
		Threads:  threads,
		Progress: progress,
	})
	if err != nil {
		return err
	}

	if err := ortho.Filter(table, opts.MinSamples); err != nil {
		return err
	}
	if table.Len() == 0 {
		return fmt.Errorf("%w (min %d)", errNoMarkers, opts.MinSamples)
	}
	logf("%d markers shared by at least %d samples", table.Len(), opts.MinSamples)

	onErr, err := pipeline.ParseOnError(opts.OnError)
	if err != nil {
		return err
	}
	cfg := pipeline.Config{Threads: threads, OnError: onErr, Logf: logf}

	var aligner pipeline.Aligner
	switch opts.Method {
	case cli.MethodMuscle:
		aligner = muscle.Muscle{Path: opts.MusclePath}
	default:
		aligner = hmmer.Hmmalign{Path: opts.HmmalignPath, MarkerDir: opts.MarkerDir}
	}

	alns, err := pipeline.AlignAll(ctx, cfg, table, corp, aligner)
	if err != nil {
		return err
	}
	if len(alns) == 0 {
		return errNoMarkers
	}

	taxa := corp.TaxonIDs()
	if err := pipeline.FillAll(ctx, cfg, taxa, alns); err != nil {
		return err
	}

	if !opts.NonTrim {
		if err := pipeline.TrimAll(ctx, cfg, msa.GapTrimmer{Threshold: opts.GapThreshold}, alns); err != nil {
			return err
		}
		if len(alns) == 0 {
			return errNoMarkers
		}
	}

	if opts.Concat {
		if err := writers.EmitSupermatrix(opts.OutDir, taxa, alns); err != nil {
			return err
		}
		logf("wrote supermatrix of %d markers to %s", len(alns), opts.OutDir)
	} else {
		if err := writers.EmitMarkers(opts.OutDir, alns); err != nil {
			return err
		}
		logf("wrote %d marker alignments to %s", len(alns), opts.OutDir)
	}
	return nil
}

// prepareOutDir creates the output directory if absent and refuses a
// non-empty one, so distinct runs cannot silently mix outputs.
func prepareOutDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("output directory %s is not empty", dir)
	}
	return nil
}
