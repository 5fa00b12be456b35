// Package vadr wires the annotation engine end to end: it loads the
// model library, decodes per-sequence alignment inputs, fans the
// detectors out over a worker pool, and writes the verdict reports.
package vadr

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ncbi/vadr-sub007/config"
	"github.com/ncbi/vadr-sub007/internal/pipeline"
	"github.com/ncbi/vadr-sub007/internal/verdict"
)

var (
	// stderr is for logging to Stderr (without an annoying timestamp)
	stderr = log.New(os.Stderr, "", 0)
)

// Flags contains parsed cobra flags shared by the annotate command.
type Flags struct {
	// the model-info file defining models and their features
	modelInfo string

	// the name of the file with the per-sequence alignment inputs
	in string

	// the name of the file to write the JSON report to
	out string

	// the name of the file to write the alert table to, "" for stdout
	alt string
}

// NewFlags makes a new flags object manually. for testing.
func NewFlags(modelInfo, in, out, alt string) *Flags {
	return &Flags{modelInfo: modelInfo, in: in, out: out, alt: alt}
}

// AnnotateCmd runs annotation from a cobra command and its flags.
func AnnotateCmd(cmd *cobra.Command, args []string) {
	modelInfo, err := cmd.Flags().GetString("model-info")
	if err != nil {
		stderr.Fatalf("failed to parse --model-info: %v", err)
	}
	in, err := cmd.Flags().GetString("in")
	if err != nil {
		stderr.Fatalf("failed to parse --in: %v", err)
	}
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		stderr.Fatalf("failed to parse --out: %v", err)
	}
	alt, err := cmd.Flags().GetString("alt")
	if err != nil {
		stderr.Fatalf("failed to parse --alt: %v", err)
	}

	Annotate(NewFlags(modelInfo, in, out, alt), config.New())
}

// Annotate is for running the full annotation over one input file.
func Annotate(flags *Flags, conf *config.Config) []verdict.Result {
	start := time.Now()

	opts, err := conf.AlertOptions()
	if err != nil {
		stderr.Fatalf("%v", err)
	}

	lib, err := NewLibrary(flags.modelInfo, 0)
	if err != nil {
		stderr.Fatalf("failed to load model info: %v", err)
	}

	units, err := ReadInputs(flags.in, lib)
	if err != nil {
		stderr.Fatalf("failed to read inputs: %v", err)
	}

	var results []verdict.Result
	err = pipeline.ForEachVerdict(context.Background(), pipeline.Config{
		Threads: conf.Threads,
		Detect:  conf.Detect(),
		Alerts:  opts,
	}, units, func(r verdict.Result) error {
		results = append(results, r)
		return nil
	})
	if err != nil {
		stderr.Fatalf("annotation failed: %v", err)
	}

	seconds := time.Since(start).Seconds()
	if flags.out != "" {
		if _, err := WriteJSON(flags.out, results, lib, seconds); err != nil {
			stderr.Fatalf("failed to write %s: %v", flags.out, err)
		}
	}

	altOut := os.Stdout
	if flags.alt != "" {
		fh, err := os.Create(flags.alt)
		if err != nil {
			stderr.Fatalf("failed to create %s: %v", flags.alt, err)
		}
		defer fh.Close()
		altOut = fh
	}
	WriteAlerts(altOut, results, lib)

	passed := 0
	for _, r := range results {
		if r.Pass {
			passed++
		}
	}
	stderr.Printf("%d sequences: %d passed, %d failed (%.1fs)",
		len(results), passed, len(results)-passed, seconds)
	return results
}
