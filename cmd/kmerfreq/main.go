package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gostonefire/kmerfreq"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Exit codes
const (
	exitOK                = 0
	exitOther             = 1
	exitUsage             = 2
	exitInput             = 3
	exitResourceExhausted = 4
	exitPartitionOverflow = 5
)

var (
	flagFile         string
	flagKmerSize     int
	flagMostFrequent int
	flagErrorRate    float64
	flagTargetDisk   int
	flagTargetMemory int
	flagAlgorithm    string
	flagVerbose      bool

	// entered flips once flag parsing succeeded, errors before that are usage errors
	entered bool
)

var rootCmd = &cobra.Command{
	Use:   "kmerfreq",
	Short: "count most frequent k-mers in FASTQ files",
	Long: `count most frequent k-mers in FASTQ files

Counts every k-mer over A, C, G and T in the reads of a FASTQ file, gzip
compressed or plain, and prints the n most frequent ones. K-mers are not
canonicalized against their reverse complement, a k-mer and its reverse
complement count separately. Ambiguous bases such as N break the window.

Two memory bounded engines are available. The bf engine suppresses the
singleton noise of sequencing data behind a membership filter, the dsk engine
partitions k-mers over disk buckets sized to the memory budget. By default
the engine is selected from the input volume and the memory budget.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		entered = true
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true

		return run()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flagFile, "file", "f", "", "FASTQ file to be processed (required)")
	rootCmd.Flags().IntVarP(&flagKmerSize, "kmer-size", "k", 0, "length of k-mers (required)")
	rootCmd.Flags().IntVarP(&flagMostFrequent, "most-frequent", "n", 0, "number of most frequent k-mers to output (required)")
	rootCmd.Flags().Float64VarP(&flagErrorRate, "error-rate", "e", 0.001, "membership filter error rate for the bf engine")
	rootCmd.Flags().IntVarP(&flagTargetDisk, "target-disk", "d", 25, "disk budget in GiB for the dsk engine")
	rootCmd.Flags().IntVarP(&flagTargetMemory, "target-memory", "m", 4, "memory budget in GiB")
	rootCmd.Flags().StringVarP(&flagAlgorithm, "algorithm", "a", "auto", "engine to use, one of auto, bf or dsk")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output")

	_ = rootCmd.MarkFlagRequired("file")
	_ = rootCmd.MarkFlagRequired("kmer-size")
	_ = rootCmd.MarkFlagRequired("most-frequent")
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("kmerfreq: ")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "kmerfreq: %s\n", err)
		os.Exit(exitCode(err))
	}

	os.Exit(exitOK)
}

// exitCode - Maps an error to the documented process exit code
func exitCode(err error) int {
	if !entered {
		return exitUsage
	}

	var usageErr kmerfreq.UsageError
	var ioErr kmerfreq.IoError
	var exhausted kmerfreq.ResourceExhausted
	var overflow kmerfreq.PartitionOverflow

	switch {
	case errors.As(err, &usageErr):
		return exitUsage
	case errors.As(err, &ioErr):
		return exitInput
	case errors.As(err, &exhausted):
		return exitResourceExhausted
	case errors.As(err, &overflow):
		return exitPartitionOverflow
	default:
		return exitOther
	}
}

func run() (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	timeStart := time.Now()

	// pre-pass, measures the k-mer volume and validates the file
	reads, volume, err := kmerfreq.CountKmers(flagFile, flagKmerSize)
	if err != nil {
		return pkgerrors.Wrap(err, "pre-pass")
	}
	if flagVerbose {
		log.Printf("%d reads holding %d %d-mers in %s counted in %s", reads, volume, flagKmerSize, flagFile, time.Since(timeStart).Round(time.Millisecond))
	}

	reporter := newProgressReporter(reads)
	counter, err := kmerfreq.New(kmerfreq.Config{
		K:            flagKmerSize,
		N:            flagMostFrequent,
		ErrorRate:    flagErrorRate,
		TargetMemory: int64(flagTargetMemory) << 30,
		TargetDisk:   int64(flagTargetDisk) << 30,
		Algorithm:    flagAlgorithm,
		Progress:     reporter.tick,
	})
	if err != nil {
		return err
	}

	if flagVerbose {
		log.Printf("selected algorithm: %s", counter.Algorithm(volume))
	}

	entries, err := counter.TopN(ctx, kmerfreq.FastqFile(flagFile), volume)
	reporter.finish()
	if err != nil {
		return pkgerrors.Wrap(err, flagFile)
	}

	for _, entry := range entries {
		fmt.Printf("%s: %d\n", counter.Sequence(entry.Kmer), entry.Count)
	}

	if flagVerbose {
		log.Printf("total duration: %s", time.Since(timeStart).Round(time.Millisecond))
	}

	return nil
}

// progressReporter - Renders engine progress callbacks as one bar per phase
type progressReporter struct {
	totalReads int64
	progress   *mpb.Progress
	bar        *mpb.Bar
	phase      string
}

// newProgressReporter - Returns a reporter, rendering only when verbose is on
func newProgressReporter(totalReads int64) *progressReporter {
	reporter := &progressReporter{totalReads: totalReads}
	if flagVerbose {
		reporter.progress = mpb.New(mpb.WithWidth(79))
	}

	return reporter
}

// tick - Progress callback handed to the engines
func (R *progressReporter) tick(phase string, processed int64) {
	if R.progress == nil {
		return
	}

	if phase != R.phase {
		if R.bar != nil {
			R.bar.SetTotal(-1, true)
		}
		R.phase = phase
		R.bar = R.progress.AddBar(R.totalReads,
			mpb.PrependDecorators(
				decor.Name(phase+" "),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)
	}

	R.bar.SetCurrent(processed)
}

// finish - Completes any open bar and shuts the renderer down
func (R *progressReporter) finish() {
	if R.progress == nil {
		return
	}
	if R.bar != nil {
		R.bar.SetTotal(-1, true)
	}
	R.progress.Wait()
}
