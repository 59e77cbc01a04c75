package kmerfreq

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gostonefire/kmerfreq/hashfunc"
	hashalg "github.com/gostonefire/kmerfreq/interfaces"
	"github.com/gostonefire/kmerfreq/internal/conf"
	"github.com/gostonefire/kmerfreq/internal/kmer"
)

// Algorithm names accepted in Config.Algorithm
const (
	AlgorithmAuto string = "auto"
	AlgorithmBF   string = "bf"
	AlgorithmDSK  string = "dsk"
)

// ReadSource - A lazy, finite, non-restartable sequence of nucleotide reads.
// Next returns io.EOF once the sequence is exhausted, any other error ends the run: the membership
// filter engine surfaces it unchanged, the disk partitioned engine wraps it into an IoError unless it
// already is one of this package's error types. The returned read is only borrowed until the
// following call to Next.
type ReadSource interface {
	Next() (read []byte, err error)
	Close() error
}

// ReadOpener - Opens a fresh ReadSource over the same input.
// The engines stream the input more than once, the membership filter engine twice and the disk
// partitioned engine once per iteration, so they take an opener rather than a single source.
type ReadOpener interface {
	Open() (source ReadSource, err error)
}

// ProgressFunc - Optional callback the engines tick as reads are processed.
// It is called every 10000 reads and once at the end of each phase, is purely informational
// and never affects control flow.
type ProgressFunc func(phase string, reads int64)

// Config - Configuration for a counting run
//   - K is the k-mer length, between 1 and 32
//   - N is the number of most frequent k-mers to return
//   - ErrorRate is the membership filter false positive rate within (0, 1), zero selects the default
//   - TargetMemory is the memory budget in bytes for in-memory exact tables
//   - TargetDisk is the disk budget in bytes for partition files, treated as a ceiling not a target
//   - Algorithm is one of auto, bf or dsk, empty selects auto
//   - HashAlgorithm is an optional custom hash algorithm, nil selects the bundled MurmurHash3
//   - Workers is the number of partition writer goroutines in the disk partitioned engine, at most one
//     per partition file, values below 2 select the single threaded reference behavior
//   - ScratchDir is the directory to create the per-run scratch directory under, empty selects the
//     system temporary directory
//   - Progress is an optional progress callback
type Config struct {
	K             int
	N             int
	ErrorRate     float64
	TargetMemory  int64
	TargetDisk    int64
	Algorithm     string
	HashAlgorithm hashalg.HashAlgorithm
	Workers       int
	ScratchDir    string
	Progress      ProgressFunc
}

// Counter - The main implementation struct, it holds a validated configuration and runs the counting
// engines against read sources
type Counter struct {
	conf         Config
	hash         hashalg.HashAlgorithm
	extractor    *kmer.Extractor
	recordLength int64
	entryBytes   int64
}

// New - Returns a new Counter prepared to count with the given configuration.
// It returns an error of type UsageError if any parameter is out of range or inconsistent.
func New(config Config) (counter *Counter, err error) {
	if config.K < 1 || config.K > kmer.MaxK {
		err = UsageError{msg: fmt.Sprintf("k must be between 1 and %d, got %d", kmer.MaxK, config.K)}
		return
	}
	if config.N < 1 {
		err = UsageError{msg: fmt.Sprintf("n must be a positive value higher than 0 (zero), got %d", config.N)}
		return
	}
	if config.ErrorRate == 0 {
		config.ErrorRate = conf.DefaultErrorRate
	}
	if config.ErrorRate <= 0 || config.ErrorRate >= 1 {
		err = UsageError{msg: fmt.Sprintf("error rate must be within (0, 1), got %g", config.ErrorRate)}
		return
	}
	if config.TargetMemory < 1 {
		err = UsageError{msg: "target memory must be a positive number of bytes"}
		return
	}
	if config.TargetDisk < 1 {
		err = UsageError{msg: "target disk must be a positive number of bytes"}
		return
	}
	switch config.Algorithm {
	case "":
		config.Algorithm = AlgorithmAuto
	case AlgorithmAuto, AlgorithmBF, AlgorithmDSK:
	default:
		err = UsageError{msg: fmt.Sprintf("algorithm must be one of %s, %s or %s", AlgorithmAuto, AlgorithmBF, AlgorithmDSK)}
		return
	}
	if config.HashAlgorithm == nil {
		config.HashAlgorithm = hashfunc.NewMurmurHashAlgorithm()
	}

	counter = &Counter{
		conf:         config,
		hash:         config.HashAlgorithm,
		extractor:    kmer.NewExtractor(config.K),
		recordLength: kmer.RecordBytes(config.K),
		entryBytes:   EntryBytes(config.K),
	}

	return
}

// Algorithm - Returns the name of the engine a run over the given total k-mer volume would use
func (C *Counter) Algorithm(volume int64) string {
	if C.conf.Algorithm != AlgorithmAuto {
		return C.conf.Algorithm
	}
	if UseDSK(volume, C.conf.K, C.conf.TargetMemory) {
		return AlgorithmDSK
	}

	return AlgorithmBF
}

// Sequence - Returns the nucleotide sequence an encoded k-mer of this counter's k represents
func (C *Counter) Sequence(code uint64) string {
	return kmer.Decode(code, C.conf.K)
}

// TopN - Counts the k-mers of the input and returns the N most frequent ones, ranked highest count
// first with ties broken towards the smaller k-mer integer.
//   - ctx carries cooperative cancellation, checked once per read while streaming and once per
//     partition while counting
//   - opener re-opens the input for each pass the selected engine makes
//   - volume is the total k-mer volume of the input, e.g. measured with CountKmers
//
// It returns:
//   - entries is the ranked top-N, never partial: on any error it is nil
//   - err is of type UsageError, IoError, ResourceExhausted, PartitionOverflow or Cancelled, except
//     that the membership filter engine returns errors from the opener, the read source and the
//     filter setup unchanged
func (C *Counter) TopN(ctx context.Context, opener ReadOpener, volume int64) (entries []Entry, err error) {
	if volume < 1 {
		err = UsageError{msg: fmt.Sprintf("k-mer volume must be a positive value higher than 0 (zero), got %d", volume)}
		return
	}

	if C.Algorithm(volume) == AlgorithmDSK {
		entries, err = C.runDSK(ctx, opener, volume)
		return
	}

	entries, err = C.runBF(ctx, opener, volume)

	return
}

// key - Returns the little-endian byte encoding of a k-mer code, the same bytes a partition record
// holds, for use as hash input
func (C *Counter) key(code uint64, buf *[8]byte) []byte {
	binary.LittleEndian.PutUint64(buf[:], code)

	return buf[:C.recordLength]
}

// streamReads - Opens the input and feeds every k-mer of every read to emit.
// Cancellation is honored at the granularity of one read and the progress callback, if any, ticks
// while streaming.
func (C *Counter) streamReads(ctx context.Context, opener ReadOpener, phase string, emit func(code uint64) error) (err error) {
	source, err := opener.Open()
	if err != nil {
		return
	}
	defer func() { _ = source.Close() }()

	var reads int64
	for {
		select {
		case <-ctx.Done():
			err = Cancelled{}
			return
		default:
		}

		read, readErr := source.Next()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			err = readErr
			return
		}

		iter := C.extractor.Iter(read)
		for {
			code, ok := iter.Next()
			if !ok {
				break
			}
			err = emit(code)
			if err != nil {
				return
			}
		}

		reads++
		if C.conf.Progress != nil && reads%conf.ProgressReadInterval == 0 {
			C.conf.Progress(phase, reads)
		}
	}

	if C.conf.Progress != nil {
		C.conf.Progress(phase, reads)
	}

	return
}
