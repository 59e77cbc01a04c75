package kmerfreq

import (
	"io"

	"github.com/gostonefire/kmerfreq/internal/fastq"
)

// FastqFile - Returns a ReadOpener streaming the reads of a FASTQ file, gzip compressed files are
// handled transparently. Errors from the source are surfaced as IoError carrying the file path.
func FastqFile(path string) ReadOpener {
	return fastqOpener{path: path}
}

// CountKmers - Measures the total k-mer volume of a FASTQ file in a pre-pass.
// The volume counts every length k window without regard to ambiguous bases, which makes it a slight
// overestimate suitable for sizing. The four line record structure is validated along the way.
//
// It returns:
//   - reads is the number of records in the file
//   - kmers is the total k-mer volume
//   - err is an IoError if the file can not be read or is not valid FASTQ
func CountKmers(path string, k int) (reads, kmers int64, err error) {
	stats, err := fastq.Count(path, k)
	if err != nil {
		err = IoError{Path: path, Cause: err}
		return
	}

	reads = stats.Reads
	kmers = stats.Kmers

	return
}

type fastqOpener struct {
	path string
}

// Open - Opens a fresh pass over the FASTQ file
func (O fastqOpener) Open() (source ReadSource, err error) {
	reader, err := fastq.NewReader(O.path)
	if err != nil {
		err = IoError{Path: O.path, Cause: err}
		return
	}

	source = &fastqSource{path: O.path, reader: reader}

	return
}

// fastqSource - Adapts the internal FASTQ reader to the ReadSource interface, wrapping read failures
// into IoError with the file path attached
type fastqSource struct {
	path   string
	reader *fastq.Reader
}

func (S *fastqSource) Next() (read []byte, err error) {
	read, err = S.reader.Next()
	if err != nil && err != io.EOF {
		err = IoError{Path: S.path, Cause: err}
	}

	return
}

func (S *fastqSource) Close() error {
	return S.reader.Close()
}
