package fastq

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gostonefire/kmerfreq/internal/conf"
	"github.com/klauspost/pgzip"
)

// Reader - Streams the nucleotide lines of a FASTQ file.
// Records are four lines each and only the second line of every record is surfaced, the reader has no
// opinion on the other three. Files ending in .gz are decompressed transparently.
type Reader struct {
	path    string
	file    *os.File
	gz      *pgzip.Reader
	scanner *bufio.Scanner
	lineNo  int64
}

// NewReader - Returns a pointer to a new Reader streaming the given FASTQ file
func NewReader(path string) (reader *Reader, err error) {
	file, err := os.Open(path)
	if err != nil {
		return
	}

	var src io.Reader = file
	var gz *pgzip.Reader
	if strings.HasSuffix(path, ".gz") {
		gz, err = pgzip.NewReader(file)
		if err != nil {
			_ = file.Close()
			err = fmt.Errorf("unable to open gzip stream: %s", err)
			return
		}
		src = gz
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, conf.ScanBufferBytes), conf.ScanBufferBytes)

	reader = &Reader{path: path, file: file, gz: gz, scanner: scanner}

	return
}

// Next - Returns the next read in the file.
// The returned slice is only valid until the following call to Next. It returns io.EOF once the file
// is exhausted.
func (R *Reader) Next() (read []byte, err error) {
	for R.scanner.Scan() {
		lineNo := R.lineNo
		R.lineNo++
		if lineNo%4 == 1 {
			read = R.scanner.Bytes()
			return
		}
	}

	err = R.scanner.Err()
	if err == nil {
		err = io.EOF
	}

	return
}

// Close - Closes the underlying file
func (R *Reader) Close() (err error) {
	if R.gz != nil {
		_ = R.gz.Close()
	}
	if R.file != nil {
		err = R.file.Close()
		R.file = nil
	}

	return
}

// Stats - Volumes measured in a pre-pass over a FASTQ file
//   - Reads is the number of records in the file
//   - Kmers is the total number of length k windows over all reads, window breaks on ambiguous bases not considered
type Stats struct {
	Reads int64
	Kmers int64
}

// Count - Measures the total k-mer volume of a FASTQ file in a pre-pass and validates the four line
// record structure while doing so.
func Count(path string, k int) (stats Stats, err error) {
	reader, err := NewReader(path)
	if err != nil {
		return
	}
	defer func() { _ = reader.Close() }()

	for reader.scanner.Scan() {
		line := reader.scanner.Bytes()
		switch reader.lineNo % 4 {
		case 0:
			if len(line) == 0 || line[0] != '@' {
				err = fmt.Errorf("%s is not a valid FASTQ file: record %d does not start with '@'", path, reader.lineNo/4+1)
				return
			}
		case 1:
			stats.Reads++
			if windows := int64(len(line)) - int64(k) + 1; windows > 0 {
				stats.Kmers += windows
			}
		case 2:
			if len(line) == 0 || line[0] != '+' {
				err = fmt.Errorf("%s is not a valid FASTQ file: record %d has no '+' separator", path, reader.lineNo/4+1)
				return
			}
		}
		reader.lineNo++
	}

	if err = reader.scanner.Err(); err != nil {
		return
	}

	if stats.Reads == 0 {
		err = fmt.Errorf("%s is not a valid FASTQ file: no records found", path)
		return
	}
	if reader.lineNo%4 != 0 {
		err = fmt.Errorf("%s is not a valid FASTQ file: truncated last record", path)
		return
	}

	return
}
