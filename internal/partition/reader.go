package partition

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/gostonefire/kmerfreq/internal/conf"
)

// Reader - Streams one partition file back as a sequence of k-mer codes.
// The record width must be the same as the one the file was written with, there is no header to
// recover it from.
type Reader struct {
	path         string
	file         *os.File
	reader       *bufio.Reader
	recordLength int64
}

// NewReader - Returns a pointer to a new Reader over the given partition file
func NewReader(path string, recordLength int64) (reader *Reader, err error) {
	if recordLength < 1 || recordLength > 8 {
		err = fmt.Errorf("record length must be between 1 and 8 bytes")
		return
	}

	file, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("unable to open partition file: %s", err)
		return
	}

	reader = &Reader{
		path:         path,
		file:         file,
		reader:       bufio.NewReaderSize(file, conf.ReadBufferBytes),
		recordLength: recordLength,
	}

	return
}

// Next - Returns the next k-mer code in the file, with ok false once the file is exhausted
func (R *Reader) Next() (code uint64, ok bool, err error) {
	var buf [8]byte

	_, err = io.ReadFull(R.reader, buf[:R.recordLength])
	if err == io.EOF {
		err = nil
		return
	}
	if err == io.ErrUnexpectedEOF {
		err = fmt.Errorf("partition file %s holds a truncated record", R.path)
		return
	}
	if err != nil {
		err = fmt.Errorf("error while reading partition file %s: %s", R.path, err)
		return
	}

	code = binary.LittleEndian.Uint64(buf[:])
	ok = true

	return
}

// Close - Closes the partition file
func (R *Reader) Close() (err error) {
	if R.file != nil {
		err = R.file.Close()
		R.file = nil
	}

	return
}
