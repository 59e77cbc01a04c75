package partition

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/gostonefire/kmerfreq/internal/conf"
)

// WriterConf - Is a struct to be passed in the call to NewWriter and contains configuration that
// affects file processing.
//   - ScratchDir is the per-run scratch directory to place iteration directories under
//   - Iteration is the iteration whose partition files the writer owns
//   - Partitions is the number of partition files to open
//   - RecordLength is the fixed record width in bytes, the encoded k-mer padded to whole bytes
type WriterConf struct {
	ScratchDir   string
	Iteration    int64
	Partitions   int64
	RecordLength int64
}

// Writer - Appends fixed width k-mer records to the partition files of one iteration.
// Records are the 2k bit code padded to a whole number of bytes, little-endian, with no header and no
// framing beyond the record width. Writes are buffered and fsync-free, Close flushes the buffers.
//
// Each partition file may be written from at most one goroutine at a time, writes to different
// partitions need no coordination.
type Writer struct {
	files        []*os.File
	bufs         []*bufio.Writer
	recordLength int64
	bytesWritten atomic.Int64
}

// NewWriter - Returns a pointer to a new Writer with all partition files of the iteration created.
// If any file fails to create, the ones already created are removed again.
func NewWriter(writerConf WriterConf) (writer *Writer, err error) {
	if writerConf.Partitions <= 0 {
		err = fmt.Errorf("number of partitions must be a positive value higher than 0 (zero)")
		return
	}
	if writerConf.RecordLength < 1 || writerConf.RecordLength > 8 {
		err = fmt.Errorf("record length must be between 1 and 8 bytes")
		return
	}

	dir := IterationDir(writerConf.ScratchDir, writerConf.Iteration)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		err = fmt.Errorf("error while creating iteration directory: %s", err)
		return
	}

	files := make([]*os.File, writerConf.Partitions)
	bufs := make([]*bufio.Writer, writerConf.Partitions)
	for p := int64(0); p < writerConf.Partitions; p++ {
		files[p], err = os.OpenFile(FileName(writerConf.ScratchDir, writerConf.Iteration, p), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			for q := int64(0); q < p; q++ {
				_ = files[q].Close()
			}
			_ = os.RemoveAll(dir)
			err = fmt.Errorf("error while open/create new partition file: %s", err)
			return
		}
		bufs[p] = bufio.NewWriterSize(files[p], conf.WriteBufferBytes)
	}

	writer = &Writer{files: files, bufs: bufs, recordLength: writerConf.RecordLength}

	return
}

// Write - Appends one k-mer record to the given partition file
func (W *Writer) Write(partition int64, code uint64) (err error) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], code)

	_, err = W.bufs[partition].Write(buf[:W.recordLength])
	if err != nil {
		err = fmt.Errorf("error while appending to partition file: %s", err)
		return
	}
	W.bytesWritten.Add(W.recordLength)

	return
}

// BytesWritten - Returns the number of record bytes written so far, buffered bytes included
func (W *Writer) BytesWritten() int64 {
	return W.bytesWritten.Load()
}

// Close - Flushes all write buffers and closes the partition files
func (W *Writer) Close() (err error) {
	for p := range W.files {
		if flushErr := W.bufs[p].Flush(); flushErr != nil && err == nil {
			err = fmt.Errorf("error while flushing partition file: %s", flushErr)
		}
		if closeErr := W.files[p].Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("error while closing partition file: %s", closeErr)
		}
	}

	return
}
