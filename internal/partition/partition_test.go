//go:build unit

package partition

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	t.Run("reading all partitions back yields the written multiset", func(t *testing.T) {
		// Prepare
		scratch := t.TempDir()
		writer, err := NewWriter(WriterConf{ScratchDir: scratch, Iteration: 0, Partitions: 4, RecordLength: 2})
		assert.NoError(t, err)

		written := map[uint64]int{}
		for i := uint64(0); i < 1000; i++ {
			code := i % 300
			assert.NoError(t, writer.Write(int64(i%4), code))
			written[code]++
		}

		// Execute
		assert.NoError(t, writer.Close())

		got := map[uint64]int{}
		for p := int64(0); p < 4; p++ {
			reader, err := NewReader(FileName(scratch, 0, p), 2)
			assert.NoError(t, err)
			for {
				code, ok, err := reader.Next()
				assert.NoError(t, err)
				if !ok {
					break
				}
				got[code]++
			}
			assert.NoError(t, reader.Close())
		}

		// Check
		assert.Equal(t, written, got)
	})

	t.Run("bytes written reflects record width times record count", func(t *testing.T) {
		// Prepare
		scratch := t.TempDir()
		writer, err := NewWriter(WriterConf{ScratchDir: scratch, Iteration: 1, Partitions: 2, RecordLength: 3})
		assert.NoError(t, err)

		// Execute
		for i := uint64(0); i < 10; i++ {
			assert.NoError(t, writer.Write(int64(i%2), i))
		}

		// Check
		assert.Equal(t, int64(30), writer.BytesWritten())
		assert.NoError(t, writer.Close())
	})

	t.Run("full width codes survive the round trip", func(t *testing.T) {
		// Prepare
		scratch := t.TempDir()
		writer, err := NewWriter(WriterConf{ScratchDir: scratch, Iteration: 0, Partitions: 1, RecordLength: 8})
		assert.NoError(t, err)

		code := ^uint64(0) - 12345
		assert.NoError(t, writer.Write(0, code))
		assert.NoError(t, writer.Close())

		// Execute
		reader, err := NewReader(FileName(scratch, 0, 0), 8)
		assert.NoError(t, err)
		got, ok, err := reader.Next()

		// Check
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, code, got)
		assert.NoError(t, reader.Close())
	})
}

func TestNewWriter(t *testing.T) {
	t.Run("rejects non-positive partition count", func(t *testing.T) {
		_, err := NewWriter(WriterConf{ScratchDir: t.TempDir(), Partitions: 0, RecordLength: 2})
		assert.Error(t, err)
	})

	t.Run("rejects record length outside 1 to 8 bytes", func(t *testing.T) {
		_, err := NewWriter(WriterConf{ScratchDir: t.TempDir(), Partitions: 1, RecordLength: 9})
		assert.Error(t, err)
	})
}

func TestReader(t *testing.T) {
	t.Run("truncated record surfaces an error", func(t *testing.T) {
		// Prepare
		scratch := t.TempDir()
		writer, err := NewWriter(WriterConf{ScratchDir: scratch, Iteration: 0, Partitions: 1, RecordLength: 4})
		assert.NoError(t, err)
		assert.NoError(t, writer.Write(0, 42))
		assert.NoError(t, writer.Close())

		path := FileName(scratch, 0, 0)
		assert.NoError(t, os.Truncate(path, 3))

		// Execute
		reader, err := NewReader(path, 4)
		assert.NoError(t, err)
		_, _, err = reader.Next()

		// Check
		assert.Error(t, err)
		assert.NoError(t, reader.Close())
	})
}

func TestRemoveIterationFiles(t *testing.T) {
	t.Run("removes the iteration directory and its files", func(t *testing.T) {
		// Prepare
		scratch := t.TempDir()
		writer, err := NewWriter(WriterConf{ScratchDir: scratch, Iteration: 2, Partitions: 3, RecordLength: 2})
		assert.NoError(t, err)
		assert.NoError(t, writer.Write(1, 7))
		assert.NoError(t, writer.Close())

		// Execute
		err = RemoveIterationFiles(scratch, 2)

		// Check
		assert.NoError(t, err)
		_, statErr := os.Stat(IterationDir(scratch, 2))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("removing a missing iteration is not an error", func(t *testing.T) {
		assert.NoError(t, RemoveIterationFiles(t.TempDir(), 9))
	})
}
