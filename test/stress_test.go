//go:build stress

package test

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/gostonefire/kmerfreq"
	"github.com/gostonefire/kmerfreq/hashfunc"
	"github.com/gostonefire/kmerfreq/internal/partition"
	"github.com/stretchr/testify/assert"
)

// TestPartitionBalance - Verifies that a uniform k-mer stream spreads evenly over hash selected
// partitions, no partition file should deviate from the expected share by more than ten percent.
func TestPartitionBalance(t *testing.T) {
	t.Run("uniform stream balances over four partitions", func(t *testing.T) {
		// Prepare
		const volume = 200000
		const partitions = 4
		const recordLength = 4

		scratch := t.TempDir()
		writer, err := partition.NewWriter(partition.WriterConf{
			ScratchDir:   scratch,
			Iteration:    0,
			Partitions:   partitions,
			RecordLength: recordLength,
		})
		assert.NoError(t, err)

		hash := hashfunc.NewMurmurHashAlgorithm()
		rng := rand.New(rand.NewSource(4711))
		buf := make([]byte, 8)

		// Execute
		for i := 0; i < volume; i++ {
			code := rng.Uint64() & (1<<32 - 1)
			for b := 0; b < 8; b++ {
				buf[b] = byte(code >> (8 * b))
			}
			p := int64(hash.Sum64(buf[:recordLength]) % partitions)
			assert.NoError(t, writer.Write(p, code))
		}
		assert.NoError(t, writer.Close())

		// Check
		expected := int64(volume / partitions * recordLength)
		for p := int64(0); p < partitions; p++ {
			stat, err := os.Stat(partition.FileName(scratch, 0, p))
			assert.NoError(t, err)
			assert.InDelta(t, float64(expected), float64(stat.Size()), float64(expected)/10)
		}
	})
}

// TestLargeFastq - Runs both engines over a sizeable synthetic FASTQ file and verifies they agree.
func TestLargeFastq(t *testing.T) {
	t.Run("engines agree over a synthetic sequencing file", func(t *testing.T) {
		// Prepare
		path := filepath.Join(t.TempDir(), "synthetic.fastq")
		file, err := os.Create(path)
		assert.NoError(t, err)

		rng := rand.New(rand.NewSource(1))
		bases := []byte{'A', 'C', 'G', 'T'}
		read := make([]byte, 100)
		for i := 0; i < 20000; i++ {
			for j := range read {
				read[j] = bases[rng.Intn(4)]
				// roughly one ambiguous base per ten reads
				if rng.Intn(1000) == 0 {
					read[j] = 'N'
				}
			}
			_, err = fmt.Fprintf(file, "@read%d\n%s\n+\n%s\n", i, read, read)
			assert.NoError(t, err)
		}
		assert.NoError(t, file.Close())

		_, volume, err := kmerfreq.CountKmers(path, 9)
		assert.NoError(t, err)

		newCounter := func(algorithm string, workers int) *kmerfreq.Counter {
			counter, err := kmerfreq.New(kmerfreq.Config{
				K:            9,
				N:            50,
				Algorithm:    algorithm,
				TargetMemory: 16 << 20,
				TargetDisk:   1 << 20,
				Workers:      workers,
				ScratchDir:   t.TempDir(),
			})
			assert.NoError(t, err)

			return counter
		}

		// Execute
		bfEntries, err := newCounter(kmerfreq.AlgorithmBF, 0).TopN(context.Background(), kmerfreq.FastqFile(path), volume)
		assert.NoError(t, err)
		dskEntries, err := newCounter(kmerfreq.AlgorithmDSK, 4).TopN(context.Background(), kmerfreq.FastqFile(path), volume)
		assert.NoError(t, err)

		// Check
		assert.Equal(t, bfEntries, dskEntries)
		assert.Len(t, bfEntries, 50)
		for _, entry := range bfEntries {
			assert.GreaterOrEqual(t, entry.Count, int64(2))
		}
	})
}
