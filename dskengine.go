package kmerfreq

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/gostonefire/kmerfreq/internal/conf"
	"github.com/gostonefire/kmerfreq/internal/partition"
	"github.com/gostonefire/kmerfreq/internal/utils"
)

// dskSizing - Iteration and partition counts chosen so that each iteration fits the disk budget and
// each partition's exact table fits the memory budget
//   - Iterations is the number of iterations the run is split into
//   - Partitions is the number of partitions per iteration
//   - TotalPartitions is Iterations times Partitions, the modulus of the partition hash
type dskSizing struct {
	Iterations      int64
	Partitions      int64
	TotalPartitions int64
}

// newDSKSizing - Returns the smallest iteration and partition counts satisfying both budgets for the
// given total k-mer volume.
// With v the bytes one entry occupies in an exact table and d the bytes one record occupies on disk:
// Iterations = ceil(volume*d / targetDisk) and Partitions = ceil(ceil(volume/Iterations)*v / targetMemory),
// both at least one.
func (C *Counter) newDSKSizing(volume int64) (sizing dskSizing) {
	sizing.Iterations = utils.CeilDiv(volume*C.recordLength, C.conf.TargetDisk)
	perIteration := utils.CeilDiv(volume, sizing.Iterations)
	sizing.Partitions = utils.CeilDiv(perIteration*C.entryBytes, C.conf.TargetMemory)
	sizing.TotalPartitions = sizing.Iterations * sizing.Partitions

	return
}

// globalPartition - Returns the partition number of a k-mer in [0, TotalPartitions)
func (C *Counter) globalPartition(key []byte, sizing dskSizing) int64 {
	return int64(C.hash.Sum64(key) % uint64(sizing.TotalPartitions))
}

// runDSK - The disk partitioned engine.
//
// K-mers are assigned to one of Iterations*Partitions disk buckets by a single hash. Bucket b belongs
// to iteration b mod Iterations, so iterations cover disjoint bucket sets and every k-mer lands in
// exactly one (iteration, partition) pair. Each iteration streams the reads once, writes only its own
// buckets, counts them one at a time in memory and deletes its files before the next iteration
// begins, keeping disk usage within the disk budget and table memory within the memory budget.
//
// The final ranking is drained into one bounded priority queue across the whole run.
func (C *Counter) runDSK(ctx context.Context, opener ReadOpener, volume int64) (entries []Entry, err error) {
	sizing := C.newDSKSizing(volume)

	scratchDir, err := os.MkdirTemp(C.conf.ScratchDir, conf.ScratchDirPattern)
	if err != nil {
		err = IoError{Path: C.conf.ScratchDir, Cause: err}
		return
	}
	defer func() { _ = os.RemoveAll(scratchDir) }()

	topN := NewTopN(C.conf.N)
	for iteration := int64(0); iteration < sizing.Iterations; iteration++ {
		err = C.dskIteration(ctx, opener, scratchDir, iteration, sizing, topN)
		if err != nil {
			return
		}
	}

	entries = topN.Entries()

	return
}

// dskIteration - Runs the write and count phases of one iteration and deletes its files afterwards
func (C *Counter) dskIteration(ctx context.Context, opener ReadOpener, scratchDir string, iteration int64, sizing dskSizing, topN *TopN) (err error) {
	writer, err := partition.NewWriter(partition.WriterConf{
		ScratchDir:   scratchDir,
		Iteration:    iteration,
		Partitions:   sizing.Partitions,
		RecordLength: C.recordLength,
	})
	if err != nil {
		err = IoError{Path: scratchDir, Cause: err}
		return
	}

	err = C.dskWrite(ctx, opener, writer, iteration, sizing)
	closeErr := writer.Close()
	if err == nil && closeErr != nil {
		err = IoError{Path: scratchDir, Cause: closeErr}
	}
	if err != nil {
		return
	}

	for p := int64(0); p < sizing.Partitions; p++ {
		select {
		case <-ctx.Done():
			err = Cancelled{}
			return
		default:
		}

		err = C.dskCountPartition(scratchDir, iteration, p, sizing, topN)
		if err != nil {
			return
		}
	}

	err = partition.RemoveIterationFiles(scratchDir, iteration)
	if err != nil {
		err = IoError{Path: scratchDir, Cause: err}
	}

	return
}

// dskRecord - One routed k-mer on its way to a partition writer goroutine
type dskRecord struct {
	partition int64
	code      uint64
}

// dskWrite - Streams the reads once and appends every k-mer belonging to the iteration to its
// partition file.
//
// With more than one worker configured, a producer reads and extracts while each worker goroutine
// owns the disjoint partition set p mod workers and drains its own bounded queue, so every partition
// file is written by exactly one goroutine and no per-record locking is needed.
func (C *Counter) dskWrite(ctx context.Context, opener ReadOpener, writer *partition.Writer, iteration int64, sizing dskSizing) (err error) {
	phase := fmt.Sprintf("write %d/%d", iteration+1, sizing.Iterations)

	workers := C.conf.Workers
	if int64(workers) > sizing.Partitions {
		workers = int(sizing.Partitions)
	}

	if workers <= 1 {
		var buf [8]byte
		err = C.streamReads(ctx, opener, phase, func(code uint64) error {
			pid := C.globalPartition(C.key(code, &buf), sizing)
			if pid%sizing.Iterations != iteration {
				return nil
			}

			return writer.Write(pid/sizing.Iterations, code)
		})
		if err != nil {
			return C.wrapWriteErr(err)
		}

		return
	}

	queues := make([]chan dskRecord, workers)
	writeErrs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		queues[w] = make(chan dskRecord, conf.WriteQueueDepth)
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for record := range queues[w] {
				if writeErrs[w] != nil {
					continue
				}
				writeErrs[w] = writer.Write(record.partition, record.code)
			}
		}(w)
	}

	var buf [8]byte
	streamErr := C.streamReads(ctx, opener, phase, func(code uint64) error {
		pid := C.globalPartition(C.key(code, &buf), sizing)
		if pid%sizing.Iterations != iteration {
			return nil
		}

		local := pid / sizing.Iterations
		queues[local%int64(workers)] <- dskRecord{partition: local, code: code}

		return nil
	})

	for w := range queues {
		close(queues[w])
	}
	wg.Wait()

	if streamErr != nil {
		err = C.wrapWriteErr(streamErr)
		return
	}
	for w := range writeErrs {
		if writeErrs[w] != nil {
			err = IoError{Cause: writeErrs[w]}
			return
		}
	}

	return
}

// wrapWriteErr - Wraps write phase failures, from the read source as well as the partition files, into
// IoError, passing typed errors through unchanged
func (C *Counter) wrapWriteErr(err error) error {
	switch err.(type) {
	case Cancelled, IoError, UsageError, ResourceExhausted, PartitionOverflow:
		return err
	default:
		return IoError{Cause: err}
	}
}

// dskCountPartition - Streams one partition file, counts its k-mers in an exact table and drains the
// table into the run wide priority queue.
// The table is released before the next partition is opened. If hash collisions concentrate more mass
// in the partition than the memory budget allows, the run aborts with PartitionOverflow carrying the
// global partition number so the caller can retry with a larger partition count.
func (C *Counter) dskCountPartition(scratchDir string, iteration, p int64, sizing dskSizing, topN *TopN) (err error) {
	path := partition.FileName(scratchDir, iteration, p)
	reader, err := partition.NewReader(path, C.recordLength)
	if err != nil {
		err = IoError{Path: path, Cause: err}
		return
	}
	defer func() { _ = reader.Close() }()

	maxEntries := C.conf.TargetMemory / C.entryBytes
	table := make(map[uint64]int64)
	for {
		code, ok, readErr := reader.Next()
		if readErr != nil {
			err = IoError{Path: path, Cause: readErr}
			return
		}
		if !ok {
			break
		}

		if _, present := table[code]; !present && int64(len(table)) >= maxEntries {
			err = PartitionOverflow{
				Partition: p*sizing.Iterations + iteration,
				Bytes:     (int64(len(table)) + 1) * C.entryBytes,
			}
			return
		}
		table[code]++
	}

	for code, count := range table {
		topN.Offer(Entry{Kmer: code, Count: count})
	}

	return
}
