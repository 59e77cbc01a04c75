package kmerfreq

import (
	"context"

	"github.com/gostonefire/kmerfreq/internal/filter"
)

// runBF - The membership filter engine.
//
// Pass one builds an approximate set of all k-mers seen so far: a k-mer whose membership the filter
// already reports is on its second or later occurrence and gets a slot in the exact table, a first
// occurrence only goes into the filter. Singletons therefore never occupy table memory beyond the
// filter's false positive fraction.
//
// Pass two re-streams the reads and recounts every admitted key exactly from zero, so filter false
// positives can be recognized afterwards by their recount of one and dropped. Counts are never too
// low, the filter has no false negatives.
func (C *Counter) runBF(ctx context.Context, opener ReadOpener, volume int64) (entries []Entry, err error) {
	bloomFilter, err := filter.NewBloomFilter(uint64(EstimateDistinct(volume, C.conf.K)), C.conf.ErrorRate, C.hash)
	if err != nil {
		return
	}
	defer func() { _ = bloomFilter.Close() }()

	maxEntries := C.conf.TargetMemory / C.entryBytes
	table := make(map[uint64]int64)

	// Pass 1, build the filter and admit repeated k-mers to the exact table
	var buf [8]byte
	err = C.streamReads(ctx, opener, "filter", func(code uint64) error {
		key := C.key(code, &buf)
		if !bloomFilter.ProbablyContains(key) {
			return bloomFilter.Insert(key)
		}

		if _, ok := table[code]; !ok {
			if int64(len(table)) >= maxEntries {
				return ResourceExhausted{Component: "membership filter exact table"}
			}
			table[code] = 0
		}

		return nil
	})
	if err != nil {
		return
	}

	bloomFilter.Freeze()

	// Pass 2, exact recount of the admitted keys
	err = C.streamReads(ctx, opener, "recount", func(code uint64) error {
		if _, ok := table[code]; ok {
			table[code]++
		}

		return nil
	})
	if err != nil {
		return
	}

	// Keys counting one are singletons wrongly admitted by filter false positives
	topN := NewTopN(C.conf.N)
	for code, count := range table {
		if count >= 2 {
			topN.Offer(Entry{Kmer: code, Count: count})
		}
	}

	entries = topN.Entries()

	return
}
