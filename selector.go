package kmerfreq

import (
	"github.com/gostonefire/kmerfreq/internal/conf"
	"github.com/gostonefire/kmerfreq/internal/kmer"
	"github.com/gostonefire/kmerfreq/internal/utils"
)

// EstimateDistinct - Returns a monotone estimate of the number of distinct k-mers in an input of the
// given total k-mer volume, the volume itself capped at the 4^k distinct k-mers that can exist at all
func EstimateDistinct(volume int64, k int) int64 {
	return utils.MinInt64(volume, utils.Pow4Capped(k))
}

// EntryBytes - Returns the estimated number of bytes one k-mer entry occupies in an in-memory exact
// table, the encoded k-mer rounded up to whole bytes plus the per-entry table overhead
func EntryBytes(k int) int64 {
	return kmer.RecordBytes(k) + conf.EntryOverheadBytes
}

// UseDSK - Reports whether the disk partitioned engine should be selected over the membership filter
// engine for the given volume, k and memory budget.
// The decision is monotone in the estimated distinct k-mer volume: the partitioned engine is chosen
// exactly when the estimated exact table no longer fits the memory budget. The function is stateless
// and free of side effects.
func UseDSK(volume int64, k int, targetMemory int64) bool {
	return EstimateDistinct(volume, k) > targetMemory/EntryBytes(k)
}
