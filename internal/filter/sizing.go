package filter

import (
	"math"

	"github.com/gostonefire/kmerfreq/internal/conf"
)

// Bits - Returns the number of bits a filter needs to hold capacity elements at the given false
// positive rate, ceil(-n * ln(p) / ln(2)^2)
func Bits(capacity uint64, errorRate float64) uint64 {
	ln2sq := math.Ln2 * math.Ln2
	bits := math.Ceil(-float64(capacity) * math.Log(errorRate) / ln2sq)

	return uint64(bits)
}

// Hashes - Returns the number of hash functions that minimizes the false positive rate for a filter
// of mBits bits holding capacity elements, round(m/n * ln(2)) clamped to a sane range
func Hashes(mBits, capacity uint64) uint8 {
	h := math.Round(float64(mBits) / float64(capacity) * math.Ln2)
	if h < float64(conf.MinHashes) {
		return conf.MinHashes
	}
	if h > float64(conf.MaxHashes) {
		return conf.MaxHashes
	}

	return uint8(h)
}

// RegionBytes - Returns the byte length of the backing region for a filter of mBits bits, ceil(mBits/8)
func RegionBytes(mBits uint64) int {
	return int((mBits + 7) / 8)
}
