package filter

import (
	"fmt"

	"github.com/edsrzf/mmap-go"
	hashfunc "github.com/gostonefire/kmerfreq/interfaces"
)

// BloomFilter - An approximate membership set with a tunable false positive rate and no false negatives.
//
// The bit array lives in an anonymous memory mapped region rather than on the Go heap, so its working
// set participates in OS paging instead of competing with the exact counting table for anonymous memory.
// Bit coordinates are derived from the two halves of a single 128 bit digest, coordinate i is
// (h1 + i*h2) mod mBits.
//
// The filter is write-only while building and read-only afterwards, Freeze turns any later Insert into
// an error to surface accidental mutation.
type BloomFilter struct {
	region    mmap.MMap
	mBits     uint64
	hashes    uint8
	hash      hashfunc.HashAlgorithm
	frozen    bool
	nInserted uint64
}

// NewBloomFilter - Returns a new BloomFilter sized from the expected number of distinct insertions and
// the desired false positive rate.
//   - capacity is the expected number of distinct elements to be inserted
//   - errorRate is the false positive probability after capacity insertions, within (0, 1)
//   - hashAlgorithm derives the hash coordinates, it must be the same instance for Insert and ProbablyContains
func NewBloomFilter(capacity uint64, errorRate float64, hashAlgorithm hashfunc.HashAlgorithm) (bloomFilter *BloomFilter, err error) {
	if capacity == 0 {
		err = fmt.Errorf("filter capacity must be a positive value higher than 0 (zero)")
		return
	}
	if errorRate <= 0 || errorRate >= 1 {
		err = fmt.Errorf("filter error rate must be within the open interval (0, 1)")
		return
	}

	mBits := Bits(capacity, errorRate)

	region, err := mmap.MapRegion(nil, RegionBytes(mBits), mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		err = fmt.Errorf("unable to map filter backing region of %d bytes: %s", RegionBytes(mBits), err)
		return
	}

	bloomFilter = &BloomFilter{
		region: region,
		mBits:  mBits,
		hashes: Hashes(mBits, capacity),
		hash:   hashAlgorithm,
	}

	return
}

// Insert - Adds key to the filter.
// It returns an error if the filter has been frozen.
func (B *BloomFilter) Insert(key []byte) (err error) {
	if B.frozen {
		err = fmt.Errorf("insert on a frozen filter")
		return
	}

	h1, h2 := B.hash.Sum128(key)
	for i := uint64(0); i < uint64(B.hashes); i++ {
		j := (h1 + i*h2) % B.mBits
		B.region[j>>3] |= 1 << (j & 7)
	}
	B.nInserted++

	return
}

// ProbablyContains - Returns true if key may have been inserted and false if it definitely has not.
// A true return is wrong with probability at most the configured error rate as long as the filter
// holds no more than its capacity.
func (B *BloomFilter) ProbablyContains(key []byte) bool {
	h1, h2 := B.hash.Sum128(key)
	for i := uint64(0); i < uint64(B.hashes); i++ {
		j := (h1 + i*h2) % B.mBits
		if B.region[j>>3]&(1<<(j&7)) == 0 {
			return false
		}
	}

	return true
}

// Freeze - Marks the end of the build phase, any later Insert returns an error
func (B *BloomFilter) Freeze() {
	B.frozen = true
}

// Inserted - Returns the number of insertions made so far
func (B *BloomFilter) Inserted() uint64 {
	return B.nInserted
}

// SizeBytes - Returns the size of the backing region
func (B *BloomFilter) SizeBytes() int64 {
	return int64(len(B.region))
}

// Close - Releases the backing region, the filter must not be used afterwards
func (B *BloomFilter) Close() (err error) {
	if B.region == nil {
		return
	}

	err = B.region.Unmap()
	B.region = nil

	return
}
