package hashfunc

import (
	"github.com/spaolacci/murmur3"
)

// MurmurHashAlgorithm - The internally used hash algorithm is implemented using MurmurHash3, a strong
// non-cryptographic hash with good distribution over the full 64 bit range. Partition selection uses the
// 64 bit digest, membership filter coordinates are derived from the two halves of the 128 bit digest.
type MurmurHashAlgorithm struct{}

// NewMurmurHashAlgorithm - Returns a pointer to a new MurmurHashAlgorithm instance
func NewMurmurHashAlgorithm() *MurmurHashAlgorithm {
	return &MurmurHashAlgorithm{}
}

// Sum64 - Given key it generates a 64 bit hash value
func (M *MurmurHashAlgorithm) Sum64(key []byte) uint64 {
	return murmur3.Sum64(key)
}

// Sum128 - Given key it generates two 64 bit hash values
func (M *MurmurHashAlgorithm) Sum128(key []byte) (uint64, uint64) {
	return murmur3.Sum128(key)
}
