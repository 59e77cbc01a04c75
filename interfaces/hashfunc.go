package hashfunc

// HashAlgorithm - Interface that permits an implementation using the counting engines to supply a custom
// hash algorithm suited for its particular distribution of k-mers.
//
// The same algorithm is used both for partition selection in the disk partitioned engine and for deriving
// membership filter coordinates, so implementations must not keep mutable state between calls.
type HashAlgorithm interface {
	// Sum64 - Given an encoded k-mer it generates a 64 bit hash value.
	// The partition number is derived as hash mod the total number of partitions, so the value must be
	// well distributed over the full 64 bit range.
	Sum64(key []byte) uint64

	// Sum128 - Given an encoded k-mer it generates two 64 bit hash values.
	// The membership filter derives its bit coordinates from the pair, so the halves must not be
	// trivially correlated.
	Sum128(key []byte) (uint64, uint64)
}
