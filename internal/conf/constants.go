package conf

// EntryOverheadBytes - Estimated number of bytes one entry occupies in an in-memory exact table beyond
// the encoded k-mer itself, it is included when sizing tables and partitions against the memory budget
const EntryOverheadBytes int64 = 16

// WriteBufferBytes - Size of the write buffer each open partition file holds, disk usage may
// transiently exceed the disk budget by at most one such buffer
const WriteBufferBytes int = 1 << 16

// ReadBufferBytes - Size of the read buffer used when streaming a partition file back
const ReadBufferBytes int = 1 << 16

// WriteQueueDepth - Capacity of the bounded queue between the read producer and each partition
// writer goroutine
const WriteQueueDepth int = 1024

// ScanBufferBytes - Size of the line buffer used when scanning FASTQ input, reads longer than this
// are rejected as unreadable input
const ScanBufferBytes int = 1 << 22

// ProgressReadInterval - Number of reads between two progress callback invocations
const ProgressReadInterval int64 = 10000

// DefaultErrorRate - Membership filter false positive rate used when none is given
const DefaultErrorRate float64 = 0.001

// ScratchDirPattern - Pattern used when creating the per-run scratch directory
const ScratchDirPattern string = "kmerfreq-*"

// MinHashes - Lower bound on the number of membership filter hash functions
const MinHashes uint8 = 1

// MaxHashes - Upper bound on the number of membership filter hash functions
const MaxHashes uint8 = 30
