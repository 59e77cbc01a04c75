package kmerfreq

import (
	"container/heap"
	"sort"
)

// Entry - One counted k-mer
//   - Kmer is the 2 bits per base encoded k-mer
//   - Count is its multiplicity
type Entry struct {
	Kmer  uint64
	Count int64
}

// better - Reports whether a ranks strictly above b.
// Higher count wins, at equal count the smaller k-mer integer wins. The order is total, which makes
// the top-N result independent of insertion order.
func better(a, b Entry) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}

	return a.Kmer < b.Kmer
}

// entryHeap - Min-heap over the ranking order, the lowest ranked kept entry sits at the root
type entryHeap []Entry

func (H entryHeap) Len() int            { return len(H) }
func (H entryHeap) Less(i, j int) bool  { return better(H[j], H[i]) }
func (H entryHeap) Swap(i, j int)       { H[i], H[j] = H[j], H[i] }
func (H *entryHeap) Push(x interface{}) { *H = append(*H, x.(Entry)) }
func (H *entryHeap) Pop() interface{} {
	old := *H
	n := len(old)
	entry := old[n-1]
	*H = old[:n-1]

	return entry
}

// TopN - A bounded priority queue keeping the n highest ranked entries offered to it
type TopN struct {
	n    int
	heap entryHeap
}

// NewTopN - Returns a pointer to a new TopN keeping at most n entries
func NewTopN(n int) *TopN {
	return &TopN{n: n}
}

// Offer - Considers one entry for the queue.
// The entry is kept if the queue is not yet full or if it ranks above the lowest kept entry, which
// is then dropped.
func (T *TopN) Offer(entry Entry) {
	if T.n < 1 {
		return
	}

	if len(T.heap) < T.n {
		heap.Push(&T.heap, entry)
		return
	}

	if better(entry, T.heap[0]) {
		T.heap[0] = entry
		heap.Fix(&T.heap, 0)
	}
}

// Entries - Returns the kept entries ranked highest first.
// The queue itself is left untouched and can keep accepting offers.
func (T *TopN) Entries() (entries []Entry) {
	entries = make([]Entry, len(T.heap))
	copy(entries, T.heap)
	sort.Slice(entries, func(i, j int) bool { return better(entries[i], entries[j]) })

	return
}
