package fri

import "github.com/bits-and-blooms/bitset"

// reduceIndices folds every index into [0, size) and returns the surviving
// positions sorted in increasing order, without duplicates. size must be a
// power of two. The reduction is intentionally lossy: distinct input indices
// may collapse to the same position, which is how a sample keeps tracking
// its folded position on the smaller domains of later rounds.
//
// Prover and verifier both go through this function, so their per-round
// index sets cannot diverge.
func reduceIndices(indices []int, size int) []int {
	b := bitset.New(uint(size))
	for _, v := range indices {
		b.Set(uint(v & (size - 1)))
	}
	reduced := make([]int, 0, b.Count())
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		reduced = append(reduced, int(i))
	}
	return reduced
}
