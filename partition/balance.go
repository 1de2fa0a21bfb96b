package partition

import (
	"errors"
	"fmt"
	"sort"
)

// ErrBadWeight indicates a negative balancer weight.
var ErrBadWeight = errors.New("partition: balancer weights must be non-negative")

// Balance recomputes a contiguous row assignment that equalizes the weighted
// load wrows*rowCount + wnnz*nnzCount across size ranks.
//
// outdeg holds the global per-row non-zero counts (one entry per row, in
// global row order). The per-row cost is wrows + wnnz*outdeg[row]; rank k
// receives the contiguous range whose cumulative cost sits closest to k equal
// shares of the total, with boundary ties resolved by keeping the boundary row
// on the lower-indexed rank.
//
// A zero total cost (empty matrix with wrows == 0) falls back to the even
// row-count split — never a division by zero. Balance is a pure computation:
// moving the entries that changed owner is the matrix layer's job.
//
// Complexity: O(n) for the prefix sum plus O(size log n) boundary searches.
func Balance(outdeg []int64, size int, wnnz, wrows int64) (*Table, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: ranks=%d", ErrBadShape, size)
	}
	if wnnz < 0 || wrows < 0 {
		return nil, fmt.Errorf("%w: wnnz=%d wrows=%d", ErrBadWeight, wnnz, wrows)
	}

	n := int64(len(outdeg))

	// 1) Cumulative cost: prefix[b] is the total cost of rows [0, b).
	prefix := make([]int64, n+1)
	for i, d := range outdeg {
		prefix[i+1] = prefix[i] + wrows + wnnz*d
	}
	total := prefix[n]

	// 2) Degenerate load: fall back to the even row-count split.
	if total == 0 {
		return Block(n, size)
	}

	// 3) Place each interior boundary at the prefix value nearest its share.
	bounds := make([]int64, size+1)
	bounds[size] = n
	for k := 1; k < size; k++ {
		target := float64(total) * float64(k) / float64(size)

		// First boundary at or above the target share.
		hi := int64(sort.Search(int(n)+1, func(b int) bool {
			return float64(prefix[b]) >= target
		}))

		// Candidate below may be nearer; on an exact tie keep the boundary row
		// with the lower-indexed rank (the larger boundary index).
		b := hi
		if hi > 0 {
			lo := hi - 1
			if target-float64(prefix[lo]) < float64(prefix[hi])-target {
				b = lo
			}
		}
		if b < bounds[k-1] {
			b = bounds[k-1] // ranges must stay monotone
		}
		if b > n {
			b = n
		}
		bounds[k] = b
	}

	return FromBoundaries(n, bounds)
}
