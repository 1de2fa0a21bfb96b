package partition

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors for partition construction and lookups.
var (
	// ErrBadShape indicates a negative row count or non-positive rank count.
	ErrBadShape = errors.New("partition: rows must be >= 0 and ranks > 0")

	// ErrRowOutOfRange indicates a lookup outside [0, n).
	ErrRowOutOfRange = errors.New("partition: row index out of range")

	// ErrBadBoundaries indicates explicit boundaries that are not monotone
	// non-decreasing from 0 to n with one range per rank.
	ErrBadBoundaries = errors.New("partition: boundaries must be monotone and cover [0, n)")
)

// Table is the row-ownership map of a distributed matrix: rank k owns the
// contiguous global rows [bounds[k], bounds[k+1]). Immutable once built.
type Table struct {
	rows   int64
	ranks  int
	bounds []int64 // len ranks+1, bounds[0]==0, bounds[ranks]==rows
}

// Block builds the default contiguous block partition of n rows over size
// ranks: n/size rows each, with the remainder spread one row each over the
// lowest-ranked processes.
func Block(n int64, size int) (*Table, error) {
	if n < 0 || size <= 0 {
		return nil, fmt.Errorf("%w: rows=%d ranks=%d", ErrBadShape, n, size)
	}

	per := n / int64(size)
	rem := n % int64(size)
	bounds := make([]int64, size+1)
	for k := 0; k < size; k++ {
		span := per
		if int64(k) < rem {
			span++
		}
		bounds[k+1] = bounds[k] + span
	}

	return &Table{rows: n, ranks: size, bounds: bounds}, nil
}

// FromBoundaries builds a table from explicit range boundaries.
// bounds must have one entry per rank plus one, start at 0, end at n, and be
// monotone non-decreasing (empty ranges are legal).
func FromBoundaries(n int64, bounds []int64) (*Table, error) {
	if n < 0 || len(bounds) < 2 {
		return nil, fmt.Errorf("%w: rows=%d len(bounds)=%d", ErrBadShape, n, len(bounds))
	}
	if bounds[0] != 0 || bounds[len(bounds)-1] != n {
		return nil, fmt.Errorf("%w: bounds[0]=%d bounds[last]=%d rows=%d",
			ErrBadBoundaries, bounds[0], bounds[len(bounds)-1], n)
	}
	for i := 1; i < len(bounds); i++ {
		if bounds[i] < bounds[i-1] {
			return nil, fmt.Errorf("%w: bounds[%d]=%d < bounds[%d]=%d",
				ErrBadBoundaries, i, bounds[i], i-1, bounds[i-1])
		}
	}

	own := make([]int64, len(bounds))
	copy(own, bounds)

	return &Table{rows: n, ranks: len(bounds) - 1, bounds: own}, nil
}

// Rows returns the global row count.
func (t *Table) Rows() int64 { return t.rows }

// Ranks returns the number of ranks the table partitions over.
func (t *Table) Ranks() int { return t.ranks }

// Range returns the half-open global row range [start, end) owned by rank.
func (t *Table) Range(rank int) (start, end int64, err error) {
	if rank < 0 || rank >= t.ranks {
		return 0, 0, fmt.Errorf("%w: rank %d of %d", ErrBadShape, rank, t.ranks)
	}

	return t.bounds[rank], t.bounds[rank+1], nil
}

// Span returns the number of rows owned by rank (zero for an empty range).
func (t *Table) Span(rank int) int64 {
	if rank < 0 || rank >= t.ranks {
		return 0
	}

	return t.bounds[rank+1] - t.bounds[rank]
}

// Owner returns the rank owning the given global row.
// Binary search over the boundaries: O(log ranks).
func (t *Table) Owner(row int64) (int, error) {
	if row < 0 || row >= t.rows {
		return 0, fmt.Errorf("%w: row %d of %d", ErrRowOutOfRange, row, t.rows)
	}

	// First boundary strictly above row; the owning rank sits just before it.
	k := sort.Search(t.ranks, func(k int) bool { return t.bounds[k+1] > row })

	return k, nil
}

// LocalOffset returns the owning rank and the row's offset within that rank's
// local slice. The pair (rank, offset) is the distributed address of the row.
func (t *Table) LocalOffset(row int64) (rank int, offset int64, err error) {
	rank, err = t.Owner(row)
	if err != nil {
		return 0, 0, err
	}

	return rank, row - t.bounds[rank], nil
}

// Boundaries returns a copy of the boundary slice (len Ranks+1).
func (t *Table) Boundaries() []int64 {
	out := make([]int64, len(t.bounds))
	copy(out, t.bounds)

	return out
}

// Equal reports whether two tables describe the same ownership.
func (t *Table) Equal(o *Table) bool {
	if t.rows != o.rows || t.ranks != o.ranks {
		return false
	}
	for i := range t.bounds {
		if t.bounds[i] != o.bounds[i] {
			return false
		}
	}

	return true
}
