package dmat

import (
	"fmt"

	"github.com/katalvlaran/ppagerank/spmd"
)

// MulGather computes the local row block of y = A·x.
//
// x is this rank's slice of a global vector partitioned conformally with the
// matrix rows. The full vector is gathered across the group first (the one
// communication step); the local rows of y are then computed purely from
// local entries, and the result stays row-partitioned — no further
// communication. Collective.
func (m *Matrix) MulGather(x []float64) ([]float64, error) {
	if int64(len(x)) != m.LocalRows() {
		return nil, fmt.Errorf("%w: len=%d span=%d", ErrVectorLength, len(x), m.LocalRows())
	}

	xfull, err := spmd.AllGatherv(m.comm, x)
	if err != nil {
		return nil, err
	}
	if int64(len(xfull)) != m.cols {
		return nil, fmt.Errorf("%w: gathered %d values for %d columns", ErrVectorLength, len(xfull), m.cols)
	}

	span := m.rowEnd - m.rowStart
	y := make([]float64, span)
	for i := int64(0); i < span; i++ {
		var s float64
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			s += m.vals[k] * xfull[m.colInd[k]]
		}
		y[i] = s
	}

	return y, nil
}

// MulScatter computes the local row block of y = Aᵀ·x.
//
// Each local entry (i, j, w) contributes w*x[i] to destination row j, which
// this rank usually does not own: partial contributions are accumulated into
// a full-length buffer and sum-reduced across the group, after which each
// rank keeps its own row slice. Requires a square matrix so that the result
// partitions conformally with the input. Collective.
func (m *Matrix) MulScatter(x []float64) ([]float64, error) {
	if m.rows != m.cols {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, m.rows, m.cols)
	}
	if int64(len(x)) != m.LocalRows() {
		return nil, fmt.Errorf("%w: len=%d span=%d", ErrVectorLength, len(x), m.LocalRows())
	}

	partial := make([]float64, m.rows)
	span := m.rowEnd - m.rowStart
	for i := int64(0); i < span; i++ {
		xi := x[i]
		if xi == 0 {
			continue // dangling and zero-mass rows contribute nothing
		}
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			partial[m.colInd[k]] += m.vals[k] * xi
		}
	}

	full, err := spmd.AllReduceSlice(m.comm, partial)
	if err != nil {
		return nil, err
	}

	y := make([]float64, span)
	copy(y, full[m.rowStart:m.rowEnd])

	return y, nil
}
