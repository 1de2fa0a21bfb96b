package dmat

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/ppagerank/partition"
	"github.com/katalvlaran/ppagerank/spmd"
)

// Sentinel errors for matrix construction and access.
var (
	// ErrNilComm indicates a nil process-group context.
	ErrNilComm = errors.New("dmat: comm is nil")

	// ErrNilPartition indicates a nil ownership table.
	ErrNilPartition = errors.New("dmat: partition table is nil")

	// ErrShapeMismatch indicates a partition table that does not match the
	// matrix dimensions or group size.
	ErrShapeMismatch = errors.New("dmat: partition does not match matrix shape")

	// ErrEntryNotLocal indicates an entry whose row this rank does not own.
	ErrEntryNotLocal = errors.New("dmat: entry row not owned by this rank")

	// ErrEntryOutOfRange indicates an entry outside the matrix dimensions.
	ErrEntryOutOfRange = errors.New("dmat: entry out of range")

	// ErrNotSquare indicates an operation that requires rows == cols.
	ErrNotSquare = errors.New("dmat: matrix must be square")

	// ErrVectorLength indicates a local vector slice whose length differs
	// from the local row span.
	ErrVectorLength = errors.New("dmat: local vector length does not match row span")
)

// Entry is one non-zero triple with global indices. Weight is typically 1 for
// an unweighted adjacency edge, or a pre-normalized transition probability.
type Entry struct {
	Row int64
	Col int64
	Val float64
}

// Matrix is the local partition of a row-distributed sparse matrix.
// Immutable after New.
type Matrix struct {
	comm spmd.Comm
	part *partition.Table

	rows, cols int64
	rowStart   int64
	rowEnd     int64

	// Local CSR: rowPtr has one slot per local row plus one; colInd carries
	// global column indices.
	rowPtr []int64
	colInd []int64
	vals   []float64

	localNNZ  int64
	globalNNZ int64

	rowSums []float64 // per-local-row weight totals, built once
}

// New assembles the local partition from this rank's entries and agrees on
// the global non-zero count.
//
// New is collective: every rank of comm must call it with the same table and
// dimensions. Entries must reference rows owned by the calling rank; order is
// irrelevant and duplicates accumulate in the multiply.
func New(comm spmd.Comm, part *partition.Table, rows, cols int64, entries []Entry) (*Matrix, error) {
	// 1) Validate the frame.
	if comm == nil {
		return nil, ErrNilComm
	}
	if part == nil {
		return nil, ErrNilPartition
	}
	if part.Rows() != rows || part.Ranks() != comm.Size() {
		return nil, fmt.Errorf("%w: table %dx%d vs matrix %d rows, group %d",
			ErrShapeMismatch, part.Rows(), part.Ranks(), rows, comm.Size())
	}

	start, end, err := part.Range(comm.Rank())
	if err != nil {
		return nil, err
	}
	span := end - start

	// 2) Count entries per local row, validating ownership as we go.
	counts := make([]int64, span)
	for _, e := range entries {
		if e.Row < 0 || e.Row >= rows || e.Col < 0 || e.Col >= cols {
			return nil, fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrEntryOutOfRange, e.Row, e.Col, rows, cols)
		}
		if e.Row < start || e.Row >= end {
			return nil, fmt.Errorf("%w: row %d outside [%d,%d) at rank %d",
				ErrEntryNotLocal, e.Row, start, end, comm.Rank())
		}
		counts[e.Row-start]++
	}

	// 3) Prefix the counts into CSR row pointers.
	rowPtr := make([]int64, span+1)
	for i, c := range counts {
		rowPtr[i+1] = rowPtr[i] + c
	}

	// 4) Fill, reusing counts as per-row cursors.
	colInd := make([]int64, len(entries))
	vals := make([]float64, len(entries))
	for i := range counts {
		counts[i] = rowPtr[i]
	}
	for _, e := range entries {
		r := e.Row - start
		colInd[counts[r]] = e.Col
		vals[counts[r]] = e.Val
		counts[r]++
	}

	// 5) Per-row weight totals: the out-degree vector under the row-major
	//    convention, fully local by construction.
	rowSums := make([]float64, span)
	for i := int64(0); i < span; i++ {
		var s float64
		for k := rowPtr[i]; k < rowPtr[i+1]; k++ {
			s += vals[k]
		}
		rowSums[i] = s
	}

	// 6) Agree on the global non-zero count.
	globalNNZ, err := spmd.AllReduce(comm, int64(len(entries)), spmd.OpSum)
	if err != nil {
		return nil, err
	}

	return &Matrix{
		comm:      comm,
		part:      part,
		rows:      rows,
		cols:      cols,
		rowStart:  start,
		rowEnd:    end,
		rowPtr:    rowPtr,
		colInd:    colInd,
		vals:      vals,
		localNNZ:  int64(len(entries)),
		globalNNZ: globalNNZ,
		rowSums:   rowSums,
	}, nil
}

// Rows returns the global row count.
func (m *Matrix) Rows() int64 { return m.rows }

// Cols returns the global column count.
func (m *Matrix) Cols() int64 { return m.cols }

// LocalRowRange returns the half-open global row range owned by this rank.
func (m *Matrix) LocalRowRange() (start, end int64) { return m.rowStart, m.rowEnd }

// LocalRows returns the number of locally owned rows.
func (m *Matrix) LocalRows() int64 { return m.rowEnd - m.rowStart }

// LocalNNZ returns the number of locally stored non-zeros.
func (m *Matrix) LocalNNZ() int64 { return m.localNNZ }

// GlobalNNZ returns the group-wide non-zero count agreed at build time.
func (m *Matrix) GlobalNNZ() int64 { return m.globalNNZ }

// Partition returns the row-ownership table.
func (m *Matrix) Partition() *partition.Table { return m.part }

// Comm returns the process-group context the matrix was built on.
func (m *Matrix) Comm() spmd.Comm { return m.comm }

// RowSums returns the per-local-row weight totals (out-degrees under the
// row-major convention). The returned slice is the matrix's own; callers must
// not mutate it.
func (m *Matrix) RowSums() []float64 { return m.rowSums }

// ColSumsLocal returns the per-column weight totals for the columns aligned
// with this rank's row range — the out-degree vector under the transposed
// convention, where a node's out-edges may be split across ranks by column.
//
// ColSumsLocal is collective (one slice sum-reduction) and requires a square
// matrix, since the column totals are sliced by the row partition.
func (m *Matrix) ColSumsLocal() ([]float64, error) {
	if m.rows != m.cols {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, m.rows, m.cols)
	}

	partial := make([]float64, m.cols)
	for k, c := range m.colInd {
		partial[c] += m.vals[k]
	}
	full, err := spmd.AllReduceSlice(m.comm, partial)
	if err != nil {
		return nil, err
	}

	local := make([]float64, m.rowEnd-m.rowStart)
	copy(local, full[m.rowStart:m.rowEnd])

	return local, nil
}

// Entries reconstructs this rank's entries with global indices, in row order.
// Used by redistribution; O(localNNZ).
func (m *Matrix) Entries() []Entry {
	out := make([]Entry, 0, m.localNNZ)
	span := m.rowEnd - m.rowStart
	for i := int64(0); i < span; i++ {
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			out = append(out, Entry{Row: m.rowStart + i, Col: m.colInd[k], Val: m.vals[k]})
		}
	}

	return out
}
