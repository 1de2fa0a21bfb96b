// Package partition represents row ownership in a distributed sparse matrix
// as an explicit, queryable table rather than arithmetic scattered across
// components.
//
// Overview:
//
//   - A Table maps every global row index to its owning rank and local offset.
//     Row ranges are contiguous, disjoint, and cover [0, n) — the invariant
//     every distributed component relies on.
//   - Block(n, size) builds the default load-time partition: n/size rows per
//     rank with the remainder assigned to the lowest-ranked processes.
//   - Balance(...) recomputes boundaries from per-row costs so that the
//     weighted load wrows*rowCount + wnnz*nnzCount is equalized as closely as
//     contiguous ranges allow. It is a pure transformation of the table: data
//     movement belongs to the matrix layer.
//
// Balancing algorithm:
//
//   - Per-row cost is wrows + wnnz*outdegree(row). A prefix sum over all rows
//     gives cumulative cost; rank k's range ends at the row whose cumulative
//     cost is nearest k+1 shares of total/size, boundary ties going to the
//     lower-indexed rank. A zero total cost (empty matrix) falls back to the
//     even row-count split, so there is never a division by zero.
//
// Errors (sentinel):
//
//   - ErrBadShape      for negative row counts or non-positive group sizes.
//   - ErrRowOutOfRange for lookups outside [0, n).
//   - ErrBadBoundaries for explicit boundaries that are not monotone and
//     covering.
package partition
