// Package dmat holds the distributed sparse matrix: a row-partitioned CSR
// structure plus the two communication patterns a PageRank iteration needs.
//
// Shape and ownership:
//
//   - The global matrix is partitioned by contiguous row ranges described by a
//     partition.Table; each rank stores only its own rows in CSR form with
//     global column indices. The matrix is immutable after construction and
//     never mutated by the iteration engine.
//
// Multiply primitives (the one communication-heavy step per iteration):
//
//   - MulGather computes y = A·x for the local row block. Each rank needs read
//     access to all of x, so the row-partitioned input is gathered into a full
//     vector first (one AllGatherv); the local rows of y are then computed
//     purely from local entries and y stays row-partitioned with no further
//     communication.
//   - MulScatter computes y = Aᵀ·x. Local entries contribute partial sums to
//     arbitrary destination rows, so each rank accumulates a full-length
//     partial vector and the partials are sum-reduced across the group (one
//     slice reduction); each rank keeps its own row slice of the result.
//
// Normalization bookkeeping:
//
//   - RowSums is the per-local-row weight total, computed locally at build
//     time: under the row-major outlink convention this is the out-degree
//     vector, and a zero row marks a dangling node.
//   - ColSumsLocal is the transposed-convention counterpart: a node's
//     out-edges may then be scattered across ranks by column, so the
//     per-column totals are combined with one global reduction and each rank
//     keeps the slice aligned with its row range. It is a collective call.
//
// Collective calls (New, MulGather, MulScatter, ColSumsLocal, GlobalNNZ
// consumers, Redistribute, Collect, Stats) must be reached by every rank of
// the group in the same order; see package spmd for the lockstep contract.
package dmat
