// Package pagerank drives the distributed PageRank power iteration over a
// row-partitioned sparse matrix.
//
// Model:
//
//   - The rank vector is a probability distribution over nodes, partitioned
//     conformally with the matrix rows. Each iteration applies
//
//     next = alpha·(Aᵀ·(cur/outdeg) + danglingMass·p) + (1-alpha)·p
//
//     where p is the personalization vector (uniform 1/n by default), outdeg
//     the per-node out-degree, and danglingMass the probability currently
//     sitting on nodes without out-edges — recycled through p, per classical
//     PageRank, so no mass is ever lost.
//   - Out-degree normalization is fixed at matrix-build time: local per-row
//     sums under the row-major convention, or globally reduced column sums
//     under the transposed convention (WithTranspose, for files that store
//     the edge i→j in row j).
//   - Convergence is the L1 distance between successive iterates, chosen for
//     its simple distributed summation: one local partial plus one global
//     sum-reduction per iteration.
//
// State machine: Initializing → Iterating → {Converged, MaxIterExceeded}.
// Non-convergence at the iteration cap is an annotated outcome, not a silent
// truncation: Compute returns the last vector, its delta and iteration count
// alongside ErrNotConverged, and the caller decides whether to accept it.
//
// The two live vector buffers (current and next estimate) are exclusively
// owned by the local rank and swapped each iteration — never mutated in place
// during a multiply, which would alias reads and writes.
//
// Determinism: floating-point summation order differs across group sizes, so
// results agree only within the convergence tolerance, never bit-for-bit.
//
// Compute is collective; every rank of the matrix's group must call it with
// identical options (see package spmd for the lockstep contract).
package pagerank
