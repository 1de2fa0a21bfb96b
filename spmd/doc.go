// Package spmd provides the process-group context for ppagerank's
// single-program-multiple-data (SPMD) execution model.
//
// Overview:
//
//   - Every distributed component (loader, balancer, matrix, iteration engine)
//     takes an explicit Comm rather than ambient global communication state,
//     so unit tests can substitute a single-rank context or a simulated
//     multi-rank group.
//   - A Comm exposes rank/size plus FIFO point-to-point Send/Recv; all
//     collectives (Barrier, Broadcast, AllReduce, AllGatherv, AllToAll) are
//     built on top of those two primitives as generic free functions.
//   - Run(size, fn) launches size ranks as goroutines connected by a buffered
//     channel mesh and executes fn on each, returning the lowest-ranked error.
//   - Single(), a one-rank group, serves the common sequential case and makes
//     every collective a cheap local no-op.
//
// Lockstep contract:
//
//   - All ranks execute the same control flow and must reach every collective
//     call in the same order. A rank that skips a collective deadlocks the
//     group; this is a documented precondition, not a tolerated state.
//   - There is no partial-group execution and no automatic retry: a collective
//     either completes for the whole group or the whole group fails. When a
//     rank's function returns (normally or with an error) its outgoing
//     channels are closed, so peers still blocked in Recv observe
//     ErrGroupClosed and the abort propagates.
//
// Determinism:
//
//   - Reductions combine values in ascending rank order at rank 0, so results
//     are reproducible for a fixed group size. Floating-point reductions are
//     NOT bit-identical across different group sizes; callers relying on
//     convergence tolerances (as the PageRank engine does) are unaffected.
//
// Errors (sentinel):
//
//   - ErrRankOutOfRange if a peer rank is not in [0, Size).
//   - ErrGroupClosed    if a peer terminated while we awaited its message.
//   - ErrTypeMismatch   if a received message has an unexpected dynamic type
//     (always a lockstep-violation symptom).
package spmd
