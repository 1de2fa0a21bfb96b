// Package ppagerank computes PageRank over large sparse graphs partitioned
// across a group of cooperating ranks.
//
// 🚀 What is ppagerank?
//
//	A distributed power-iteration engine built from small, composable pieces:
//		• spmd/      — the process-group runtime: ranks, point-to-point send/recv,
//		               and the collectives (Barrier, Broadcast, AllReduce,
//		               AllGatherv, AllToAll) everything else is written against
//		• bsmat/     — the binary sparse-matrix file format: codec, writer, and
//		               a streaming loader that never materializes the file on
//		               one rank
//		• partition/ — explicit row-ownership tables: block partitions and a
//		               weighted balancer that equalizes per-rank work
//		• dmat/      — the distributed CSR matrix: both multiply conventions,
//		               redistribution, and layout statistics
//		• pagerank/  — the iteration engine: dangling-mass recycling,
//		               personalization, L1 convergence
//		• cmd/ppagerank — the command-line driver
//
// ✨ Design rules
//
//   - SPMD lockstep – every rank runs the same control flow and reaches every
//     collective in the same order; a failed rank aborts the whole group
//   - Explicit ownership – each rank holds a contiguous row range, described
//     by a queryable partition table, never implicit arithmetic scattered
//     through the code
//   - Immutable matrices – built once, then shared read-only by the iteration
//   - Sentinel errors – every package exposes its failure modes as wrapped
//     sentinels, so callers branch with errors.Is
//
// Quick start (single rank):
//
//	table, _ := partition.Block(4, 1)
//	m, _ := dmat.New(spmd.Single(), table, 4, 4, entries)
//	res, err := pagerank.Compute(m, pagerank.Alpha(0.85))
//
// Or distributed, in-process:
//
//	err := spmd.Run(4, func(c spmd.Comm) error {
//		m, err := bsmat.Load(c, "web.bsmat")
//		if err != nil {
//			return err
//		}
//		res, err := pagerank.Compute(m)
//		...
//	})
//
// See each subpackage's doc.go for contracts, complexity, and error lists.
package ppagerank
