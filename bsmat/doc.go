// Package bsmat implements the binary sparse-matrix file format and the
// collective, streaming loader that distributes a matrix across a process
// group.
//
// File layout (little-endian):
//
//	header : rows int32 | cols int32 | nnz int64
//	record : row int32 | col int32 | weight float64        (nnz records)
//
// A pattern-only variant stores 8-byte records without the weight field; every
// such entry loads with weight 1. The companion vector format, used for
// personalization vectors, is `n int64` followed by n float64 values.
//
// Loading model:
//
//   - Load is collective: every rank in the group must call it, in the same
//     position of its control flow, or the group deadlocks. This is a
//     documented precondition of the SPMD lockstep model, not a tolerated
//     state.
//   - Rank 0 is the file reader. It streams non-zero records in bounded
//     chunks of at most RootNzBufsize records (default 1<<25), so no single
//     rank ever holds the full non-zero list of a file larger than its
//     memory. Each chunk is bucketed by owning rank under the default block
//     partition and forwarded with one all-to-all exchange per chunk.
//   - Every rank accumulates only the entries of its own contiguous row range
//     and finally builds its local partition of the distributed matrix.
//
// Failure model: a malformed header, a truncated stream, or an out-of-range
// entry is fatal. The reading rank returns the error, which tears down its
// channels; peers blocked in the exchange observe spmd.ErrGroupClosed, so the
// whole group aborts consistently — matching the "no partial-group execution"
// contract.
package bsmat
