package bsmat

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/katalvlaran/ppagerank/dmat"
	"github.com/katalvlaran/ppagerank/partition"
	"github.com/katalvlaran/ppagerank/spmd"
)

// readerRank is the rank that opens the file and streams its records.
const readerRank = 0

// Load reads a bsmat file into a distributed matrix partitioned by the
// default contiguous block scheme (global rows divided by group size,
// remainder to the lowest ranks).
//
// Load is collective: every rank of comm must call it at the same point of
// its control flow or the group deadlocks (documented precondition). Rank 0
// streams the file in chunks of at most RootNzBufsize records and forwards
// each rank's entries through one all-to-all exchange per chunk, so no rank
// ever materializes the full non-zero list.
//
// Fatal conditions — malformed header, truncated stream, out-of-range entry —
// are returned by the reading rank; its teardown surfaces at the peers as
// spmd.ErrGroupClosed, aborting the whole group consistently.
func Load(comm spmd.Comm, path string, opts ...Option) (*dmat.Matrix, error) {
	// 1) Resolve options.
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	// 2) The reader opens the file and decodes the header; everyone else
	//    learns the shape from the broadcast.
	var (
		rr *recordReader
		h  Header
	)
	if comm.Rank() == readerRank {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("bsmat: open %s: %w", path, err)
		}
		defer f.Close()

		// One buffered view per stream: header and records must share it, or
		// read-ahead bytes would be lost between the two.
		br := bufio.NewReaderSize(f, 1<<20)
		if h, err = readHeader(br, path); err != nil {
			return nil, err
		}
		rr = &recordReader{r: br, path: path, h: h, pattern: cfg.PatternOnly}
	}

	h, err := spmd.Broadcast(comm, readerRank, h)
	if err != nil {
		return nil, err
	}

	// 3) Default block partition over the declared rows.
	table, err := partition.Block(h.Rows, comm.Size())
	if err != nil {
		return nil, err
	}

	// 4) Stream the records in bounded chunks; every rank executes the same
	//    number of exchanges, computed from the broadcast header.
	chunks := int64(0)
	if h.NNZ > 0 {
		chunks = (h.NNZ + cfg.RootNzBufsize - 1) / cfg.RootNzBufsize
	}

	var local []dmat.Entry
	remaining := h.NNZ
	for c := int64(0); c < chunks; c++ {
		want := remaining
		if want > cfg.RootNzBufsize {
			want = cfg.RootNzBufsize
		}
		remaining -= want

		buckets := make([][]dmat.Entry, comm.Size())
		if comm.Rank() == readerRank {
			for i := int64(0); i < want; i++ {
				rec, err := rr.next()
				if err != nil {
					return nil, err
				}
				owner, err := table.Owner(rec.row)
				if err != nil {
					return nil, err
				}
				buckets[owner] = append(buckets[owner], dmat.Entry{Row: rec.row, Col: rec.col, Val: rec.val})
			}
		}

		mine, err := spmd.AllToAll(comm, buckets)
		if err != nil {
			return nil, err
		}
		local = append(local, mine...)
	}

	// 5) Assemble the local partition.
	return dmat.New(comm, table, h.Rows, h.Cols, local)
}

// LoadVector reads a companion vector file and scatters it conformally with
// the given row partition: each rank receives the slice for its own rows.
//
// Collective, same lockstep and abort contract as Load. The declared length
// must equal the partition's global row count.
func LoadVector(comm spmd.Comm, path string, table *partition.Table) ([]float64, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil partition", ErrBadVector)
	}

	var n int64
	var full []float64
	if comm.Rank() == readerRank {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("bsmat: open %s: %w", path, err)
		}
		defer f.Close()

		r := bufio.NewReader(f)
		var buf [8]byte
		if _, err = io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadVector, path, err)
		}
		n = int64(binary.LittleEndian.Uint64(buf[:]))
		if n != table.Rows() {
			return nil, fmt.Errorf("%w: %s: %d entries for %d rows", ErrBadVector, path, n, table.Rows())
		}

		full = make([]float64, n)
		for i := int64(0); i < n; i++ {
			if _, err = io.ReadFull(r, buf[:]); err != nil {
				return nil, fmt.Errorf("%w: %s: value %d of %d: %v", ErrBadVector, path, i, n, err)
			}
			full[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[:]))
		}
	}

	// Scatter by ownership range: one bucket per rank.
	buckets := make([][]float64, comm.Size())
	if comm.Rank() == readerRank {
		for k := 0; k < comm.Size(); k++ {
			start, end, err := table.Range(k)
			if err != nil {
				return nil, err
			}
			buckets[k] = full[start:end]
		}
	}

	mine, err := spmd.AllToAll(comm, buckets)
	if err != nil {
		return nil, err
	}
	if int64(len(mine)) != table.Span(comm.Rank()) {
		return nil, fmt.Errorf("%w: %s: received %d values for a %d-row range",
			ErrBadVector, path, len(mine), table.Span(comm.Rank()))
	}

	return mine, nil
}
