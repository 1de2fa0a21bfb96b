// Package bsmat_test covers the on-disk codec and the collective loader:
// round-trips, the chunked root-reader path, the pattern-only variant, and
// every fatal format condition.
package bsmat_test

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ppagerank/bsmat"
	"github.com/katalvlaran/ppagerank/dmat"
	"github.com/katalvlaran/ppagerank/partition"
	"github.com/katalvlaran/ppagerank/spmd"
)

// ringEntries is the 4-cycle 0→1→2→3→0 with unit weights.
func ringEntries() []dmat.Entry {
	return []dmat.Entry{
		{Row: 0, Col: 1, Val: 1},
		{Row: 1, Col: 2, Val: 1},
		{Row: 2, Col: 3, Val: 1},
		{Row: 3, Col: 0, Val: 1},
	}
}

func writeRing(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ring.bsmat")
	require.NoError(t, bsmat.Write(path, 4, 4, ringEntries()))

	return path
}

func TestLoad_SingleRank(t *testing.T) {
	path := writeRing(t)

	m, err := bsmat.Load(spmd.Single(), path)
	require.NoError(t, err)
	require.Equal(t, int64(4), m.Rows())
	require.Equal(t, int64(4), m.Cols())
	require.Equal(t, int64(4), m.GlobalNNZ())
	require.Equal(t, int64(4), m.LocalNNZ())
}

func TestLoad_DistributesByBlockPartition(t *testing.T) {
	path := writeRing(t)

	err := spmd.Run(3, func(c spmd.Comm) error {
		m, err := bsmat.Load(c, path)
		require.NoError(t, err)

		// 4 rows over 3 ranks: spans 2,1,1. Each entry lands with its row's
		// owner; the ring has exactly one entry per row.
		start, end := m.LocalRowRange()
		require.Equal(t, end-start, m.LocalNNZ())
		require.Equal(t, int64(4), m.GlobalNNZ())
		for _, e := range m.Entries() {
			require.GreaterOrEqual(t, e.Row, start)
			require.Less(t, e.Row, end)
		}

		return nil
	})
	require.NoError(t, err)
}

func TestLoad_SmallChunksStreamAllRecords(t *testing.T) {
	// A 1-record buffer forces one exchange per non-zero; the result must be
	// identical to the single-chunk load.
	path := writeRing(t)

	err := spmd.Run(2, func(c spmd.Comm) error {
		m, err := bsmat.Load(c, path, bsmat.WithRootNzBufsize(1))
		require.NoError(t, err)
		require.Equal(t, int64(4), m.GlobalNNZ())
		require.Equal(t, int64(2), m.LocalNNZ()) // ring: one entry per row, 2 rows each

		return nil
	})
	require.NoError(t, err)
}

func TestLoad_PatternOnlyVariant(t *testing.T) {
	// Hand-build an 8-byte-record file: header + (row, col) pairs.
	path := filepath.Join(t.TempDir(), "pattern.bsmat")
	buf := make([]byte, 16+2*8)
	binary.LittleEndian.PutUint32(buf[0:4], 3)  // rows
	binary.LittleEndian.PutUint32(buf[4:8], 3)  // cols
	binary.LittleEndian.PutUint64(buf[8:16], 2) // nnz
	binary.LittleEndian.PutUint32(buf[16:20], 0)
	binary.LittleEndian.PutUint32(buf[20:24], 1)
	binary.LittleEndian.PutUint32(buf[24:28], 2)
	binary.LittleEndian.PutUint32(buf[28:32], 0)
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	m, err := bsmat.Load(spmd.Single(), path, bsmat.WithPatternOnly())
	require.NoError(t, err)
	require.Equal(t, int64(2), m.GlobalNNZ())
	for _, e := range m.Entries() {
		require.Equal(t, 1.0, e.Val, "pattern entries default to weight 1")
	}
}

func TestLoad_MalformedHeader(t *testing.T) {
	// Negative row count in the header.
	path := filepath.Join(t.TempDir(), "bad.bsmat")
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(0xFFFFFFFF)) // rows = -1
	binary.LittleEndian.PutUint32(buf[4:8], 3)
	binary.LittleEndian.PutUint64(buf[8:16], 0)
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	_, err := bsmat.Load(spmd.Single(), path)
	require.ErrorIs(t, err, bsmat.ErrBadHeader)
}

func TestLoad_TruncatedBody(t *testing.T) {
	// Header declares 4 records but the file carries only 1.
	full := writeRing(t)
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	short := filepath.Join(t.TempDir(), "short.bsmat")
	require.NoError(t, os.WriteFile(short, data[:16+16], 0o644))

	_, err = bsmat.Load(spmd.Single(), short)
	require.ErrorIs(t, err, bsmat.ErrTruncated)
}

func TestLoad_EntryOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oob.bsmat")
	buf := make([]byte, 16+16)
	binary.LittleEndian.PutUint32(buf[0:4], 2)
	binary.LittleEndian.PutUint32(buf[4:8], 2)
	binary.LittleEndian.PutUint64(buf[8:16], 1)
	binary.LittleEndian.PutUint32(buf[16:20], 5) // row 5 in a 2x2 matrix
	binary.LittleEndian.PutUint32(buf[20:24], 0)
	binary.LittleEndian.PutUint64(buf[24:32], math.Float64bits(1))
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	_, err := bsmat.Load(spmd.Single(), path)
	require.ErrorIs(t, err, bsmat.ErrEntryOutOfRange)
}

func TestLoad_GroupAbortsOnReaderFailure(t *testing.T) {
	// Peers blocked in the exchange must observe the abort, not hang, when
	// the reading rank fails on a truncated body.
	full := writeRing(t)
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	short := filepath.Join(t.TempDir(), "short.bsmat")
	require.NoError(t, os.WriteFile(short, data[:16+16], 0o644))

	err = spmd.Run(3, func(c spmd.Comm) error {
		_, err := bsmat.Load(c, short)

		return err
	})
	require.Error(t, err)
	require.ErrorIs(t, err, bsmat.ErrTruncated)
}

func TestWrite_RejectsOutOfRangeEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reject.bsmat")
	err := bsmat.Write(path, 2, 2, []dmat.Entry{{Row: 3, Col: 0, Val: 1}})
	require.ErrorIs(t, err, bsmat.ErrEntryOutOfRange)
}

func TestLoadVector_ScattersByPartition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.bvec")
	v := []float64{0.1, 0.2, 0.3, 0.4}
	require.NoError(t, bsmat.WriteVector(path, v))

	err := spmd.Run(2, func(c spmd.Comm) error {
		table, err := partition.Block(4, 2)
		require.NoError(t, err)

		local, err := bsmat.LoadVector(c, path, table)
		require.NoError(t, err)
		require.Len(t, local, 2)
		want := v[2*c.Rank() : 2*c.Rank()+2]
		require.Equal(t, want, local)

		return nil
	})
	require.NoError(t, err)
}

func TestLoadVector_LengthMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.bvec")
	require.NoError(t, bsmat.WriteVector(path, []float64{0.5, 0.5}))

	table, err := partition.Block(4, 1)
	require.NoError(t, err)
	_, err = bsmat.LoadVector(spmd.Single(), path, table)
	require.ErrorIs(t, err, bsmat.ErrBadVector)
}
