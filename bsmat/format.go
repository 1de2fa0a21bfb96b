package bsmat

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/katalvlaran/ppagerank/dmat"
)

// Sentinel errors for format decoding.
var (
	// ErrBadHeader indicates negative or inconsistent header sizes.
	ErrBadHeader = errors.New("bsmat: malformed header")

	// ErrTruncated indicates the file ended before the declared record count.
	ErrTruncated = errors.New("bsmat: truncated file")

	// ErrEntryOutOfRange indicates a record referencing a row or column
	// outside the header's declared dimensions.
	ErrEntryOutOfRange = errors.New("bsmat: entry out of range")

	// ErrBadVector indicates a malformed vector file.
	ErrBadVector = errors.New("bsmat: malformed vector file")
)

// Record sizes in bytes.
const (
	headerSize        = 16 // rows int32 | cols int32 | nnz int64
	recordSize        = 16 // row int32 | col int32 | weight float64
	patternRecordSize = 8  // row int32 | col int32
)

// Header describes the global shape of a stored matrix.
type Header struct {
	Rows int64
	Cols int64
	NNZ  int64
}

// readHeader decodes and validates the 16-byte header.
func readHeader(r io.Reader, path string) (Header, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, fmt.Errorf("%w: %s: %v", ErrTruncated, path, err)
	}

	h := Header{
		Rows: int64(int32(binary.LittleEndian.Uint32(buf[0:4]))),
		Cols: int64(int32(binary.LittleEndian.Uint32(buf[4:8]))),
		NNZ:  int64(binary.LittleEndian.Uint64(buf[8:16])),
	}
	if h.Rows < 0 || h.Cols < 0 || h.NNZ < 0 {
		return Header{}, fmt.Errorf("%w: %s: rows=%d cols=%d nnz=%d", ErrBadHeader, path, h.Rows, h.Cols, h.NNZ)
	}
	if h.NNZ > 0 && (h.Rows == 0 || h.Cols == 0) {
		return Header{}, fmt.Errorf("%w: %s: %d non-zeros in a %dx%d matrix", ErrBadHeader, path, h.NNZ, h.Rows, h.Cols)
	}

	return h, nil
}

// record is one decoded non-zero triple with global indices.
type record struct {
	row, col int64
	val      float64
}

// recordReader streams records off a buffered file, tracking the ordinal for
// error reporting.
type recordReader struct {
	r       *bufio.Reader
	path    string
	h       Header
	pattern bool
	read    int64 // records consumed so far
}

// next decodes one record, validating its indices against the header.
func (rr *recordReader) next() (record, error) {
	var buf [recordSize]byte
	size := recordSize
	if rr.pattern {
		size = patternRecordSize
	}
	if _, err := io.ReadFull(rr.r, buf[:size]); err != nil {
		return record{}, fmt.Errorf("%w: %s: record %d of %d: %v", ErrTruncated, rr.path, rr.read, rr.h.NNZ, err)
	}

	rec := record{
		row: int64(int32(binary.LittleEndian.Uint32(buf[0:4]))),
		col: int64(int32(binary.LittleEndian.Uint32(buf[4:8]))),
		val: 1,
	}
	if !rr.pattern {
		rec.val = math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16]))
	}
	if rec.row < 0 || rec.row >= rr.h.Rows || rec.col < 0 || rec.col >= rr.h.Cols {
		return record{}, fmt.Errorf("%w: %s: record %d: (%d,%d) outside %dx%d",
			ErrEntryOutOfRange, rr.path, rr.read, rec.row, rec.col, rr.h.Rows, rr.h.Cols)
	}
	rr.read++

	return rec, nil
}

// Write stores a matrix in bsmat format. Entries carry global indices; they
// are written in the given order with weights included.
//
// Write is a single-process operation (a tool/test helper, not a collective).
func Write(path string, rows, cols int64, entries []dmat.Entry) error {
	if rows < 0 || cols < 0 {
		return fmt.Errorf("%w: %s: rows=%d cols=%d", ErrBadHeader, path, rows, cols)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bsmat: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(int32(rows)))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(int32(cols)))
	binary.LittleEndian.PutUint64(hdr[8:16], uint64(len(entries)))
	if _, err = w.Write(hdr[:]); err != nil {
		return fmt.Errorf("bsmat: write %s: %w", path, err)
	}

	var rec [recordSize]byte
	for _, e := range entries {
		if e.Row < 0 || e.Row >= rows || e.Col < 0 || e.Col >= cols {
			return fmt.Errorf("%w: %s: (%d,%d) outside %dx%d", ErrEntryOutOfRange, path, e.Row, e.Col, rows, cols)
		}
		binary.LittleEndian.PutUint32(rec[0:4], uint32(int32(e.Row)))
		binary.LittleEndian.PutUint32(rec[4:8], uint32(int32(e.Col)))
		binary.LittleEndian.PutUint64(rec[8:16], math.Float64bits(e.Val))
		if _, err = w.Write(rec[:]); err != nil {
			return fmt.Errorf("bsmat: write %s: %w", path, err)
		}
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("bsmat: flush %s: %w", path, err)
	}

	return f.Close()
}

// WriteVector stores a dense vector in the companion format:
// n int64 followed by n float64 values.
func WriteVector(path string, v []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bsmat: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(v)))
	if _, err = w.Write(buf[:]); err != nil {
		return fmt.Errorf("bsmat: write %s: %w", path, err)
	}
	for _, x := range v {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
		if _, err = w.Write(buf[:]); err != nil {
			return fmt.Errorf("bsmat: write %s: %w", path, err)
		}
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("bsmat: flush %s: %w", path, err)
	}

	return f.Close()
}
