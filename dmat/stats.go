package dmat

import "github.com/katalvlaran/ppagerank/spmd"

// Stats summarizes the distributed layout of a matrix: global shape plus the
// spread of local rows and non-zeros across ranks. The min/max pairs expose
// load imbalance at a glance, which is what the redistribution weights tune.
type Stats struct {
	Rows      int64
	Cols      int64
	GlobalNNZ int64

	MinLocalRows int64
	MaxLocalRows int64
	MinLocalNNZ  int64
	MaxLocalNNZ  int64
}

// Collect gathers layout statistics with four scalar reductions.
// Every rank receives the same Stats value. Collective.
func (m *Matrix) Collect() (Stats, error) {
	s := Stats{Rows: m.rows, Cols: m.cols, GlobalNNZ: m.globalNNZ}

	var err error
	if s.MinLocalRows, err = spmd.AllReduce(m.comm, m.LocalRows(), spmd.OpMin); err != nil {
		return Stats{}, err
	}
	if s.MaxLocalRows, err = spmd.AllReduce(m.comm, m.LocalRows(), spmd.OpMax); err != nil {
		return Stats{}, err
	}
	if s.MinLocalNNZ, err = spmd.AllReduce(m.comm, m.localNNZ, spmd.OpMin); err != nil {
		return Stats{}, err
	}
	if s.MaxLocalNNZ, err = spmd.AllReduce(m.comm, m.localNNZ, spmd.OpMax); err != nil {
		return Stats{}, err
	}

	return s, nil
}
