package pagerank

import (
	"fmt"
	"math"

	"github.com/viterin/vek"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/ppagerank/dmat"
	"github.com/katalvlaran/ppagerank/spmd"
)

// Compute runs the PageRank power iteration to convergence (or the iteration
// cap) and returns this rank's slice of the result.
//
// Collective: every rank of the matrix's group must call Compute with
// identical options. The matrix is read-only throughout.
//
// Per iteration (all reductions global, two to three collectives total):
//  1. danglingMass = Σ current over zero-out-degree rows   (sum-reduction)
//  2. y = multiply(current/outdeg)                          (gather or scatter-reduce)
//  3. next = alpha·(y + danglingMass·p) + (1-alpha)·p       (local)
//  4. delta = ‖next - current‖₁                             (sum-reduction)
//  5. delta < tolerance → Converged; cap hit → MaxIterExceeded; else swap.
func Compute(m *dmat.Matrix, opts ...Option) (*Result, error) {
	// ---- StateInitializing ----

	// 1) Options and scalar validation.
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if m == nil {
		return nil, ErrNilMatrix
	}
	if m.Rows() != m.Cols() {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, m.Rows(), m.Cols())
	}
	if cfg.Alpha < 0 || cfg.Alpha >= 1 || math.IsNaN(cfg.Alpha) {
		return nil, fmt.Errorf("%w: %g", ErrBadAlpha, cfg.Alpha)
	}
	if cfg.Tolerance <= 0 || math.IsNaN(cfg.Tolerance) {
		return nil, fmt.Errorf("%w: %g", ErrBadTolerance, cfg.Tolerance)
	}
	if cfg.MaxIterations <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadMaxIter, cfg.MaxIterations)
	}

	comm := m.Comm()
	n := m.Rows()
	span := m.LocalRows()

	// 2) Degenerate empty matrix: nothing to rank.
	if n == 0 {
		return &Result{Vector: []float64{}, State: StateConverged}, nil
	}

	// 3) Out-degree vector for the local rows. Local row sums under the
	//    row-major convention; globally reduced column sums under the
	//    transposed one (a node's out-edges may then span ranks).
	var outdeg []float64
	if cfg.Transpose {
		var err error
		if outdeg, err = m.ColSumsLocal(); err != nil {
			return nil, err
		}
	} else {
		outdeg = m.RowSums()
	}

	// 4) Dangling bookkeeping, fixed for the whole run: a 0/1 indicator for
	//    the local rows, the reciprocal out-degrees, and the global count.
	dangling := make([]float64, span)
	invdeg := make([]float64, span)
	var localDangling int64
	for i, d := range outdeg {
		if d == 0 {
			dangling[i] = 1
			localDangling++

			continue
		}
		invdeg[i] = 1 / d
	}
	danglingCount, err := spmd.AllReduce(comm, localDangling, spmd.OpSum)
	if err != nil {
		return nil, err
	}

	// 5) Personalization: uniform 1/n, or the supplied slice validated as a
	//    probability distribution over the full index space.
	p := make([]float64, span)
	if cfg.Personalization == nil {
		uniform := 1 / float64(n)
		for i := range p {
			p[i] = uniform
		}
	} else {
		if int64(len(cfg.Personalization)) != span {
			return nil, fmt.Errorf("%w: local slice has %d entries for a %d-row range",
				ErrBadPersonalization, len(cfg.Personalization), span)
		}
		copy(p, cfg.Personalization)
		for i, v := range p {
			if v < 0 || math.IsNaN(v) {
				return nil, fmt.Errorf("%w: entry %d is %g", ErrBadPersonalization, i, v)
			}
		}
		sum, err := spmd.AllReduce(comm, vek.Sum(p), spmd.OpSum)
		if err != nil {
			return nil, err
		}
		if math.Abs(sum-1) > pvecSumEpsilon {
			return nil, fmt.Errorf("%w: global sum %.12g", ErrBadPersonalization, sum)
		}
	}

	// 6) Two exclusively-owned buffers, swapped each iteration; the scaled
	//    copy feeds the multiply so current is never aliased mid-product.
	cur := make([]float64, span)
	if cfg.Start != nil {
		if int64(len(cfg.Start)) != span {
			return nil, fmt.Errorf("%w: start slice has %d entries for a %d-row range",
				ErrBadPersonalization, len(cfg.Start), span)
		}
		copy(cur, cfg.Start)
	} else {
		copy(cur, p)
	}
	next := make([]float64, span)
	scaled := make([]float64, span)

	// ---- StateIterating ----

	res := &Result{State: StateIterating, DanglingCount: danglingCount}
	for iter := 1; iter <= cfg.MaxIterations; iter++ {
		// 1) Mass currently parked on dangling rows, recycled through p.
		danglingMass, err := spmd.AllReduce(comm, vek.Dot(cur, dangling), spmd.OpSum)
		if err != nil {
			return nil, err
		}

		// 2) The communication-heavy step: y = Aᵀ·(cur/outdeg), row-partitioned.
		copy(scaled, cur)
		vek.Mul_Inplace(scaled, invdeg)
		var y []float64
		if cfg.Transpose {
			y, err = m.MulGather(scaled)
		} else {
			y, err = m.MulScatter(scaled)
		}
		if err != nil {
			return nil, err
		}

		// 3) next = alpha·(y + danglingMass·p) + (1-alpha)·p, locally owned.
		copy(next, y)
		floats.AddScaled(next, danglingMass, p)
		floats.Scale(cfg.Alpha, next)
		floats.AddScaled(next, 1-cfg.Alpha, p)

		// 4) Global L1 distance between the iterates.
		delta, err := spmd.AllReduce(comm, floats.Distance(next, cur, 1), spmd.OpSum)
		if err != nil {
			return nil, err
		}

		// 5) Transition: converge, cap out, or swap and continue.
		res.Iterations = iter
		res.Delta = delta
		cur, next = next, cur
		if cfg.Progress != nil {
			cfg.Progress(iter, delta)
		}
		if delta < cfg.Tolerance {
			res.State = StateConverged
			res.Vector = cur

			return res, nil
		}
	}

	// ---- StateMaxIterExceeded ----

	// Reported, not silently truncated: the caller gets the last iterate and
	// decides whether an approximate result is acceptable.
	res.State = StateMaxIterExceeded
	res.Vector = cur

	return res, fmt.Errorf("%w: %d iterations, delta %.3e (tolerance %.3e)",
		ErrNotConverged, res.Iterations, res.Delta, cfg.Tolerance)
}
