package pagerank

import "errors"

// Sentinel errors returned by Compute.
var (
	// ErrNilMatrix indicates a nil matrix.
	ErrNilMatrix = errors.New("pagerank: matrix is nil")

	// ErrNotSquare indicates a matrix whose row and column counts differ;
	// PageRank is defined over square adjacency matrices only.
	ErrNotSquare = errors.New("pagerank: matrix must be square")

	// ErrBadAlpha indicates a damping factor outside [0, 1). Zero is legal
	// (pure personalization, converges in one iteration); one is not, since
	// the iteration would lose its contraction.
	ErrBadAlpha = errors.New("pagerank: alpha must be in [0, 1)")

	// ErrBadTolerance indicates a non-positive convergence tolerance.
	ErrBadTolerance = errors.New("pagerank: tolerance must be positive")

	// ErrBadMaxIter indicates a non-positive iteration cap.
	ErrBadMaxIter = errors.New("pagerank: max iterations must be positive")

	// ErrBadPersonalization indicates a supplied personalization vector that
	// is the wrong length, carries a negative entry, or does not sum to 1
	// over the full index space. Validated collectively before any iteration.
	ErrBadPersonalization = errors.New("pagerank: personalization vector must be a probability distribution")

	// ErrNotConverged annotates a result that hit the iteration cap before
	// the tolerance was met. The Result alongside it is still populated with
	// the last vector, final delta, and iteration count.
	ErrNotConverged = errors.New("pagerank: iteration cap reached before convergence")
)

// State is the engine's phase.
type State int

const (
	// StateInitializing covers validation, normalization bookkeeping, and
	// buffer setup.
	StateInitializing State = iota

	// StateIterating is the power-iteration loop.
	StateIterating

	// StateConverged means the L1 delta dropped below the tolerance.
	StateConverged

	// StateMaxIterExceeded means the iteration cap was reached first.
	StateMaxIterExceeded
)

// String implements fmt.Stringer for diagnostics.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateIterating:
		return "iterating"
	case StateConverged:
		return "converged"
	case StateMaxIterExceeded:
		return "max-iterations-exceeded"
	default:
		return "unknown"
	}
}

// Result is the outcome of a Compute call on one rank.
type Result struct {
	// Vector is this rank's slice of the PageRank vector, partitioned
	// identically to the matrix rows. On StateConverged the global vector
	// sums to 1 within floating-point rounding.
	Vector []float64

	// State is StateConverged or StateMaxIterExceeded.
	State State

	// Iterations is the number of completed iterations.
	Iterations int

	// Delta is the final L1 distance between the last two iterates.
	Delta float64

	// DanglingCount is the global number of dangling nodes (zero out-degree),
	// computed once during initialization.
	DanglingCount int64
}
