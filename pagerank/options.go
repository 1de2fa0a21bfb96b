package pagerank

// Documented defaults. Tolerance and the iteration cap are implementation
// choices (the classical references leave them open); both are explicit
// configuration, never hidden constants in the loop.
const (
	// DefaultAlpha is the standard damping factor.
	DefaultAlpha = 0.85

	// DefaultTolerance is the L1 convergence threshold.
	DefaultTolerance = 1e-10

	// DefaultMaxIterations caps the power iteration to guarantee termination.
	// Sized so the default tolerance is reachable at the default alpha: the L1
	// error contracts by roughly alpha per iteration, and
	// log(1e-10)/log(0.85) ≈ 142.
	DefaultMaxIterations = 1000

	// pvecSumEpsilon is the slack allowed when validating that a supplied
	// personalization vector sums to one.
	pvecSumEpsilon = 1e-6
)

// Options configures Compute. Use DefaultOptions as the base and the WithX
// constructors to override; invalid scalar parameters surface as sentinel
// errors from Compute, not panics, since they typically arrive from user
// configuration rather than code.
type Options struct {
	// Alpha is the damping factor in [0, 1): the probability of following an
	// out-edge versus jumping per the personalization vector.
	Alpha float64

	// Tolerance is the L1 convergence threshold; must be positive.
	Tolerance float64

	// MaxIterations caps the loop; must be positive.
	MaxIterations int

	// Transpose marks a matrix stored column-major: the edge i→j sits in row
	// j, so out-degrees need a global reduction and the multiply gathers the
	// full vector instead of scatter-reducing partials.
	Transpose bool

	// Personalization is this rank's slice of a personalization vector,
	// partitioned conformally with the matrix rows. Nil selects the uniform
	// 1/n distribution. A supplied vector must be non-negative and sum to 1
	// globally (validated collectively).
	Personalization []float64

	// Start is this rank's slice of the initial estimate, partitioned
	// conformally with the matrix rows. Nil starts from the personalization
	// vector. Restarting from a previously converged vector re-confirms
	// convergence on the very next iteration.
	Start []float64

	// Progress, when non-nil, observes every completed iteration with its
	// 1-based index and global L1 delta. Called on every rank with identical
	// values; callers that print should filter to one rank.
	Progress func(iter int, delta float64)
}

// Option is a functional option for Compute.
type Option func(*Options)

// DefaultOptions returns the documented defaults: alpha 0.85, tolerance
// 1e-10, 1000 iterations, row-major convention, uniform personalization.
func DefaultOptions() Options {
	return Options{
		Alpha:         DefaultAlpha,
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
	}
}

// Alpha sets the damping factor. Validated in Compute: [0, 1).
func Alpha(a float64) Option {
	return func(o *Options) { o.Alpha = a }
}

// Tolerance sets the L1 convergence threshold. Validated in Compute: > 0.
func Tolerance(tol float64) Option {
	return func(o *Options) { o.Tolerance = tol }
}

// MaxIterations sets the iteration cap. Validated in Compute: > 0.
func MaxIterations(n int) Option {
	return func(o *Options) { o.MaxIterations = n }
}

// WithTranspose selects the column-major storage convention.
func WithTranspose() Option {
	return func(o *Options) { o.Transpose = true }
}

// WithPersonalization supplies this rank's slice of the personalization
// vector. The slice is read, never mutated.
func WithPersonalization(p []float64) Option {
	return func(o *Options) { o.Personalization = p }
}

// WithStart supplies the initial estimate instead of the personalization
// vector. The slice is read, never mutated.
func WithStart(v []float64) Option {
	return func(o *Options) { o.Start = v }
}

// WithProgress registers a per-iteration observer.
func WithProgress(fn func(iter int, delta float64)) Option {
	return func(o *Options) { o.Progress = fn }
}
