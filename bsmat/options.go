package bsmat

// DefaultRootNzBufsize is the default bound on buffered non-zero records at
// the reading rank: 1<<25 records per chunk, the ceiling that keeps the
// loader streaming on files larger than any single rank's memory.
const DefaultRootNzBufsize = 1 << 25

// Options configures Load. Zero value is not used directly; DefaultOptions
// supplies the documented defaults and WithX constructors override them.
type Options struct {
	// RootNzBufsize bounds how many non-zero records the reading rank buffers
	// (and forwards) per chunk. Must be positive.
	RootNzBufsize int64

	// PatternOnly marks the 8-byte record variant without stored weights;
	// every loaded entry gets weight 1.
	PatternOnly bool
}

// Option is a functional option for Load.
type Option func(*Options)

// DefaultOptions returns the documented loader defaults.
func DefaultOptions() Options {
	return Options{RootNzBufsize: DefaultRootNzBufsize}
}

// WithRootNzBufsize bounds the reading rank's per-chunk record buffer.
// Panics on a non-positive size (programmer error, caught early).
func WithRootNzBufsize(n int64) Option {
	return func(o *Options) {
		if n <= 0 {
			panic("bsmat: RootNzBufsize must be positive")
		}
		o.RootNzBufsize = n
	}
}

// WithPatternOnly selects the weightless 8-byte record variant; entries load
// with weight 1.
func WithPatternOnly() Option {
	return func(o *Options) {
		o.PatternOnly = true
	}
}
