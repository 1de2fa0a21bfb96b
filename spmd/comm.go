package spmd

import "errors"

// Sentinel errors for process-group communication.
var (
	// ErrRankOutOfRange indicates a peer rank outside [0, Size).
	ErrRankOutOfRange = errors.New("spmd: rank out of range")

	// ErrGroupClosed indicates a peer terminated while a message from it was
	// still awaited. It is the group-abort signal: a rank observing it should
	// unwind, which in turn closes its own channels and propagates the abort.
	ErrGroupClosed = errors.New("spmd: process group closed")

	// ErrTypeMismatch indicates that a received message carried an unexpected
	// dynamic type. Under the lockstep contract this can only happen when two
	// ranks reached different collective calls, so it is reported rather than
	// tolerated.
	ErrTypeMismatch = errors.New("spmd: message type mismatch (lockstep violation)")

	// ErrBadGroupSize indicates Run was asked for a non-positive group size.
	ErrBadGroupSize = errors.New("spmd: group size must be positive")
)

// Comm is the process-group context handed to every distributed component.
//
// Rank and Size identify the caller within the group. Send and Recv are FIFO
// point-to-point primitives between rank pairs; every collective in this
// package is built from them. Implementations must preserve per-pair message
// order, which is what lets successive collectives share the same channels
// without tagging.
type Comm interface {
	// Rank returns the caller's rank in [0, Size).
	Rank() int

	// Size returns the number of ranks in the group.
	Size() int

	// Send delivers msg to the given peer. Blocks only when the pair's buffer
	// is full. Sending to oneself is invalid.
	Send(to int, msg any) error

	// Recv blocks until a message from the given peer arrives.
	// Returns ErrGroupClosed if the peer terminated first.
	Recv(from int) (any, error)
}

// Op selects the combining operator of a reduction.
type Op int

const (
	// OpSum combines by addition.
	OpSum Op = iota
	// OpMin combines by minimum.
	OpMin
	// OpMax combines by maximum.
	OpMax
)

// number constrains reductions to the scalar types the engine reduces:
// counts, non-zero totals, and floating-point masses/norms.
type number interface {
	~int | ~int64 | ~float64
}
