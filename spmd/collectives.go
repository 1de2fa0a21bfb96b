package spmd

import "fmt"

// reduceRoot is the rank at which every reduction is combined. Fixing it keeps
// the combine order (ascending rank) identical across calls, which makes
// reductions reproducible for a fixed group size.
const reduceRoot = 0

// Barrier blocks until every rank in the group has reached it.
//
// Implemented as a zero-value reduction followed by the broadcast of the
// result, so it costs two messages per non-root rank.
func Barrier(c Comm) error {
	_, err := AllReduce(c, 0, OpSum)

	return err
}

// Broadcast distributes root's value to every rank and returns it.
// Non-root callers pass their (ignored) local value for the uniform SPMD
// call shape; all ranks receive root's value.
//
// Reference types travel by reference: when T is a slice, every rank receives
// the same backing array, so the result is shared read-only — a rank that
// needs to mutate it must copy first.
func Broadcast[T any](c Comm, root int, v T) (T, error) {
	var zero T
	if root < 0 || root >= c.Size() {
		return zero, ErrRankOutOfRange
	}
	// Single-rank group: nothing to move.
	if c.Size() == 1 {
		return v, nil
	}

	if c.Rank() == root {
		// Root fans the value out to every peer.
		for peer := 0; peer < c.Size(); peer++ {
			if peer == root {
				continue
			}
			if err := c.Send(peer, v); err != nil {
				return zero, err
			}
		}

		return v, nil
	}

	// Everyone else awaits the root's message.
	msg, err := c.Recv(root)
	if err != nil {
		return zero, err
	}
	got, ok := msg.(T)
	if !ok {
		return zero, fmt.Errorf("%w: broadcast expected %T, got %T", ErrTypeMismatch, zero, msg)
	}

	return got, nil
}

// AllReduce combines one scalar per rank with op and returns the combined
// value on every rank.
//
// The combine happens at rank 0 in ascending rank order (deterministic for a
// fixed group size), then the result is broadcast back.
func AllReduce[T number](c Comm, v T, op Op) (T, error) {
	var zero T
	if c.Size() == 1 {
		return v, nil
	}

	if c.Rank() == reduceRoot {
		acc := v
		for peer := 0; peer < c.Size(); peer++ {
			if peer == reduceRoot {
				continue
			}
			msg, err := c.Recv(peer)
			if err != nil {
				return zero, err
			}
			got, ok := msg.(T)
			if !ok {
				return zero, fmt.Errorf("%w: reduce expected %T, got %T", ErrTypeMismatch, zero, msg)
			}
			acc = combine(acc, got, op)
		}

		return Broadcast(c, reduceRoot, acc)
	}

	if err := c.Send(reduceRoot, v); err != nil {
		return zero, err
	}

	return Broadcast(c, reduceRoot, zero)
}

// AllGatherv concatenates each rank's local slice in ascending rank order and
// returns the full concatenation on every rank.
//
// Slices may have different lengths per rank (the "v" in AllGatherv). When the
// local slices are the row-partitioned pieces of a global vector, the result
// is exactly that global vector.
//
// The returned slice shares one backing array across all ranks (it travels
// through Broadcast): treat it as read-only, copy before mutating.
func AllGatherv[T any](c Comm, local []T) ([]T, error) {
	if c.Size() == 1 {
		out := make([]T, len(local))
		copy(out, local)

		return out, nil
	}

	if c.Rank() == reduceRoot {
		parts := make([][]T, c.Size())
		parts[reduceRoot] = local
		total := len(local)
		for peer := 0; peer < c.Size(); peer++ {
			if peer == reduceRoot {
				continue
			}
			msg, err := c.Recv(peer)
			if err != nil {
				return nil, err
			}
			part, ok := msg.([]T)
			if !ok {
				return nil, fmt.Errorf("%w: gather expected %T, got %T", ErrTypeMismatch, local, msg)
			}
			parts[peer] = part
			total += len(part)
		}
		full := make([]T, 0, total)
		for _, part := range parts {
			full = append(full, part...)
		}

		return Broadcast(c, reduceRoot, full)
	}

	if err := c.Send(reduceRoot, local); err != nil {
		return nil, err
	}

	return Broadcast(c, reduceRoot, []T(nil))
}

// AllReduceSlice element-wise sum-reduces equal-length slices and returns the
// combined slice on every rank. It is the reduction behind the transposed
// multiply, where every rank holds partial contributions to the full vector.
//
// As with AllGatherv, the combined slice is broadcast by reference and shared
// across ranks: read-only, copy before mutating.
func AllReduceSlice(c Comm, v []float64) ([]float64, error) {
	out := make([]float64, len(v))
	copy(out, v)
	if c.Size() == 1 {
		return out, nil
	}

	if c.Rank() == reduceRoot {
		for peer := 0; peer < c.Size(); peer++ {
			if peer == reduceRoot {
				continue
			}
			msg, err := c.Recv(peer)
			if err != nil {
				return nil, err
			}
			part, ok := msg.([]float64)
			if !ok {
				return nil, fmt.Errorf("%w: slice reduce expected []float64, got %T", ErrTypeMismatch, msg)
			}
			if len(part) != len(out) {
				return nil, fmt.Errorf("%w: slice reduce length %d != %d", ErrTypeMismatch, len(part), len(out))
			}
			for i := range out {
				out[i] += part[i]
			}
		}

		return Broadcast(c, reduceRoot, out)
	}

	if err := c.Send(reduceRoot, out); err != nil {
		return nil, err
	}

	return Broadcast(c, reduceRoot, []float64(nil))
}

// AllToAll delivers send[j] to rank j for every rank and returns the
// concatenation of what the caller received, in ascending sender order.
// len(send) must equal the group size; the caller's own bucket send[rank] is
// included (copied, never aliased).
//
// This is the entry-exchange collective used by the chunked loader and the
// balancer's redistribution step.
func AllToAll[T any](c Comm, send [][]T) ([]T, error) {
	if len(send) != c.Size() {
		return nil, fmt.Errorf("%w: all-to-all needs %d buckets, got %d", ErrRankOutOfRange, c.Size(), len(send))
	}

	me := c.Rank()
	// 1) Fan out: one bucket per peer. Buckets travel as a single message, so
	//    each pair channel holds at most one pending message per collective.
	for peer := 0; peer < c.Size(); peer++ {
		if peer == me {
			continue
		}
		if err := c.Send(peer, send[peer]); err != nil {
			return nil, err
		}
	}

	// 2) Fan in: collect buckets in ascending sender order, own bucket copied.
	var out []T
	for peer := 0; peer < c.Size(); peer++ {
		if peer == me {
			out = append(out, send[me]...)

			continue
		}
		msg, err := c.Recv(peer)
		if err != nil {
			return nil, err
		}
		part, ok := msg.([]T)
		if !ok {
			var want []T

			return nil, fmt.Errorf("%w: all-to-all expected %T, got %T", ErrTypeMismatch, want, msg)
		}
		out = append(out, part...)
	}

	return out, nil
}

// combine applies op to a pair of scalars.
func combine[T number](a, b T, op Op) T {
	switch op {
	case OpMin:
		if b < a {
			return b
		}

		return a
	case OpMax:
		if b > a {
			return b
		}

		return a
	default: // OpSum
		return a + b
	}
}
