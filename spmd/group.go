package spmd

import (
	"errors"
	"fmt"
	"sync"
)

// pairBufCap sizes every pair channel. Each collective leaves at most one
// pending message per directed pair, so a small buffer keeps sends from
// blocking across back-to-back collectives.
const pairBufCap = 8

// group is a channel-mesh Comm: mesh[from][to] carries messages from rank
// `from` to rank `to`. There is no self channel; collectives copy own data.
type group struct {
	rank int
	size int
	mesh [][]chan any

	closeOnce sync.Once
}

// Single returns a one-rank Comm. Every collective short-circuits locally, so
// it is the natural context for sequential runs and unit tests.
func Single() Comm {
	return &group{rank: 0, size: 1}
}

// Run launches a size-rank process group, executing fn once per rank on its
// own goroutine, and blocks until every rank has returned.
//
// Ranks communicate through a buffered FIFO channel mesh. When a rank's fn
// returns — normally or with an error — its outgoing channels are closed, so
// peers still blocked awaiting its messages observe ErrGroupClosed and the
// whole group unwinds: there is no partial-group execution path.
//
// The returned error is the lowest-ranked non-nil error, wrapped with its
// rank. ErrGroupClosed errors from innocent peers are reported only when no
// rank produced a primary error.
func Run(size int, fn func(Comm) error) error {
	if size <= 0 {
		return ErrBadGroupSize
	}
	if size == 1 {
		return fn(Single())
	}

	// 1) Build the full mesh up front; every rank shares it read-only.
	mesh := make([][]chan any, size)
	for from := 0; from < size; from++ {
		mesh[from] = make([]chan any, size)
		for to := 0; to < size; to++ {
			if from == to {
				continue
			}
			mesh[from][to] = make(chan any, pairBufCap)
		}
	}

	// 2) One goroutine per rank.
	errs := make([]error, size)
	var wg sync.WaitGroup
	wg.Add(size)
	for r := 0; r < size; r++ {
		g := &group{rank: r, size: size, mesh: mesh}
		go func(r int, g *group) {
			defer wg.Done()
			defer g.close()
			errs[r] = fn(g)
		}(r, g)
	}
	wg.Wait()

	// 3) Prefer the primary failure over secondary group-closed fallout.
	var closed error
	for r, err := range errs {
		if err == nil {
			continue
		}
		if isGroupClosed(err) {
			if closed == nil {
				closed = fmt.Errorf("rank %d: %w", r, err)
			}

			continue
		}

		return fmt.Errorf("rank %d: %w", r, err)
	}

	return closed
}

func (g *group) Rank() int { return g.rank }

func (g *group) Size() int { return g.size }

func (g *group) Send(to int, msg any) error {
	if to < 0 || to >= g.size || to == g.rank {
		return fmt.Errorf("%w: send to %d from %d of %d", ErrRankOutOfRange, to, g.rank, g.size)
	}

	g.mesh[g.rank][to] <- msg

	return nil
}

func (g *group) Recv(from int) (any, error) {
	if from < 0 || from >= g.size || from == g.rank {
		return nil, fmt.Errorf("%w: recv from %d at %d of %d", ErrRankOutOfRange, from, g.rank, g.size)
	}

	msg, ok := <-g.mesh[from][g.rank]
	if !ok {
		return nil, fmt.Errorf("%w: rank %d terminated", ErrGroupClosed, from)
	}

	return msg, nil
}

// close shuts this rank's outgoing channels, releasing any peer blocked in
// Recv on this rank. Safe to call once per rank; Run defers it.
func (g *group) close() {
	g.closeOnce.Do(func() {
		for to := 0; to < g.size; to++ {
			if to == g.rank || g.mesh == nil {
				continue
			}
			close(g.mesh[g.rank][to])
		}
	})
}

func isGroupClosed(err error) bool {
	return errors.Is(err, ErrGroupClosed)
}
