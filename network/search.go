package network

import (
	"context"
	"fmt"
	"iter"
	"runtime"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/intcode/vm"
)

// MaxSearchPhases bounds the phases Search accepts; 10 phases already mean
// 3628800 orderings.
const MaxSearchPhases = 10

// ErrTooManyPhases is returned by Search for more than MaxSearchPhases.
var ErrTooManyPhases = fmt.Errorf("network: search accepts at most %d phases", MaxSearchPhases)

// Permutations yields every ordering of values, generated lazily with
// Heap's algorithm. Each yielded slice is a fresh copy; values is not
// modified.
func Permutations[T any](values []T) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		work := slices.Clone(values)
		if !yield(slices.Clone(work)) {
			return
		}
		c := make([]int, len(work))
		for i := 0; i < len(work); {
			if c[i] < i {
				if i%2 == 0 {
					work[0], work[i] = work[i], work[0]
				} else {
					work[c[i]], work[i] = work[i], work[c[i]]
				}
				if !yield(slices.Clone(work)) {
					return
				}
				c[i]++
				i = 0
			} else {
				c[i] = 0
				i++
			}
		}
	}
}

// Result is the best phase ordering found by Search.
type Result[T vm.Word] struct {
	Signal T
	Phases []T
}

// Search tries every permutation of phases and returns the ordering that
// produces the largest signal. With feedback set, each ordering runs as a
// Feedback loop; otherwise as a Chain. Orderings are evaluated concurrently,
// bounded by GOMAXPROCS. Among orderings with equal signals the
// lexicographically smallest wins.
func Search[T vm.Word](ctx context.Context, program []T, phases []T, signal T, feedback bool, cfg Config[T]) (Result[T], error) {
	if len(phases) > MaxSearchPhases {
		return Result[T]{}, fmt.Errorf("%w: got %d", ErrTooManyPhases, len(phases))
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	var (
		mu   sync.Mutex
		best Result[T]
		seen bool
	)
	for order := range Permutations(phases) {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			var (
				got T
				err error
			)
			if feedback {
				got, err = Feedback(gctx, program, order, signal, cfg)
			} else {
				got, err = Chain(gctx, program, order, signal, cfg)
			}
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			if !seen || got > best.Signal ||
				(got == best.Signal && slices.Compare(order, best.Phases) < 0) {
				best = Result[T]{Signal: got, Phases: order}
				seen = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result[T]{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result[T]{}, err
	}
	log.Infof("best signal %d from phases %v", best.Signal, best.Phases)
	return best, nil
}
