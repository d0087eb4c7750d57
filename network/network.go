// Package network wires several Intcode machines together: as a
// sequential chain where each machine's output becomes the next one's input,
// or as a feedback loop of machines on their own goroutines connected by
// rendezvous pipes.
package network

import (
	"context"
	"errors"
	"fmt"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/intcode/vm"
)

var log = commonlog.GetLogger("intcode.network")

// ErrNoOutput is returned when the machine whose output is the network's
// result never produced one.
var ErrNoOutput = errors.New("network: no output")

// Config holds the machine options shared by every machine in a network.
type Config[T vm.Word] struct {
	Set         vm.InstructionSet
	MemoryLimit T
}

func (c Config[T]) options(name string) []vm.Option[T] {
	return []vm.Option[T]{
		vm.WithName[T](name),
		vm.WithInstructionSet[T](c.Set),
		vm.WithMemoryLimit(c.MemoryLimit),
	}
}

func machineName(i int) string {
	return fmt.Sprintf("amp-%c", 'A'+rune(i%26))
}

// Chain runs one machine per phase in sequence. Each machine receives its
// phase followed by everything the previous machine emitted (the first
// machine receives signal). The result is the last machine's final output.
// Cancelling ctx stops the machine currently running.
func Chain[T vm.Word](ctx context.Context, program []T, phases []T, signal T, cfg Config[T]) (T, error) {
	if len(phases) == 0 {
		return 0, fmt.Errorf("network: chain needs at least one phase")
	}
	carry := []T{signal}
	for i, phase := range phases {
		in := vm.NewQueue(phase)
		in.Push(carry...)
		out := vm.NewQueue[T]()
		opts := append(cfg.options(machineName(i)), vm.WithInput[T](in), vm.WithOutput[T](out))

		m := vm.New(program, opts...)
		if _, err := m.RunContext(ctx); err != nil {
			return 0, fmt.Errorf("network: %s: %w", m.Name(), err)
		}
		carry = out.Drain()
	}
	if len(carry) == 0 {
		return 0, ErrNoOutput
	}
	return carry[len(carry)-1], nil
}

// Feedback runs one machine per phase, each on its own goroutine, wired in a
// loop: machine i reads pipe i and writes pipe i+1, and the last machine
// writes back into pipe 0. Pipe i is seeded with phase i, and pipe 0 also
// with signal, before any machine starts.
//
// Every machine runs until it stops. Because the first machine stops before
// the last one emits its final value, that value lands in the last
// machine's overflow buffer and becomes the result.
//
// When any machine fails, ctx passed to the pipes is cancelled so the
// remaining machines fail instead of waiting forever.
func Feedback[T vm.Word](ctx context.Context, program []T, phases []T, signal T, cfg Config[T]) (T, error) {
	n := len(phases)
	if n == 0 {
		return 0, fmt.Errorf("network: feedback loop needs at least one phase")
	}

	g, gctx := errgroup.WithContext(ctx)
	pipes := make([]*vm.Pipe[T], n)
	for i := range pipes {
		pipes[i] = vm.NewPipe[T](gctx)
		pipes[i].Seed(phases[i])
	}
	pipes[0].Seed(signal)

	machines := make([]*vm.Machine[T], n)
	for i := range machines {
		in, out := pipes[i], pipes[(i+1)%n]
		opts := append(cfg.options(machineName(i)), vm.WithInput[T](in), vm.WithOutput[T](out))
		machines[i] = vm.New(program, opts...)
	}

	for i, m := range machines {
		in, out := pipes[i], pipes[(i+1)%n]
		g.Go(func() error {
			defer out.Close()
			defer in.Hangup()
			log.Debugf("%s: start", m.Name())
			if _, err := m.RunContext(gctx); err != nil {
				return fmt.Errorf("network: %s: %w", m.Name(), err)
			}
			log.Debugf("%s: stopped after %d steps", m.Name(), m.Steps())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	final := machines[n-1].Output()
	if len(final) == 0 {
		return 0, ErrNoOutput
	}
	return final[len(final)-1], nil
}
