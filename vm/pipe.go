package vm

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// Pipe: zero-capacity rendezvous between two machines
// ---------------------------------------------------------------------------

// Pipe connects the Output of one machine to the Input of another running
// on a different goroutine. Every Send blocks until a Receive takes the
// value. Seed values queued before the receiver starts are delivered
// first, so phase settings never race with the sender.
//
// The writing side calls Close when its machine exits; the reading side
// calls Hangup. A Receive on a closed pipe fails with ErrChannel. A Send
// on a hung-up pipe fails with ErrReceiverGone, which machines absorb into
// their overflow buffer.
type Pipe[T Word] struct {
	ch     chan T
	hangup chan struct{}
	ctx    context.Context

	mu     sync.Mutex // protects seeds and the close operations
	seeds  []T
	closed atomic.Bool
	hungUp atomic.Bool
}

// NewPipe creates a pipe whose blocking operations also abort when ctx is
// done. A nil ctx never aborts.
func NewPipe[T Word](ctx context.Context) *Pipe[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Pipe[T]{
		ch:     make(chan T),
		hangup: make(chan struct{}),
		ctx:    ctx,
	}
}

// Seed queues values ahead of anything sent through the channel. It must be
// called before the receiving machine starts.
func (p *Pipe[T]) Seed(values ...T) {
	p.mu.Lock()
	p.seeds = append(p.seeds, values...)
	p.mu.Unlock()
}

func (p *Pipe[T]) popSeed() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.seeds) == 0 {
		return 0, false
	}
	v := p.seeds[0]
	p.seeds = p.seeds[1:]
	return v, true
}

// Receive blocks until a value is available.
func (p *Pipe[T]) Receive() (T, error) {
	if v, ok := p.popSeed(); ok {
		return v, nil
	}
	select {
	case v, ok := <-p.ch:
		if !ok {
			return 0, fmt.Errorf("%w: sender disconnected", ErrChannel)
		}
		return v, nil
	case <-p.ctx.Done():
		return 0, fmt.Errorf("%w: %w", ErrChannel, p.ctx.Err())
	}
}

// Send blocks until the receiver takes v or hangs up.
func (p *Pipe[T]) Send(v T) error {
	if p.closed.Load() {
		return fmt.Errorf("%w: send on closed pipe", ErrChannel)
	}
	select {
	case p.ch <- v:
		return nil
	case <-p.hangup:
		return ErrReceiverGone
	case <-p.ctx.Done():
		return fmt.Errorf("%w: %w", ErrChannel, p.ctx.Err())
	}
}

// Close marks the sending side finished. Pending and future Receives fail
// once the seeds are exhausted.
func (p *Pipe[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed.Load() {
		p.closed.Store(true)
		close(p.ch)
	}
}

// Hangup marks the receiving side finished. Pending and future Sends
// return ErrReceiverGone.
func (p *Pipe[T]) Hangup() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hungUp.Load() {
		p.hungUp.Store(true)
		close(p.hangup)
	}
}

// IsClosed reports whether the sending side has finished.
func (p *Pipe[T]) IsClosed() bool {
	return p.closed.Load()
}
