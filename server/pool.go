package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPoolStopped is returned by Do after Stop.
var ErrPoolStopped = errors.New("server: worker pool stopped")

// job represents a unit of work to be executed on a pool goroutine.
type job struct {
	fn   func() (any, error)
	done chan jobResult
}

// jobResult holds the return value from a job.
type jobResult struct {
	value any
	err   error
}

// Pool runs jobs on a fixed number of goroutines so that concurrent
// requests cannot start an unbounded number of machines.
type Pool struct {
	jobs     chan job
	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPool creates a Pool and starts its worker goroutines.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		jobs: make(chan job, 64),
		quit: make(chan struct{}),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.loop()
	}
	return p
}

// loop processes jobs sequentially on one worker goroutine.
func (p *Pool) loop() {
	defer p.wg.Done()
	for {
		select {
		case j := <-p.jobs:
			j.done <- p.execute(j.fn)
		case <-p.quit:
			return
		}
	}
}

// execute runs a job, recovering from panics.
func (p *Pool) execute(fn func() (any, error)) jobResult {
	var result jobResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.err = fmt.Errorf("server: job panicked: %v", r)
			}
		}()
		result.value, result.err = fn()
	}()
	return result
}

// Do submits fn and blocks until it completes or ctx is done. A job that
// is already running when ctx ends keeps its worker until it returns.
func (p *Pool) Do(ctx context.Context, fn func() (any, error)) (any, error) {
	j := job{
		fn:   fn,
		done: make(chan jobResult, 1),
	}
	select {
	case p.jobs <- j:
	case <-p.quit:
		return nil, ErrPoolStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case result := <-j.done:
		return result.value, result.err
	case <-p.quit:
		return nil, ErrPoolStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop shuts down the worker goroutines and waits for running jobs.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() { close(p.quit) })
	p.wg.Wait()
}
