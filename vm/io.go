package vm

import (
	"fmt"
	"slices"
)

// Source supplies values to Input instructions.
type Source[T Word] interface {
	Receive() (T, error)
}

// Sink accepts values from Output instructions. A Sink whose reader has
// gone away returns an error wrapping ErrReceiverGone.
type Sink[T Word] interface {
	Send(v T) error
}

// Queue is an in-process FIFO usable as both Source and Sink. It is not
// safe for concurrent use; pipelines across goroutines use Pipe.
type Queue[T Word] struct {
	values []T
}

// NewQueue returns a queue holding values in order.
func NewQueue[T Word](values ...T) *Queue[T] {
	return &Queue[T]{values: slices.Clone(values)}
}

// Receive pops the oldest value. An empty queue is an error, not a wait.
func (q *Queue[T]) Receive() (T, error) {
	if len(q.values) == 0 {
		return 0, ErrInputExhausted
	}
	v := q.values[0]
	q.values = q.values[1:]
	return v, nil
}

// Send appends v.
func (q *Queue[T]) Send(v T) error {
	q.values = append(q.values, v)
	return nil
}

// Push appends values; used by callers to feed a machine between runs.
func (q *Queue[T]) Push(values ...T) {
	q.values = append(q.values, values...)
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int {
	return len(q.values)
}

// Values returns a copy of the queued values without consuming them.
func (q *Queue[T]) Values() []T {
	return slices.Clone(q.values)
}

// Drain returns the queued values and empties the queue.
func (q *Queue[T]) Drain() []T {
	out := q.values
	q.values = nil
	return out
}

// String formats the queue contents for log messages.
func (q *Queue[T]) String() string {
	return fmt.Sprintf("Queue%v", q.values)
}
