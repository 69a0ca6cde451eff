package cart

import (
	"context"
	"fmt"
	"sync"
)

// Future is the pending result of an operation submitted to the serial executor.
// Every accepted operation resolves its future exactly once.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func resolved[T any](val T, err error) *Future[T] {
	f := newFuture[T]()
	f.resolve(val, err)
	return f
}

func (f *Future[T]) resolve(val T, err error) {
	f.val, f.err = val, err
	close(f.done)
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await waits for the result. Cancelling ctx stops the wait only; the
// operation itself still runs to completion.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// executor runs jobs one at a time, in the order they were submitted.
type executor struct {
	mu      sync.RWMutex
	closed  bool
	jobs    chan func()
	stopped chan struct{}
}

func newExecutor(queueSize int) *executor {
	if queueSize < 0 {
		queueSize = 0
	}
	e := &executor{
		jobs:    make(chan func(), queueSize),
		stopped: make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *executor) run() {
	defer close(e.stopped)
	for job := range e.jobs {
		job()
	}
}

// submit enqueues fn. Jobs must not submit to the same executor and wait on the
// result, which would deadlock the single worker.
func submit[T any](e *executor, fn func() (T, error)) *Future[T] {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		var zero T
		return resolved(zero, ErrClosed)
	}

	f := newFuture[T]()
	e.jobs <- func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.resolve(zero, fmt.Errorf("cart: operation panicked: %v", r))
			}
		}()
		val, err := fn()
		f.resolve(val, err)
	}
	return f
}

// close stops accepting jobs and waits until every queued job has run.
func (e *executor) close() {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.jobs)
	}
	e.mu.Unlock()
	<-e.stopped
}
