package state

import (
	"context"
	"sync"
)

// Future is the eventual result of asynchronous work.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future that is already complete.
func Resolved[T any](value T, err error) *Future[T] {
	f := newFuture[T]()
	f.resolve(value, err)
	return f
}

func (f *Future[T]) resolve(value T, err error) {
	f.once.Do(func() {
		f.value, f.err = value, err
		close(f.done)
	})
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is available or ctx ends.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the result without blocking. ok is false while the work is pending.
func (f *Future[T]) Result() (value T, err error, ok bool) {
	select {
	case <-f.done:
		return f.value, f.err, true
	default:
		var zero T
		return zero, nil, false
	}
}

// Launch runs work on a new goroutine and applies its outcome on the loop.
// The future resolves with the value returned by apply, after apply has run,
// so a caller that awaits it observes the state apply produced.
func Launch[W, R any](l *Loop, ctx context.Context, work func(context.Context) (W, error), apply func(W, error) (R, error)) *Future[R] {
	f := newFuture[R]()
	go func() {
		w, err := work(ctx)
		if !l.Post(func() { f.resolve(apply(w, err)) }) {
			var zero R
			f.resolve(zero, ErrLoopStopped)
		}
	}()
	return f
}
