// Package resultfuture implements the scheduler's Result Handle: a
// one-shot, single-producer/single-consumer channel publishing a
// task's return value or failure to the caller that retained it at
// submission time.
package resultfuture

import (
	"context"
	"runtime"
	"sync"

	"github.com/go-foundations/scheduler/errs"
)

type result[R any] struct {
	val R
	err error
}

// Future is the consumer side of a one-shot result channel. It is safe
// to read from multiple goroutines, but only the first read observes
// the value; subsequent calls to Get/GetContext block forever, mirroring
// a single-consumer channel read being drained once.
type Future[R any] struct {
	ch chan result[R]
}

// Get blocks until the task publishes its result or failure.
func (f *Future[R]) Get() (R, error) {
	r := <-f.ch
	return r.val, r.err
}

// GetContext is Get with an early-exit path on ctx cancellation. A
// cancellation does not stop the underlying task; it only stops this
// particular wait.
func (f *Future[R]) GetContext(ctx context.Context) (R, error) {
	select {
	case r := <-f.ch:
		return r.val, r.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Producer is the single-producer side of a Future. Publish must be
// called at most once; the scheduler arranges for this by constructing
// exactly one Producer per envelope and capturing it in a single
// closure.
//
// If a Producer is garbage-collected without ever publishing — e.g. an
// envelope built with WrapTask but discarded before submission — a
// finalizer delivers ErrBrokenFuture to the Future so a consumer
// blocked on Get does not hang forever. This is the Go analogue of the
// original design's "last strong reference triggers completion on
// drop": nothing else holds a reference to the producer once the task
// closure that captured it is no longer reachable.
type Producer[R any] struct {
	once sync.Once
	fut  *Future[R]
}

// New creates a Future/Producer pair for a task returning R.
func New[R any]() (*Future[R], *Producer[R]) {
	f := &Future[R]{ch: make(chan result[R], 1)}
	p := &Producer[R]{fut: f}
	runtime.SetFinalizer(p, func(p *Producer[R]) {
		p.publish(*new(R), errs.ErrBrokenFuture)
	})
	return f, p
}

// Publish delivers v and err to the Future exactly once; later calls
// are no-ops.
func (p *Producer[R]) Publish(v R, err error) {
	runtime.SetFinalizer(p, nil)
	p.publish(v, err)
}

func (p *Producer[R]) publish(v R, err error) {
	p.once.Do(func() {
		p.fut.ch <- result[R]{val: v, err: err}
	})
}
