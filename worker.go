package scheduler

import (
	"runtime"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/go-foundations/scheduler/internal/deque"
	"github.com/go-foundations/scheduler/internal/envelope"
)

type workerState int32

const (
	stateStarting workerState = iota
	stateRunning
	stateDraining
	stateStopped
)

// worker owns one deque and one goroutine. It holds a non-owning
// back-reference to its Pool; the Pool owns the worker, not the other
// way around, so the reference stays valid for the worker's entire
// lifetime.
type worker struct {
	id    int
	dq    *deque.Deque[*envelope.Envelope]
	pool  *Pool
	state atomic.Int32
	busy  atomic.Bool
}

func newWorker(id int, pool *Pool) *worker {
	w := &worker{id: id, dq: deque.New[*envelope.Envelope](), pool: pool}
	w.state.Store(int32(stateStarting))
	return w
}

// run is the worker's goroutine body: local-front pop, then steal from
// peers starting at (id+1) mod N, then yield. Transitions to Draining
// once the pool is done, finishes any in-hand task, drains its own
// deque, and stops. Envelopes stolen from a draining worker remain
// valid — a thief simply takes them before this worker reaches them.
func (w *worker) run() {
	w.state.Store(int32(stateRunning))

	for !w.pool.isDone() {
		if env, ok := w.dq.TryPopFront(); ok {
			w.execute(env)
			continue
		}
		if env, ok := w.stealFromPeers(); ok {
			w.execute(env)
			continue
		}
		runtime.Gosched()
	}

	w.state.Store(int32(stateDraining))
	w.drain()
	w.state.Store(int32(stateStopped))
}

func (w *worker) stealFromPeers() (*envelope.Envelope, bool) {
	n := len(w.pool.workers)
	for i := 0; i < n; i++ {
		peer := w.pool.workers[(w.id+1+i)%n]
		if peer == w {
			continue
		}
		if env, ok := peer.dq.TryPopBack(); ok {
			if c := w.pool.metrics; c != nil {
				c.Stolen.Inc()
				c.StolenFrom.WithLabelValues(strconv.Itoa(peer.id)).Inc()
			}
			w.pool.observeQueueDepth(peer.id)
			return env, true
		}
	}
	return nil, false
}

// drain runs every envelope left in the worker's own deque. Only
// called once the pool is done and this worker has stopped accepting
// new front-of-queue work from the run loop above.
func (w *worker) drain() {
	for {
		env, ok := w.dq.TryPopFront()
		if !ok {
			return
		}
		w.execute(env)
	}
}

// execute invokes env, then — if present — re-submits its continuation
// through the pool's standard dispatch policy. Re-submission, not
// inline execution, is what lets a continuation land on a different,
// less loaded worker; inlining is never assumed by callers.
func (w *worker) execute(env *envelope.Envelope) {
	w.busy.Store(true)
	w.pool.observeQueueDepth(w.id)
	env.Invoke(w.id)
	w.busy.Store(false)

	if c := w.pool.metrics; c != nil {
		c.Executed.Inc()
	}

	if w.pool.logger.Core().Enabled(zap.DebugLevel) {
		w.pool.logger.Debug("executed envelope", zap.Int("worker", w.id), zap.Uint64("task", env.ID()))
	}

	if next := env.TakeThen(); next != nil {
		w.pool.submitEnvelope(next)
	}
}

func (w *worker) isBusy() bool {
	return w.busy.Load() || !w.dq.Empty()
}
