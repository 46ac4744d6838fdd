package scheduler

import (
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/go-foundations/scheduler/errs"
	"github.com/go-foundations/scheduler/internal/barrier"
	"github.com/go-foundations/scheduler/internal/envelope"
	"github.com/go-foundations/scheduler/metrics"
	"github.com/go-foundations/scheduler/resultfuture"
)

// submissionRetryFactor is K from the dispatch policy: the number of
// full rotations around the worker set attempted before falling back
// to the unconditional backstop push.
const submissionRetryFactor = 2

// Pool owns a fixed set of workers and implements the submission
// policy, pause/resume quiescence gate, barrier-group construction, and
// shutdown.
type Pool struct {
	workers []*worker
	cursor  atomic.Uint32
	nextID  atomic.Uint64

	paused atomic.Bool
	done   atomic.Bool

	mu   sync.Mutex
	cond *sync.Cond

	closeOnce sync.Once
	wg        sync.WaitGroup

	logger  *zap.Logger
	metrics *metrics.Collector
}

// New constructs and starts a Pool. With no options, it sizes itself to
// runtime.GOMAXPROCS(0) workers and starts with the pause flag set;
// Resume clears it, and WithStartUnpaused starts with it cleared. The
// flag does not hold back execution: workers run submitted tasks from
// the start either way.
func New(opts ...Option) *Pool {
	co := configOptions{cfg: defaultConfig()}
	for _, opt := range opts {
		if opt == nil {
			panic("scheduler: nil Option")
		}
		opt(&co)
	}
	if co.cfg.Workers <= 0 {
		panic("scheduler: Config.Workers must be >= 1")
	}

	logger := co.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{logger: logger, metrics: co.metrics}
	p.cond = sync.NewCond(&p.mu)
	p.paused.Store(!co.cfg.StartUnpaused)

	if co.cfg.Workers > runtime.NumCPU() {
		logger.Warn("worker count exceeds available CPUs",
			zap.Int("workers", co.cfg.Workers), zap.Int("cpus", runtime.NumCPU()))
	}

	p.workers = make([]*worker, co.cfg.Workers)
	for i := range p.workers {
		p.workers[i] = newWorker(i, p)
	}
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *worker) {
			defer p.wg.Done()
			w.run()
		}(w)
	}

	logger.Debug("pool started", zap.Int("workers", co.cfg.Workers), zap.Bool("paused", p.paused.Load()))
	return p
}

// NumWorkers returns the fixed worker count.
func (p *Pool) NumWorkers() int { return len(p.workers) }

func (p *Pool) isDone() bool { return p.done.Load() }

// IsClosed reports whether Close has been called.
func (p *Pool) IsClosed() bool { return p.done.Load() }

// WrapTask builds a Future/Envelope pair for fn without submitting it.
// Use SubmitEnvelope, Chain, or AddGroupWithBarrier to introduce it
// into the scheduler.
func WrapTask[R any](p *Pool, fn func() (R, error)) (*resultfuture.Future[R], *envelope.Envelope) {
	future, producer := resultfuture.New[R]()
	id := p.nextID.Add(1)

	env := envelope.New(id, func(workerID int) {
		defer func() {
			if r := recover(); r != nil {
				var zero R
				producer.Publish(zero, errs.NewTaskError(fmt.Errorf("panic: %v", r), id, workerID))
			}
		}()

		v, err := fn()
		producer.Publish(v, errs.NewTaskError(err, id, workerID))
	})

	return future, env
}

// Submit wraps fn and immediately dispatches it through the standard
// submission policy, returning a Future for its eventual result.
func Submit[R any](p *Pool, fn func() (R, error)) (*resultfuture.Future[R], error) {
	if p.IsClosed() {
		return nil, errs.ErrPoolClosed
	}
	future, env := WrapTask[R](p, fn)
	p.submitEnvelope(env)
	return future, nil
}

// SubmitEnvelope dispatches a pre-built envelope — used for
// continuation re-submission and for barrier group members — through
// the same submission policy as Submit.
func (p *Pool) SubmitEnvelope(env *envelope.Envelope) error {
	if p.IsClosed() {
		return errs.ErrPoolClosed
	}
	p.submitEnvelope(env)
	return nil
}

// submitEnvelope implements the dispatch policy: advance the rotating
// cursor, try K rotations of TryPushFront across the worker set, and
// fall back to an unconditional push on the rotation's starting worker
// if every attempt reports backpressure. Every submission succeeds.
func (p *Pool) submitEnvelope(env *envelope.Envelope) {
	n := len(p.workers)
	start := int(p.cursor.Add(1)-1) % n

	for i := 0; i < n*submissionRetryFactor; i++ {
		id := (start + i) % n
		if p.workers[id].dq.TryPushFront(env) {
			p.bumpSubmitted()
			p.observeQueueDepth(id)
			return
		}
	}

	p.workers[start].dq.PushFront(env)
	p.bumpSubmitted()
	p.observeQueueDepth(start)
}

func (p *Pool) bumpSubmitted() {
	if p.metrics != nil {
		p.metrics.Submitted.Inc()
	}
}

// observeQueueDepth snapshots workerID's current deque occupancy into
// the queue-depth gauge. Called after every push onto, or pop from, a
// worker's own deque, so the gauge reflects the deque's size at the
// moment of the most recent change rather than a periodic sample.
func (p *Pool) observeQueueDepth(workerID int) {
	if p.metrics != nil {
		p.metrics.QueueDepth.WithLabelValues(strconv.Itoa(workerID)).Set(float64(p.workers[workerID].dq.Size()))
	}
}

// Chain builds a new envelope for fn, installs it as prev's
// continuation, and returns its Future together with the new
// envelope — itself a valid "previous" slot for a further Chain call,
// so a→b→c composes by repeated calls without re-deriving the tail.
// The chain is not submitted by this call; only submitting the head
// (directly, or as another envelope's continuation) starts it running.
func Chain[R any](p *Pool, prev *envelope.Envelope, fn func() (R, error)) (*resultfuture.Future[R], *envelope.Envelope) {
	future, env := WrapTask[R](p, fn)
	prev.SetThen(env)
	return future, env
}

// AddGroupWithBarrier constructs a barrier sized to len(envs), attaches
// it to every member, and submits every member. completion runs exactly
// once, synchronously on the worker that finishes the last member, once
// every member has completed. Returns ErrEmptyBarrierGroup if envs is
// empty.
func (p *Pool) AddGroupWithBarrier(envs []*envelope.Envelope, completion *envelope.Envelope) error {
	b, err := barrier.New(uint32(len(envs)), completion, p.logger, p.metrics)
	if err != nil {
		return err
	}

	groupID := uuid.New()
	p.logger.Debug("barrier group armed", zap.String("group", groupID.String()), zap.Int("members", len(envs)))

	for _, e := range envs {
		e.SetBarrier(b)
	}
	for _, e := range envs {
		p.submitEnvelope(e)
	}
	return nil
}

// AddGroupWithBarrierFunc wraps completionFn as the group's completion
// task and returns its Future, so the caller learns of the group's
// termination (and any panic recovered from the completion itself)
// through that Future.
func AddGroupWithBarrierFunc[R any](p *Pool, envs []*envelope.Envelope, completionFn func() (R, error)) (*resultfuture.Future[R], error) {
	future, completion := WrapTask[R](p, completionFn)
	if err := p.AddGroupWithBarrier(envs, completion); err != nil {
		return nil, err
	}
	return future, nil
}

// Wait flags the pool as paused. It does not block, and does not stop
// any worker: submission and already-queued execution continue. Pair
// it with Resume to observe quiescence — this mirrors the pool's
// original reference behavior exactly, rather than making Wait itself
// drain (see design notes for the rejected alternative).
func (p *Pool) Wait() {
	p.paused.Store(true)
}

// Resume blocks until every worker is idle and every deque is empty,
// then clears the paused flag. After Resume returns, every submission
// made before the preceding Wait has completed.
func (p *Pool) Resume() {
	for p.workersBusy() {
		runtime.Gosched()
	}

	p.paused.Store(false)

	p.mu.Lock()
	p.cond.Broadcast()
	p.mu.Unlock()
}

// IsPaused reports the current state of the pause flag.
func (p *Pool) IsPaused() bool { return p.paused.Load() }

func (p *Pool) workersBusy() bool {
	for _, w := range p.workers {
		if w.isBusy() {
			return true
		}
	}
	return false
}

// Close signals shutdown: every worker finishes its in-hand task,
// drains its own deque, and stops. Close does not return until every
// worker goroutine has joined. Close is idempotent.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.done.Store(true)
		p.wg.Wait()
		p.logger.Debug("pool closed")
	})
}
