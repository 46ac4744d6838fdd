// Package barrier implements the scheduler's fan-in barrier: a shared
// completion counter tied to a group of envelopes, which runs a stored
// completion task exactly once when every group member has finished.
package barrier

import (
	"sync"

	"go.uber.org/zap"

	"github.com/go-foundations/scheduler/errs"
	"github.com/go-foundations/scheduler/internal/envelope"
	"github.com/go-foundations/scheduler/metrics"
)

// Barrier is a single-shot counter with an attached completion
// envelope. Each group member holds a non-owning reference to the
// Barrier for the duration of the group; once the required count is
// reached, the triggering Increment runs the completion synchronously
// and the Barrier becomes unreachable for the garbage collector to
// reclaim — there is no explicit destroy step.
type Barrier struct {
	mu         sync.Mutex
	current    uint32
	required   uint32
	completion *envelope.Envelope
	logger     *zap.Logger
	metrics    *metrics.Collector
}

// New constructs a Barrier for a group of size required, whose
// completion envelope runs once every member has incremented. required
// must be at least 1; an empty group has no well-defined last finisher.
// collector may be nil, in which case the barrier performs no metrics
// bookkeeping.
func New(required uint32, completion *envelope.Envelope, logger *zap.Logger, collector *metrics.Collector) (*Barrier, error) {
	if required == 0 {
		return nil, errs.ErrEmptyBarrierGroup
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Barrier{required: required, completion: completion, logger: logger, metrics: collector}, nil
}

// Increment records that one group member has finished. The calling
// worker runs the completion task itself, in place, when this call is
// the one that reaches the required count — there is no re-submission
// hop, so the completion is guaranteed to observe every member's
// side effects with no ordering ambiguity against code the caller
// placed after building the group.
func (b *Barrier) Increment(workerID int) {
	b.mu.Lock()
	b.current++
	reached := b.current == b.required
	b.mu.Unlock()

	if reached {
		b.fire(workerID)
	}
}

func (b *Barrier) fire(workerID int) {
	defer func() {
		if b.metrics != nil {
			b.metrics.BarrierCompletions.Inc()
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("barrier completion task panicked",
				zap.Any("recover", r),
				zap.Int("worker", workerID),
			)
		}
	}()
	b.completion.Invoke(workerID)
}
