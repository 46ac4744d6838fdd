// Package errs defines the scheduler's error taxonomy: sentinel errors
// for lifecycle/usage conditions, and a wrapping type that tags a task
// failure with the envelope and worker it originated from.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolClosed is returned by submission operations once the pool
	// has begun shutdown.
	ErrPoolClosed = errors.New("scheduler: pool is closed")

	// ErrEmptyBarrierGroup is returned when a barrier group is built
	// with zero member envelopes; there is no well-defined last
	// finisher to run the completion task.
	ErrEmptyBarrierGroup = errors.New("scheduler: barrier group must have at least one member")

	// ErrBrokenFuture is delivered to a Future's consumer when its
	// producer was discarded without ever publishing a result.
	ErrBrokenFuture = errors.New("scheduler: future's producer was discarded before publishing a result")
)

// TaskError wraps a task body's failure with correlation metadata: the
// sequence number assigned to the task at submission time, and the id
// of the worker that was executing it.
type TaskError struct {
	Err      error
	TaskID   uint64
	WorkerID int
}

// NewTaskError wraps err with the given task id and worker id. It
// returns nil if err is nil, so callers can wrap unconditionally.
func NewTaskError(err error, taskID uint64, workerID int) error {
	if err == nil {
		return nil
	}
	return &TaskError{Err: err, TaskID: taskID, WorkerID: workerID}
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d (worker %d): %v", e.TaskID, e.WorkerID, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// TaskIDOf returns the task id tagged onto err, if any.
func TaskIDOf(err error) (uint64, bool) {
	var te *TaskError
	if errors.As(err, &te) {
		return te.TaskID, true
	}
	return 0, false
}

// WorkerIDOf returns the worker id tagged onto err, if any.
func WorkerIDOf(err error) (int, bool) {
	var te *TaskError
	if errors.As(err, &te) {
		return te.WorkerID, true
	}
	return 0, false
}
