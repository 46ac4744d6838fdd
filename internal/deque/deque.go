// Package deque implements the scheduler's per-worker task deque: a
// double-ended queue with a distinct owner end (front) and thief end
// (back), guarded by a single mutex and condition variable.
//
// The owner pushes and pops at the front. Thieves may only pop from the
// back, and only when the deque holds more than one element — this
// reserves the last item for the owner and prevents a pathological
// ping-pong where the final element is raced between the owner and a
// thief. The run loop that drives workers never blocks on this type; it
// uses the non-blocking Try* variants exclusively so that a worker with
// no local work can immediately move on to stealing from a peer.
package deque

import "sync"

type node[T any] struct {
	val        T
	prev, next *node[T]
}

// Deque is a mutex-guarded double-ended queue of T, safe for concurrent
// use by one owner goroutine (front) and any number of thief goroutines
// (back).
type Deque[T any] struct {
	mu         sync.Mutex
	cond       *sync.Cond
	head, tail *node[T]
	n          int
}

// New returns an empty Deque.
func New[T any]() *Deque[T] {
	d := &Deque[T]{}
	d.cond = sync.NewCond(&d.mu)
	return d
}

// PushFront inserts v at the front and wakes one blocked PopFront
// waiter, if any. It never fails.
func (d *Deque[T]) PushFront(v T) {
	d.mu.Lock()
	d.pushFrontLocked(v)
	d.mu.Unlock()
	d.cond.Signal()
}

// TryPushFront is equivalent to PushFront in this unbounded
// implementation; the boolean return exists so that a future bounded
// variant can report backpressure without changing the interface.
// Callers that receive false should try another worker.
func (d *Deque[T]) TryPushFront(v T) bool {
	d.PushFront(v)
	return true
}

func (d *Deque[T]) pushFrontLocked(v T) {
	nd := &node[T]{val: v}
	if d.head == nil {
		d.head, d.tail = nd, nd
	} else {
		nd.next = d.head
		d.head.prev = nd
		d.head = nd
	}
	d.n++
}

// TryPopFront removes and returns the front element, or reports false
// if the deque is empty.
func (d *Deque[T]) TryPopFront() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.head == nil {
		var zero T
		return zero, false
	}
	return d.popFrontLocked(), true
}

func (d *Deque[T]) popFrontLocked() T {
	nd := d.head
	d.head = nd.next
	if d.head != nil {
		d.head.prev = nil
	} else {
		d.tail = nil
	}
	d.n--
	return nd.val
}

// TryPopBack removes and returns the back element, or reports false if
// the deque holds one or zero elements. This guard is what reserves the
// last element for the owner.
func (d *Deque[T]) TryPopBack() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.n <= 1 {
		var zero T
		return zero, false
	}
	return d.popBackLocked(), true
}

func (d *Deque[T]) popBackLocked() T {
	nd := d.tail
	d.tail = nd.prev
	if d.tail != nil {
		d.tail.next = nil
	} else {
		d.head = nil
	}
	d.n--
	return nd.val
}

// PopFront blocks until the deque is non-empty, then removes and
// returns the front element. Not used by the worker run loop, which
// relies exclusively on the non-blocking path so that stealing keeps
// making progress; provided for callers that want a blocking consumer.
func (d *Deque[T]) PopFront() T {
	d.mu.Lock()
	defer d.mu.Unlock()

	for d.head == nil {
		d.cond.Wait()
	}
	return d.popFrontLocked()
}

// PopBack blocks until the deque holds more than one element, then
// removes and returns the back element. Like PopFront, this variant is
// not exercised by the worker run loop; the "last element stays with
// the owner" rule still applies to it.
func (d *Deque[T]) PopBack() T {
	d.mu.Lock()
	defer d.mu.Unlock()

	for d.n <= 1 {
		d.cond.Wait()
	}
	return d.popBackLocked()
}

// Size returns a snapshot of the current occupancy. Consistent under
// the deque's own lock, but immediately stale to the caller.
func (d *Deque[T]) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.n
}

// Empty reports whether Size() == 0.
func (d *Deque[T]) Empty() bool {
	return d.Size() == 0
}
