// Package scheduler implements an in-process work-stealing task
// execution engine: a fixed-size pool of worker goroutines that
// cooperatively execute heterogeneous units of work submitted by
// application code.
//
// Each worker owns a task deque with a front (owner) end and a back
// (thief) end. A worker prefers its own front queue, then steals from
// peers' back ends, then yields. Tasks may be composed into sequential
// continuation chains via Chain, or fanned into a barrier group via
// AddGroupWithBarrier whose completion task runs once, on the last
// finishing member's worker, after every group member has completed.
//
// Construct a Pool with New, submit work with Submit or WrapTask +
// SubmitEnvelope, and call Close when done. Wait/Resume implement a
// quiescence gate: Wait flags the pool as paused (submission continues
// to succeed; already-queued work still executes), and Resume blocks
// until no worker is executing and every deque is empty before clearing
// the flag.
package scheduler
