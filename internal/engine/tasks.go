package engine

import (
	"sort"
	"time"
)

// TaskKind labels what a scheduled entry will do when it fires.
type TaskKind string

const (
	TaskNews     TaskKind = "news"
	TaskFollowUp TaskKind = "followup"
	TaskExpiry   TaskKind = "expiry"
)

// Task is one pending entry in the session's timer registry.
type Task struct {
	ID   uint64
	Kind TaskKind
	At   time.Duration // game clock at which it becomes due
	Fire func()
}

// TaskQueue is the session-owned registry for all delayed work. Entries
// are keyed by game clock, so pausing the clock suspends every pending
// entry and clearing the queue on game over cancels them outright. No
// free-running timers exist anywhere in the engine.
type TaskQueue struct {
	nextID  uint64
	pending []Task // sorted by At ascending
}

// NewTaskQueue creates an empty registry.
func NewTaskQueue() *TaskQueue {
	return &TaskQueue{}
}

// Schedule inserts a task due at the given game clock and returns its id.
func (q *TaskQueue) Schedule(at time.Duration, kind TaskKind, fire func()) uint64 {
	q.nextID++
	t := Task{ID: q.nextID, Kind: kind, At: at, Fire: fire}
	i := sort.Search(len(q.pending), func(i int) bool { return q.pending[i].At > at })
	q.pending = append(q.pending, Task{})
	copy(q.pending[i+1:], q.pending[i:])
	q.pending[i] = t
	return t.ID
}

// Cancel removes a pending task. Reports whether it was still pending.
func (q *TaskQueue) Cancel(id uint64) bool {
	for i, t := range q.pending {
		if t.ID == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return true
		}
	}
	return false
}

// PopDue removes and returns every task due at or before clock, in
// firing order.
func (q *TaskQueue) PopDue(clock time.Duration) []Task {
	i := sort.Search(len(q.pending), func(i int) bool { return q.pending[i].At > clock })
	if i == 0 {
		return nil
	}
	due := make([]Task, i)
	copy(due, q.pending[:i])
	q.pending = q.pending[i:]
	return due
}

// Clear drops every pending entry.
func (q *TaskQueue) Clear() {
	q.pending = q.pending[:0]
}

// Len returns the number of pending entries.
func (q *TaskQueue) Len() int {
	return len(q.pending)
}
