package pipeline

import "sync"

// ProgressFunc receives the batch progress after each completed document.
type ProgressFunc func(completed, total int)

// Tracker counts completed documents across a batch. It is safe for
// concurrent use; the callback runs inside the critical section, so it
// observes every count from 1 to total exactly once, in order.
type Tracker struct {
	mu         sync.Mutex
	total      int
	completed  int
	onProgress ProgressFunc
}

// NewTracker returns a tracker for total documents. fn may be nil.
func NewTracker(total int, fn ProgressFunc) *Tracker {
	return &Tracker{total: total, onProgress: fn}
}

// RecordCompletion counts one finished document, whatever its outcome, and
// returns the new count.
func (t *Tracker) RecordCompletion() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed++
	if t.onProgress != nil {
		t.onProgress(t.completed, t.total)
	}
	return t.completed
}

// Progress returns the current count and the total.
func (t *Tracker) Progress() (completed, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed, t.total
}
