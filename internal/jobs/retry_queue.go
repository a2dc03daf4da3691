package jobs

import (
	"sync"

	"fulfillment/internal/core/application/usecases/commands"
)

// maxRetryAttempts bounds how often a failed reconciliation is replayed
// before the poller is left to catch it.
const maxRetryAttempts = 5

type retryEntry struct {
	command  commands.ReconcileCourierStatusCommand
	attempts int
}

// RetryQueue buffers courier status observations whose reconciliation failed,
// so the webhook receiver can acknowledge the courier immediately and leave
// the replay to a background job. In-memory and process-local: a restart
// loses the queue, which is acceptable because the poller re-observes every
// active courier order anyway.
type RetryQueue struct {
	mu      sync.Mutex
	entries []retryEntry
}

// NewRetryQueue creates an empty retry queue.
func NewRetryQueue() *RetryQueue {
	return &RetryQueue{}
}

// Enqueue adds a failed observation for replay.
func (q *RetryQueue) Enqueue(command commands.ReconcileCourierStatusCommand) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append(q.entries, retryEntry{command: command, attempts: 1})
}

// Len reports how many observations await replay.
func (q *RetryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.entries)
}

// drain removes and returns all queued entries.
func (q *RetryQueue) drain() []retryEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := q.entries
	q.entries = nil
	return entries
}

// requeue puts a still-failing entry back unless its attempt budget ran out.
// Reports whether the entry was kept.
func (q *RetryQueue) requeue(entry retryEntry) bool {
	entry.attempts++
	if entry.attempts > maxRetryAttempts {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append(q.entries, entry)
	return true
}
