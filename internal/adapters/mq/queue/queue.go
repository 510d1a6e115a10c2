// Package queue carries regatta change notifications from the write path to
// the scoreboard workers.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/regatta/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Change tells the workers that a regatta's scoreboard must be recomputed.
type Change struct {
	RegattaID string
	Reason    string
	At        time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a change to the queue.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, c Change) bool

	// Dequeue returns a channel that receives changes as they become available.
	// The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Change

	// Len returns the current number of queued changes.
	Len(ctx context.Context) int

	// Close stops accepting changes and closes the dequeue channels.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	changes  chan Change
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.changes = make(chan Change, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a change to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, c Change) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return false
	}
	if c.At.IsZero() {
		c.At = time.Now()
	}

	select {
	case q.changes <- c:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.changes))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError("context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError("queue_full")
		return false
	}
}

// Dequeue returns a channel that will receive changes as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Change {
	out := make(chan Change)
	go func() {
		defer close(out)
		for c := range q.changes {
			select {
			case out <- c:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.changes))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued changes.
func (q *InMemoryQueue) Len(_ context.Context) int {
	n := len(q.changes)
	metrics.UpdateQueueSize(n)
	return n
}

// Close stops the queue. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.changes)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
