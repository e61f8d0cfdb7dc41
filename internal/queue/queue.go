package queue

import (
	"context"
	"sync"
)

// Queue is an unbounded FIFO of job identifiers. The tailer appends on one
// goroutine; the processor drains on another. Requeued jobs go to the tail,
// behind any first-attempt entries already waiting. Entries are not
// deduplicated: the same identifier may appear more than once when a failed
// job is requeued.
type Queue struct {
	mu     sync.Mutex
	items  []string
	notify chan struct{}
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Enqueue appends a job identifier at the tail and wakes a blocked consumer.
func (q *Queue) Enqueue(jobID string) {
	q.mu.Lock()
	q.items = append(q.items, jobID)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Dequeue removes and returns the head entry, blocking until one is
// available or ctx is cancelled.
func (q *Queue) Dequeue(ctx context.Context) (string, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			jobID := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return jobID, nil
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// Len reports the number of waiting entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
