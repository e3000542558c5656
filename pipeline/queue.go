package pipeline

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed is returned when pushing to a closed queue, or popping
// from one that is closed and drained.
var ErrQueueClosed = errors.New("queue closed")

// Queue is an unbounded FIFO of integers linking two pipeline stages.
// Push never blocks; Pop blocks until a value is available. It is intended
// for one producer and one consumer.
type Queue struct {
	mu     sync.Mutex
	items  []int
	closed bool
	ready  chan struct{} // signalled after every push; closed by Close
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Push appends v. It fails only once the queue is closed.
func (q *Queue) Push(v int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	q.items = append(q.items, v)
	select {
	case q.ready <- struct{}{}:
	default:
	}
	return nil
}

// Pop removes and returns the oldest value, blocking until one is pushed,
// the queue is closed, or ctx is done. Values pushed before Close are still
// delivered.
func (q *Queue) Pop(ctx context.Context) (int, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			v := q.items[0]
			q.items = q.items[1:]
			if len(q.items) == 0 {
				q.items = nil
			}
			q.mu.Unlock()
			return v, nil
		}
		if q.closed {
			q.mu.Unlock()
			return 0, ErrQueueClosed
		}
		q.mu.Unlock()

		select {
		case <-q.ready:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// Close marks the queue closed and wakes a blocked consumer. Closing twice
// is a no-op.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.ready)
}

// Len returns the number of buffered values.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain removes and returns every buffered value without blocking.
func (q *Queue) Drain() []int {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}
