package bus

import "sync"

// Queue is a one-way, order-preserving, unbounded queue with a single consumer.
// Publishers never block on the consumer, so it is safe to feed from CDP event
// listeners.
type Queue[T any] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []T
	closed  bool
	handler func(T)
	done    chan struct{}
}

// NewQueue starts a queue that hands every item to handler on one goroutine.
func NewQueue[T any](handler func(T)) *Queue[T] {
	q := &Queue[T]{handler: handler, done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Publish enqueues item. It is a no-op after Close.
func (q *Queue[T]) Publish(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, item)
	q.cond.Signal()
}

// Close stops delivery and discards queued items. It waits for an in-flight handler
// call to return, so it must not be called from the handler.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		q.items = nil
		q.cond.Broadcast()
	}
	q.mu.Unlock()
	<-q.done
}

func (q *Queue[T]) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.closed {
			q.mu.Unlock()
			return
		}
		item := q.items[0]
		var zero T
		q.items[0] = zero
		q.items = q.items[1:]
		q.mu.Unlock()

		q.handler(item)
	}
}
