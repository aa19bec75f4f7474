package innerclient

import (
	"sync"

	"github.com/edge-gateway/messageproxy/pkg/gatewayerrors"
)

// queue is a closable, unbounded, multi-producer/single-consumer FIFO.
// Dequeue blocks until an item is available or the queue is closed, at
// which point it returns gatewayerrors.ErrClosed for good.
type queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  [][]byte
	closed bool
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends payload to the tail. It is a no-op once the queue is
// closed.
func (q *queue) Enqueue(payload []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.items = append(q.items, payload)
	q.cond.Signal()
}

// Dequeue blocks for the head item, or returns gatewayerrors.ErrClosed
// once Close has been called and the queue has drained.
func (q *queue) Dequeue() ([]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, gatewayerrors.New(gatewayerrors.KindClosed, "innerclient.queue.Dequeue", "queue closed")
	}

	item := q.items[0]
	q.items = q.items[1:]
	return item, nil
}

// Close marks the queue closed and wakes any blocked Dequeue.
func (q *queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}
