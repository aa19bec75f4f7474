package innerclient

import "sync"

// defaultCacheCapacity bounds the reconnect cache so a client that
// never reconnects doesn't grow it without bound (spec.md §4.5 leaves
// the exact capacity to the implementation; original_source's
// cmclient.cpp/iamclient equivalents use a small fixed-size ring).
const defaultCacheCapacity = 64

// CacheablePredicate decides whether an outgoing message survives a
// dropped connection to be replayed on the next successful reconnect.
type CacheablePredicate func(payload []byte) bool

// CacheAll is the IAM variant's predicate: every outgoing message is
// replayed after a reconnect (spec.md §4.5).
func CacheAll([]byte) bool { return true }

// reconnectCache is a bounded FIFO of messages to replay, in order,
// immediately after a new stream is established. Once full, the
// oldest entry is evicted to make room for the newest.
type reconnectCache struct {
	mu       sync.Mutex
	items    [][]byte
	capacity int
}

func newReconnectCache(capacity int) *reconnectCache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	return &reconnectCache{capacity: capacity}
}

// Add appends payload, evicting the oldest entry if the cache is full.
func (c *reconnectCache) Add(payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) >= c.capacity {
		c.items = c.items[1:]
	}
	c.items = append(c.items, payload)
}

// Drain returns and clears every cached message, oldest first.
func (c *reconnectCache) Drain() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := c.items
	c.items = nil
	return items
}
