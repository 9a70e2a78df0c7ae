// ABOUTME: Thread-safe TTL cache of form submission nonces
// ABOUTME: Rejects a replayed chat or token form so a double click sends once

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

type nonce struct {
	key    string
	seenAt time.Time
}

// Cache remembers submission nonces for a fixed TTL, bounded by maxSize.
// The oldest nonce is evicted first when the cache is full.
type Cache struct {
	mu      sync.Mutex
	index   map[string]*list.Element
	order   *list.List // oldest at front
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	done    chan struct{}
	closed  bool
}

// New creates a cache and starts its sweeper goroutine.
func New(ttl time.Duration, maxSize int) *Cache {
	if maxSize < 1 {
		maxSize = 1
	}
	c := &Cache{
		index:   make(map[string]*list.Element),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

// Seen reports whether key was claimed within the TTL.
func (c *Cache) Seen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	return ok && c.fresh(el)
}

// Claim records key and reports whether this is its first use within the
// TTL. An empty key is never claimable.
func (c *Cache) Claim(key string) bool {
	if key == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		if c.fresh(el) {
			return false
		}
		c.order.Remove(el)
		delete(c.index, key)
	}

	for len(c.index) >= c.maxSize {
		c.dropOldest()
	}
	c.index[key] = c.order.PushBack(&nonce{key: key, seenAt: c.now()})
	return true
}

// Forget releases a claimed key so it can be used again.
func (c *Cache) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		c.order.Remove(el)
		delete(c.index, key)
	}
}

// Len returns the number of remembered keys, expired ones included until
// the next sweep.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

func (c *Cache) fresh(el *list.Element) bool {
	n, _ := el.Value.(*nonce)
	return n != nil && c.now().Sub(n.seenAt) < c.ttl
}

// dropOldest must be called with mu held
func (c *Cache) dropOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	n, _ := front.Value.(*nonce)
	c.order.Remove(front)
	if n != nil {
		delete(c.index, n.key)
	}
}

func (c *Cache) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.done:
			return
		}
	}
}

// sweep drops expired keys from the front. Claims are appended in time order,
// so it stops at the first fresh entry.
func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for front := c.order.Front(); front != nil; front = c.order.Front() {
		if c.fresh(front) {
			return
		}
		c.dropOldest()
	}
}

// Close stops the sweeper. It is safe to call multiple times.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}
