// ABOUTME: Tests for the submission nonce cache
// ABOUTME: Validates claim semantics, TTL expiry, size bound, sweeping and concurrency

package dedupe

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests move time without sleeping
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(t *testing.T, ttl time.Duration, size int) (*Cache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(ttl, size)
	c.now = clock.Now
	t.Cleanup(c.Close)
	return c, clock
}

func TestCache_ClaimOnce(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 10)

	assert.True(t, c.Claim("nonce-1"))
	assert.False(t, c.Claim("nonce-1"), "second claim is a duplicate")
	assert.True(t, c.Seen("nonce-1"))
	assert.False(t, c.Seen("nonce-2"))
}

func TestCache_EmptyKey(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 10)

	assert.False(t, c.Claim(""))
	assert.Equal(t, 0, c.Len())
}

func TestCache_Expiry(t *testing.T) {
	c, clock := newTestCache(t, time.Minute, 10)

	assert.True(t, c.Claim("nonce"))
	clock.Advance(59 * time.Second)
	assert.True(t, c.Seen("nonce"))

	clock.Advance(2 * time.Second)
	assert.False(t, c.Seen("nonce"))
	assert.True(t, c.Claim("nonce"), "expired nonce can be claimed again")
	assert.Equal(t, 1, c.Len())
}

func TestCache_Forget(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 10)

	c.Claim("nonce")
	c.Forget("nonce")
	assert.False(t, c.Seen("nonce"))
	assert.True(t, c.Claim("nonce"))

	c.Forget("never-claimed")
}

func TestCache_EvictsOldest(t *testing.T) {
	c, clock := newTestCache(t, time.Hour, 3)

	for i := 1; i <= 3; i++ {
		assert.True(t, c.Claim(fmt.Sprintf("k%d", i)))
		clock.Advance(time.Second)
	}
	assert.True(t, c.Claim("k4"))

	assert.False(t, c.Seen("k1"), "oldest key should be evicted")
	assert.True(t, c.Seen("k2"))
	assert.True(t, c.Seen("k3"))
	assert.True(t, c.Seen("k4"))
	assert.Equal(t, 3, c.Len())
}

func TestCache_Sweep(t *testing.T) {
	c, clock := newTestCache(t, time.Minute, 10)

	c.Claim("a")
	c.Claim("b")
	clock.Advance(30 * time.Second)
	c.Claim("c")
	clock.Advance(45 * time.Second)

	c.sweep()
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Seen("c"))
}

func TestCache_ConcurrentClaims(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 1000)

	const workers = 50
	var wins atomic.Int32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if c.Claim("shared") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load(), "exactly one claim succeeds")
}

func TestCache_Close(t *testing.T) {
	c := New(time.Minute, 10)
	c.Claim("before-close")

	c.Close()
	c.Close()
	assert.True(t, c.Seen("before-close"))
}
