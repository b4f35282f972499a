package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_PutGet(t *testing.T) {
	c := NewLRU[string, int]("", 4, time.Minute)

	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[string, int]("", 2, time.Minute)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // touch "a" so "b" is the eviction candidate
	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "least recently used entry is evicted at capacity")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_TTLExpiry(t *testing.T) {
	c := NewLRU[string, int]("", 4, 10*time.Second)

	now := time.Now()
	c.nowFn = func() time.Time { return now }

	c.Put("a", 1)
	_, ok := c.Get("a")
	require.True(t, ok)

	now = now.Add(11 * time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok, "expired entry reads as a miss")
	assert.Zero(t, c.Len(), "expired entry is dropped on read")
}

func TestLRU_PutRefreshesTTL(t *testing.T) {
	c := NewLRU[string, int]("", 4, 10*time.Second)

	now := time.Now()
	c.nowFn = func() time.Time { return now }

	c.Put("a", 1)
	now = now.Add(8 * time.Second)
	c.Put("a", 2)
	now = now.Add(8 * time.Second)

	v, ok := c.Get("a")
	require.True(t, ok, "update resets the entry clock")
	assert.Equal(t, 2, v)
}

func TestLRU_Invalidate(t *testing.T) {
	c := NewLRU[string, int]("", 4, time.Minute)

	c.Put("a", 1)
	c.Invalidate("a")
	c.Invalidate("never-existed")

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestLRU_Stats(t *testing.T) {
	c := NewLRU[string, int]("", 4, time.Minute)

	c.Put("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}
