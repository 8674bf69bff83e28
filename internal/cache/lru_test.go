package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Size())
}

func TestLRUCache_TTL(t *testing.T) {
	now := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("2025", "snapshot")
	c.Set("2024", "older")
	now = now.Add(2 * time.Minute)

	_, ok := c.Get("2025")
	assert.False(t, ok)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Zero(t, c.Size())
}

func TestLRUCache_GetOrLoad(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache[int](10, time.Minute)
	var calls int32
	release := make(chan struct{})
	load := func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrLoad(ctx, "2025", load)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, 42, v)
	}
	// Goroutines scheduled after the first load finished hit the cache.
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	_, err := c.GetOrLoad(ctx, "broken", func(context.Context) (int, error) {
		return 0, errors.New("boom")
	})
	require.Error(t, err)
	_, ok := c.Get("broken")
	assert.False(t, ok)
}

func TestLRUCache_DeleteDuringLoadDropsResult(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache[int](10, time.Minute)

	v, err := c.GetOrLoad(ctx, "2025", func(context.Context) (int, error) {
		c.Delete("2025")
		return 1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, ok := c.Get("2025")
	assert.False(t, ok, "a load invalidated while running must not be cached")
}

type countingCleaner struct{ n int32 }

func (c *countingCleaner) CleanExpired() int {
	atomic.AddInt32(&c.n, 1)
	return 1
}

func TestManager(t *testing.T) {
	m := NewManager(nil)
	cl := &countingCleaner{}
	m.Register(cl)

	assert.Equal(t, 1, m.CleanNow())

	m.StartCleanup(5 * time.Millisecond)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&cl.n) > 2 }, time.Second, 5*time.Millisecond)
	m.Stop()
	m.Stop()
}
