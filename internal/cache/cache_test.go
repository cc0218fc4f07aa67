package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/config"
)

func newTestCache(t *testing.T) Cache {
	t.Helper()
	c, err := New(&config.CacheConfig{Provider: "memory"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryIncrement(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := c.Increment(ctx, "counter", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// The counter stays readable through Get, like any other value.
	var count int64
	hit, err := c.Get(ctx, "counter", &count)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(3), count)
}

func TestMemoryIncrementRestartsAfterExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, err := c.Increment(ctx, "counter", 10*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(25 * time.Millisecond)

	got, err := c.Increment(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestMemoryIncrementIsAtomic(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Increment(ctx, "counter", time.Minute)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := c.Increment(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(workers+1), got)
}
