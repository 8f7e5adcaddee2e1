package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-token-sweeper/internal/cache"
	"github.com/feral-file/ff-token-sweeper/internal/mocks"
)

// fakeTime drives a MockClock from a mutable instant
type fakeTime struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeTime) get() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeTime) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func setupCache(t *testing.T, ttl time.Duration) (*cache.Versioned[string, int], *fakeTime) {
	ctrl := gomock.NewController(t)
	clock := mocks.NewMockClock(ctrl)
	ft := &fakeTime{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	clock.EXPECT().Now().DoAndReturn(ft.get).AnyTimes()
	clock.EXPECT().Since(gomock.Any()).DoAndReturn(func(t time.Time) time.Duration {
		return ft.get().Sub(t)
	}).AnyTimes()

	return cache.NewVersioned[string, int](ttl, clock), ft
}

func TestVersioned_GetWithinTTL(t *testing.T) {
	c, ft := setupCache(t, time.Minute)

	c.Put("a", 1)
	ft.advance(59 * time.Second)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestVersioned_ExpiresAtTTL(t *testing.T) {
	c, ft := setupCache(t, time.Minute)

	c.Put("a", 1)
	ft.advance(time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)

	// still reachable for degraded reads
	entry, ok := c.Current("a")
	require.True(t, ok)
	assert.Equal(t, 1, entry.Data)
}

func TestVersioned_InvalidateAll(t *testing.T) {
	c, _ := setupCache(t, time.Hour)

	c.Put("a", 1)
	c.Put("b", 2)
	before := c.Version()

	after := c.InvalidateAll()
	assert.Equal(t, before+1, after)

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Current("b")
	assert.False(t, ok)

	entry, ok := c.Peek("a")
	require.True(t, ok)
	assert.Equal(t, before, entry.Version)

	c.Put("a", 3)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestVersioned_PutReplacesEntry(t *testing.T) {
	c, ft := setupCache(t, time.Minute)

	first := c.Put("a", 1)
	ft.advance(30 * time.Second)
	second := c.Put("a", 2)

	assert.True(t, second.StoredAt.After(first.StoredAt))
	assert.Equal(t, 1, first.Data)

	ft.advance(45 * time.Second)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestVersioned_ConcurrentAccess(t *testing.T) {
	c, _ := setupCache(t, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Put("k", i)
			if i%10 == 0 {
				c.InvalidateAll()
			}
			_, _ = c.Get("k")
		}(i)
	}
	wg.Wait()

	_, ok := c.Peek("k")
	assert.True(t, ok)
	_, ok = c.Peek("other")
	assert.False(t, ok)
}
