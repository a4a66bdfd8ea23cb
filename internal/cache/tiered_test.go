package cache

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-forecast-router/internal/weather"
)

type remoteEntry struct {
	value weather.ForecastResult
	ttl   time.Duration
}

// fakeRemote is an in-memory Remote.
type fakeRemote struct {
	mu      sync.Mutex
	entries map[string]remoteEntry
	err     error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{entries: make(map[string]remoteEntry)}
}

func (f *fakeRemote) Get(_ context.Context, key string) (weather.ForecastResult, time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return weather.ForecastResult{}, 0, f.err
	}
	e, ok := f.entries[key]
	if !ok {
		return weather.ForecastResult{}, 0, ErrCacheMiss
	}
	return e.value, e.ttl, nil
}

func (f *fakeRemote) Set(_ context.Context, key string, value weather.ForecastResult, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries[key] = remoteEntry{value: value, ttl: ttl}
	return nil
}

func (f *fakeRemote) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make(map[string]remoteEntry)
	return f.err
}

func TestTieredWritesBothTiers(t *testing.T) {
	local := NewMemory(10)
	remote := newFakeRemote()
	c := NewTiered(local, remote, 0, nil)

	c.Set("daily:beijing:2025-06-05", result(weather.SourceDailyAPI), 2*time.Hour)

	_, ok := local.Get("daily:beijing:2025-06-05")
	assert.True(t, ok)
	assert.Contains(t, remote.entries, "daily:beijing:2025-06-05")
	assert.Equal(t, 2*time.Hour, remote.entries["daily:beijing:2025-06-05"].ttl)
}

func TestTieredPromotesRemoteHits(t *testing.T) {
	local := NewMemory(10)
	remote := newFakeRemote()
	remote.entries["k"] = remoteEntry{value: result(weather.SourceHourlyAPI), ttl: time.Minute}
	c := NewTiered(local, remote, 0, nil)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, weather.SourceHourlyAPI, got.Source)

	_, ok = local.Get("k")
	assert.True(t, ok, "remote hit must be copied into the local tier")
}

func TestTieredRemoteFailureIsAMiss(t *testing.T) {
	remote := newFakeRemote()
	remote.err = errors.New("connection refused")
	c := NewTiered(NewMemory(10), remote, 0, nil)

	_, ok := c.Get("k")
	assert.False(t, ok)

	// Local write still happens.
	c.Set("k", result(weather.SourceHourlyAPI), time.Minute)
	_, ok = c.Get("k")
	assert.True(t, ok)
}

func TestTieredClear(t *testing.T) {
	local := NewMemory(10)
	remote := newFakeRemote()
	c := NewTiered(local, remote, 0, nil)

	c.Set("k", result(weather.SourceHourlyAPI), time.Minute)
	c.Clear()

	assert.Equal(t, 0, local.Len())
	assert.Empty(t, remote.entries)
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	r, err := NewRedis(ctx, RedisOptions{Addr: addr, Prefix: "forecast-test:"}, nil)
	require.NoError(t, err)
	defer r.Close()
	defer r.Clear(ctx)

	_, _, err = r.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	want := result(weather.SourceDailyAPI)
	require.NoError(t, r.Set(ctx, "k", want, time.Minute))

	got, ttl, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, want.Source, got.Source)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}
