package cache

import (
	"container/list"
	"errors"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/i474232898/weather-forecast-router/internal/weather"
)

const (
	// DefaultMaxEntries bounds the memory cache when no size is configured.
	DefaultMaxEntries = 1000
	defaultShards     = 16
)

var (
	// ErrCacheMiss is returned by remote tiers when a key is absent.
	ErrCacheMiss = errors.New("cache miss")
)

// entry is one cached forecast.
type entry struct {
	key       string
	value     weather.ForecastResult
	expiresAt time.Time
}

// shard is an independent LRU list. Each shard has its own lock so that
// operations on keys in different shards never wait on each other.
type shard struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List // front is most recently used
	capacity int
}

func (s *shard) remove(el *list.Element) {
	s.order.Remove(el)
	delete(s.items, el.Value.(*entry).key)
}

// Stats reports cache activity since creation.
type Stats struct {
	Entries   int    `json:"entries"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Expired   uint64 `json:"expired"`
}

// Memory is a concurrency-safe, size-bounded in-process cache with per-entry
// TTL and least-recently-used eviction within each shard.
type Memory struct {
	shards []*shard
	now    func() time.Time

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
	expired   atomic.Uint64
}

type options struct {
	shards int
	now    func() time.Time
}

// Option configures a Memory cache.
type Option func(*options)

// WithShards sets the number of shards. One shard gives exact global LRU
// order.
func WithShards(n int) Option {
	return func(o *options) { o.shards = n }
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewMemory creates a Memory cache holding at most maxEntries entries.
// If maxEntries is <= 0, DefaultMaxEntries is used.
func NewMemory(maxEntries int, opts ...Option) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	o := options{shards: defaultShards, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	n := o.shards
	if n <= 0 {
		n = 1
	}
	if n > maxEntries {
		n = maxEntries
	}

	// Spread the capacity so the shards add up to exactly maxEntries.
	m := &Memory{shards: make([]*shard, n), now: o.now}
	for i := range m.shards {
		capacity := maxEntries / n
		if i < maxEntries%n {
			capacity++
		}
		m.shards[i] = &shard{
			items:    make(map[string]*list.Element),
			order:    list.New(),
			capacity: capacity,
		}
	}
	return m
}

func (m *Memory) shardFor(key string) *shard {
	if len(m.shards) == 1 {
		return m.shards[0]
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return m.shards[h.Sum32()%uint32(len(m.shards))]
}

// Get returns the live value for key.
func (m *Memory) Get(key string) (weather.ForecastResult, bool) {
	s := m.shardFor(key)

	s.mu.Lock()
	el, ok := s.items[key]
	if !ok {
		s.mu.Unlock()
		m.misses.Add(1)
		return weather.ForecastResult{}, false
	}
	e := el.Value.(*entry)
	if !m.now().Before(e.expiresAt) {
		s.remove(el)
		s.mu.Unlock()
		m.expired.Add(1)
		m.misses.Add(1)
		return weather.ForecastResult{}, false
	}
	s.order.MoveToFront(el)
	value := e.value
	s.mu.Unlock()

	m.hits.Add(1)
	return value, true
}

// Set stores value for ttl, evicting the shard's least recently used entry
// when full. A non-positive ttl stores nothing.
func (m *Memory) Set(key string, value weather.ForecastResult, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	expiresAt := m.now().Add(ttl)
	s := m.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.expiresAt = expiresAt
		s.order.MoveToFront(el)
		return
	}

	s.items[key] = s.order.PushFront(&entry{key: key, value: value, expiresAt: expiresAt})
	for s.order.Len() > s.capacity {
		s.remove(s.order.Back())
		m.evictions.Add(1)
	}
}

// Delete removes key if present.
func (m *Memory) Delete(key string) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.items[key]; ok {
		s.remove(el)
	}
}

// Sweep drops every expired entry and returns how many were removed.
func (m *Memory) Sweep() int {
	now := m.now()
	removed := 0
	for _, s := range m.shards {
		s.mu.Lock()
		for el := s.order.Front(); el != nil; {
			next := el.Next()
			if !now.Before(el.Value.(*entry).expiresAt) {
				s.remove(el)
				removed++
			}
			el = next
		}
		s.mu.Unlock()
	}
	m.expired.Add(uint64(removed))
	return removed
}

// Clear removes all entries.
func (m *Memory) Clear() {
	for _, s := range m.shards {
		s.mu.Lock()
		s.items = make(map[string]*list.Element)
		s.order.Init()
		s.mu.Unlock()
	}
}

// Len returns the number of stored entries, expired ones included until
// they are swept.
func (m *Memory) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.Lock()
		n += s.order.Len()
		s.mu.Unlock()
	}
	return n
}

// Stats returns a snapshot of the counters.
func (m *Memory) Stats() Stats {
	return Stats{
		Entries:   m.Len(),
		Hits:      m.hits.Load(),
		Misses:    m.misses.Load(),
		Evictions: m.evictions.Load(),
		Expired:   m.expired.Load(),
	}
}

var _ weather.Cache = (*Memory)(nil)
