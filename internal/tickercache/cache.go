// Package tickercache keeps short-lived ticker snapshots per symbol.
package tickercache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/freshpay/bitfinex/internal/schema"
	"github.com/freshpay/bitfinex/internal/telemetry"
)

// DefaultTTL is how long a snapshot is served before refetching.
const DefaultTTL = 60 * time.Second

// FetchFunc loads a fresh ticker for symbol.
type FetchFunc func(ctx context.Context, symbol string) (schema.Ticker, error)

type entry struct {
	ticker  schema.Ticker
	fetched time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the clock, primarily for testing.
func WithClock(clock func() time.Time) Option {
	return func(c *Cache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithInstruments records hits and misses on inst.
func WithInstruments(inst *telemetry.Instruments) Option {
	return func(c *Cache) {
		c.metrics = inst
	}
}

// Cache maps symbol to its most recent snapshot.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   func() time.Time
	entries map[string]entry
	metrics *telemetry.Instruments
}

// New constructs a cache. A non-positive ttl uses DefaultTTL.
func New(ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		ttl:     ttl,
		clock:   time.Now,
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Get returns the cached ticker for symbol while it is younger than the TTL,
// otherwise calls fetch and stores the result. A failed fetch leaves the cache
// as it was. fetch runs without the lock held so distinct symbols load in parallel.
func (c *Cache) Get(ctx context.Context, symbol string, fetch FetchFunc) (schema.Ticker, error) {
	key := strings.ToLower(strings.TrimSpace(symbol))

	c.mu.Lock()
	now := c.clock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if ok && now.Sub(e.fetched) < c.ttl {
		c.metrics.RecordCacheLookup(ctx, true)
		return e.ticker, nil
	}
	c.metrics.RecordCacheLookup(ctx, false)

	ticker, err := fetch(ctx, key)
	if err != nil {
		return schema.Ticker{}, err
	}
	ticker.Symbol = key

	c.mu.Lock()
	c.entries[key] = entry{ticker: ticker, fetched: now}
	c.mu.Unlock()
	return ticker, nil
}

// Invalidate drops the snapshot for symbol.
func (c *Cache) Invalidate(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, strings.ToLower(strings.TrimSpace(symbol)))
}
