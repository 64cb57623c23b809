package tickercache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/freshpay/bitfinex/internal/schema"
)

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

type countingFetcher struct {
	calls map[string]int
	err   error
}

func (f *countingFetcher) fetch(_ context.Context, symbol string) (schema.Ticker, error) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[symbol]++
	if f.err != nil {
		return schema.Ticker{}, f.err
	}
	return schema.Ticker{Bid: decimal.NewFromInt(int64(f.calls[symbol]))}, nil
}

func TestTickerServedFromCacheWithinTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1400000000, 0)}
	cache := New(0, WithClock(clock.Now))
	f := &countingFetcher{}

	first, err := cache.Get(context.Background(), "btcusd", f.fetch)
	require.NoError(t, err)
	clock.Advance(30 * time.Second)
	second, err := cache.Get(context.Background(), "btcusd", f.fetch)
	require.NoError(t, err)

	require.Equal(t, 1, f.calls["btcusd"])
	require.True(t, first.Bid.Equal(second.Bid))
	require.Equal(t, "btcusd", second.Symbol)
}

func TestTickerRefetchedAfterTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1400000000, 0)}
	cache := New(DefaultTTL, WithClock(clock.Now))
	f := &countingFetcher{}

	_, err := cache.Get(context.Background(), "btcusd", f.fetch)
	require.NoError(t, err)
	clock.Advance(61 * time.Second)
	got, err := cache.Get(context.Background(), "btcusd", f.fetch)
	require.NoError(t, err)

	require.Equal(t, 2, f.calls["btcusd"])
	require.True(t, got.Bid.Equal(decimal.NewFromInt(2)))
}

func TestSymbolsCachedIndependently(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1400000000, 0)}
	cache := New(0, WithClock(clock.Now))
	f := &countingFetcher{}

	_, err := cache.Get(context.Background(), "btcusd", f.fetch)
	require.NoError(t, err)
	_, err = cache.Get(context.Background(), "LTCUSD", f.fetch)
	require.NoError(t, err)
	_, err = cache.Get(context.Background(), "btcusd", f.fetch)
	require.NoError(t, err)

	require.Equal(t, 1, f.calls["btcusd"])
	require.Equal(t, 1, f.calls["ltcusd"])
}

func TestFetchErrorLeavesCacheUntouched(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1400000000, 0)}
	cache := New(0, WithClock(clock.Now))
	f := &countingFetcher{}

	_, err := cache.Get(context.Background(), "btcusd", f.fetch)
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)

	f.err = errors.New("boom")
	_, err = cache.Get(context.Background(), "btcusd", f.fetch)
	require.Error(t, err)

	f.err = nil
	got, err := cache.Get(context.Background(), "btcusd", f.fetch)
	require.NoError(t, err)
	require.True(t, got.Bid.Equal(decimal.NewFromInt(3)))
}

func TestInvalidateForcesRefetch(t *testing.T) {
	cache := New(time.Hour)
	f := &countingFetcher{}
	_, _ = cache.Get(context.Background(), "btcusd", f.fetch)
	cache.Invalidate("BTCUSD")
	_, _ = cache.Get(context.Background(), "btcusd", f.fetch)
	require.Equal(t, 2, f.calls["btcusd"])
}
