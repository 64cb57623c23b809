package bitfinex

import (
	"context"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/freshpay/bitfinex/internal/schema"
)

// DefaultCurrency is used by the funding endpoints when none is given.
const DefaultCurrency = "btc"

const maxTickerFetches = 4

func normalizeCurrency(currency string) string {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return DefaultCurrency
	}
	return currency
}

func (c *Client) fetchTicker(ctx context.Context, symbol string) (schema.Ticker, error) {
	return public[schema.Ticker](ctx, c, "/v1/ticker/"+symbol)
}

// Ticker returns the ticker for symbol, served from cache while it is fresh.
func (c *Client) Ticker(ctx context.Context, symbol string) (Ticker, error) {
	return c.tickers.Get(ctx, normalizeSymbol(symbol), c.fetchTicker)
}

// Tickers fetches several tickers concurrently. The first failure cancels the rest.
func (c *Client) Tickers(ctx context.Context, symbols ...string) (map[string]Ticker, error) {
	out := make(map[string]Ticker, len(symbols))
	var mu sync.Mutex
	p := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(maxTickerFetches)
	for _, symbol := range symbols {
		symbol := normalizeSymbol(symbol)
		p.Go(func(ctx context.Context) error {
			ticker, err := c.Ticker(ctx, symbol)
			if err != nil {
				return err
			}
			mu.Lock()
			out[symbol] = ticker
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// OrderBook returns the public book for symbol.
func (c *Client) OrderBook(ctx context.Context, symbol string) (OrderBook, error) {
	return public[OrderBook](ctx, c, "/v1/book/"+normalizeSymbol(symbol))
}

// LendBook returns the funding book for currency.
func (c *Client) LendBook(ctx context.Context, currency string) (LendBook, error) {
	return public[LendBook](ctx, c, "/v1/lendbook/"+normalizeCurrency(currency))
}

// Trades returns recent public trades for symbol.
func (c *Client) Trades(ctx context.Context, symbol string) ([]PublicTrade, error) {
	return public[[]PublicTrade](ctx, c, "/v1/trades/"+normalizeSymbol(symbol))
}

// Lends returns lending totals for currency.
func (c *Client) Lends(ctx context.Context, currency string) ([]Lend, error) {
	return public[[]Lend](ctx, c, "/v1/lends/"+normalizeCurrency(currency))
}

// Symbols lists tradable pairs.
func (c *Client) Symbols(ctx context.Context) ([]string, error) {
	return public[[]string](ctx, c, "/v1/symbols")
}
