package bitfinex

import (
	"context"
	"slices"
	"time"

	"github.com/freshpay/bitfinex/internal/numeric"
	"github.com/freshpay/bitfinex/internal/observability"
)

const (
	pathOrders    = "/v1/orders"
	pathPositions = "/v1/positions"
	pathOffers    = "/v1/offers"
	pathCredits   = "/v1/credits"
	pathBalances  = "/v1/balances"
	pathMyTrades  = "/v1/mytrades"
)

// DefaultHistoryLimit is the number of trades requested when a query sets none.
const DefaultHistoryLimit = 9100

// HistorySymbols are the pairs covered by HistoryAll.
var HistorySymbols = []string{"btcusd", "ltcusd", "ltcbtc"}

// HistoryQuery selects trades from the account history.
type HistoryQuery struct {
	Symbol string
	// Limit caps the number of trades; zero uses DefaultHistoryLimit.
	Limit int
	// Start returns trades at or after this instant; zero means from the beginning.
	Start time.Time
	// Reverse flips the order the exchange returns trades in.
	Reverse bool
}

// Orders lists active orders.
func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	orders, err := signed[[]Order](ctx, c, pathOrders, nil)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Normalize()
	}
	return orders, nil
}

// Positions lists open positions.
func (c *Client) Positions(ctx context.Context) ([]Position, error) {
	return signed[[]Position](ctx, c, pathPositions, nil)
}

// Offers lists active funding offers.
func (c *Client) Offers(ctx context.Context) ([]Offer, error) {
	return signed[[]Offer](ctx, c, pathOffers, nil)
}

// Credits lists funds currently lent out.
func (c *Client) Credits(ctx context.Context) ([]Credit, error) {
	return signed[[]Credit](ctx, c, pathCredits, nil)
}

// Balances lists wallet balances.
func (c *Client) Balances(ctx context.Context) ([]Balance, error) {
	return signed[[]Balance](ctx, c, pathBalances, nil)
}

// History returns the account's past trades. It is best effort: any failure
// is logged and yields an empty slice.
func (c *Client) History(ctx context.Context, q HistoryQuery) []Trade {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	start := "0"
	if !q.Start.IsZero() {
		start = numeric.ToEpoch(q.Start).String()
	}
	symbol := normalizeSymbol(q.Symbol)
	trades, err := signed[[]Trade](ctx, c, pathMyTrades, map[string]any{
		"symbol":       symbol,
		"timestamp":    start,
		"limit_trades": limit,
	})
	if err != nil {
		c.logger.Warn("trade history unavailable",
			observability.F("symbol", symbol),
			observability.F("error", err))
		return []Trade{}
	}
	for i := range trades {
		trades[i].Time = numeric.FormatLocal(trades[i].Timestamp.Time)
	}
	if q.Reverse {
		slices.Reverse(trades)
	}
	if trades == nil {
		trades = []Trade{}
	}
	return trades
}

// HistoryAll returns the history of every pair in HistorySymbols, keyed by symbol.
// Requests are issued sequentially since each one is signed.
func (c *Client) HistoryAll(ctx context.Context) map[string][]Trade {
	out := make(map[string][]Trade, len(HistorySymbols))
	for _, symbol := range HistorySymbols {
		out[symbol] = c.History(ctx, HistoryQuery{Symbol: symbol})
	}
	return out
}
