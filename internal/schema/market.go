package schema

import (
	"github.com/shopspring/decimal"

	"github.com/freshpay/bitfinex/internal/numeric"
)

// Ticker is a best bid/ask and last trade snapshot for one symbol.
type Ticker struct {
	Symbol    string          `json:"-"`
	Mid       decimal.Decimal `json:"mid"`
	Bid       decimal.Decimal `json:"bid"`
	Ask       decimal.Decimal `json:"ask"`
	LastPrice decimal.Decimal `json:"last_price"`
	Low       decimal.Decimal `json:"low"`
	High      decimal.Decimal `json:"high"`
	Volume    decimal.Decimal `json:"volume"`
	Timestamp numeric.Epoch   `json:"timestamp"`
}

// BookLevel is one aggregated order book entry.
type BookLevel struct {
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp numeric.Epoch   `json:"timestamp"`
}

// OrderBook is the public book for a symbol.
type OrderBook struct {
	Bids []BookLevel `json:"bids"`
	Asks []BookLevel `json:"asks"`
}

// LendLevel is one entry of the funding book.
type LendLevel struct {
	Rate      decimal.Decimal `json:"rate"`
	Amount    decimal.Decimal `json:"amount"`
	Period    int             `json:"period"`
	Timestamp numeric.Epoch   `json:"timestamp"`
	FRR       string          `json:"frr"`
}

// LendBook is the public funding book for a currency.
type LendBook struct {
	Bids []LendLevel `json:"bids"`
	Asks []LendLevel `json:"asks"`
}

// PublicTrade is one row of the public trades feed.
type PublicTrade struct {
	TID       int64           `json:"tid"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	Exchange  string          `json:"exchange"`
	Type      string          `json:"type"`
	Timestamp numeric.Epoch   `json:"timestamp"`
}

// Lend is a snapshot of the lending totals for a currency.
type Lend struct {
	Rate       decimal.Decimal `json:"rate"`
	AmountLent decimal.Decimal `json:"amount_lent"`
	AmountUsed decimal.Decimal `json:"amount_used"`
	Timestamp  numeric.Epoch   `json:"timestamp"`
}
