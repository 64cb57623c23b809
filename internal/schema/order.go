// Package schema defines the typed records decoded from Bitfinex v1 responses.
package schema

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/freshpay/bitfinex/internal/numeric"
)

// Side is the buy/sell direction of an order.
type Side string

const (
	// SideBuy marks a bid.
	SideBuy Side = "buy"
	// SideSell marks an ask.
	SideSell Side = "sell"
)

// Valid reports whether the side is buy or sell.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// OrderType enumerates the v1 order types. The "exchange" variants trade the
// exchange wallet; the bare ones trade margin.
type OrderType string

const (
	OrderTypeMarket               OrderType = "market"
	OrderTypeLimit                OrderType = "limit"
	OrderTypeStop                 OrderType = "stop"
	OrderTypeTrailingStop         OrderType = "trailing-stop"
	OrderTypeFillOrKill           OrderType = "fill-or-kill"
	OrderTypeExchangeMarket       OrderType = "exchange market"
	OrderTypeExchangeLimit        OrderType = "exchange limit"
	OrderTypeExchangeStop         OrderType = "exchange stop"
	OrderTypeExchangeTrailingStop OrderType = "exchange trailing-stop"
	OrderTypeExchangeFillOrKill   OrderType = "exchange fill-or-kill"
)

// Valid reports whether the order type is recognised.
func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeMarket, OrderTypeLimit, OrderTypeStop, OrderTypeTrailingStop, OrderTypeFillOrKill,
		OrderTypeExchangeMarket, OrderTypeExchangeLimit, OrderTypeExchangeStop,
		OrderTypeExchangeTrailingStop, OrderTypeExchangeFillOrKill:
		return true
	default:
		return false
	}
}

// IsMarket reports whether the type executes without a limit price.
func (t OrderType) IsMarket() bool {
	return t == OrderTypeMarket || t == OrderTypeExchangeMarket
}

// Routing venues accepted by the v1 order endpoint.
const (
	VenueAll      = "all"
	VenueBitfinex = "bitfinex"
	VenueBitstamp = "bitstamp"
)

// OrderRequest is an order submission. A negative Amount is shorthand the
// caller may use; Side is authoritative and the wire amount is always absolute.
type OrderRequest struct {
	Symbol string
	Amount decimal.Decimal
	// Price nil submits a market order.
	Price  *decimal.Decimal
	Side   Side
	Type   OrderType
	Venue  string
	Hidden bool
}

// Order is the exchange's view of an order, as returned by order/new and order/status.
type Order struct {
	ID                int64               `json:"id"`
	OrderID           int64               `json:"order_id,omitempty"`
	Symbol            string              `json:"symbol"`
	Venue             string              `json:"exchange"`
	Price             decimal.NullDecimal `json:"price"`
	AvgExecutionPrice decimal.Decimal     `json:"avg_execution_price"`
	Side              Side                `json:"side"`
	Type              OrderType           `json:"type"`
	Timestamp         numeric.Epoch       `json:"timestamp"`
	IsLive            bool                `json:"is_live"`
	IsCancelled       bool                `json:"is_cancelled"`
	IsHidden          bool                `json:"is_hidden"`
	WasForced         bool                `json:"was_forced"`
	OriginalAmount    decimal.Decimal     `json:"original_amount"`
	RemainingAmount   decimal.Decimal     `json:"remaining_amount"`
	ExecutedAmount    decimal.Decimal     `json:"executed_amount"`
}

// Normalize reconciles the two id fields the API uses and lower-cases
// enumerations. An order carrying no price is reported as a market order.
func (o *Order) Normalize() {
	if o.ID == 0 {
		o.ID = o.OrderID
	}
	if o.OrderID == 0 {
		o.OrderID = o.ID
	}
	o.Side = Side(strings.ToLower(strings.TrimSpace(string(o.Side))))
	o.Venue = strings.ToLower(strings.TrimSpace(o.Venue))
	if !o.Price.Valid {
		o.Type = OrderTypeMarket
	}
}

// Cost is the executed notional value.
func (o Order) Cost() decimal.Decimal {
	return o.ExecutedAmount.Mul(o.AvgExecutionPrice)
}

// CancelResult reports the outcome of a cancel call. Single cancels echo the
// order; batch cancels return a textual result.
type CancelResult struct {
	Order  *Order
	Result string
}
