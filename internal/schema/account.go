package schema

import (
	"github.com/shopspring/decimal"

	"github.com/freshpay/bitfinex/internal/numeric"
)

// Trade is one row of the account's trade history.
type Trade struct {
	TID         int64           `json:"tid"`
	OrderID     int64           `json:"order_id"`
	Price       decimal.Decimal `json:"price"`
	Amount      decimal.Decimal `json:"amount"`
	Timestamp   numeric.Epoch   `json:"timestamp"`
	Exchange    string          `json:"exchange"`
	Type        string          `json:"type"`
	FeeCurrency string          `json:"fee_currency"`
	FeeAmount   decimal.Decimal `json:"fee_amount"`
	// Time is Timestamp rendered with numeric.HistoryTimeLayout in local time.
	Time string `json:"-"`
}

// Position is an open margin position.
type Position struct {
	ID        int64           `json:"id"`
	Symbol    string          `json:"symbol"`
	Status    string          `json:"status"`
	Base      decimal.Decimal `json:"base"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp numeric.Epoch   `json:"timestamp"`
	Swap      decimal.Decimal `json:"swap"`
	PL        decimal.Decimal `json:"pl"`
}

// Balance is one wallet balance.
type Balance struct {
	Type      string          `json:"type"`
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
	Available decimal.Decimal `json:"available"`
}

// Offer is an active funding offer.
type Offer struct {
	ID              int64           `json:"id"`
	Currency        string          `json:"currency"`
	Rate            decimal.Decimal `json:"rate"`
	Period          int             `json:"period"`
	Direction       string          `json:"direction"`
	Timestamp       numeric.Epoch   `json:"timestamp"`
	IsLive          bool            `json:"is_live"`
	IsCancelled     bool            `json:"is_cancelled"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	ExecutedAmount  decimal.Decimal `json:"executed_amount"`
}

// Credit is funding currently lent out.
type Credit struct {
	ID        int64           `json:"id"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	Rate      decimal.Decimal `json:"rate"`
	Period    int             `json:"period"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp numeric.Epoch   `json:"timestamp"`
}
