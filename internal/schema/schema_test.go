package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/freshpay/bitfinex/errs"
)

const statusBody = `{
	"id": 448411153, "symbol": "btcusd", "exchange": "Bitfinex",
	"price": "0.01", "avg_execution_price": "0.0", "side": "Buy",
	"type": "exchange limit", "timestamp": "1444276570.0",
	"is_live": false, "is_cancelled": true, "is_hidden": false, "was_forced": false,
	"original_amount": "0.01", "remaining_amount": "0.01", "executed_amount": "0.0"
}`

func TestDecodeOrderStatus(t *testing.T) {
	order, err := Decode[Order]("/v1/order/status", []byte(statusBody))
	require.NoError(t, err)
	order.Normalize()

	require.Equal(t, int64(448411153), order.ID)
	require.Equal(t, order.ID, order.OrderID)
	require.Equal(t, SideBuy, order.Side)
	require.Equal(t, VenueBitfinex, order.Venue)
	require.Equal(t, OrderTypeExchangeLimit, order.Type)
	require.True(t, order.Price.Valid)
	require.True(t, order.RemainingAmount.Equal(decimal.RequireFromString("0.01")))
	require.Equal(t, int64(1444276570), order.Timestamp.Unix())
	require.True(t, order.IsCancelled)
}

func TestNormalizeForcesMarketWithoutPrice(t *testing.T) {
	body := `{"order_id": 7, "symbol": "btcusd", "side": "sell", "type": "limit", "timestamp": 1444276570}`
	order, err := Decode[Order]("/v1/order/new", []byte(body))
	require.NoError(t, err)
	order.Normalize()
	require.Equal(t, int64(7), order.ID)
	require.Equal(t, OrderTypeMarket, order.Type)
}

func TestDecodeMalformedNumberIsDecodeError(t *testing.T) {
	_, err := Decode[Order]("/v1/order/status", []byte(`{"id": 1, "executed_amount": "lots"}`))
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ErrDecode))
}

func TestErrorMessage(t *testing.T) {
	require.Equal(t, "Invalid order: not enough balance", ErrorMessage([]byte(`{"message":"Invalid order: not enough balance"}`)))
	require.Equal(t, "", ErrorMessage([]byte(`[1,2]`)))
	require.Equal(t, "", ErrorMessage([]byte(`{"id":1}`)))
}

func TestSideAndTypeValidity(t *testing.T) {
	require.True(t, SideBuy.Valid())
	require.False(t, Side("short").Valid())
	require.True(t, OrderTypeExchangeTrailingStop.Valid())
	require.False(t, OrderType("iceberg").Valid())
	require.True(t, OrderTypeExchangeMarket.IsMarket())
}

func TestSummaryStringOmitsUndefinedAverages(t *testing.T) {
	s := Summary{
		Lines:       []SummaryLine{{OrderID: 1, Side: SideBuy, Venue: VenueBitfinex, Cost: decimal.NewFromInt(100), Fee: decimal.RequireFromString("0.15")}},
		Bought:      decimal.NewFromInt(1),
		BoughtCost:  decimal.NewFromInt(100),
		AvgBuyPrice: decimal.NullDecimal{Decimal: decimal.NewFromInt(100), Valid: true},
		Fees:        decimal.RequireFromString("0.15"),
	}
	out := s.String()
	require.Contains(t, out, "summary for 1 order(s)")
	require.Contains(t, out, "Total   1.000000 bought for ~$  100.00")
	require.Contains(t, out, "sell @      n/a avg")
	require.Contains(t, out, "Total fees: 0.15")
	require.False(t, strings.Contains(out, "Net "))
}
