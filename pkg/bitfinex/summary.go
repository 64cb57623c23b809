package bitfinex

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/freshpay/bitfinex/internal/observability"
	"github.com/freshpay/bitfinex/internal/schema"
)

// FeeRate returns the configured fee rate for a routing venue, zero when unknown.
func (c *Client) FeeRate(venue string) decimal.Decimal {
	return c.fees[venue]
}

// SummarizeOrders fetches the status of every id and aggregates executed
// volume, cost, fees and pending remainders per side. Average prices are
// left unset for a side with no executed volume; net figures need both sides.
func (c *Client) SummarizeOrders(ctx context.Context, ids []int64) (Summary, error) {
	var sum Summary
	symbol := ""
	for _, id := range ids {
		order, err := c.Status(ctx, id)
		if err != nil {
			return Summary{}, fmt.Errorf("summarize order %d: %w", id, err)
		}
		if symbol == "" {
			symbol = order.Symbol
		}
		cost := order.Cost()
		fee := cost.Mul(c.FeeRate(order.Venue))
		sum.Fees = sum.Fees.Add(fee)
		sum.Lines = append(sum.Lines, schema.SummaryLine{
			OrderID: order.ID,
			Side:    order.Side,
			Venue:   order.Venue,
			Cost:    cost,
			Fee:     fee,
		})

		switch order.Side {
		case schema.SideBuy:
			sum.PendingBuy = sum.PendingBuy.Add(order.RemainingAmount)
			sum.Bought = sum.Bought.Add(order.ExecutedAmount)
			sum.BoughtCost = sum.BoughtCost.Add(cost)
		case schema.SideSell:
			sum.PendingSell = sum.PendingSell.Add(order.RemainingAmount)
			sum.Sold = sum.Sold.Add(order.ExecutedAmount)
			sum.SoldCost = sum.SoldCost.Add(cost)
		default:
			c.logger.Error("order has invalid side, excluded from totals",
				observability.F("order_id", order.ID),
				observability.F("side", string(order.Side)))
		}
	}

	if sum.Bought.IsPositive() {
		sum.AvgBuyPrice = decimal.NewNullDecimal(sum.BoughtCost.Div(sum.Bought))
	}
	if sum.Sold.IsPositive() {
		sum.AvgSellPrice = decimal.NewNullDecimal(sum.SoldCost.Div(sum.Sold))
	}
	if sum.Bought.IsPositive() && sum.Sold.IsPositive() {
		sum.Net = decimal.NewNullDecimal(sum.SoldCost.Sub(sum.BoughtCost).Sub(sum.Fees))
		sum.NetAmount = decimal.NewNullDecimal(sum.Bought.Sub(sum.Sold))
	}

	ticker, err := c.Ticker(ctx, symbol)
	if err != nil {
		c.logger.Warn("summary without current prices", observability.F("error", err))
	} else {
		sum.Bid = ticker.Bid
		sum.Ask = ticker.Ask
	}
	return sum, nil
}
