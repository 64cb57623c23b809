package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SummaryLine is the per-order contribution to a Summary.
type SummaryLine struct {
	OrderID int64
	Side    Side
	Venue   string
	Cost    decimal.Decimal
	Fee     decimal.Decimal
}

// Summary aggregates executed volume, cost and fees across a set of orders.
// Averages and net figures are only valid when the relevant sides executed.
type Summary struct {
	Lines        []SummaryLine
	Bought       decimal.Decimal
	BoughtCost   decimal.Decimal
	Sold         decimal.Decimal
	SoldCost     decimal.Decimal
	PendingBuy   decimal.Decimal
	PendingSell  decimal.Decimal
	AvgBuyPrice  decimal.NullDecimal
	AvgSellPrice decimal.NullDecimal
	Bid          decimal.Decimal
	Ask          decimal.Decimal
	Fees         decimal.Decimal
	// Net is sold cost minus bought cost minus fees.
	Net decimal.NullDecimal
	// NetAmount is bought minus sold volume still held.
	NetAmount decimal.NullDecimal
}

func usd(d decimal.Decimal) string {
	return fmt.Sprintf("%8s", d.StringFixed(2))
}

func qty(d decimal.Decimal) string {
	return fmt.Sprintf("%10s", d.StringFixed(6))
}

func avg(d decimal.NullDecimal) string {
	if !d.Valid {
		return "     n/a"
	}
	return usd(d.Decimal)
}

// String renders the console report printed by the command line driver.
func (s Summary) String() string {
	ids := make([]string, 0, len(s.Lines))
	for _, line := range s.Lines {
		ids = append(ids, strconv.FormatInt(line.OrderID, 10))
	}
	out := []string{
		fmt.Sprintf("summary for %d order(s)", len(s.Lines)),
		"(" + strings.Join(ids, ", ") + ")",
	}
	for _, line := range s.Lines {
		out = append(out,
			fmt.Sprintf("Order %d (%s via %s):", line.OrderID, line.Side, line.Venue),
			"    cost: "+usd(line.Cost),
			"    fee:  "+usd(line.Fee),
		)
	}
	if s.Bought.IsPositive() {
		out = append(out, fmt.Sprintf("  Total %s bought for ~$%s", qty(s.Bought), usd(s.BoughtCost)))
	}
	if s.Sold.IsPositive() {
		out = append(out, fmt.Sprintf("  Total %s  sold for ~$%s", qty(s.Sold), usd(s.SoldCost)))
	}
	out = append(out,
		fmt.Sprintf("  Pending: %s buy @ %s avg", s.PendingBuy.String(), avg(s.AvgBuyPrice)),
		fmt.Sprintf("           %s sell @ %s avg", s.PendingSell.String(), avg(s.AvgSellPrice)),
		fmt.Sprintf("  Current: %s bid %s ask", s.Bid.String(), s.Ask.String()),
	)
	if s.Fees.IsPositive() {
		out = append(out, "  Total fees: "+s.Fees.StringFixed(2))
	}
	if s.Net.Valid {
		out = append(out, fmt.Sprintf("  Net %s (%s remaining)", s.Net.Decimal.String(), s.NetAmount.Decimal.String()))
	}
	return strings.Join(out, "\n")
}
