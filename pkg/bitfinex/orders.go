package bitfinex

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/freshpay/bitfinex/errs"
	"github.com/freshpay/bitfinex/internal/numeric"
	"github.com/freshpay/bitfinex/internal/observability"
	"github.com/freshpay/bitfinex/internal/schema"
)

const (
	pathOrderNew    = "/v1/order/new"
	pathOrderCancel = "/v1/order/cancel"
	pathCancelMulti = "/v1/order/cancel/multi"
	pathOrderStatus = "/v1/order/status"
)

// orderFields builds the order/new body. A missing price submits a market order
// and the price is only sent for non-market types.
func orderFields(req OrderRequest) map[string]any {
	orderType := req.Type
	if orderType == "" {
		orderType = schema.OrderTypeLimit
	}
	venue := strings.ToLower(strings.TrimSpace(req.Venue))
	if venue == "" {
		venue = schema.VenueAll
	}
	fields := map[string]any{
		"symbol":   normalizeSymbol(req.Symbol),
		"amount":   numeric.Wire(req.Amount),
		"exchange": venue,
		"side":     string(req.Side),
	}
	switch {
	case req.Price == nil:
		orderType = schema.OrderTypeMarket
	case !orderType.IsMarket():
		fields["price"] = req.Price.String()
	}
	fields["type"] = string(orderType)
	if req.Hidden {
		fields["is_hidden"] = true
	}
	return fields
}

// SubmitOrder places an order and starts tracking its side.
func (c *Client) SubmitOrder(ctx context.Context, req OrderRequest) (Order, error) {
	if !c.creds.Valid() {
		return Order{}, errs.Unauthenticated(pathOrderNew)
	}
	if !req.Side.Valid() {
		return Order{}, errs.New(errs.CodeInvalidSide,
			errs.WithEndpoint(pathOrderNew),
			errs.WithMessage("invalid side "+strconv.Quote(string(req.Side))))
	}
	if req.Type != "" && !req.Type.Valid() {
		return Order{}, errs.New(errs.CodeInvalid,
			errs.WithEndpoint(pathOrderNew),
			errs.WithMessage("unknown order type "+strconv.Quote(string(req.Type))))
	}
	if req.Amount.IsNegative() {
		c.logger.Warn("negative order amount, submitting absolute value",
			observability.F("amount", req.Amount.String()),
			observability.F("side", string(req.Side)))
	}

	resp, err := c.postSigned(ctx, pathOrderNew, orderFields(req))
	if err != nil {
		return Order{}, err
	}
	if msg := schema.ErrorMessage(resp.Body); !resp.OK() || msg != "" {
		rejected := errs.Rejected(resp.StatusCode, msg)
		c.logger.Error("order rejected", observability.F("error", rejected))
		return Order{}, rejected
	}
	order, err := schema.Decode[Order](pathOrderNew, resp.Body)
	if err != nil {
		return Order{}, err
	}
	order.Normalize()
	if err := c.tracker.Register(order); err != nil {
		return order, err
	}
	c.logger.Info("order submitted",
		observability.F("order_id", order.ID),
		observability.F("side", string(order.Side)),
		observability.F("type", string(order.Type)),
		observability.F("venue", order.Venue))
	return order, nil
}

func (c *Client) place(ctx context.Context, side Side, venue, symbol string, amount decimal.Decimal, price *decimal.Decimal) (Order, error) {
	return c.SubmitOrder(ctx, OrderRequest{
		Symbol: symbol,
		Amount: amount,
		Price:  price,
		Side:   side,
		Type:   schema.OrderTypeLimit,
		Venue:  venue,
	})
}

// Buy places a limit buy routed to all venues. A nil price buys at market.
func (c *Client) Buy(ctx context.Context, symbol string, amount decimal.Decimal, price *decimal.Decimal) (Order, error) {
	return c.place(ctx, schema.SideBuy, schema.VenueAll, symbol, amount, price)
}

// Sell places a limit sell routed to all venues. A nil price sells at market.
func (c *Client) Sell(ctx context.Context, symbol string, amount decimal.Decimal, price *decimal.Decimal) (Order, error) {
	return c.place(ctx, schema.SideSell, schema.VenueAll, symbol, amount, price)
}

// BuyBitfinex routes a buy to the bitfinex venue.
func (c *Client) BuyBitfinex(ctx context.Context, symbol string, amount decimal.Decimal, price *decimal.Decimal) (Order, error) {
	return c.place(ctx, schema.SideBuy, schema.VenueBitfinex, symbol, amount, price)
}

// SellBitfinex routes a sell to the bitfinex venue.
func (c *Client) SellBitfinex(ctx context.Context, symbol string, amount decimal.Decimal, price *decimal.Decimal) (Order, error) {
	return c.place(ctx, schema.SideSell, schema.VenueBitfinex, symbol, amount, price)
}

// BuyBitstamp routes a buy to the bitstamp venue.
func (c *Client) BuyBitstamp(ctx context.Context, symbol string, amount decimal.Decimal, price *decimal.Decimal) (Order, error) {
	return c.place(ctx, schema.SideBuy, schema.VenueBitstamp, symbol, amount, price)
}

// SellBitstamp routes a sell to the bitstamp venue.
func (c *Client) SellBitstamp(ctx context.Context, symbol string, amount decimal.Decimal, price *decimal.Decimal) (Order, error) {
	return c.place(ctx, schema.SideSell, schema.VenueBitstamp, symbol, amount, price)
}

// Cancel cancels the given orders. No ids is a successful no-op; one id uses
// the single cancel endpoint and several use the batch endpoint. Tracked
// orders stay tracked so their final status can still be queried.
func (c *Client) Cancel(ctx context.Context, ids []int64) (CancelResult, error) {
	if !c.creds.Valid() {
		return CancelResult{}, errs.Unauthenticated(pathOrderCancel)
	}
	switch len(ids) {
	case 0:
		return CancelResult{}, nil
	case 1:
		order, err := signed[Order](ctx, c, pathOrderCancel, map[string]any{"order_id": ids[0]})
		if err != nil {
			return CancelResult{}, err
		}
		order.Normalize()
		return CancelResult{Order: &order}, nil
	}
	joined := make([]string, len(ids))
	for i, id := range ids {
		joined[i] = strconv.FormatInt(id, 10)
	}
	res, err := signed[struct {
		Result string `json:"result"`
	}](ctx, c, pathCancelMulti, map[string]any{"order_ids": strings.Join(joined, ",")})
	if err != nil {
		return CancelResult{}, err
	}
	return CancelResult{Result: res.Result}, nil
}

// Status queries an order. The returned side is the one latched when the
// client first saw the order, which may differ from the exchange's report.
func (c *Client) Status(ctx context.Context, id int64) (Order, error) {
	order, err := signed[Order](ctx, c, pathOrderStatus, map[string]any{"order_id": id})
	if err != nil {
		return Order{}, err
	}
	if order.ID == 0 && order.OrderID == 0 {
		order.ID = id
	}
	order.Normalize()
	return c.tracker.Reconcile(order), nil
}
