// Package bitfinex is a client for the Bitfinex v1 REST API.
//
// Authenticated calls are signed with a strictly increasing nonce and are
// issued one at a time; the exchange rejects nonces that arrive out of order.
// Public market data may be fetched concurrently.
package bitfinex

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/freshpay/bitfinex/config"
	"github.com/freshpay/bitfinex/errs"
	"github.com/freshpay/bitfinex/internal/observability"
	"github.com/freshpay/bitfinex/internal/schema"
	"github.com/freshpay/bitfinex/internal/signer"
	"github.com/freshpay/bitfinex/internal/telemetry"
	"github.com/freshpay/bitfinex/internal/tickercache"
	"github.com/freshpay/bitfinex/internal/tracker"
	"github.com/freshpay/bitfinex/internal/transport"
)

// DefaultSymbol is used wherever a symbol is omitted.
const DefaultSymbol = "btcusd"

// Re-exported record types.
type (
	Order        = schema.Order
	OrderRequest = schema.OrderRequest
	Side         = schema.Side
	OrderType    = schema.OrderType
	CancelResult = schema.CancelResult
	Summary      = schema.Summary
	Ticker       = schema.Ticker
	Trade        = schema.Trade
	Position     = schema.Position
	Balance      = schema.Balance
	Offer        = schema.Offer
	Credit       = schema.Credit
	OrderBook    = schema.OrderBook
	LendBook     = schema.LendBook
	Lend         = schema.Lend
	PublicTrade  = schema.PublicTrade
)

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the HTTP transport.
func WithTransport(t transport.Transport) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithClock sets the clock used for nonces and the ticker cache.
func WithClock(clock func() time.Time) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithInstruments records client metrics on inst.
func WithInstruments(inst *telemetry.Instruments) Option {
	return func(c *Client) {
		c.metrics = inst
	}
}

// Client composes signing, transport, decoding and order tracking.
type Client struct {
	creds     config.Credentials
	signer    *signer.Signer
	transport transport.Transport
	tracker   *tracker.Tracker
	tickers   *tickercache.Cache
	fees      map[string]decimal.Decimal
	clock     func() time.Time
	logger    observability.Logger
	metrics   *telemetry.Instruments
}

// New builds a client from settings.
func New(settings config.Settings, opts ...Option) *Client {
	c := &Client{
		creds:  settings.Credentials,
		clock:  time.Now,
		logger: observability.Log(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.transport == nil {
		c.transport = transport.NewHTTP(settings.BaseURL,
			transport.WithTimeout(settings.HTTPTimeout),
			transport.WithRateLimit(settings.RateLimit, settings.RateBurst),
			transport.WithRetries(settings.PublicRetries),
			transport.WithLogger(c.logger),
			transport.WithInstruments(c.metrics),
		)
	}
	c.signer = signer.New(
		strings.TrimSpace(c.creds.APIKey),
		strings.TrimSpace(c.creds.APISecret),
		signer.NewNonceSource(c.clock),
	)
	c.tracker = tracker.New(settings.TrackerCapacity,
		tracker.WithLogger(c.logger),
		tracker.WithInstruments(c.metrics))
	c.tickers = tickercache.New(settings.TickerTTL,
		tickercache.WithClock(c.clock),
		tickercache.WithInstruments(c.metrics))
	c.fees = make(map[string]decimal.Decimal, len(settings.Fees))
	for venue, rate := range settings.Fees {
		c.fees[strings.ToLower(venue)] = decimal.NewFromFloat(rate)
	}
	return c
}

// Authenticated reports whether the client holds a key pair.
func (c *Client) Authenticated() bool {
	return c.creds.Valid()
}

// TrackedSide returns the side latched for an order id, if the client has seen it.
func (c *Client) TrackedSide(id int64) (Side, bool) {
	return c.tracker.Side(id)
}

// postSigned signs and POSTs path. Missing credentials fail before any network call.
func (c *Client) postSigned(ctx context.Context, path string, fields map[string]any) (transport.Response, error) {
	if !c.creds.Valid() {
		return transport.Response{}, errs.Unauthenticated(path)
	}
	headers, err := c.signer.Sign(path, fields)
	if err != nil {
		return transport.Response{}, errs.New(errs.CodeInvalid, errs.WithEndpoint(path), errs.WithCause(err))
	}
	return c.transport.Post(observability.EnsureRequestID(ctx), path, headers)
}

// exchangeError classifies a non-200 response from a non-order endpoint.
func exchangeError(path string, resp transport.Response) error {
	msg := schema.ErrorMessage(resp.Body)
	if msg == "" {
		msg = resp.Snippet()
	}
	return errs.New(errs.CodeExchange,
		errs.WithHTTP(resp.StatusCode),
		errs.WithEndpoint(path),
		errs.WithMessage(msg))
}

// signed POSTs path and decodes a 200 response into T.
func signed[T any](ctx context.Context, c *Client, path string, fields map[string]any) (T, error) {
	var zero T
	resp, err := c.postSigned(ctx, path, fields)
	if err != nil {
		return zero, err
	}
	if !resp.OK() {
		return zero, exchangeError(path, resp)
	}
	return schema.Decode[T](path, resp.Body)
}

// public GETs path and decodes a 200 response into T.
func public[T any](ctx context.Context, c *Client, path string) (T, error) {
	var zero T
	resp, err := c.transport.Get(ctx, path, map[string]string{"Accept": "application/json"})
	if err != nil {
		return zero, err
	}
	if !resp.OK() {
		return zero, exchangeError(path, resp)
	}
	return schema.Decode[T](path, resp.Body)
}

func normalizeSymbol(symbol string) string {
	symbol = strings.ToLower(strings.TrimSpace(symbol))
	if symbol == "" {
		return DefaultSymbol
	}
	return symbol
}
