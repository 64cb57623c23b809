// Package tracker remembers the side of every order the client has seen.
//
// Status responses occasionally report the wrong side for an order, so the
// first side observed for an id is latched and wins over later reports.
package tracker

import (
	"context"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/freshpay/bitfinex/errs"
	"github.com/freshpay/bitfinex/internal/observability"
	"github.com/freshpay/bitfinex/internal/schema"
	"github.com/freshpay/bitfinex/internal/telemetry"
)

// DefaultCapacity bounds each side's map.
const DefaultCapacity = 10000

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger used for eviction and rejection messages.
func WithLogger(logger observability.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithInstruments records evictions on inst.
func WithInstruments(inst *telemetry.Instruments) Option {
	return func(t *Tracker) {
		t.metrics = inst
	}
}

// Tracker holds two disjoint id→order maps, one per side.
type Tracker struct {
	mu      sync.Mutex
	buy     *lru.Cache[int64, schema.Order]
	sell    *lru.Cache[int64, schema.Order]
	logger  observability.Logger
	metrics *telemetry.Instruments
}

// New builds a tracker holding at most capacity orders per side. Non-positive capacity uses DefaultCapacity.
func New(capacity int, opts ...Option) *Tracker {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	t := &Tracker{logger: observability.Log()}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	// NewWithEvict only fails for a non-positive size.
	t.buy, _ = lru.NewWithEvict(capacity, t.onEvict(schema.SideBuy))
	t.sell, _ = lru.NewWithEvict(capacity, t.onEvict(schema.SideSell))
	return t
}

func (t *Tracker) onEvict(side schema.Side) func(int64, schema.Order) {
	return func(id int64, _ schema.Order) {
		t.logger.Warn("order evicted from tracker",
			observability.F("order_id", id),
			observability.F("side", string(side)))
		t.metrics.RecordEviction(context.Background(), string(side))
	}
}

func (t *Tracker) mapFor(side schema.Side) *lru.Cache[int64, schema.Order] {
	if side == schema.SideSell {
		return t.sell
	}
	return t.buy
}

// sideLocked returns the latched side of id. Caller holds mu.
func (t *Tracker) sideLocked(id int64) (schema.Side, bool) {
	if t.buy.Contains(id) {
		return schema.SideBuy, true
	}
	if t.sell.Contains(id) {
		return schema.SideSell, true
	}
	return "", false
}

// Register records a freshly submitted order. The maps are left unchanged on error.
func (t *Tracker) Register(order schema.Order) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, tracked := t.sideLocked(order.ID); tracked {
		err := errs.New(errs.CodeDuplicate,
			errs.WithOrderID(order.ID),
			errs.WithMessage("order "+strconv.FormatInt(order.ID, 10)+" already tracked"))
		t.logger.Error("duplicate order id", observability.F("order_id", order.ID), observability.F("error", err))
		return err
	}
	if !order.Side.Valid() {
		err := errs.New(errs.CodeInvalidSide,
			errs.WithOrderID(order.ID),
			errs.WithMessage("invalid side "+strconv.Quote(string(order.Side))))
		t.logger.Error("order has invalid side", observability.F("order_id", order.ID), observability.F("side", string(order.Side)))
		return err
	}
	t.mapFor(order.Side).Add(order.ID, order)
	return nil
}

// Reconcile applies a status report. A tracked id has its side forced to the
// latched one and its stored record refreshed. An untracked id with a buy or
// sell side is adopted. Any other report is returned untouched.
func (t *Tracker) Reconcile(order schema.Order) schema.Order {
	t.mu.Lock()
	defer t.mu.Unlock()

	side, tracked := t.sideLocked(order.ID)
	switch {
	case tracked:
		if order.Side != side {
			t.logger.Warn("status side disagrees with latched side",
				observability.F("order_id", order.ID),
				observability.F("reported", string(order.Side)),
				observability.F("latched", string(side)))
		}
		order.Side = side
	case order.Side.Valid():
		side = order.Side
	default:
		return order
	}
	t.mapFor(side).Add(order.ID, order)
	return order
}

// Side returns the latched side of id.
func (t *Tracker) Side(id int64) (schema.Side, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sideLocked(id)
}

// Lookup returns the last known record for id without touching recency.
func (t *Tracker) Lookup(id int64) (schema.Order, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if o, ok := t.buy.Peek(id); ok {
		return o, true
	}
	return t.sell.Peek(id)
}

// Len returns the number of tracked buy and sell orders.
func (t *Tracker) Len() (buys, sells int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buy.Len(), t.sell.Len()
}
