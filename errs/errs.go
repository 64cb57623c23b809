// Package errs provides structured error types and helpers for the Bitfinex client.
package errs

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// Exchange is the venue name stamped on every envelope produced by this module.
const Exchange = "bitfinex"

// Code identifies an error category.
type Code string

const (
	// CodeAuth indicates that credentials are missing for an authenticated call.
	CodeAuth Code = "auth"
	// CodeNetwork indicates a transport failure before a response was read.
	CodeNetwork Code = "network"
	// CodeRejected indicates the exchange refused an order submission.
	CodeRejected Code = "order_rejected"
	// CodeDuplicate indicates an order id that is already tracked.
	CodeDuplicate Code = "duplicate_order"
	// CodeInvalidSide indicates an order side other than buy or sell.
	CodeInvalidSide Code = "invalid_side"
	// CodeDecode indicates a response body that could not be interpreted.
	CodeDecode Code = "decode"
	// CodeExchange indicates a non-success status on a non-order call.
	CodeExchange Code = "exchange_error"
	// CodeRateLimited indicates the local limiter refused to admit the request.
	CodeRateLimited Code = "rate_limited"
	// CodeInvalid indicates invalid input provided by the caller.
	CodeInvalid Code = "invalid_request"
)

// Sentinels for errors.Is matching. Any envelope with the same Code matches.
var (
	ErrUnauthenticated = &E{Exchange: Exchange, Code: CodeAuth}
	ErrTransport       = &E{Exchange: Exchange, Code: CodeNetwork}
	ErrOrderRejected   = &E{Exchange: Exchange, Code: CodeRejected}
	ErrDuplicateOrder  = &E{Exchange: Exchange, Code: CodeDuplicate}
	ErrInvalidSide     = &E{Exchange: Exchange, Code: CodeInvalidSide}
	ErrDecode          = &E{Exchange: Exchange, Code: CodeDecode}
	ErrExchange        = &E{Exchange: Exchange, Code: CodeExchange}
	ErrRateLimited     = &E{Exchange: Exchange, Code: CodeRateLimited}
	ErrInvalid         = &E{Exchange: Exchange, Code: CodeInvalid}
)

// E captures structured error information produced across the client.
type E struct {
	Exchange string
	Code     Code
	HTTP     int
	Endpoint string
	OrderID  int64
	Message  string
	Metadata map[string]string

	cause error
}

// Option configures an error envelope.
type Option func(*E)

// New constructs an error envelope for the given code.
func New(code Code, opts ...Option) *E {
	e := &E{
		Exchange: Exchange,
		Code:     code,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithMessage attaches a human-readable message to the error.
func WithMessage(message string) Option {
	trimmed := strings.TrimSpace(message)
	return func(e *E) {
		e.Message = trimmed
	}
}

// WithHTTP records the associated HTTP status code.
func WithHTTP(status int) Option {
	return func(e *E) {
		e.HTTP = status
	}
}

// WithEndpoint records the API path involved.
func WithEndpoint(path string) Option {
	trimmed := strings.TrimSpace(path)
	return func(e *E) {
		e.Endpoint = trimmed
	}
}

// WithOrderID records the order the failure relates to.
func WithOrderID(id int64) Option {
	return func(e *E) {
		e.OrderID = id
	}
}

// WithCause sets the underlying cause error.
func WithCause(err error) Option {
	return func(e *E) {
		e.cause = err
	}
}

// WithField appends a single metadata key/value pair.
func WithField(key, value string) Option {
	return func(e *E) {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			return
		}
		if e.Metadata == nil {
			e.Metadata = make(map[string]string, 1)
		}
		e.Metadata[trimmedKey] = strings.TrimSpace(value)
	}
}

func (e *E) Error() string {
	if e == nil {
		return "<nil>"
	}
	var parts []string

	exchange := strings.TrimSpace(e.Exchange)
	if exchange == "" {
		exchange = "unknown"
	}
	parts = append(parts, "exchange="+exchange)

	code := strings.TrimSpace(string(e.Code))
	if code == "" {
		code = "unknown"
	}
	parts = append(parts, "code="+code)

	if e.HTTP > 0 {
		parts = append(parts, "http="+strconv.Itoa(e.HTTP))
	}
	if e.Endpoint != "" {
		parts = append(parts, "endpoint="+e.Endpoint)
	}
	if e.OrderID != 0 {
		parts = append(parts, "order_id="+strconv.FormatInt(e.OrderID, 10))
	}
	if e.Message != "" {
		parts = append(parts, "message="+strconv.Quote(e.Message))
	}
	if len(e.Metadata) > 0 {
		keys := make([]string, 0, len(e.Metadata))
		for k := range e.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+strconv.Quote(e.Metadata[k]))
		}
		parts = append(parts, "meta="+strings.Join(pairs, ","))
	}
	if e.cause != nil {
		parts = append(parts, "cause="+strconv.Quote(e.cause.Error()))
	}

	return strings.Join(parts, " ")
}

func (e *E) Unwrap() error { return e.cause }

// Is reports whether target is an envelope with the same code.
func (e *E) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*E)
	if !ok || t == nil {
		return false
	}
	return t.Code == e.Code
}

// CodeOf extracts the code of the first envelope in err's chain.
func CodeOf(err error) (Code, bool) {
	var e *E
	if errors.As(err, &e) && e != nil {
		return e.Code, true
	}
	return "", false
}

// Unauthenticated returns the error raised when credentials are missing.
func Unauthenticated(endpoint string) *E {
	return New(CodeAuth, WithEndpoint(endpoint), WithMessage("api key and secret required"))
}

// Transport wraps a network-level failure.
func Transport(endpoint string, cause error) *E {
	return New(CodeNetwork, WithEndpoint(endpoint), WithCause(cause))
}

// Rejected reports an order refused by the exchange. An empty reason falls back to the status.
func Rejected(status int, reason string) *E {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "server returned " + strconv.Itoa(status)
	}
	return New(CodeRejected, WithHTTP(status), WithEndpoint("/v1/order/new"), WithMessage(reason))
}

// Decode wraps a response body that could not be interpreted.
func Decode(endpoint string, cause error) *E {
	return New(CodeDecode, WithEndpoint(endpoint), WithCause(cause))
}
