// Package transport issues the HTTP round trips behind the client.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/freshpay/bitfinex/errs"
	"github.com/freshpay/bitfinex/internal/observability"
	"github.com/freshpay/bitfinex/internal/signer"
	"github.com/freshpay/bitfinex/internal/telemetry"
)

// DefaultBaseURL is the production REST host.
const DefaultBaseURL = "https://api.bitfinex.com"

const maxBodyBytes = 8 << 20

var errServerStatus = errors.New("server error status")

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports a 200 status.
func (r Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Snippet returns a trimmed prefix of the body for error messages.
func (r Response) Snippet() string {
	body := r.Body
	if len(body) > 4<<10 {
		body = body[:4<<10]
	}
	return strings.TrimSpace(string(body))
}

// Transport performs GET and POST requests against API paths.
type Transport interface {
	Get(ctx context.Context, path string, headers map[string]string) (Response, error)
	Post(ctx context.Context, path string, headers map[string]string) (Response, error)
}

// Option configures the HTTP transport.
type Option func(*HTTP)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(h *HTTP) {
		if client != nil {
			h.client = client
		}
	}
}

// WithTimeout sets the per-request timeout on the default client.
func WithTimeout(timeout time.Duration) Option {
	return func(h *HTTP) {
		if timeout > 0 {
			h.client.Timeout = timeout
		}
	}
}

// WithRateLimit throttles requests to perSecond with the given burst. Zero disables throttling.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(h *HTTP) {
		if perSecond <= 0 {
			h.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithRetries sets how many extra attempts an unsigned GET gets.
func WithRetries(retries int) Option {
	return func(h *HTTP) {
		if retries >= 0 {
			h.retries = retries
		}
	}
}

// WithRetryInterval sets the initial backoff between GET retries.
func WithRetryInterval(d time.Duration) Option {
	return func(h *HTTP) {
		if d > 0 {
			h.retryInterval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(h *HTTP) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithInstruments sets the metric instruments.
func WithInstruments(inst *telemetry.Instruments) Option {
	return func(h *HTTP) {
		h.metrics = inst
	}
}

// HTTP is the net/http backed Transport.
type HTTP struct {
	baseURL       string
	client        *http.Client
	limiter       *rate.Limiter
	retries       int
	retryInterval time.Duration
	logger        observability.Logger
	metrics       *telemetry.Instruments
}

// NewHTTP constructs a transport rooted at baseURL.
func NewHTTP(baseURL string, opts ...Option) *HTTP {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	h := &HTTP{
		baseURL:       baseURL,
		client:        &http.Client{Timeout: 10 * time.Second},
		retries:       3,
		retryInterval: 200 * time.Millisecond,
		logger:        observability.Log(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Get issues a GET. Requests without an API key header are retried on network errors and 5xx responses.
func (h *HTTP) Get(ctx context.Context, path string, headers map[string]string) (Response, error) {
	if _, signed := headers[signer.HeaderAPIKey]; signed || h.retries == 0 {
		return h.do(ctx, http.MethodGet, path, headers)
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = h.retryInterval
	attempt := 0
	var last Response
	resp, err := backoff.Retry(ctx, func() (Response, error) {
		attempt++
		if attempt > 1 {
			h.metrics.RecordRetry(ctx, path)
		}
		resp, err := h.do(ctx, http.MethodGet, path, headers)
		if err != nil {
			if errors.Is(err, errs.ErrRateLimited) {
				return resp, backoff.Permanent(err)
			}
			return resp, err
		}
		last = resp
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, nil
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(h.retries+1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			h.logger.Warn("retrying public request",
				observability.F("path", path),
				observability.F("wait", wait.String()),
				observability.F("error", err))
		}),
	)
	if errors.Is(err, errServerStatus) {
		// retries exhausted on 5xx: hand the response back for classification
		return last, nil
	}
	return resp, err
}

// Post issues a POST. It is never retried.
func (h *HTTP) Post(ctx context.Context, path string, headers map[string]string) (Response, error) {
	return h.do(ctx, http.MethodPost, path, headers)
}

func (h *HTTP) do(ctx context.Context, method, path string, headers map[string]string) (Response, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return Response{}, errs.New(errs.CodeRateLimited, errs.WithEndpoint(path), errs.WithCause(err))
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, nil)
	if err != nil {
		return Response{}, errs.Transport(path, fmt.Errorf("create request: %w", err))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		h.metrics.RecordRequest(ctx, method, path, 0, err, time.Since(start))
		h.logger.Debug("request failed",
			observability.F("method", method),
			observability.F("path", path),
			observability.F("request_id", observability.RequestID(ctx)),
			observability.F("error", err))
		return Response{}, errs.Transport(path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	elapsed := time.Since(start)
	h.metrics.RecordRequest(ctx, method, path, resp.StatusCode, err, elapsed)
	if err != nil {
		return Response{}, errs.Transport(path, fmt.Errorf("read body: %w", err))
	}
	h.logger.Debug("request complete",
		observability.F("method", method),
		observability.F("path", path),
		observability.F("status", resp.StatusCode),
		observability.F("elapsed_ms", elapsed.Milliseconds()),
		observability.F("request_id", observability.RequestID(ctx)))
	return Response{StatusCode: resp.StatusCode, Body: body}, nil
}
