package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/freshpay/bitfinex/errs"
	"github.com/freshpay/bitfinex/internal/signer"
)

func TestGetForwardsHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/ticker/btcusd", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"mid":"1.0"}`))
	}))
	defer srv.Close()

	tr := NewHTTP(srv.URL, WithRateLimit(0, 0))
	resp, err := tr.Get(context.Background(), "/v1/ticker/btcusd", map[string]string{"Accept": "application/json"})
	require.NoError(t, err)
	require.True(t, resp.OK())
	require.JSONEq(t, `{"mid":"1.0"}`, string(resp.Body))
}

func TestPublicGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`["btcusd"]`))
	}))
	defer srv.Close()

	tr := NewHTTP(srv.URL, WithRetries(3), WithRetryInterval(time.Millisecond), WithRateLimit(0, 0))
	resp, err := tr.Get(context.Background(), "/v1/symbols", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 3, calls.Load())
}

func TestPublicGetReturnsLastServerErrorAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"maintenance"}`))
	}))
	defer srv.Close()

	tr := NewHTTP(srv.URL, WithRetries(1), WithRetryInterval(time.Millisecond), WithRateLimit(0, 0))
	resp, err := tr.Get(context.Background(), "/v1/symbols", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.Equal(t, `{"message":"maintenance"}`, resp.Snippet())
	require.EqualValues(t, 2, calls.Load())
}

func TestSignedRequestsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "key", r.Header.Get(signer.HeaderAPIKey))
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr := NewHTTP(srv.URL, WithRetries(3), WithRetryInterval(time.Millisecond), WithRateLimit(0, 0))
	headers := map[string]string{signer.HeaderAPIKey: "key"}

	resp, err := tr.Post(context.Background(), "/v1/order/new", headers)
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	_, err = tr.Get(context.Background(), "/v1/orders", headers)
	require.NoError(t, err)
	require.EqualValues(t, 2, calls.Load())
}

func TestNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	tr := NewHTTP(url, WithRetries(0), WithRateLimit(0, 0))
	_, err := tr.Post(context.Background(), "/v1/balances", nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ErrTransport))
}

func TestLimiterHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := NewHTTP(srv.URL, WithRateLimit(0.001, 1), WithRetries(0))
	_, err := tr.Get(context.Background(), "/v1/symbols", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = tr.Get(ctx, "/v1/symbols", nil)
	require.ErrorIs(t, err, errs.ErrRateLimited)
}

func TestNewHTTPDefaultsBaseURL(t *testing.T) {
	tr := NewHTTP("  ")
	require.Equal(t, DefaultBaseURL, tr.baseURL)
	tr = NewHTTP("http://localhost:9999/")
	require.Equal(t, "http://localhost:9999", tr.baseURL)
}
