package signer

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestNonceUsesHundredMicrosecondResolution(t *testing.T) {
	ts := time.Unix(1400000000, 123456789)
	n := NewNonceSource(fixedClock(ts)).Next()
	require.Equal(t, int64(14000000001234), n)
}

func TestNonceStrictlyIncreasingWithFrozenClock(t *testing.T) {
	src := NewNonceSource(fixedClock(time.Unix(1400000000, 0)))
	prev := src.Next()
	for i := 0; i < 100; i++ {
		next := src.Next()
		require.Greater(t, next, prev)
		prev = next
	}
}

func TestNonceSurvivesClockStepBackwards(t *testing.T) {
	now := time.Unix(1400000000, 0)
	src := NewNonceSource(func() time.Time { return now })
	first := src.Next()
	now = now.Add(-time.Hour)
	require.Greater(t, src.Next(), first)
}

func TestNonceUniqueUnderConcurrency(t *testing.T) {
	src := NewNonceSource(nil)
	const workers, per = 8, 250
	results := make(chan int64, workers*per)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				results <- src.Next()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]struct{}, workers*per)
	for n := range results {
		_, dup := seen[n]
		require.False(t, dup, "nonce %d issued twice", n)
		seen[n] = struct{}{}
	}
	require.Len(t, seen, workers*per)
}

func TestSignIsDeterministicForFixedClock(t *testing.T) {
	ts := time.Unix(1400000000, 0)
	fields := map[string]any{"order_id": 4627020}
	a, err := New("key", "secret", NewNonceSource(fixedClock(ts))).Sign("/v1/order/status", fields)
	require.NoError(t, err)
	b, err := New("key", "secret", NewNonceSource(fixedClock(ts))).Sign("/v1/order/status", fields)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestSignProducesVerifiableHeaders(t *testing.T) {
	ts := time.Unix(1400000000, 0)
	headers, err := New("my-key", "my-secret", NewNonceSource(fixedClock(ts))).
		Sign("/v1/mytrades", map[string]any{"symbol": "btcusd", "limit_trades": 50})
	require.NoError(t, err)

	require.Equal(t, "application/json", headers["Content-Type"])
	require.Equal(t, "application/json", headers["Accept"])
	require.Equal(t, "my-key", headers[HeaderAPIKey])

	encoded := headers[HeaderPayload]
	require.NotContains(t, encoded, "\n")
	require.NotContains(t, encoded, " ")

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.Equal(t, "/v1/mytrades", payload["request"])
	require.Equal(t, strconv.FormatInt(ts.UnixNano()/int64(nonceUnit), 10), payload["nonce"])
	require.Equal(t, "btcusd", payload["symbol"])
	require.EqualValues(t, 50, payload["limit_trades"])

	mac := hmac.New(sha512.New384, []byte("my-secret"))
	mac.Write([]byte(encoded))
	require.Equal(t, hex.EncodeToString(mac.Sum(nil)), headers[HeaderSignature])
	require.Len(t, headers[HeaderSignature], 96)
}

func TestSignFieldsMayOverrideRequest(t *testing.T) {
	headers, err := New("k", "s", nil).Sign("/v1/orders", map[string]any{"request": "/v1/other"})
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(headers[HeaderPayload])
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.Equal(t, "/v1/other", payload["request"])
}

func TestNoncesIncreaseAcrossSignatures(t *testing.T) {
	s := New("k", "s", NewNonceSource(fixedClock(time.Unix(1400000000, 0))))
	var nonces []int
	for i := 0; i < 5; i++ {
		headers, err := s.Sign("/v1/balances", nil)
		require.NoError(t, err)
		raw, _ := base64.StdEncoding.DecodeString(headers[HeaderPayload])
		var payload map[string]any
		require.NoError(t, json.Unmarshal(raw, &payload))
		n, err := strconv.Atoi(payload["nonce"].(string))
		require.NoError(t, err)
		nonces = append(nonces, n)
	}
	require.True(t, sort.IntsAreSorted(nonces))
	require.Equal(t, nonces[0]+4, nonces[4])
}
