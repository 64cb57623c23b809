// Package signer builds the authentication headers for Bitfinex v1 private endpoints.
package signer

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	json "github.com/goccy/go-json"
)

// Header names consumed by the exchange.
const (
	HeaderAPIKey    = "X-BFX-APIKEY"
	HeaderPayload   = "X-BFX-PAYLOAD"
	HeaderSignature = "X-BFX-SIGNATURE"

	contentTypeJSON = "application/json"
)

// nonceUnit is the nonce resolution: hundreds of microseconds since the epoch.
const nonceUnit = 100 * time.Microsecond

// Headers is the set of outbound headers for one signed request.
type Headers map[string]string

// NonceSource issues strictly increasing nonces derived from a clock.
type NonceSource struct {
	clock func() time.Time
	last  atomic.Int64
}

// NewNonceSource constructs a nonce source. A nil clock uses time.Now.
func NewNonceSource(clock func() time.Time) *NonceSource {
	if clock == nil {
		clock = time.Now
	}
	return &NonceSource{clock: clock}
}

// Next returns max(clock, previous+1) so concurrent callers and clock steps
// backwards never produce a repeated or decreasing nonce.
func (n *NonceSource) Next() int64 {
	candidate := n.clock().UnixNano() / int64(nonceUnit)
	for {
		prev := n.last.Load()
		next := candidate
		if next <= prev {
			next = prev + 1
		}
		if n.last.CompareAndSwap(prev, next) {
			return next
		}
	}
}

// Signer produces AuthHeaders for a key pair.
type Signer struct {
	key    string
	secret []byte
	nonces *NonceSource
}

// New constructs a signer. Callers must verify the key pair is present before signing.
func New(key, secret string, nonces *NonceSource) *Signer {
	if nonces == nil {
		nonces = NewNonceSource(nil)
	}
	return &Signer{key: key, secret: []byte(secret), nonces: nonces}
}

// Sign builds the payload {"request": path, "nonce": "<n>"} merged with fields,
// and returns the headers carrying the key, payload and signature.
func (s *Signer) Sign(path string, fields map[string]any) (Headers, error) {
	payload := make(map[string]any, len(fields)+2)
	payload["request"] = path
	payload["nonce"] = strconv.FormatInt(s.nonces.Next(), 10)
	for k, v := range fields {
		payload[k] = v
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode signed payload: %w", err)
	}
	encoded := stripSpace(base64.StdEncoding.EncodeToString(raw))
	return Headers{
		"Content-Type":  contentTypeJSON,
		"Accept":        contentTypeJSON,
		HeaderAPIKey:    s.key,
		HeaderPayload:   encoded,
		HeaderSignature: Signature(encoded, s.secret),
	}, nil
}

// Signature is the hex HMAC-SHA384 of payload keyed by secret.
func Signature(payload string, secret []byte) string {
	mac := hmac.New(sha512.New384, secret)
	_, _ = mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// The exchange verifies over the whitespace-free encoding.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
