// Package numeric coerces the exchange's loosely typed numbers and timestamps.
//
// Bitfinex v1 returns most numeric fields as JSON strings ("0.01") and some as
// bare numbers. Timestamps are Unix epochs in seconds with a fractional part.
package numeric

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// HistoryTimeLayout is the display layout attached to trade-history rows.
const HistoryTimeLayout = "20060102 15:04:05"

// Parse converts a JSON scalar received as string or number into a decimal.
func Parse(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("numeric: missing value")
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return decimal.Zero, fmt.Errorf("numeric: empty string")
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("numeric: parse %q: %w", v, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case decimal.Decimal:
		return v, nil
	default:
		return decimal.Zero, fmt.Errorf("numeric: unsupported type %T", raw)
	}
}

// Epoch is an instant decoded from a Unix timestamp in seconds, fractional part allowed.
type Epoch struct {
	time.Time
}

// UnmarshalJSON accepts "1400000000.123", 1400000000.123 and null (zero time).
func (e *Epoch) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) {
		e.Time = time.Time{}
		return nil
	}
	d, err := decimalFromJSON(trimmed)
	if err != nil {
		return fmt.Errorf("epoch: %w", err)
	}
	e.Time = FromEpoch(d)
	return nil
}

// MarshalJSON renders the instant back as fractional epoch seconds.
func (e Epoch) MarshalJSON() ([]byte, error) {
	if e.IsZero() {
		return []byte(`"0"`), nil
	}
	return []byte(`"` + ToEpoch(e.Time).String() + `"`), nil
}

// FromEpoch converts fractional epoch seconds into a time, keeping microsecond precision.
func FromEpoch(seconds decimal.Decimal) time.Time {
	whole := seconds.IntPart()
	frac := seconds.Sub(decimal.NewFromInt(whole)).Shift(6).Round(0).IntPart()
	return time.Unix(whole, frac*int64(time.Microsecond))
}

// ToEpoch converts a time into fractional epoch seconds at microsecond precision.
func ToEpoch(t time.Time) decimal.Decimal {
	return decimal.NewFromInt(t.UnixMicro()).Shift(-6)
}

// FormatLocal renders t in local time using HistoryTimeLayout.
func FormatLocal(t time.Time) string {
	return t.Local().Format(HistoryTimeLayout)
}

// Wire renders an amount for the request body. The exchange infers side from the
// explicit side field, so the sign never reaches the wire.
func Wire(d decimal.Decimal) string {
	return d.Abs().String()
}

func decimalFromJSON(data []byte) (decimal.Decimal, error) {
	text := string(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		text = text[1 : len(text)-1]
	}
	return Parse(text)
}
