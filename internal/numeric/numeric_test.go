package numeric

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseAcceptsStringsAndNumbers(t *testing.T) {
	d, err := Parse("0.01")
	require.NoError(t, err)
	require.True(t, d.Equal(decimal.RequireFromString("0.01")))

	d, err = Parse(float64(2.5))
	require.NoError(t, err)
	require.Equal(t, "2.5", d.String())

	_, err = Parse("abc")
	require.Error(t, err)
	_, err = Parse(nil)
	require.Error(t, err)
	_, err = Parse([]int{1})
	require.Error(t, err)
}

func TestEpochKeepsFractionalSeconds(t *testing.T) {
	var payload struct {
		TS Epoch `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"timestamp":"1400000000.250"}`), &payload))
	require.Equal(t, int64(1400000000), payload.TS.Unix())
	require.Equal(t, 250*time.Millisecond, time.Duration(payload.TS.Nanosecond()))

	require.NoError(t, json.Unmarshal([]byte(`{"timestamp":1400000001}`), &payload))
	require.Equal(t, int64(1400000001), payload.TS.Unix())

	require.Error(t, json.Unmarshal([]byte(`{"timestamp":"soon"}`), &payload))
}

func TestEpochRoundTrip(t *testing.T) {
	ts := time.Unix(1400000000, 123456000)
	out, err := json.Marshal(Epoch{Time: ts})
	require.NoError(t, err)
	require.Equal(t, `"1400000000.123456"`, string(out))
}

func TestFormatLocal(t *testing.T) {
	ts := time.Date(2014, 5, 13, 16, 53, 20, 0, time.Local)
	require.Equal(t, "20140513 16:53:20", FormatLocal(ts))
}

func TestWireStripsSign(t *testing.T) {
	require.Equal(t, "0.01", Wire(decimal.RequireFromString("-0.01")))
	require.Equal(t, "1.5", Wire(decimal.RequireFromString("1.5")))
}
