package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"7", "8"})
	require.NoError(t, err)
	require.Equal(t, []int64{7, 8}, ids)

	_, err = parseIDs([]string{"seven"})
	require.Error(t, err)
}

func TestRunRequiresCommand(t *testing.T) {
	var out bytes.Buffer
	require.Equal(t, 2, run(nil, &out))
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	t.Setenv("BITFINEX_API_KEY", "")
	t.Setenv("BITFINEX_API_SECRET", "")
	var out bytes.Buffer
	require.Equal(t, 1, run([]string{"-config", "does-not-exist.yml", "launch"}, &out))
}

func TestPrintJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printJSON(&out, map[string]int{"a": 1}))
	require.JSONEq(t, `{"a":1}`, out.String())
}
