package schema

import (
	"strings"

	json "github.com/goccy/go-json"

	"github.com/freshpay/bitfinex/errs"
)

// Decode unmarshals a response body into T, classifying failures as decode errors.
func Decode[T any](endpoint string, body []byte) (T, error) {
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return out, errs.Decode(endpoint, err)
	}
	return out, nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// ErrorMessage extracts the exchange's error text from a response body, if any.
func ErrorMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return ""
	}
	var payload errorBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(payload.Error)
}
