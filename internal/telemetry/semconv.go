package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys attached to client metrics.
const (
	AttrEnvironment = attribute.Key("environment")
	AttrMethod      = attribute.Key("http.method")
	AttrEndpoint    = attribute.Key("endpoint")
	AttrStatus      = attribute.Key("status")
	AttrResult      = attribute.Key("result")
	AttrSide        = attribute.Key("side")
	AttrCache       = attribute.Key("cache")
)

// Result values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// RequestAttributes returns the attribute set recorded for one REST round trip.
func RequestAttributes(method, endpoint string, status int, result string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrMethod.String(method),
		AttrEndpoint.String(endpoint),
		AttrStatus.Int(status),
		AttrResult.String(result),
	}
}
