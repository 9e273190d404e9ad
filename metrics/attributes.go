package metrics

import (
	"go.opentelemetry.io/otel/attribute"
	otelapi "go.opentelemetry.io/otel/metric"
)

func Outcome(outcome string) otelapi.MeasurementOption {
	return otelapi.WithAttributes(
		attribute.KeyValue{Key: "outcome", Value: attribute.StringValue(outcome)},
	)
}

func SourceOutcome(source, outcome string) otelapi.MeasurementOption {
	return otelapi.WithAttributes(
		attribute.KeyValue{Key: "source", Value: attribute.StringValue(source)},
		attribute.KeyValue{Key: "outcome", Value: attribute.StringValue(outcome)},
	)
}
