package metrics

import (
	otelapi "go.opentelemetry.io/otel/metric"
)

var (
	BackgroundLoaded otelapi.Int64Gauge
	CacheReadsCount  otelapi.Int64Counter
	ProbesCount      otelapi.Int64Counter
	RefreshesCount   otelapi.Int64Counter
	ResolutionsCount otelapi.Int64Counter
	Subscribers      otelapi.Int64UpDownCounter
)
