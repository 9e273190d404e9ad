package metrics

import (
	"context"

	"go.opentelemetry.io/otel/exporters/prometheus"
	otelapi "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const (
	metricsNamespace = "backdrop"
)

var (
	meter otelapi.Meter
)

func init() {
	// instruments are no-ops until Setup runs
	meter = noop.NewMeterProvider().Meter(metricsNamespace)
	if err := setupInstruments(context.Background()); err != nil {
		panic(err)
	}
}

func Setup(ctx context.Context) error {
	for _, setup := range []func(context.Context) error{
		setupMeter, // must come first
		setupInstruments,
	} {
		if err := setup(ctx); err != nil {
			return err
		}
	}

	return nil
}

func setupMeter(ctx context.Context) error {
	res, err := resource.New(ctx)
	if err != nil {
		return err
	}

	exporter, err := prometheus.New(
		prometheus.WithNamespace(metricsNamespace),
		prometheus.WithoutScopeInfo(),
	)
	if err != nil {
		return err
	}

	provider := metric.NewMeterProvider(
		metric.WithReader(exporter),
		metric.WithResource(res),
	)

	meter = provider.Meter(metricsNamespace)

	return nil
}

func setupInstruments(_ context.Context) error {
	var err error

	if BackgroundLoaded, err = meter.Int64Gauge("background_loaded",
		otelapi.WithDescription("whether consumers acknowledged the current background as loaded"),
	); err != nil {
		return err
	}

	if CacheReadsCount, err = meter.Int64Counter("cache_reads_count",
		otelapi.WithDescription("cache record reads by outcome"),
	); err != nil {
		return err
	}

	if ProbesCount, err = meter.Int64Counter("probes_count",
		otelapi.WithDescription("image probes by source and outcome"),
	); err != nil {
		return err
	}

	if RefreshesCount, err = meter.Int64Counter("refreshes_count",
		otelapi.WithDescription("manual background refreshes by outcome"),
	); err != nil {
		return err
	}

	if ResolutionsCount, err = meter.Int64Counter("resolutions_count",
		otelapi.WithDescription("background resolutions by outcome"),
	); err != nil {
		return err
	}

	if Subscribers, err = meter.Int64UpDownCounter("subscribers",
		otelapi.WithDescription("currently connected state subscribers"),
	); err != nil {
		return err
	}

	return nil
}
