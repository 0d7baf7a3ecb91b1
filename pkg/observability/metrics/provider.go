package metrics

import (
	"context"
	"errors"

	appconfig "github.com/Sokol111/streamflix-reliability/pkg/core/config"
	otelconfig "github.com/Sokol111/streamflix-reliability/pkg/observability/config"
	otelinternal "github.com/Sokol111/streamflix-reliability/pkg/observability/internal"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// BatchDurationInstrument is the histogram every processor records one batch into.
const BatchDurationInstrument = "reliability.batch.duration"

// batchDurationBuckets covers an empty poll (a few ms) up to a batch of slow handlers.
var batchDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

var errNoEndpoint = errors.New("metrics: otel-collector-endpoint is required")

func batchDurationView() sdkmetric.View {
	return sdkmetric.NewView(
		sdkmetric.Instrument{Name: BatchDurationInstrument},
		sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: batchDurationBuckets}},
	)
}

func newMeterProvider(ctx context.Context, cfg otelconfig.Config, appCfg appconfig.AppConfig) (*sdkmetric.MeterProvider, error) {
	if cfg.OtelCollectorEndpoint == "" {
		return nil, errNoEndpoint
	}

	res, err := otelinternal.NewResource(ctx, appCfg)
	if err != nil {
		return nil, err
	}

	exp, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OtelCollectorEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(cfg.Metrics.Interval))),
		sdkmetric.WithResource(res),
		sdkmetric.WithView(batchDurationView()),
	), nil
}
