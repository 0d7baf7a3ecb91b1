package outbox

import (
	"fmt"

	obsmetrics "github.com/Sokol111/streamflix-reliability/pkg/observability/metrics"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/Sokol111/streamflix-reliability/pkg/outbox"

const (
	resultSent      = "sent"
	resultUnhandled = "unhandled"
	resultRetry     = "retry"
	resultFailed    = "failed"
)

type processorMetrics struct {
	processed     metric.Int64Counter
	batchDuration metric.Float64Histogram
}

func newProcessorMetrics(mp metric.MeterProvider) (*processorMetrics, error) {
	meter := mp.Meter(meterName)

	processed, err := meter.Int64Counter("outbox.records.processed",
		metric.WithDescription("Outbox records handled, by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create outbox counter: %w", err)
	}

	batchDuration, err := meter.Float64Histogram(obsmetrics.BatchDurationInstrument,
		metric.WithDescription("Duration of one processor batch"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch histogram: %w", err)
	}

	return &processorMetrics{processed: processed, batchDuration: batchDuration}, nil
}
