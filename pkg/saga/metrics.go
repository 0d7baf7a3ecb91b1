package saga

import (
	"fmt"

	obsmetrics "github.com/Sokol111/streamflix-reliability/pkg/observability/metrics"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/Sokol111/streamflix-reliability/pkg/saga"

const (
	resultDone      = "done"
	resultRetry     = "retry"
	resultFailed    = "failed"
	resultCompleted = "completed"
)

type processorMetrics struct {
	executed      metric.Int64Counter
	batchDuration metric.Float64Histogram
}

func newProcessorMetrics(mp metric.MeterProvider) (*processorMetrics, error) {
	meter := mp.Meter(meterName)

	executed, err := meter.Int64Counter("saga.steps.executed",
		metric.WithDescription("Saga steps executed, by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create saga counter: %w", err)
	}

	batchDuration, err := meter.Float64Histogram(obsmetrics.BatchDurationInstrument,
		metric.WithDescription("Duration of one processor batch"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch histogram: %w", err)
	}

	return &processorMetrics{executed: executed, batchDuration: batchDuration}, nil
}
