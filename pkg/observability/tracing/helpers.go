package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// GetTraceIDAndSpanID extracts both trace ID and span ID from context.
func GetTraceIDAndSpanID(ctx context.Context) (string, string) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return "", ""
	}
	return sc.TraceID().String(), sc.SpanID().String()
}

// LoggerWithTrace adds trace_id and span_id fields when ctx carries a sampled span.
func LoggerWithTrace(ctx context.Context, log *zap.Logger) *zap.Logger {
	traceID, spanID := GetTraceIDAndSpanID(ctx)
	if traceID == "" {
		return log
	}
	return log.With(zap.String("trace_id", traceID), zap.String("span_id", spanID))
}

// AddAttribute adds an attribute to the current span.
func AddAttribute(ctx context.Context, key string, value string) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String(key, value))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
