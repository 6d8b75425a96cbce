package tracing

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	tpMu sync.Mutex
	tp   *sdktrace.TracerProvider
)

// InitOpenTelemetry installs the process-wide tracer provider. Every span is
// sampled: the engine traces only its own five operations, so volume is the
// debate rate, not a request firehose. No exporter is wired; span ids exist
// to feed the trace_id log field. Calling it again is a no-op.
func InitOpenTelemetry(serviceName string) error {
	tpMu.Lock()
	defer tpMu.Unlock()
	if tp != nil {
		return nil
	}

	tp = sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		)),
	)
	otel.SetTracerProvider(tp)
	return nil
}

// ShutdownOpenTelemetry flushes and tears down the tracer provider installed
// by InitOpenTelemetry. Safe to call without a prior init.
func ShutdownOpenTelemetry(ctx context.Context) error {
	tpMu.Lock()
	current := tp
	tp = nil
	tpMu.Unlock()

	if current == nil {
		return nil
	}
	return current.Shutdown(ctx)
}

// StartSpan opens a span for one engine operation and mirrors its trace id
// into the context, so log lines and spans correlate on the same id.
func StartSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, spanName, trace.WithAttributes(attrs...))

	if GetTraceID(ctx) == "" {
		if sc := span.SpanContext(); sc.IsValid() {
			ctx = WithTraceID(ctx, sc.TraceID().String())
		}
	}
	return ctx, span
}
