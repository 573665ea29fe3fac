package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/benchrace/benchrace/internal/executor"
	"github.com/benchrace/benchrace/internal/outcome"
	"github.com/benchrace/benchrace/internal/reqspec"
)

// StartPhaseSpan starts a span covering one benchmark phase.
func StartPhaseSpan(ctx context.Context, tracer trace.Tracer, implementation, strategy string, requests int) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "phase "+implementation,
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(
		attribute.String("benchrace.implementation", implementation),
		attribute.String("benchrace.strategy", strategy),
		attribute.Int("benchrace.requests", requests),
	)
	return ctx, span
}

// EndSpan finishes a span, recording error status if applicable.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// tracedClient wraps a client-under-test with one span per dispatch.
type tracedClient struct {
	inner  executor.Client
	tracer trace.Tracer
}

// WrapClient decorates a client so every dispatch emits a client span. The
// wrapped client is returned unchanged when tracer is nil.
func WrapClient(inner executor.Client, tracer trace.Tracer) executor.Client {
	if tracer == nil {
		return inner
	}
	return &tracedClient{inner: inner, tracer: tracer}
}

func (t *tracedClient) Dispatch(ctx context.Context, spec reqspec.Spec) outcome.Raw {
	ctx, span := t.tracer.Start(ctx, "dispatch "+spec.Method,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("benchrace.tag", spec.Tag),
		attribute.String("url.full", spec.URL),
	)
	raw := t.inner.Dispatch(ctx, spec)
	EndSpan(span, raw.Err,
		attribute.Int64("benchrace.latency_us", raw.Latency.Microseconds()),
	)
	return raw
}
