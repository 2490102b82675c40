package oracle

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Described is implemented by providers that can name themselves on spans.
type Described interface {
	System() string
	Model() string
	Temperature() float64
}

type traced struct {
	next   Oracle
	tracer trace.Tracer
	attrs  []attribute.KeyValue
}

// WithTracing wraps next in a gen_ai client span per call. When tracer is nil
// the global provider is used.
func WithTracing(next Oracle, tracer trace.Tracer) Oracle {
	if tracer == nil {
		tracer = otel.Tracer("story-adventure/oracle")
	}
	t := &traced{next: next, tracer: tracer}
	if d, ok := describe(next); ok {
		t.attrs = GenAIAttributes(d.System(), d.Model(), d.Temperature())
	}
	return t
}

// GenAIAttributes builds the request attributes shared by every generation span.
func GenAIAttributes(system, model string, temperature float64) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("gen_ai.operation.name", "chat"),
		attribute.String("gen_ai.system", system),
		attribute.String("gen_ai.request.model", model),
	}
	if temperature > 0 {
		attrs = append(attrs, attribute.Float64("gen_ai.request.temperature", temperature))
	}
	return attrs
}

func (t *traced) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := t.tracer.Start(ctx, "gen_ai.chat",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(t.attrs...),
	)
	defer span.End()

	span.SetAttributes(attribute.Int("gen_ai.prompt.length", len(prompt)))
	start := time.Now()
	out, err := t.next.Generate(ctx, prompt)
	span.SetAttributes(attribute.Int64("response_time_ms", time.Since(start).Milliseconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("gen_ai.completion.length", len(out)))
	return out, nil
}

func describe(o Oracle) (Described, bool) {
	for o != nil {
		if d, ok := o.(Described); ok {
			return d, true
		}
		u, ok := o.(interface{ Unwrap() Oracle })
		if !ok {
			return nil, false
		}
		o = u.Unwrap()
	}
	return nil, false
}
