// Package telemetry exports heal, validation and AI spans over OTLP.
package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

const instrumentationName = "github.com/Cook1eMonster/Ralph"

// Tracer implements domain.Tracer on top of an OpenTelemetry tracer.
type Tracer struct {
	provider *sdktrace.TracerProvider // nil when disabled
	tracer   oteltrace.Tracer
}

// Ensure Tracer implements domain.Tracer.
var _ domain.Tracer = (*Tracer)(nil)

// New returns an exporting tracer if OTEL_EXPORTER_OTLP_ENDPOINT is set and a
// no-op tracer otherwise.
func New(ctx context.Context) (*Tracer, error) {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		return Nop(), nil
	}

	// The exporter reads the endpoint and headers from the standard OTEL_* variables.
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	serviceName := os.Getenv("OTEL_SERVICE_NAME")
	if serviceName == "" {
		serviceName = "ralph"
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	)
	return &Tracer{provider: provider, tracer: provider.Tracer(instrumentationName)}, nil
}

// NewWithProvider wraps an existing SDK provider. Used in tests with an
// in-memory exporter.
func NewWithProvider(provider *sdktrace.TracerProvider) *Tracer {
	return &Tracer{provider: provider, tracer: provider.Tracer(instrumentationName)}
}

// Nop returns a tracer that records nothing.
func Nop() *Tracer {
	return &Tracer{tracer: noop.NewTracerProvider().Tracer(instrumentationName)}
}

// Enabled reports whether spans are exported.
func (t *Tracer) Enabled() bool {
	return t.provider != nil
}

// Start starts a span as a child of any span in ctx.
func (t *Tracer) Start(ctx context.Context, name string) (context.Context, domain.Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, &Span{span: span}
}

// Shutdown flushes pending spans.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// Span adapts an OpenTelemetry span to domain.Span.
type Span struct {
	span oteltrace.Span
}

// SetAttributes attaches alternating key/value pairs. A trailing key without
// a value is dropped.
func (s *Span) SetAttributes(kv ...any) {
	attrs := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, toAttribute(key, kv[i+1]))
	}
	s.span.SetAttributes(attrs...)
}

// RecordError records err and marks the span failed.
func (s *Span) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// End ends the span.
func (s *Span) End() {
	s.span.End()
}

func toAttribute(key string, v any) attribute.KeyValue {
	switch val := v.(type) {
	case string:
		return attribute.String(key, val)
	case int:
		return attribute.Int(key, val)
	case int64:
		return attribute.Int64(key, val)
	case bool:
		return attribute.Bool(key, val)
	case float64:
		return attribute.Float64(key, val)
	case []string:
		return attribute.StringSlice(key, val)
	case fmt.Stringer:
		return attribute.String(key, val.String())
	default:
		return attribute.String(key, fmt.Sprint(val))
	}
}
