package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNew_DisabledWithoutEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	tr, err := New(context.Background())
	require.NoError(t, err)

	assert.False(t, tr.Enabled())
	_, span := tr.Start(context.Background(), "heal")
	span.SetAttributes("task", "x")
	span.RecordError(errors.New("ignored"))
	span.End()
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestTracer_RecordsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	tr := NewWithProvider(provider)

	ctx, parent := tr.Start(context.Background(), "heal")
	parent.SetAttributes("task", "Add login", "attempt", 2, "success", false, "dangling")
	_, child := tr.Start(ctx, "validate")
	child.RecordError(errors.New("exit 1"))
	child.End()
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	validate, heal := spans[0], spans[1]
	assert.Equal(t, "validate", validate.Name)
	assert.Equal(t, codes.Error, validate.Status.Code)
	assert.Equal(t, heal.SpanContext.SpanID(), validate.Parent.SpanID())

	assert.Equal(t, "heal", heal.Name)
	assert.ElementsMatch(t, []attribute.KeyValue{
		attribute.String("task", "Add login"),
		attribute.Int("attempt", 2),
		attribute.Bool("success", false),
	}, heal.Attributes)

	require.NoError(t, tr.Shutdown(context.Background()))
}
