package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.9.0"

	"github.com/tuanvumaihuynh/self-checkout/internal/config"
)

func TestInitTracerWithoutCollector(t *testing.T) {
	ctx := context.Background()

	cleanup, err := InitTracer(ctx, config.Otel{ServiceName: "self-checkout", TraceIDRatio: 1})
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, cleanup(ctx))
	})

	_, span := otel.Tracer("test").Start(ctx, "op")
	defer span.End()
	assert.True(t, span.SpanContext().IsValid())
	assert.True(t, span.SpanContext().IsSampled())
}

func TestNewResource(t *testing.T) {
	res := newResource(config.Otel{ServiceName: "self-checkout", K8sPodName: "pod-1"})

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}

	assert.Equal(t, "self-checkout", attrs[string(semconv.ServiceNameKey)])
	assert.Equal(t, "pod-1", attrs[string(semconv.K8SPodNameKey)])
	assert.NotContains(t, attrs, string(semconv.K8SNamespaceNameKey))
}
