package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewTracerProvider_TagsServiceName(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := NewTracerProvider("esewa-client", sdktrace.WithSpanProcessor(sr))

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.End()
	require.NoError(t, Shutdown(context.Background(), tp))

	spans := sr.Ended()
	require.Len(t, spans, 1)

	var service string
	for _, kv := range spans[0].Resource().Attributes() {
		if kv.Key == "service.name" {
			service = kv.Value.AsString()
		}
	}
	assert.Equal(t, "esewa-client", service)
}

func TestInitTracer_InstallsGlobalProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	tp, err := InitTracer("esewa-client", "http://localhost:14268/api/traces")
	require.NoError(t, err)
	assert.Same(t, tp, otel.GetTracerProvider())
	assert.NoError(t, Shutdown(context.Background(), tp))
}

func TestShutdown_Nil(t *testing.T) {
	assert.NoError(t, Shutdown(context.Background(), nil))
}
