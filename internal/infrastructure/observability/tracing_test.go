package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

func TestSetupTracing_SinEndpoint(t *testing.T) {
	tp, shutdown, err := SetupTracing(context.Background(), config.TelemetryConfig{ServiceName: "test"}, "dev")
	require.NoError(t, err)
	assert.Nil(t, tp)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
}

func TestSetupTracing_ConEndpoint(t *testing.T) {
	cfg := config.TelemetryConfig{ServiceName: "test", OTLPEndpoint: "localhost:4318", OTLPInsecure: true}
	tp, shutdown, err := SetupTracing(context.Background(), cfg, "dev")
	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.Same(t, tp, otel.GetTracerProvider())
	assert.NoError(t, shutdown(context.Background()))
}
