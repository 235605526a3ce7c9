package bootstrap

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cassiomorais/esewa/internal/infrastructure/config"
	"github.com/cassiomorais/esewa/pkg/esewa"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func testConfig() *config.Config {
	return &config.Config{
		Gateway: config.GatewayConfig{
			Environment: "test",
			MerchantID:  "M1",
			SecretKey:   "S1",
		},
		Observability: config.ObservabilityConfig{
			LogLevel:      "debug",
			EnableMetrics: true,
		},
	}
}

func TestNewWithConfig_BuildsClient(t *testing.T) {
	var logs bytes.Buffer
	app, err := NewWithConfig(context.Background(), testConfig(), zerolog.New(&logs), "esewa-test", "esewa", prometheus.NewRegistry())
	require.NoError(t, err)
	defer app.Close()

	require.NotNil(t, app.Client)
	assert.Equal(t, "https://uat.esewa.com.np", app.Client.BaseURL())
	assert.Equal(t, esewa.EnvironmentTest, app.Client.Environment())
	assert.NotNil(t, app.Metrics)
	assert.Contains(t, logs.String(), "Gateway client ready")
}

func TestNewWithConfig_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Observability.EnableMetrics = false

	app, err := NewWithConfig(context.Background(), cfg, zerolog.Nop(), "esewa-test", "esewa", prometheus.NewRegistry())
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Metrics)
}

func TestNewWithConfig_InvalidEnvironment(t *testing.T) {
	cfg := testConfig()
	cfg.Gateway.Environment = "staging"

	app, err := NewWithConfig(context.Background(), cfg, zerolog.Nop(), "esewa-test", "esewa", prometheus.NewRegistry())
	assert.Nil(t, app)
	assert.ErrorIs(t, err, esewa.ErrUnknownEnvironment)
}

func TestNewWithConfig_WiresMetricsAndOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"COMPLETE"}`))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Gateway.BaseURLOverride = srv.URL
	cfg.Gateway.CircuitBreaker = config.CircuitBreakerConfig{Enabled: true, FailureThreshold: 3}

	app, err := NewWithConfig(context.Background(), cfg, zerolog.Nop(), "esewa-test", "esewa", prometheus.NewRegistry())
	require.NoError(t, err)
	defer app.Close()

	resp, err := app.Client.CheckPaymentStatus(context.Background(), esewa.StatusQuery{
		ProductCode:     "EPAYTEST",
		TransactionUUID: "txn-1",
		TotalAmount:     100,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"COMPLETE"}`, resp.String())

	assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics.GatewayRequestsTotal.WithLabelValues("check_payment_status", esewa.OutcomeSuccess)))
	assert.Equal(t, 0.0, testutil.ToFloat64(app.Metrics.CircuitBreakerState.WithLabelValues("esewa-test")))
}

func TestNew_LoadsFromEnvironment(t *testing.T) {
	t.Setenv("ESEWA_GATEWAY_ENVIRONMENT", "production")
	t.Setenv("ESEWA_GATEWAY_MERCHANT_ID", "M1")
	t.Setenv("ESEWA_GATEWAY_SECRET_KEY", "S1")
	t.Setenv("ESEWA_OBSERVABILITY_LOG_LEVEL", "off")

	app, err := New(context.Background(), "esewa-test", "esewa", prometheus.NewRegistry())
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, "https://esewa.com.np", app.Client.BaseURL())
}

func TestNewWithConfig_FailureRestoresGlobalTracer(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	cfg := testConfig()
	cfg.Gateway.Environment = "staging"
	cfg.Observability.EnableTracing = true
	cfg.Observability.JaegerEndpoint = "http://localhost:14268/api/traces"

	app, err := NewWithConfig(context.Background(), cfg, zerolog.Nop(), "esewa-test", "esewa", prometheus.NewRegistry())
	require.Error(t, err)
	assert.Nil(t, app)
	assert.Same(t, prev, otel.GetTracerProvider())
}

func TestNewWithConfig_TracingInstalledUntilClose(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	cfg := testConfig()
	cfg.Observability.EnableTracing = true
	cfg.Observability.JaegerEndpoint = "http://localhost:14268/api/traces"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewWithConfig(ctx, cfg, zerolog.Nop(), "esewa-test", "esewa", prometheus.NewRegistry())
	require.NoError(t, err)
	assert.NotSame(t, prev, otel.GetTracerProvider())

	assert.NotPanics(t, func() {
		app.Close()
		app.Close()
		cancel()
	})
}
