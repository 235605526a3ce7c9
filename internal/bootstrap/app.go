package bootstrap

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/cassiomorais/esewa/internal/infrastructure/config"
	"github.com/cassiomorais/esewa/internal/infrastructure/observability"
	"github.com/cassiomorais/esewa/pkg/esewa"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *observability.Metrics
	Client  *esewa.Client

	tracer     *sdktrace.TracerProvider
	prevTracer trace.TracerProvider
	stop       context.CancelFunc
	closeOnce  sync.Once
}

// New loads configuration and builds a ready-to-use gateway client.
// reg may be nil to use the default Prometheus registerer.
func New(ctx context.Context, serviceName, metricsNamespace string, reg prometheus.Registerer) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := observability.InitLogger(cfg.Observability.LogLevel, os.Stdout)
	return NewWithConfig(ctx, cfg, logger, serviceName, metricsNamespace, reg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config, logger zerolog.Logger, serviceName, metricsNamespace string, reg prometheus.Registerer) (*App, error) {
	logger = logger.With().Str("service", serviceName).Logger()
	logger.Info().Str("environment", cfg.Gateway.Environment).Msg("Starting")

	ctx, stop := context.WithCancel(ctx)
	app := &App{Config: cfg, Logger: logger, stop: stop}

	opts := []esewa.Option{
		esewa.WithLogger(logger),
		esewa.WithTimeout(cfg.Gateway.Timeout),
	}

	if cfg.Observability.EnableTracing {
		prev := otel.GetTracerProvider()
		tp, err := observability.InitTracer(serviceName, cfg.Observability.JaegerEndpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		} else {
			app.tracer = tp
			app.prevTracer = prev
			opts = append(opts, esewa.WithTracerProvider(tp))
			go func() {
				<-ctx.Done()
				app.Close()
			}()
			logger.Info().Msg("Tracing enabled")
		}
	}

	if cfg.Observability.EnableMetrics {
		app.Metrics = observability.NewMetrics(metricsNamespace, reg)
		opts = append(opts, esewa.WithMetrics(app.Metrics))
		logger.Info().Msg("Metrics initialized")
	}

	if cfg.Gateway.BaseURLOverride != "" {
		opts = append(opts, esewa.WithBaseURL(cfg.Gateway.BaseURLOverride))
	}
	if cfg.Gateway.CircuitBreaker.Enabled {
		opts = append(opts, esewa.WithCircuitBreaker(cfg.Gateway.CircuitBreaker.BreakerSettings()))
	}

	client, err := esewa.New(cfg.Gateway.ClientConfig(), opts...)
	if err != nil {
		app.Close()
		if app.prevTracer != nil {
			otel.SetTracerProvider(app.prevTracer)
		}
		return nil, fmt.Errorf("create esewa client: %w", err)
	}
	app.Client = client
	logger.Info().Str("base_url", client.BaseURL()).Msg("Gateway client ready")

	return app, nil
}

// Close flushes the tracer, if one was started. It runs once, either on
// an explicit call or when the context passed to New is done.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		if a.stop != nil {
			a.stop()
		}
		if err := observability.Shutdown(context.Background(), a.tracer); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to shut down tracer")
		}
	})
}
