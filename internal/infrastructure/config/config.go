package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cassiomorais/esewa/pkg/esewa"
	"github.com/spf13/viper"
)

type Config struct {
	Gateway       GatewayConfig       `mapstructure:"gateway"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type GatewayConfig struct {
	Environment     string               `mapstructure:"environment"`
	MerchantID      string               `mapstructure:"merchant_id"`
	SecretKey       string               `mapstructure:"secret_key"`
	BaseURLOverride string               `mapstructure:"base_url_override"`
	Timeout         time.Duration        `mapstructure:"timeout"`
	CircuitBreaker  CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
}

type ObservabilityConfig struct {
	LogLevel       string `mapstructure:"log_level"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	EnableMetrics  bool   `mapstructure:"enable_metrics"`
	EnableTracing  bool   `mapstructure:"enable_tracing"`
}

func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// ESEWA_GATEWAY_MERCHANT_ID -> gateway.merchant_id
	v.SetEnvPrefix("ESEWA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/esewa")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if _, err := esewa.Environment(c.Gateway.Environment).BaseURL(); err != nil {
		errs = append(errs, fmt.Errorf("gateway.environment must be test or production, got %q", c.Gateway.Environment))
	}
	if c.Gateway.Timeout < 0 {
		errs = append(errs, fmt.Errorf("gateway.timeout must not be negative"))
	}
	if cb := c.Gateway.CircuitBreaker; cb.Enabled {
		if cb.FailureThreshold == 0 {
			errs = append(errs, fmt.Errorf("gateway.circuit_breaker.failure_threshold must be positive"))
		}
		if cb.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("gateway.circuit_breaker.timeout must be positive"))
		}
	}

	if c.Gateway.Environment == string(esewa.EnvironmentProduction) {
		if c.Gateway.MerchantID == "" {
			errs = append(errs, fmt.Errorf("gateway.merchant_id required in production"))
		}
		if c.Gateway.SecretKey == "" {
			errs = append(errs, fmt.Errorf("gateway.secret_key required in production"))
		}
	}

	if c.Observability.EnableTracing && c.Observability.JaegerEndpoint == "" {
		errs = append(errs, fmt.Errorf("observability.jaeger_endpoint required when tracing is enabled"))
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	// Gateway defaults
	v.SetDefault("gateway.environment", "test")
	v.SetDefault("gateway.merchant_id", "")
	v.SetDefault("gateway.secret_key", "")
	v.SetDefault("gateway.base_url_override", "")
	v.SetDefault("gateway.timeout", "0s")
	v.SetDefault("gateway.circuit_breaker.enabled", false)
	v.SetDefault("gateway.circuit_breaker.max_requests", 5)
	v.SetDefault("gateway.circuit_breaker.interval", "60s")
	v.SetDefault("gateway.circuit_breaker.timeout", "30s")
	v.SetDefault("gateway.circuit_breaker.failure_threshold", 5)

	// Observability defaults
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.enable_tracing", false)
}

// ClientConfig returns the gateway identity for esewa.New.
func (c *GatewayConfig) ClientConfig() esewa.Config {
	return esewa.Config{
		Environment: esewa.Environment(c.Environment),
		MerchantID:  c.MerchantID,
		SecretKey:   c.SecretKey,
	}
}

// BreakerSettings converts the circuit breaker section for esewa.WithCircuitBreaker.
func (c *CircuitBreakerConfig) BreakerSettings() esewa.BreakerSettings {
	return esewa.BreakerSettings{
		MaxRequests:      c.MaxRequests,
		Interval:         c.Interval,
		Timeout:          c.Timeout,
		FailureThreshold: c.FailureThreshold,
	}
}
