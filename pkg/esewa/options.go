package esewa

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Authenticator attaches credentials to an outgoing gateway request.
// The client ships without one; integrators supply the scheme their
// merchant account requires.
type Authenticator interface {
	Authenticate(req *http.Request) error
}

// AuthenticatorFunc adapts a plain function to Authenticator.
type AuthenticatorFunc func(req *http.Request) error

func (f AuthenticatorFunc) Authenticate(req *http.Request) error { return f(req) }

type options struct {
	httpClient     *http.Client
	baseURL        string
	logger         zerolog.Logger
	metrics        MetricsRecorder
	tracerProvider trace.TracerProvider
	auth           Authenticator
	breaker        *BreakerSettings
	timeout        time.Duration
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient sets the underlying HTTP client. Its transport is wrapped
// for tracing.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithBaseURL overrides the environment's base URL.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithLogger sets the logger for request traces and failure diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics reports each request and breaker state change to m.
func WithMetrics(m MetricsRecorder) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracerProvider sets the provider for client spans. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithAuthenticator runs a on every request before it is sent.
func WithAuthenticator(a Authenticator) Option {
	return func(o *options) { o.auth = a }
}

// WithCircuitBreaker guards gateway calls with a circuit breaker.
func WithCircuitBreaker(s BreakerSettings) Option {
	return func(o *options) { o.breaker = &s }
}

// WithTimeout bounds each request. Zero means no client-side timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}
