// Package esewa is a client for the eSewa ePay HTTP API.
package esewa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/cassiomorais/esewa/pkg/result"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "github.com/cassiomorais/esewa/pkg/esewa"

	maxResponseBytes = 1 << 20
	maxErrorBody     = 4 << 10
)

// Client issues requests against one eSewa environment. It holds no
// per-call state and is safe for concurrent use.
type Client struct {
	env        Environment
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	metrics    MetricsRecorder
	tracer     trace.Tracer
	auth       Authenticator
	breaker    *gobreaker.CircuitBreaker[Payload]
	timeout    time.Duration
}

// New builds a Client bound to the base URL of cfg.Environment.
// Without WithLogger the client logs failures to zerolog's global logger.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	baseURL, err := cfg.Environment.BaseURL()
	if err != nil {
		return nil, err
	}

	o := options{
		logger:  log.Logger,
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.baseURL != "" {
		baseURL = o.baseURL
	}
	if o.metrics == nil {
		o.metrics = noopMetrics{}
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}

	var hc http.Client
	if o.httpClient != nil {
		hc = *o.httpClient
	}
	transport := hc.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	hc.Transport = otelhttp.NewTransport(transport, otelhttp.WithTracerProvider(o.tracerProvider))

	c := &Client{
		env:        cfg.Environment,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &hc,
		logger:     o.logger.With().Str("component", "esewa").Str("environment", cfg.Environment.String()).Logger(),
		metrics:    o.metrics,
		tracer:     o.tracerProvider.Tracer(tracerName),
		auth:       o.auth,
		timeout:    o.timeout,
	}
	if o.breaker != nil {
		c.breaker = newBreaker("esewa-"+cfg.Environment.String(), *o.breaker, o.metrics)
	}
	return c, nil
}

// Environment reports the environment the client was built for.
func (c *Client) Environment() Environment { return c.env }

// BaseURL reports the host requests are sent to, without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

type call struct {
	op      string
	method  string
	path    string
	query   url.Values
	hasBody bool
	body    any
}

// do runs one gateway call and reports it to tracing and metrics. A panic
// raised during the call, for example by an Authenticator, is returned as
// a failed request.
func (c *Client) do(ctx context.Context, cl call) (payload Payload, err error) {
	ctx, span := c.tracer.Start(ctx, "esewa."+cl.op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("esewa.environment", c.env.String()),
			attribute.String("http.request.method", cl.method),
			attribute.String("url.path", cl.path),
		),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			payload, err = nil, fmt.Errorf("%w: %v", result.ErrPanic, p)
		}
		c.metrics.ObserveRequest(cl.op, outcomeOf(err), time.Since(start))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			payload, err = nil, requestFailed(cl.op, err)
		}
	}()

	return c.execute(ctx, cl)
}

func (c *Client) execute(ctx context.Context, cl call) (Payload, error) {
	if c.breaker == nil {
		return c.roundTrip(ctx, cl)
	}
	payload, err := c.breaker.Execute(func() (Payload, error) {
		return c.roundTrip(ctx, cl)
	})
	if isBreakerRejection(err) {
		return nil, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}
	return payload, err
}

func (c *Client) roundTrip(ctx context.Context, cl call) (Payload, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if cl.hasBody {
		b, err := encodeBody(cl.body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	endpoint := c.baseURL + cl.path
	if len(cl.query) > 0 {
		endpoint += "?" + cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.auth != nil {
		if err := c.auth.Authenticate(req); err != nil {
			return nil, fmt.Errorf("authenticate request: %w", err)
		}
	}

	reqLog := c.logger.With().Str("op", cl.op).Str("call_id", uuid.NewString()).Logger()
	reqLog.Debug().Str("method", cl.method).Str("url", endpoint).Msg("Sending gateway request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	reqLog.Debug().Int("status", resp.StatusCode).Int("bytes", len(data)).Msg("Gateway responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Body: excerpt(data)}
	}
	if readErr != nil {
		return nil, fmt.Errorf("read response body: %w", readErr)
	}
	if len(data) > maxResponseBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrResponseTooLarge, maxResponseBytes)
	}
	return Payload(data), nil
}

func encodeBody(v any) ([]byte, error) {
	switch b := v.(type) {
	case json.RawMessage:
		if len(b) == 0 {
			return []byte("null"), nil
		}
		return b, nil
	case Payload:
		return b.MarshalJSON()
	default:
		return json.Marshal(v)
	}
}

func excerpt(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return strings.TrimSpace(string(b))
}
