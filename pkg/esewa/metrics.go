package esewa

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Request outcomes reported to a MetricsRecorder.
const (
	OutcomeSuccess        = "success"
	OutcomeGatewayError   = "gateway_error"
	OutcomeTransportError = "transport_error"
	OutcomeUnavailable    = "unavailable"
)

// MetricsRecorder receives per-request measurements from the client.
type MetricsRecorder interface {
	ObserveRequest(operation, outcome string, duration time.Duration)
	SetBreakerState(name string, state gobreaker.State)
}

type noopMetrics struct{}

func (noopMetrics) ObserveRequest(string, string, time.Duration) {}

func (noopMetrics) SetBreakerState(string, gobreaker.State) {}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	if errors.Is(err, ErrGatewayUnavailable) {
		return OutcomeUnavailable
	}
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return OutcomeGatewayError
	}
	return OutcomeTransportError
}
