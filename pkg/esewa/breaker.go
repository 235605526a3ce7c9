package esewa

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerSettings configures the optional circuit breaker.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerSettings returns the settings used when a field is left zero.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:      5,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

func newBreaker(name string, s BreakerSettings, metrics MetricsRecorder) *gobreaker.CircuitBreaker[Payload] {
	def := DefaultBreakerSettings()
	if s.MaxRequests == 0 {
		s.MaxRequests = def.MaxRequests
	}
	if s.Interval <= 0 {
		s.Interval = def.Interval
	}
	if s.Timeout <= 0 {
		s.Timeout = def.Timeout
	}
	if s.FailureThreshold == 0 {
		s.FailureThreshold = def.FailureThreshold
	}

	metrics.SetBreakerState(name, gobreaker.StateClosed)

	return gobreaker.NewCircuitBreaker[Payload](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		IsSuccessful: breakerSuccess,
		OnStateChange: func(name string, _ gobreaker.State, to gobreaker.State) {
			metrics.SetBreakerState(name, to)
		},
	})
}

// Client errors and caller cancellation say nothing about gateway health.
func breakerSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return !gerr.Temporary()
	}
	return false
}

func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
