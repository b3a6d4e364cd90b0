package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/pkg/config"
)

func TestNew_TripsOnFailureRatio(t *testing.T) {
	cb := New("test", config.CircuitBreakerConfig{
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.6,
	}, zap.NewNop())

	fail := func() (interface{}, error) { return nil, errors.New("boom") }
	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(fail)
	}

	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("expected open breaker, got %s", cb.State())
	}
	_, err := cb.Execute(func() (interface{}, error) { return nil, nil })
	if !IsOpen(err) {
		t.Errorf("expected open-state error, got %v", err)
	}
}

func TestNew_StaysClosedBelowMinimum(t *testing.T) {
	cb := New("test", config.CircuitBreakerConfig{MaxRequests: 5, Interval: time.Minute, Timeout: time.Minute}, zap.NewNop())

	for i := 0; i < 4; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, errors.New("boom") })
	}

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected closed breaker, got %s", cb.State())
	}
}
