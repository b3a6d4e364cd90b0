package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/sigec-posto/internal/mocks"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

func newTestPublisher(mq MessageQueue, buffer int) *EventPublisher {
	breaker := circuitbreaker.New("test", config.CircuitBreakerConfig{
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.6,
	}, zap.NewNop())
	return NewEventPublisher(mq, breaker, "posto.receipts", "posto.abandoned", buffer, zap.NewNop())
}

func TestEventPublisher_PublishesJSON(t *testing.T) {
	// Arrange
	mq := mocks.NewMockMessageQueue()
	p := newTestPublisher(mq, 8)
	p.ReceiptIssued(domain.Receipt{ID: "r1", FuelKind: domain.FuelLPG, Litres: 12})
	p.VehicleAbandoned(domain.Abandonment{VehicleID: "v2", FuelKind: domain.FuelDiesel})

	// Act
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Run(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Assert
	receipts := mq.GetPublishedMessages("posto.receipts")
	if len(receipts) != 1 {
		t.Fatalf("expected 1 receipt message, got %d", len(receipts))
	}
	var r domain.Receipt
	if err := json.Unmarshal(receipts[0], &r); err != nil {
		t.Fatalf("expected valid JSON, got %v", err)
	}
	if r.ID != "r1" || r.FuelKind != domain.FuelLPG {
		t.Errorf("unexpected receipt %+v", r)
	}
	if len(mq.GetPublishedMessages("posto.abandoned")) != 1 {
		t.Error("expected 1 abandonment message")
	}
}

func TestEventPublisher_DropsWhenBufferFull(t *testing.T) {
	mq := mocks.NewMockMessageQueue()
	p := newTestPublisher(mq, 1)

	p.ReceiptIssued(domain.Receipt{ID: "r1"})
	p.ReceiptIssued(domain.Receipt{ID: "r2"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = p.Run(ctx)

	if got := len(mq.GetPublishedMessages("posto.receipts")); got != 1 {
		t.Errorf("expected 1 published, got %d", got)
	}
}

func TestEventPublisher_BrokerFailuresOpenBreaker(t *testing.T) {
	mq := mocks.NewMockMessageQueue()
	calls := 0
	mq.PublishFunc = func(topic string, data []byte) error {
		calls++
		return errors.New("broker down")
	}
	p := newTestPublisher(mq, 16)
	for i := 0; i < 10; i++ {
		p.ReceiptIssued(domain.Receipt{ID: "r"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = p.Run(ctx)

	if calls != 3 {
		t.Errorf("expected breaker to stop calls after 3 failures, got %d", calls)
	}
}

func TestNew_DisabledDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Messaging.Driver = DriverNone

	mq, err := New(cfg, zap.NewNop())
	if err != nil || mq != nil {
		t.Errorf("expected nil queue and no error, got %v, %v", mq, err)
	}

	cfg.Messaging.Driver = "kafka"
	if _, err := New(cfg, zap.NewNop()); err == nil {
		t.Error("expected error for unknown driver")
	}
}
