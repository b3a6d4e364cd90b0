package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/sigec-posto/internal/mocks"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

func newTestRecorder(receipts *mocks.MockReceiptRepository, abandonments *mocks.MockAbandonmentRepository, buffer int) *Recorder {
	breaker := circuitbreaker.New("test", config.CircuitBreakerConfig{
		MaxRequests:      2,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
	}, zap.NewNop())
	return NewRecorder(receipts, abandonments, breaker, buffer, zap.NewNop())
}

func cancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestRecorder_FlushesOnShutdown(t *testing.T) {
	// Arrange
	receipts := &mocks.MockReceiptRepository{}
	abandonments := &mocks.MockAbandonmentRepository{}
	r := newTestRecorder(receipts, abandonments, 8)

	r.ReceiptIssued(domain.Receipt{ID: "r1", Sequence: 1})
	r.ReceiptIssued(domain.Receipt{ID: "r2", Sequence: 2})
	r.VehicleAbandoned(domain.Abandonment{VehicleID: "v3"})

	// Act
	if err := r.Run(cancelledContext()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Assert
	if receipts.SavedCount() != 2 {
		t.Errorf("expected 2 receipts saved, got %d", receipts.SavedCount())
	}
	if abandonments.SavedCount() != 1 {
		t.Errorf("expected 1 abandonment saved, got %d", abandonments.SavedCount())
	}
	if receipts.Saved[0].ID != "r1" || receipts.Saved[1].ID != "r2" {
		t.Errorf("expected receipts in issue order, got %s, %s", receipts.Saved[0].ID, receipts.Saved[1].ID)
	}
}

func TestRecorder_DropsWhenBufferFull(t *testing.T) {
	receipts := &mocks.MockReceiptRepository{}
	r := newTestRecorder(receipts, &mocks.MockAbandonmentRepository{}, 1)

	r.ReceiptIssued(domain.Receipt{ID: "r1"})
	r.ReceiptIssued(domain.Receipt{ID: "r2"})

	if err := r.Run(cancelledContext()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if receipts.SavedCount() != 1 {
		t.Errorf("expected 1 receipt saved, got %d", receipts.SavedCount())
	}
}

func TestRecorder_BreakerStopsCallingFailingStore(t *testing.T) {
	calls := 0
	receipts := &mocks.MockReceiptRepository{
		SaveFunc: func(ctx context.Context, receipt *domain.Receipt) error {
			calls++
			return errors.New("connection refused")
		},
	}
	r := newTestRecorder(receipts, &mocks.MockAbandonmentRepository{}, 8)
	for i := 0; i < 5; i++ {
		r.ReceiptIssued(domain.Receipt{ID: "r"})
	}

	if err := r.Run(cancelledContext()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected the breaker to open after 2 failures, store was called %d times", calls)
	}
}
