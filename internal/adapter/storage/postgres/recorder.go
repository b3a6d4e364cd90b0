package postgres

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/sigec-posto/internal/observability/telemetry"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

type record struct {
	receipt     *domain.Receipt
	abandonment *domain.Abandonment
}

// Recorder persists receipts and abandonments off the simulation path. The
// engine hands records over without blocking; Run writes them.
type Recorder struct {
	receipts     ports.ReceiptRepository
	abandonments ports.AbandonmentRepository
	breaker      *gobreaker.CircuitBreaker
	in           chan record
	timeout      time.Duration
	log          *zap.Logger
}

func NewRecorder(receipts ports.ReceiptRepository, abandonments ports.AbandonmentRepository, breaker *gobreaker.CircuitBreaker, buffer int, log *zap.Logger) *Recorder {
	if buffer <= 0 {
		buffer = 1024
	}
	return &Recorder{
		receipts:     receipts,
		abandonments: abandonments,
		breaker:      breaker,
		in:           make(chan record, buffer),
		timeout:      5 * time.Second,
		log:          log,
	}
}

func (r *Recorder) ReceiptIssued(receipt domain.Receipt) {
	r.enqueue(record{receipt: &receipt})
}

func (r *Recorder) VehicleAbandoned(a domain.Abandonment) {
	r.enqueue(record{abandonment: &a})
}

func (r *Recorder) enqueue(rec record) {
	select {
	case r.in <- rec:
	default:
		telemetry.ReceiptsPersistedTotal.WithLabelValues("dropped").Inc()
		r.log.Warn("Persistence buffer full, dropping record")
	}
}

// Run writes buffered records until ctx is done, then flushes the rest.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case rec := <-r.in:
			r.write(rec)
		case <-ctx.Done():
			for {
				select {
				case rec := <-r.in:
					r.write(rec)
				default:
					return nil
				}
			}
		}
	}
}

func (r *Recorder) write(rec record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	_, err := r.breaker.Execute(func() (interface{}, error) {
		if rec.receipt != nil {
			return nil, r.receipts.Save(ctx, rec.receipt)
		}
		return nil, r.abandonments.Save(ctx, rec.abandonment)
	})
	switch {
	case err == nil:
		telemetry.ReceiptsPersistedTotal.WithLabelValues("ok").Inc()
	case circuitbreaker.IsOpen(err):
		telemetry.ReceiptsPersistedTotal.WithLabelValues("dropped").Inc()
	default:
		telemetry.ReceiptsPersistedTotal.WithLabelValues("error").Inc()
		r.log.Error("Failed to persist record", zap.Error(err))
	}
}
