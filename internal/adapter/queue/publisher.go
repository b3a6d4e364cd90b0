package queue

import (
	"context"
	"encoding/json"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/sigec-posto/internal/observability/telemetry"
)

type message struct {
	subject string
	data    []byte
}

// EventPublisher forwards receipts and abandonments to a broker. The
// simulation hands events over without blocking; Run does the publishing.
// When the buffer is full, or the breaker is open, events are dropped and
// counted.
type EventPublisher struct {
	mq               MessageQueue
	breaker          *gobreaker.CircuitBreaker
	receiptSubject   string
	abandonedSubject string
	out              chan message
	log              *zap.Logger
}

func NewEventPublisher(mq MessageQueue, breaker *gobreaker.CircuitBreaker, receiptSubject, abandonedSubject string, buffer int, log *zap.Logger) *EventPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &EventPublisher{
		mq:               mq,
		breaker:          breaker,
		receiptSubject:   receiptSubject,
		abandonedSubject: abandonedSubject,
		out:              make(chan message, buffer),
		log:              log,
	}
}

func (p *EventPublisher) ReceiptIssued(r domain.Receipt) {
	p.enqueue(p.receiptSubject, r)
}

func (p *EventPublisher) VehicleAbandoned(a domain.Abandonment) {
	p.enqueue(p.abandonedSubject, a)
}

func (p *EventPublisher) enqueue(subject string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		p.log.Error("Failed to encode event", zap.String("subject", subject), zap.Error(err))
		return
	}
	select {
	case p.out <- message{subject: subject, data: data}:
	default:
		telemetry.EventsPublishedTotal.WithLabelValues(subject, "dropped").Inc()
		p.log.Warn("Event buffer full, dropping event", zap.String("subject", subject))
	}
}

// Run publishes buffered events until ctx is done, then flushes what is
// left.
func (p *EventPublisher) Run(ctx context.Context) error {
	for {
		select {
		case msg := <-p.out:
			p.publish(msg)
		case <-ctx.Done():
			for {
				select {
				case msg := <-p.out:
					p.publish(msg)
				default:
					return nil
				}
			}
		}
	}
}

func (p *EventPublisher) publish(msg message) {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.mq.Publish(msg.subject, msg.data)
	})
	switch {
	case err == nil:
		telemetry.EventsPublishedTotal.WithLabelValues(msg.subject, "ok").Inc()
	case circuitbreaker.IsOpen(err):
		telemetry.EventsPublishedTotal.WithLabelValues(msg.subject, "dropped").Inc()
	default:
		telemetry.EventsPublishedTotal.WithLabelValues(msg.subject, "error").Inc()
		p.log.Error("Failed to publish event", zap.String("subject", msg.subject), zap.Error(err))
	}
}
