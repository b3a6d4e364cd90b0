package queue

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/pkg/config"
)

// MessageQueue defines the interface for a message queue adapter
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Close() error
}

const (
	DriverNone     = "none"
	DriverNATS     = "nats"
	DriverRabbitMQ = "rabbitmq"
)

// New connects to the broker selected by cfg.Messaging.Driver. It returns
// nil without error when messaging is disabled.
func New(cfg *config.Config, log *zap.Logger) (MessageQueue, error) {
	switch cfg.Messaging.Driver {
	case DriverNone, "":
		return nil, nil
	case DriverNATS:
		q, err := NewNATSQueue(cfg.NATS, log)
		if err != nil {
			return nil, err
		}
		return q, nil
	case DriverRabbitMQ:
		q, err := NewRabbitMQQueue(cfg.RabbitMQ.URL, log)
		if err != nil {
			return nil, err
		}
		return q, nil
	default:
		return nil, fmt.Errorf("unknown messaging driver %q", cfg.Messaging.Driver)
	}
}
