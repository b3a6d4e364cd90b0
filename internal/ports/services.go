package ports

import (
	"context"
	"time"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}

// Simulation is the part of the engine exposed to the API and the runner.
type Simulation interface {
	Snapshot() domain.Snapshot
	Now() time.Duration
	RunFor(ctx context.Context, d time.Duration) error
	Config() config.Simulation
	UpdateConfig(settings config.Simulation) error
	Stop(ctx context.Context, mode domain.StopMode) error
}

// SnapshotSource is anything that can hand out a consistent snapshot.
type SnapshotSource interface {
	Snapshot() domain.Snapshot
}

type StatisticsService interface {
	FuelStats(ctx context.Context) (*domain.FuelStats, error)
	VehicleStats(ctx context.Context) (*domain.VehicleStats, error)
	FinancialStats(ctx context.Context) (*domain.FinancialStats, error)
	Report(ctx context.Context) (*domain.StatisticsReport, error)
}

// EventSink receives simulation outcomes as they happen.
type EventSink interface {
	ReceiptIssued(receipt domain.Receipt)
	VehicleAbandoned(abandonment domain.Abandonment)
}
