package ports

import (
	"context"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

type ReceiptRepository interface {
	Save(ctx context.Context, receipt *domain.Receipt) error
	FindByID(ctx context.Context, id string) (*domain.Receipt, error)
	FindByRun(ctx context.Context, runID string) ([]domain.Receipt, error)
	FindByPump(ctx context.Context, runID string, pumpID int) ([]domain.Receipt, error)
}

type AbandonmentRepository interface {
	Save(ctx context.Context, abandonment *domain.Abandonment) error
	FindByRun(ctx context.Context, runID string) ([]domain.Abandonment, error)
}

// SettingsStore persists the simulation configuration. Implementations are
// free to pick the representation (key-value rows, line records); the
// simulation only sees whole Simulation values.
type SettingsStore interface {
	Load(ctx context.Context) (config.Simulation, error)
	Save(ctx context.Context, settings config.Simulation) error
}
