package mocks

import (
	"context"
	"sync"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

// MockReceiptRepository is a mock implementation of ReceiptRepository
type MockReceiptRepository struct {
	mu             sync.Mutex
	Saved          []domain.Receipt
	SaveFunc       func(ctx context.Context, receipt *domain.Receipt) error
	FindByIDFunc   func(ctx context.Context, id string) (*domain.Receipt, error)
	FindByRunFunc  func(ctx context.Context, runID string) ([]domain.Receipt, error)
	FindByPumpFunc func(ctx context.Context, runID string, pumpID int) ([]domain.Receipt, error)
}

func (m *MockReceiptRepository) Save(ctx context.Context, receipt *domain.Receipt) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, receipt)
	}
	m.mu.Lock()
	m.Saved = append(m.Saved, *receipt)
	m.mu.Unlock()
	return nil
}

func (m *MockReceiptRepository) FindByID(ctx context.Context, id string) (*domain.Receipt, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockReceiptRepository) FindByRun(ctx context.Context, runID string) ([]domain.Receipt, error) {
	if m.FindByRunFunc != nil {
		return m.FindByRunFunc(ctx, runID)
	}
	return []domain.Receipt{}, nil
}

func (m *MockReceiptRepository) FindByPump(ctx context.Context, runID string, pumpID int) ([]domain.Receipt, error) {
	if m.FindByPumpFunc != nil {
		return m.FindByPumpFunc(ctx, runID, pumpID)
	}
	return []domain.Receipt{}, nil
}

// SavedCount returns how many receipts reached Save.
func (m *MockReceiptRepository) SavedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Saved)
}

// MockAbandonmentRepository is a mock implementation of AbandonmentRepository
type MockAbandonmentRepository struct {
	mu            sync.Mutex
	Saved         []domain.Abandonment
	SaveFunc      func(ctx context.Context, abandonment *domain.Abandonment) error
	FindByRunFunc func(ctx context.Context, runID string) ([]domain.Abandonment, error)
}

func (m *MockAbandonmentRepository) Save(ctx context.Context, abandonment *domain.Abandonment) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, abandonment)
	}
	m.mu.Lock()
	m.Saved = append(m.Saved, *abandonment)
	m.mu.Unlock()
	return nil
}

func (m *MockAbandonmentRepository) FindByRun(ctx context.Context, runID string) ([]domain.Abandonment, error) {
	if m.FindByRunFunc != nil {
		return m.FindByRunFunc(ctx, runID)
	}
	return []domain.Abandonment{}, nil
}

func (m *MockAbandonmentRepository) SavedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Saved)
}

// MockSettingsStore is a mock implementation of SettingsStore
type MockSettingsStore struct {
	Settings *config.Simulation
	LoadFunc func(ctx context.Context) (config.Simulation, error)
	SaveFunc func(ctx context.Context, settings config.Simulation) error
}

func (m *MockSettingsStore) Load(ctx context.Context) (config.Simulation, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	if m.Settings != nil {
		return *m.Settings, nil
	}
	return config.DefaultSimulation(), nil
}

func (m *MockSettingsStore) Save(ctx context.Context, settings config.Simulation) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, settings)
	}
	m.Settings = &settings
	return nil
}
