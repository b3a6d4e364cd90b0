package mocks

import (
	"context"
	"time"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

// MockSimulation is a mock implementation of the Simulation interface
type MockSimulation struct {
	State            domain.Snapshot
	Settings         config.Simulation
	SnapshotFunc     func() domain.Snapshot
	RunForFunc       func(ctx context.Context, d time.Duration) error
	UpdateConfigFunc func(settings config.Simulation) error
	StopFunc         func(ctx context.Context, mode domain.StopMode) error
}

func (m *MockSimulation) Snapshot() domain.Snapshot {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc()
	}
	return m.State
}

func (m *MockSimulation) Now() time.Duration {
	return m.Snapshot().Now
}

func (m *MockSimulation) RunFor(ctx context.Context, d time.Duration) error {
	if m.RunForFunc != nil {
		return m.RunForFunc(ctx, d)
	}
	m.State.Now += d
	return nil
}

func (m *MockSimulation) Config() config.Simulation {
	return m.Settings
}

func (m *MockSimulation) UpdateConfig(settings config.Simulation) error {
	if m.UpdateConfigFunc != nil {
		return m.UpdateConfigFunc(settings)
	}
	m.Settings = settings
	return nil
}

func (m *MockSimulation) Stop(ctx context.Context, mode domain.StopMode) error {
	if m.StopFunc != nil {
		return m.StopFunc(ctx, mode)
	}
	m.State.Stopped = true
	return nil
}

// MockStatisticsService is a mock implementation of StatisticsService
type MockStatisticsService struct {
	FuelStatsFunc      func(ctx context.Context) (*domain.FuelStats, error)
	VehicleStatsFunc   func(ctx context.Context) (*domain.VehicleStats, error)
	FinancialStatsFunc func(ctx context.Context) (*domain.FinancialStats, error)
	ReportFunc         func(ctx context.Context) (*domain.StatisticsReport, error)
}

func (m *MockStatisticsService) FuelStats(ctx context.Context) (*domain.FuelStats, error) {
	if m.FuelStatsFunc != nil {
		return m.FuelStatsFunc(ctx)
	}
	return &domain.FuelStats{}, nil
}

func (m *MockStatisticsService) VehicleStats(ctx context.Context) (*domain.VehicleStats, error) {
	if m.VehicleStatsFunc != nil {
		return m.VehicleStatsFunc(ctx)
	}
	return &domain.VehicleStats{}, nil
}

func (m *MockStatisticsService) FinancialStats(ctx context.Context) (*domain.FinancialStats, error) {
	if m.FinancialStatsFunc != nil {
		return m.FinancialStatsFunc(ctx)
	}
	return &domain.FinancialStats{}, nil
}

func (m *MockStatisticsService) Report(ctx context.Context) (*domain.StatisticsReport, error) {
	if m.ReportFunc != nil {
		return m.ReportFunc(ctx)
	}
	return &domain.StatisticsReport{}, nil
}
