package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seu-repo/sigec-posto/internal/adapter/storage/postgres"
	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/sigec-posto/internal/service/billing"
	"github.com/seu-repo/sigec-posto/internal/service/simulation"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

func TestDatabase_ReceiptRepository(t *testing.T) {
	env := SetupTestEnvironment(t)
	CleanDatabase(t, env.DB)

	ctx := context.Background()
	repo := postgres.NewReceiptRepository(env.Gorm, env.Logger)
	runID := uuid.NewString()

	for i := 1; i <= 3; i++ {
		r := &domain.Receipt{
			ID:          uuid.NewString(),
			RunID:       runID,
			Sequence:    i,
			VehicleKind: domain.VehicleLorry,
			FuelKind:    domain.FuelDiesel,
			PumpID:      1 + i%2,
			Litres:      float64(10 * i),
			ServiceTime: time.Duration(i) * time.Second,
			Outcome:     domain.ReceiptCompleted,
		}
		require.NoError(t, repo.Save(ctx, r))
	}

	t.Run("FindByRun keeps issue order", func(t *testing.T) {
		receipts, err := repo.FindByRun(ctx, runID)
		require.NoError(t, err)
		require.Len(t, receipts, 3)
		for i, r := range receipts {
			assert.Equal(t, i+1, r.Sequence)
			assert.Equal(t, domain.VehicleLorry, r.VehicleKind)
			assert.Equal(t, domain.FuelDiesel, r.FuelKind)
		}
	})

	t.Run("FindByPump", func(t *testing.T) {
		receipts, err := repo.FindByPump(ctx, runID, 2)
		require.NoError(t, err)
		require.Len(t, receipts, 2)
		assert.Equal(t, 1, receipts[0].Sequence)
		assert.Equal(t, 3, receipts[1].Sequence)
	})

	t.Run("FindByID missing returns nil", func(t *testing.T) {
		r, err := repo.FindByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, r)
	})

	t.Run("kinds are stored as names", func(t *testing.T) {
		var fuel string
		err := env.DB.QueryRowContext(ctx, `SELECT fuel_kind FROM receipts WHERE run_id = $1 LIMIT 1`, runID).Scan(&fuel)
		require.NoError(t, err)
		assert.Equal(t, "Diesel", fuel)
	})
}

func TestDatabase_SettingsStore(t *testing.T) {
	env := SetupTestEnvironment(t)
	CleanDatabase(t, env.DB)

	ctx := context.Background()
	store := postgres.NewSettingsStore(env.Gorm, config.DefaultSimulation(), env.Logger)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSimulation(), got)

	s := config.DefaultSimulation()
	s.MaxQueueSize = 7
	s.PumpPriorities = []int{3, 1, 2}
	require.NoError(t, store.Save(ctx, s))

	// Saving twice upserts.
	s.PumpVelocity = 2.5
	require.NoError(t, store.Save(ctx, s))

	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	var rows int
	require.NoError(t, env.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM simulation_settings`).Scan(&rows))
	assert.Equal(t, len(config.Settings(s)), rows)
}

func TestDatabase_RecorderPersistsSimulation(t *testing.T) {
	env := SetupTestEnvironment(t)
	CleanDatabase(t, env.DB)

	// Arrange
	receipts := postgres.NewReceiptRepository(env.Gorm, env.Logger)
	abandonments := postgres.NewAbandonmentRepository(env.Gorm, env.Logger)
	recorder := postgres.NewRecorder(receipts, abandonments,
		circuitbreaker.New("postgres", config.Default().CircuitBreaker, env.Logger), 0, env.Logger)

	pricing, err := billing.NewService(billing.DefaultPricingConfig(), env.Logger)
	require.NoError(t, err)
	settings := config.DefaultSimulation()
	settings.Seed = 99
	settings.PumpCount = 2
	engine, err := simulation.New(settings,
		simulation.WithLogger(env.Logger),
		simulation.WithBilling(pricing),
		simulation.WithSink(recorder),
	)
	require.NoError(t, err)

	// Act
	ctx := context.Background()
	require.NoError(t, engine.RunUntil(ctx, 5*time.Minute))
	require.NoError(t, engine.Stop(ctx, domain.StopTruncate))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.NoError(t, recorder.Run(cancelled))

	// Assert
	snap := engine.Snapshot()
	stored, err := receipts.FindByRun(ctx, engine.RunID())
	require.NoError(t, err)
	assert.Len(t, stored, len(snap.Receipts))

	storedAbandonments, err := abandonments.FindByRun(ctx, engine.RunID())
	require.NoError(t, err)
	assert.Len(t, storedAbandonments, len(snap.Abandonments))
}
