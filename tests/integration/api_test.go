package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/adapter/cache"
	"github.com/seu-repo/sigec-posto/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/sigec-posto/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/sigec-posto/internal/adapter/storage/file"
	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/service/billing"
	"github.com/seu-repo/sigec-posto/internal/service/simulation"
	"github.com/seu-repo/sigec-posto/internal/service/statistics"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

// setupTestApp wires the real engine, statistics and file settings store
// behind the HTTP API. It needs no containers.
func setupTestApp(t *testing.T) (*fiber.App, *simulation.Engine) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}
	logger := zap.NewNop()
	cfg := config.Default()
	cfg.Simulation.Seed = 2024

	pricing, err := billing.NewService(cfg.Pricing, logger)
	require.NoError(t, err)
	engine, err := simulation.New(cfg.Simulation, simulation.WithLogger(logger), simulation.WithBilling(pricing))
	require.NoError(t, err)

	store := file.NewSettingsStore(afero.NewMemMapFs(), cfg.Storage, cfg.Simulation, logger)
	localCache := cache.NewLocalCache(time.Minute, logger)
	t.Cleanup(func() { localCache.Close() })
	stats := statistics.NewService(engine, localCache, cfg.Finance, pricing.Currency(), time.Minute, logger)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(logger)})
	handlers.RegisterRoutes(app.Group("/api/v1"), handlers.Set{
		Simulation: handlers.NewSimulationHandler(engine, logger),
		Config:     handlers.NewConfigHandler(engine, store, store, logger),
		Stats:      handlers.NewStatsHandler(stats, logger),
	})
	return app, engine
}

func call(t *testing.T, app *fiber.App, method, target string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestAPI_AdvanceStopAndReport(t *testing.T) {
	app, _ := setupTestApp(t)

	var status handlers.SimulationStatus
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/v1/simulation/advance?duration=30m", nil, &status))
	assert.Equal(t, 30*time.Minute, status.Now)
	assert.Greater(t, status.Arrived, 0)

	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/v1/simulation/stop?mode=drain", nil, &status))
	assert.True(t, status.Stopped)
	assert.Equal(t, 0, status.PumpsBusy)
	assert.Equal(t, 0, status.QueueLength)

	// Every vehicle that entered the forecourt ended in exactly one outcome.
	var receipts []domain.Receipt
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/v1/receipts", nil, &receipts))
	var abandonments []domain.Abandonment
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/v1/abandonments", nil, &abandonments))
	assert.Equal(t, status.Arrived-status.Rejected, len(receipts)+len(abandonments))

	var report domain.StatisticsReport
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/v1/stats", nil, &report))
	assert.Equal(t, len(receipts), report.Fuel.ServedVehicles)

	var revenue float64
	for _, r := range receipts {
		revenue += r.Cost
	}
	assert.InDelta(t, revenue, report.Finance.Revenue, 1e-6)

	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPost, "/api/v1/simulation/advance?duration=1s", nil, nil))
}

func TestAPI_ConfigLifecycle(t *testing.T) {
	app, engine := setupTestApp(t)

	var settings config.Simulation
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPut, "/api/v1/config", map[string]interface{}{"max_queue_size": 2}, &settings))
	assert.Equal(t, 2, settings.MaxQueueSize)
	assert.Equal(t, 2, engine.Config().MaxQueueSize)

	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPut, "/api/v1/config", map[string]interface{}{"pump_velocity": -1}, nil))
	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPut, "/api/v1/config", map[string]interface{}{"pump_count": 3}, nil))

	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/v1/config/defaults", nil, &settings))
	assert.Equal(t, config.DefaultSimulation().MaxQueueSize, settings.MaxQueueSize)
}
