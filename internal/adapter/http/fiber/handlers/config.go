package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/ports"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

// DefaultsSource provides the station's default settings.
type DefaultsSource interface {
	Defaults(ctx context.Context) (config.Simulation, error)
}

type ConfigHandler struct {
	sim      ports.Simulation
	store    ports.SettingsStore
	defaults DefaultsSource
	log      *zap.Logger
}

func NewConfigHandler(sim ports.Simulation, store ports.SettingsStore, defaults DefaultsSource, log *zap.Logger) *ConfigHandler {
	return &ConfigHandler{
		sim:      sim,
		store:    store,
		defaults: defaults,
		log:      log,
	}
}

// Get handles GET /api/v1/config
func (h *ConfigHandler) Get(c *fiber.Ctx) error {
	return c.JSON(h.sim.Config())
}

// Update handles PUT /api/v1/config. Fields missing from the body keep
// their current value.
func (h *ConfigHandler) Update(c *fiber.Ctx) error {
	settings := h.sim.Config()
	if err := c.BodyParser(&settings); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	return h.apply(c, settings)
}

// RestoreDefaults handles POST /api/v1/config/defaults
func (h *ConfigHandler) RestoreDefaults(c *fiber.Ctx) error {
	settings, err := h.defaults.Defaults(c.UserContext())
	if err != nil {
		return err
	}
	// The pump count of a running simulation is fixed.
	settings.PumpCount = h.sim.Config().PumpCount
	return h.apply(c, settings)
}

// Reload applies settings edited outside the API, such as a config file
// change, and saves them so they survive a restart. The pump count of the
// running simulation is kept.
func (h *ConfigHandler) Reload(settings config.Simulation) error {
	if running := h.sim.Config().PumpCount; settings.PumpCount != running {
		h.log.Warn("Ignoring pump count change until restart",
			zap.Int("running", running),
			zap.Int("requested", settings.PumpCount),
		)
		settings.PumpCount = running
	}
	if err := h.update(context.Background(), settings); err != nil {
		return err
	}
	h.log.Info("Settings reloaded")
	return nil
}

func (h *ConfigHandler) apply(c *fiber.Ctx, settings config.Simulation) error {
	if err := h.update(c.UserContext(), settings); err != nil {
		return err
	}
	return c.JSON(h.sim.Config())
}

func (h *ConfigHandler) update(ctx context.Context, settings config.Simulation) error {
	if err := h.sim.UpdateConfig(settings); err != nil {
		return err
	}

	if h.store != nil {
		if err := h.store.Save(ctx, settings); err != nil {
			h.log.Error("Settings applied but not saved", zap.Error(err))
			return err
		}
	}
	return nil
}
