package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/ports"
)

type StatsHandler struct {
	stats ports.StatisticsService
	log   *zap.Logger
}

func NewStatsHandler(stats ports.StatisticsService, log *zap.Logger) *StatsHandler {
	return &StatsHandler{
		stats: stats,
		log:   log,
	}
}

// Fuel handles GET /api/v1/stats/fuel
func (h *StatsHandler) Fuel(c *fiber.Ctx) error {
	stats, err := h.stats.FuelStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// Vehicles handles GET /api/v1/stats/vehicles
func (h *StatsHandler) Vehicles(c *fiber.Ctx) error {
	stats, err := h.stats.VehicleStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// Finance handles GET /api/v1/stats/finance
func (h *StatsHandler) Finance(c *fiber.Ctx) error {
	stats, err := h.stats.FinancialStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// Report handles GET /api/v1/stats
func (h *StatsHandler) Report(c *fiber.Ctx) error {
	report, err := h.stats.Report(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(report)
}
