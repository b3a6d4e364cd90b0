package handlers

import "github.com/gofiber/fiber/v2"

// Set groups the API handlers mounted under /api/v1.
type Set struct {
	Simulation *SimulationHandler
	Config     *ConfigHandler
	Stats      *StatsHandler
}

func RegisterRoutes(v1 fiber.Router, h Set) {
	v1.Get("/simulation", h.Simulation.Status)
	v1.Post("/simulation/advance", h.Simulation.Advance)
	v1.Post("/simulation/stop", h.Simulation.Stop)

	v1.Get("/pumps", h.Simulation.Pumps)
	v1.Get("/pumps/:id", h.Simulation.Pump)
	v1.Get("/receipts", h.Simulation.Receipts)
	v1.Get("/receipts/:id", h.Simulation.Receipt)
	v1.Get("/abandonments", h.Simulation.Abandonments)

	v1.Get("/stats", h.Stats.Report)
	v1.Get("/stats/fuel", h.Stats.Fuel)
	v1.Get("/stats/vehicles", h.Stats.Vehicles)
	v1.Get("/stats/finance", h.Stats.Finance)

	v1.Get("/config", h.Config.Get)
	v1.Put("/config", h.Config.Update)
	v1.Post("/config/defaults", h.Config.RestoreDefaults)
}
