package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

// maxAdvance bounds how far one request may move the logical clock.
const maxAdvance = time.Hour

type SimulationHandler struct {
	sim ports.Simulation
	log *zap.Logger
}

func NewSimulationHandler(sim ports.Simulation, log *zap.Logger) *SimulationHandler {
	return &SimulationHandler{
		sim: sim,
		log: log,
	}
}

// SimulationStatus is the summary returned by GET /simulation.
type SimulationStatus struct {
	RunID        string        `json:"run_id"`
	Version      uint64        `json:"version"`
	Now          time.Duration `json:"now"`
	NowSeconds   float64       `json:"now_seconds"`
	Stopped      bool          `json:"stopped"`
	QueueLength  int           `json:"queue_length"`
	Arrived      int           `json:"arrived"`
	Rejected     int           `json:"rejected"`
	Receipts     int           `json:"receipts"`
	Abandonments int           `json:"abandonments"`
	PumpsBusy    int           `json:"pumps_busy"`
}

func statusOf(snap domain.Snapshot) SimulationStatus {
	busy := 0
	for _, p := range snap.Pumps {
		if p.State == domain.PumpFueling {
			busy++
		}
	}
	return SimulationStatus{
		RunID:        snap.RunID,
		Version:      snap.Version,
		Now:          snap.Now,
		NowSeconds:   snap.Now.Seconds(),
		Stopped:      snap.Stopped,
		QueueLength:  snap.QueueLength,
		Arrived:      snap.Arrived,
		Rejected:     snap.Rejected,
		Receipts:     len(snap.Receipts),
		Abandonments: len(snap.Abandonments),
		PumpsBusy:    busy,
	}
}

// Status handles GET /api/v1/simulation
func (h *SimulationHandler) Status(c *fiber.Ctx) error {
	return c.JSON(statusOf(h.sim.Snapshot()))
}

// Advance handles POST /api/v1/simulation/advance?duration=5s
func (h *SimulationHandler) Advance(c *fiber.Ctx) error {
	d, err := time.ParseDuration(c.Query("duration", "1s"))
	if err != nil || d <= 0 || d > maxAdvance {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "duration must be a positive Go duration up to 1h",
		})
	}

	if err := h.sim.RunFor(c.UserContext(), d); err != nil {
		return err
	}
	return c.JSON(statusOf(h.sim.Snapshot()))
}

// Stop handles POST /api/v1/simulation/stop?mode=truncate|drain
func (h *SimulationHandler) Stop(c *fiber.Ctx) error {
	mode, err := domain.ParseStopMode(c.Query("mode"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.sim.Stop(c.UserContext(), mode); err != nil {
		return err
	}
	h.log.Info("Simulation stopped via API", zap.String("mode", string(mode)))
	return c.JSON(statusOf(h.sim.Snapshot()))
}

// Pumps handles GET /api/v1/pumps
func (h *SimulationHandler) Pumps(c *fiber.Ctx) error {
	return c.JSON(h.sim.Snapshot().Pumps)
}

// Receipts handles GET /api/v1/receipts with optional pump, outcome and
// since (sequence) filters.
func (h *SimulationHandler) Receipts(c *fiber.Ctx) error {
	pumpID := c.QueryInt("pump", 0)
	since := c.QueryInt("since", 0)
	outcome := domain.ReceiptOutcome(c.Query("outcome"))

	snap := h.sim.Snapshot()
	out := make([]domain.Receipt, 0, len(snap.Receipts))
	for _, r := range snap.Receipts {
		if pumpID > 0 && r.PumpID != pumpID {
			continue
		}
		if outcome != "" && r.Outcome != outcome {
			continue
		}
		if r.Sequence <= since {
			continue
		}
		out = append(out, r)
	}
	return c.JSON(out)
}

// Receipt handles GET /api/v1/receipts/:id
func (h *SimulationHandler) Receipt(c *fiber.Ctx) error {
	id := c.Params("id")
	for _, r := range h.sim.Snapshot().Receipts {
		if r.ID == id {
			return c.JSON(r)
		}
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Receipt not found"})
}

// Pump handles GET /api/v1/pumps/:id
func (h *SimulationHandler) Pump(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid pump id"})
	}
	for _, p := range h.sim.Snapshot().Pumps {
		if p.ID == id {
			return c.JSON(p)
		}
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Pump not found"})
}

// Abandonments handles GET /api/v1/abandonments
func (h *SimulationHandler) Abandonments(c *fiber.Ctx) error {
	return c.JSON(h.sim.Snapshot().Abandonments)
}
