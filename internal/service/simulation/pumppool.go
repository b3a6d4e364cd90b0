package simulation

import (
	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

// Pump is one fueling position with its cumulative counters.
type Pump struct {
	id       int
	priority int
	process  *FuelingProcess
	gen      uint64

	litres  [domain.FuelKindCount]float64
	byFuel  [domain.FuelKindCount]int
	byKind  [domain.VehicleKindCount]int
	receipt *domain.Receipt
}

func (p *Pump) ID() int { return p.id }
func (p *Pump) Priority() int { return p.priority }
func (p *Pump) Idle() bool { return p.process.Idle() }

// record adds a finished transaction to the pump's counters.
func (p *Pump) record(r domain.Receipt) {
	if fi, ok := r.FuelKind.Index(); ok {
		p.litres[fi] += r.Litres
		p.byFuel[fi]++
	}
	if ki, ok := r.VehicleKind.Index(); ok {
		p.byKind[ki]++
	}
	p.receipt = &r
}

func (p *Pump) information() domain.PumpInformation {
	info := domain.PumpInformation{
		ID:              p.id,
		Priority:        p.priority,
		State:           domain.PumpIdle,
		LitresDispensed: p.litres,
		VehiclesByFuel:  p.byFuel,
		VehiclesByKind:  p.byKind,
	}
	if plan, ok := p.process.Plan(); ok && p.process.State() == StateFueling {
		info.State = domain.PumpFueling
		info.CurrentVehicleID = plan.Vehicle.ID
	}
	if p.receipt != nil {
		r := *p.receipt
		info.Receipt = &r
	}
	return info
}

// PumpPool holds the pumps, created once for the lifetime of a run.
type PumpPool struct {
	pumps []*Pump
}

func NewPumpPool(cfg config.Simulation) *PumpPool {
	pool := &PumpPool{pumps: make([]*Pump, cfg.PumpCount)}
	for i := range pool.pumps {
		id := i + 1
		pool.pumps[i] = &Pump{id: id, process: NewFuelingProcess(id)}
	}
	pool.SetPriorities(cfg.PumpPriorities, cfg.LowestPriorityPump)
	return pool
}

// SetPriorities assigns ranks in pump order. Pumps without a configured rank
// get lowest.
func (pp *PumpPool) SetPriorities(ranks []int, lowest int) {
	for i, p := range pp.pumps {
		if i < len(ranks) {
			p.priority = ranks[i]
		} else {
			p.priority = lowest
		}
	}
}

// SelectIdle returns the idle pump with the best (lowest) rank, breaking
// ties by the smallest id.
func (pp *PumpPool) SelectIdle() (*Pump, bool) {
	var best *Pump
	for _, p := range pp.pumps {
		if !p.Idle() {
			continue
		}
		if best == nil || p.priority < best.priority {
			best = p
		}
	}
	return best, best != nil
}

func (pp *PumpPool) Pumps() []*Pump { return pp.pumps }

func (pp *PumpPool) Len() int { return len(pp.pumps) }

func (pp *PumpPool) Busy() int {
	n := 0
	for _, p := range pp.pumps {
		if !p.Idle() {
			n++
		}
	}
	return n
}

func (pp *PumpPool) Information() []domain.PumpInformation {
	out := make([]domain.PumpInformation, len(pp.pumps))
	for i, p := range pp.pumps {
		out[i] = p.information()
	}
	return out
}
