package simulation

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

// minArrivalGap keeps a zero spawn window from scheduling an unbounded
// number of arrivals at a single instant.
const minArrivalGap = time.Millisecond

// Arrival is a vehicle and the delay after which it reaches the forecourt.
type Arrival struct {
	Delay   time.Duration
	Vehicle *domain.Vehicle
}

// ArrivalSource yields arrivals lazily. ok is false once the source is
// exhausted.
type ArrivalSource interface {
	Next(now time.Duration) (a Arrival, ok bool)
}

// FillPolicy returns the litres already in a tank of the given capacity.
type FillPolicy func(rng *rand.Rand, capacity, maxFraction float64) float64

// RandomFill draws the existing fill uniformly from [0, maxFraction) of the
// tank, so every vehicle needs at least (1 - maxFraction) of its capacity.
func RandomFill(rng *rand.Rand, capacity, maxFraction float64) float64 {
	return capacity * maxFraction * rng.Float64()
}

// ArrivalGenerator is the default ArrivalSource: inter-arrival delays are
// uniform in [MinSpawnTime, MaxSpawnTime] milliseconds, and vehicle and fuel
// kinds are uniform over their enumerations.
type ArrivalGenerator struct {
	cfg  config.Simulation
	rng  *rand.Rand
	fill FillPolicy
}

func NewArrivalGenerator(cfg config.Simulation, seed int64, fill FillPolicy) *ArrivalGenerator {
	if fill == nil {
		fill = RandomFill
	}
	return &ArrivalGenerator{
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(seed)),
		fill: fill,
	}
}

// Reset restarts the sequence from seed.
func (g *ArrivalGenerator) Reset(seed int64) {
	g.rng = rand.New(rand.NewSource(seed))
}

// SetConfig applies new timing and tank parameters to future arrivals.
func (g *ArrivalGenerator) SetConfig(cfg config.Simulation) {
	g.cfg = cfg
}

func (g *ArrivalGenerator) Next(now time.Duration) (Arrival, bool) {
	delay := uniformMillis(g.rng, g.cfg.MinSpawnTime, g.cfg.MaxSpawnTime)
	if delay < minArrivalGap {
		delay = minArrivalGap
	}

	kind := domain.VehicleKinds[g.rng.Intn(domain.VehicleKindCount)]
	fuel := domain.FuelKinds[g.rng.Intn(domain.FuelKindCount)]
	capacity := tankCapacity(g.cfg.TankCapacity, kind)
	required := capacity - g.fill(g.rng, capacity, g.cfg.InitialFillMaxFraction)

	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		id = uuid.New()
	}

	at := now + delay
	return Arrival{
		Delay: delay,
		Vehicle: &domain.Vehicle{
			ID:             id.String(),
			Kind:           kind,
			Fuel:           fuel,
			TankCapacity:   capacity,
			RequiredLitres: required,
			ArrivedAt:      at,
			QueuedAt:       at,
		},
	}, true
}

// uniformMillis draws a duration uniformly from [min, max] milliseconds.
func uniformMillis(rng *rand.Rand, min, max int) time.Duration {
	if max <= min {
		return time.Duration(min) * time.Millisecond
	}
	return time.Duration(min+rng.Intn(max-min+1)) * time.Millisecond
}

func tankCapacity(t config.TankCapacity, kind domain.VehicleKind) float64 {
	switch kind {
	case domain.VehicleVan:
		return t.Van
	case domain.VehicleLorry:
		return t.Lorry
	default:
		return t.Car
	}
}
