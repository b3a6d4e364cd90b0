package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks the simulation parameters. All violations are reported
// together so a settings form can highlight every bad field at once.
func (s Simulation) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(s.MinSpawnTime >= 0, "min_spawn_time must not be negative, got %d", s.MinSpawnTime)
	check(s.MinSpawnTime <= s.MaxSpawnTime, "min_spawn_time (%d) exceeds max_spawn_time (%d)", s.MinSpawnTime, s.MaxSpawnTime)
	check(s.MinServiceTime >= 0, "min_service_time must not be negative, got %d", s.MinServiceTime)
	check(s.MinServiceTime <= s.MaxServiceTime, "min_service_time (%d) exceeds max_service_time (%d)", s.MinServiceTime, s.MaxServiceTime)
	check(s.MaxQueueSize > 0, "max_queue_size must be positive, got %d", s.MaxQueueSize)
	check(s.MaxFuelingTime > 0, "max_fueling_time must be positive, got %d", s.MaxFuelingTime)
	check(s.PumpVelocity > 0, "pump_velocity must be positive, got %g", s.PumpVelocity)
	check(s.PumpCount >= 1, "pump_count must be at least 1, got %d", s.PumpCount)
	check(s.LowestPriorityPump >= 1, "lowest_priority_pump must be at least 1, got %d", s.LowestPriorityPump)
	check(len(s.PumpPriorities) <= s.PumpCount, "pump_priorities has %d entries for %d pumps", len(s.PumpPriorities), s.PumpCount)
	for i, rank := range s.PumpPriorities {
		check(rank >= 1 && rank <= s.LowestPriorityPump,
			"pump %d priority %d outside [1, %d]", i+1, rank, s.LowestPriorityPump)
	}
	check(s.InitialFillMaxFraction >= 0 && s.InitialFillMaxFraction < 1,
		"initial_fill_max_fraction must be in [0, 1), got %g", s.InitialFillMaxFraction)
	check(s.TankCapacity.Car > 0 && s.TankCapacity.Van > 0 && s.TankCapacity.Lorry > 0,
		"tank capacities must be positive, got car=%g van=%g lorry=%g",
		s.TankCapacity.Car, s.TankCapacity.Van, s.TankCapacity.Lorry)

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

func (p PricingConfig) Validate() error {
	if p.Diesel < 0 || p.Gasoline < 0 || p.LPG < 0 {
		return fmt.Errorf("%w: fuel prices must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Validate checks the sections the simulation core depends on.
func (c *Config) Validate() error {
	return errors.Join(c.Simulation.Validate(), c.Pricing.Validate())
}
