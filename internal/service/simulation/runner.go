package simulation

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/ports"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

// Runner paces a simulation against the wall clock: every tick it advances
// the logical clock by one step. Stopping the runner stops the simulation.
type Runner struct {
	sim  ports.Simulation
	tick time.Duration
	step time.Duration
	mode domain.StopMode
	log  *zap.Logger
}

func NewRunner(sim ports.Simulation, cfg config.RunnerConfig, log *zap.Logger) (*Runner, error) {
	mode, err := domain.ParseStopMode(cfg.StopMode)
	if err != nil {
		return nil, err
	}
	if cfg.TickInterval <= 0 || cfg.StepDuration <= 0 {
		return nil, errors.New("runner tick_interval and step_duration must be positive")
	}
	return &Runner{
		sim:  sim,
		tick: cfg.TickInterval,
		step: cfg.StepDuration,
		mode: mode,
		log:  log,
	}, nil
}

// Run blocks until ctx is done or the simulation stops on its own.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	r.log.Info("Simulation runner started",
		zap.Duration("tick", r.tick),
		zap.Duration("step", r.step),
	)

	for {
		select {
		case <-ctx.Done():
			return r.stop()
		case <-ticker.C:
			err := r.sim.RunFor(ctx, r.step)
			switch {
			case err == nil:
			case errors.Is(err, ErrStopped):
				r.log.Info("Simulation already stopped, runner exiting")
				return nil
			case ctx.Err() != nil:
				return r.stop()
			default:
				r.log.Error("Simulation step failed", zap.Error(err))
			}
		}
	}
}

func (r *Runner) stop() error {
	// The run context is already cancelled; drain must not depend on it.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := r.sim.Stop(ctx, r.mode); err != nil {
		r.log.Error("Failed to stop simulation", zap.Error(err))
		return err
	}
	snap := r.sim.Snapshot()
	r.log.Info("Simulation runner stopped",
		zap.Duration("logical_time", snap.Now),
		zap.Int("receipts", len(snap.Receipts)),
		zap.Int("abandoned", len(snap.Abandonments)),
	)
	return nil
}
