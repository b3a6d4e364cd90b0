package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/service/billing"
	"github.com/seu-repo/sigec-posto/internal/service/simulation"
	"github.com/seu-repo/sigec-posto/internal/service/statistics"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

type runOptions struct {
	duration           time.Duration
	seed               int64
	pumps              int
	queueSize          int
	stopMode           string
	settingsFile       string
	recordAbandonments bool
	showReceipts       bool
	jsonOutput         bool
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation to a logical time horizon",
	Long: `Runs the simulation until --duration of logical time has passed, stops it
with --stop-mode and prints the pump, fuel, vehicle and financial reports.
The run is deterministic for a fixed --seed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		settings, err := runSettings(cmd, cfg.Simulation, runOpts)
		if err != nil {
			return err
		}
		mode, err := domain.ParseStopMode(runOpts.stopMode)
		if err != nil {
			return err
		}
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runSimulation(ctx, cmd.OutOrStdout(), cfg, settings, mode, runOpts, log)
	},
}

func init() {
	f := runCmd.Flags()
	f.DurationVarP(&runOpts.duration, "duration", "d", 10*time.Minute, "Logical time to simulate")
	f.Int64Var(&runOpts.seed, "seed", 0, "Random seed (0 = time based)")
	f.IntVar(&runOpts.pumps, "pumps", 0, "Number of pumps (overrides configuration)")
	f.IntVar(&runOpts.queueSize, "queue", 0, "Queue capacity (overrides configuration)")
	f.StringVar(&runOpts.stopMode, "stop-mode", string(domain.StopTruncate), "How to stop at the horizon: truncate or drain")
	f.StringVar(&runOpts.settingsFile, "settings", "", "Settings file in NAME : value : type lines, applied over the configuration")
	f.BoolVar(&runOpts.recordAbandonments, "record-abandonments", false, "Issue zero receipts for vehicles that leave the queue")
	f.BoolVar(&runOpts.showReceipts, "receipts", false, "Print every receipt")
	f.BoolVar(&runOpts.jsonOutput, "json", false, "Print the statistics report as JSON")
}

// runSettings layers the settings file and the explicitly set flags over
// the configured simulation.
func runSettings(cmd *cobra.Command, base config.Simulation, opts runOptions) (config.Simulation, error) {
	settings := base
	if opts.settingsFile != "" {
		f, err := os.Open(opts.settingsFile)
		if err != nil {
			return settings, err
		}
		defer f.Close()
		settings, err = config.UnmarshalLines(f, base)
		if err != nil {
			return settings, fmt.Errorf("%s: %w", opts.settingsFile, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		settings.Seed = opts.seed
	}
	if flags.Changed("pumps") {
		settings.PumpCount = opts.pumps
	}
	if flags.Changed("queue") {
		settings.MaxQueueSize = opts.queueSize
	}
	if flags.Changed("record-abandonments") {
		settings.RecordAbandonments = opts.recordAbandonments
	}
	return settings, settings.Validate()
}

func runSimulation(ctx context.Context, w io.Writer, cfg *config.Config, settings config.Simulation, mode domain.StopMode, opts runOptions, log *zap.Logger) error {
	billingService, err := billing.NewService(cfg.Pricing, log)
	if err != nil {
		return err
	}
	engine, err := simulation.New(settings,
		simulation.WithLogger(log),
		simulation.WithBilling(billingService),
	)
	if err != nil {
		return err
	}

	started := time.Now()
	runErr := engine.RunUntil(ctx, opts.duration)

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := engine.Stop(stopCtx, mode); err != nil {
		return err
	}
	if runErr != nil {
		warn("Interrupted at %s of logical time", engine.Now().Round(time.Millisecond))
	}

	stats := statistics.NewService(engine, nil, cfg.Finance, billingService.Currency(), 0, log)
	report, err := stats.Report(stopCtx)
	if err != nil {
		return err
	}
	snap := engine.Snapshot()

	if opts.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printSummary(w, snap, time.Since(started))
	printPumps(w, snap.Pumps)
	if opts.showReceipts {
		printReceipts(w, snap.Receipts)
	}
	printReport(w, report)
	return nil
}
