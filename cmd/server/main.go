package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/seu-repo/sigec-posto/internal/adapter/cache"
	"github.com/seu-repo/sigec-posto/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/sigec-posto/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/sigec-posto/internal/adapter/queue"
	"github.com/seu-repo/sigec-posto/internal/adapter/storage/file"
	"github.com/seu-repo/sigec-posto/internal/adapter/storage/postgres"
	"github.com/seu-repo/sigec-posto/internal/adapter/vault"
	wsAdapter "github.com/seu-repo/sigec-posto/internal/adapter/websocket"
	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/sigec-posto/internal/observability/telemetry"
	"github.com/seu-repo/sigec-posto/internal/ports"
	"github.com/seu-repo/sigec-posto/internal/service/billing"
	"github.com/seu-repo/sigec-posto/internal/service/simulation"
	"github.com/seu-repo/sigec-posto/internal/service/statistics"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

const serviceName = "sigec-posto"

func main() {
	// 1. Environment and configuration
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	v := viper.New()
	cfg, err := config.LoadWith(v, os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// 2. Logger
	logger, err := telemetry.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	if _, err := maxprocs.Set(maxprocs.Logger(logger.Sugar().Infof)); err != nil {
		logger.Warn("Failed to set GOMAXPROCS", zap.Error(err))
	}

	logger.Info("Starting SIGEC-Posto",
		zap.String("service", serviceName),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Secrets
	if cfg.Vault.Enabled {
		secrets, err := vault.NewSecretManager(cfg.Vault, logger)
		if err != nil {
			logger.Fatal("Failed to create Vault client", zap.Error(err))
		}
		if err := secrets.ResolveURLs(ctx, cfg); err != nil {
			logger.Fatal("Failed to resolve secrets", zap.Error(err))
		}
	}

	// 4. Tracing
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(cfg.OpenTelemetry, cfg.App.Version)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 5. Storage
	fileStore := file.NewSettingsStore(afero.NewOsFs(), cfg.Storage, cfg.Simulation, logger)
	var settingsStore ports.SettingsStore = fileStore

	var db *gorm.DB
	if cfg.Database.Enabled {
		db, err = postgres.NewConnection(cfg.Database, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer postgres.Close(db)

		if cfg.Database.AutoMigrate {
			if err := postgres.RunMigrations(db); err != nil {
				logger.Fatal("Failed to run migrations", zap.Error(err))
			}
		}
		settingsStore = postgres.NewSettingsStore(db, cfg.Simulation, logger)
	}

	settings, err := settingsStore.Load(ctx)
	if err != nil {
		logger.Warn("Stored settings rejected, using configuration file", zap.Error(err))
		settings = cfg.Simulation
	}

	// 6. Simulation
	billingService, err := billing.NewService(cfg.Pricing, logger)
	if err != nil {
		logger.Fatal("Invalid pricing", zap.Error(err))
	}

	engine, err := simulation.New(settings,
		simulation.WithLogger(logger),
		simulation.WithBilling(billingService),
	)
	if err != nil {
		logger.Fatal("Failed to create simulation", zap.Error(err))
	}

	hub := wsAdapter.NewHub(logger)
	engine.Subscribe(hub)

	// Sink workers outlive the simulation so the receipts issued while
	// stopping are still delivered.
	sinkCtx, cancelSinks := context.WithCancel(context.Background())
	sinks, sinkCtx := errgroup.WithContext(sinkCtx)
	sinks.Go(func() error { return hub.Run(sinkCtx) })

	if cfg.Storage.ReceiptsDir != "" {
		journal, err := file.NewReceiptJournal(afero.NewOsFs(), cfg.Storage.ReceiptsDir, engine.RunID(), 0, logger)
		if err != nil {
			logger.Fatal("Failed to open receipt journal", zap.Error(err))
		}
		defer journal.Close()
		engine.Subscribe(journal)
		sinks.Go(func() error { return journal.Run(sinkCtx) })
	}

	if db != nil {
		recorder := postgres.NewRecorder(
			postgres.NewReceiptRepository(db, logger),
			postgres.NewAbandonmentRepository(db, logger),
			circuitbreaker.New("postgres", cfg.CircuitBreaker, logger),
			0,
			logger,
		)
		engine.Subscribe(recorder)
		sinks.Go(func() error { return recorder.Run(sinkCtx) })
	}

	messageQueue, err := queue.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to message broker", zap.Error(err))
	}
	if messageQueue != nil {
		defer messageQueue.Close()

		publisher := queue.NewEventPublisher(
			messageQueue,
			circuitbreaker.New("broker", cfg.CircuitBreaker, logger),
			cfg.Messaging.ReceiptSubject,
			cfg.Messaging.AbandonedSubject,
			0,
			logger,
		)
		engine.Subscribe(publisher)
		sinks.Go(func() error { return publisher.Run(sinkCtx) })
	}

	// Config file edits go through the same path as API updates so the
	// settings store stays the source of truth across restarts.
	configHandler := handlers.NewConfigHandler(engine, settingsStore, fileStore, logger)
	config.Watch(v, configHandler.Reload, func(err error) {
		logger.Warn("Configuration change rejected", zap.Error(err))
	})

	// 7. Statistics
	statsCache := cache.New(cfg.Redis, cfg.Cache, logger)
	defer statsCache.Close()
	statsService := statistics.NewService(engine, statsCache, cfg.Finance, billingService.Currency(), cfg.Cache.StatisticsTTL, logger)

	// 8. HTTP
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.NewCORS(cfg.HTTP))

	checks := map[string]handlers.Check{
		"cache": func(ctx context.Context) error { return statsCache.Ping() },
	}
	if db != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	health := handlers.NewHealthHandler(checks)
	app.Get("/health/live", health.Live)
	app.Get("/health/ready", health.Ready)

	if cfg.Prometheus.Enabled {
		metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			metricsHandler(c.Context())
			return nil
		})
	}

	v1 := app.Group("/api/v1")
	if cfg.CircuitBreaker.Enabled {
		v1.Use(middleware.CircuitBreaker(circuitbreaker.New("api", cfg.CircuitBreaker, logger)))
	}
	handlers.RegisterRoutes(v1, handlers.Set{
		Simulation: handlers.NewSimulationHandler(engine, logger),
		Config:     configHandler,
		Stats:      handlers.NewStatsHandler(statsService, logger),
	})

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/receipts", websocket.New(func(c *websocket.Conn) {
		hub.Serve(c)
	}))

	// 9. Run until signalled
	g, gctx := errgroup.WithContext(ctx)

	if cfg.Runner.Enabled {
		runner, err := simulation.NewRunner(engine, cfg.Runner, logger)
		if err != nil {
			logger.Fatal("Invalid runner configuration", zap.Error(err))
		}
		g.Go(func() error { return runner.Run(gctx) })
	} else {
		engine.Start()
		g.Go(func() error {
			<-gctx.Done()
			mode, err := domain.ParseStopMode(cfg.Runner.StopMode)
			if err != nil {
				return err
			}
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return engine.Stop(stopCtx, mode)
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}

	cancelSinks()
	if err := sinks.Wait(); err != nil {
		logger.Error("Sink worker failed", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}
