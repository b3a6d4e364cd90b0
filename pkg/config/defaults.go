package config

import "time"

// DefaultSimulation returns the forecourt settings the station ships with.
func DefaultSimulation() Simulation {
	return Simulation{
		MinSpawnTime:           1500,
		MaxSpawnTime:           2200,
		MinServiceTime:         7000,
		MaxServiceTime:         10000,
		MaxQueueSize:           5,
		MaxFuelingTime:         18,
		PumpVelocity:           1.5,
		PumpCount:              9,
		LowestPriorityPump:     6,
		InitialFillMaxFraction: 0.25,
		TankCapacity: TankCapacity{
			Car:   40,
			Van:   80,
			Lorry: 150,
		},
	}
}

// Default returns a complete configuration with every infrastructure
// dependency disabled, suitable for the CLI and for tests.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:        "sigec-posto",
			Version:     "v1.0.0",
			Environment: "development",
		},
		Simulation: DefaultSimulation(),
		Pricing: PricingConfig{
			Diesel:   1.32,
			Gasoline: 1.28,
			LPG:      0.62,
			Currency: "GBP",
		},
		Finance: FinanceConfig{
			HourlyWage:     2.49,
			ShiftHours:     8,
			CommissionRate: 0.01,
		},
		Runner: RunnerConfig{
			Enabled:      true,
			TickInterval: time.Second,
			StepDuration: time.Second,
			StopMode:     "truncate",
		},
		HTTP: HTTPConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
			AutoMigrate:     true,
		},
		NATS: NATSConfig{
			MaxReconnects: 10,
			ReconnectWait: 2 * time.Second,
		},
		Messaging: MessagingConfig{
			Driver:           "none",
			ReceiptSubject:   "posto.receipts",
			AbandonedSubject: "posto.abandoned",
		},
		OpenTelemetry: OpenTelemetryConfig{
			ServiceName: "sigec-posto",
			Jaeger:      JaegerConfig{Endpoint: "http://jaeger:14268/api/traces"},
		},
		Prometheus: PrometheusConfig{Enabled: true, Path: "/metrics"},
		Logging:    LoggingConfig{Level: "info", Format: "json"},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 0.6,
		},
		Cache: CacheConfig{
			StatisticsTTL:   30 * time.Second,
			CleanupInterval: time.Minute,
		},
		Storage: StorageConfig{
			SettingsFile: "./data/CurrentValues.txt",
			DefaultsFile: "./data/DefaultValues.txt",
			ReceiptsDir:  "./data/receipts",
		},
	}
}
