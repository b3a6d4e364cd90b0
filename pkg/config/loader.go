package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Load reads config.yaml (if present) and the APP_* environment on top of
// Default().
func Load() (*Config, error) {
	return LoadWith(viper.New(), "")
}

// LoadWith loads into v. When path is empty the usual config directories are
// searched.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		v.AddConfigPath("/app/configs")
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	v.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	v.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	v.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	v.BindEnv("nats.url", "NATS_URL", "APP_NATS_URL")
	v.BindEnv("rabbitmq.url", "RABBITMQ_URL", "APP_RABBITMQ_URL")
	v.BindEnv("vault.token", "VAULT_TOKEN", "APP_VAULT_TOKEN")
	v.BindEnv("app.environment", "APP_ENVIRONMENT")
	v.BindEnv("logging.level", "LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Watch re-reads the simulation section whenever the config file changes.
// Only edits that pass validation reach apply; rejected edits go to onError.
func Watch(v *viper.Viper, apply func(Simulation) error, onError func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		var sim Simulation
		if err := v.UnmarshalKey("simulation", &sim); err != nil {
			onError(fmt.Errorf("failed to reload %s: %w", e.Name, err))
			return
		}
		if err := sim.Validate(); err != nil {
			onError(err)
			return
		}
		if err := apply(sim); err != nil {
			onError(err)
		}
	})
	v.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("app.name", d.App.Name)
	v.SetDefault("app.version", d.App.Version)
	v.SetDefault("app.environment", d.App.Environment)

	v.SetDefault("simulation.min_spawn_time", d.Simulation.MinSpawnTime)
	v.SetDefault("simulation.max_spawn_time", d.Simulation.MaxSpawnTime)
	v.SetDefault("simulation.min_service_time", d.Simulation.MinServiceTime)
	v.SetDefault("simulation.max_service_time", d.Simulation.MaxServiceTime)
	v.SetDefault("simulation.max_queue_size", d.Simulation.MaxQueueSize)
	v.SetDefault("simulation.max_fueling_time", d.Simulation.MaxFuelingTime)
	v.SetDefault("simulation.pump_velocity", d.Simulation.PumpVelocity)
	v.SetDefault("simulation.pump_count", d.Simulation.PumpCount)
	v.SetDefault("simulation.lowest_priority_pump", d.Simulation.LowestPriorityPump)
	v.SetDefault("simulation.record_abandonments", d.Simulation.RecordAbandonments)
	v.SetDefault("simulation.initial_fill_max_fraction", d.Simulation.InitialFillMaxFraction)
	v.SetDefault("simulation.tank_capacity.car", d.Simulation.TankCapacity.Car)
	v.SetDefault("simulation.tank_capacity.van", d.Simulation.TankCapacity.Van)
	v.SetDefault("simulation.tank_capacity.lorry", d.Simulation.TankCapacity.Lorry)

	v.SetDefault("pricing.diesel", d.Pricing.Diesel)
	v.SetDefault("pricing.gasoline", d.Pricing.Gasoline)
	v.SetDefault("pricing.lpg", d.Pricing.LPG)
	v.SetDefault("pricing.currency", d.Pricing.Currency)

	v.SetDefault("finance.hourly_wage", d.Finance.HourlyWage)
	v.SetDefault("finance.shift_hours", d.Finance.ShiftHours)
	v.SetDefault("finance.commission_rate", d.Finance.CommissionRate)

	v.SetDefault("runner.enabled", d.Runner.Enabled)
	v.SetDefault("runner.tick_interval", d.Runner.TickInterval)
	v.SetDefault("runner.step_duration", d.Runner.StepDuration)
	v.SetDefault("runner.stop_mode", d.Runner.StopMode)

	v.SetDefault("http.port", d.HTTP.Port)
	v.SetDefault("http.allowed_origins", d.HTTP.AllowedOrigins)
	v.SetDefault("http.read_timeout", d.HTTP.ReadTimeout)
	v.SetDefault("http.write_timeout", d.HTTP.WriteTimeout)
	v.SetDefault("http.idle_timeout", d.HTTP.IdleTimeout)

	v.SetDefault("database.max_open_conns", d.Database.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", d.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", d.Database.ConnMaxLifetime)
	v.SetDefault("database.auto_migrate", d.Database.AutoMigrate)

	v.SetDefault("nats.max_reconnects", d.NATS.MaxReconnects)
	v.SetDefault("nats.reconnect_wait", d.NATS.ReconnectWait)

	v.SetDefault("messaging.driver", d.Messaging.Driver)
	v.SetDefault("messaging.receipt_subject", d.Messaging.ReceiptSubject)
	v.SetDefault("messaging.abandoned_subject", d.Messaging.AbandonedSubject)

	v.SetDefault("opentelemetry.service_name", d.OpenTelemetry.ServiceName)
	v.SetDefault("opentelemetry.jaeger.endpoint", d.OpenTelemetry.Jaeger.Endpoint)
	v.SetDefault("prometheus.enabled", d.Prometheus.Enabled)
	v.SetDefault("prometheus.path", d.Prometheus.Path)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("circuit_breaker.enabled", d.CircuitBreaker.Enabled)
	v.SetDefault("circuit_breaker.max_requests", d.CircuitBreaker.MaxRequests)
	v.SetDefault("circuit_breaker.interval", d.CircuitBreaker.Interval)
	v.SetDefault("circuit_breaker.timeout", d.CircuitBreaker.Timeout)
	v.SetDefault("circuit_breaker.failure_threshold", d.CircuitBreaker.FailureThreshold)

	v.SetDefault("cache.statistics_ttl", d.Cache.StatisticsTTL)
	v.SetDefault("cache.cleanup_interval", d.Cache.CleanupInterval)

	v.SetDefault("storage.settings_file", d.Storage.SettingsFile)
	v.SetDefault("storage.defaults_file", d.Storage.DefaultsFile)
	v.SetDefault("storage.receipts_dir", d.Storage.ReceiptsDir)
}
