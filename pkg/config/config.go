package config

import "time"

type Config struct {
	App            AppConfig            `mapstructure:"app"`
	Simulation     Simulation           `mapstructure:"simulation"`
	Pricing        PricingConfig        `mapstructure:"pricing"`
	Finance        FinanceConfig        `mapstructure:"finance"`
	Runner         RunnerConfig         `mapstructure:"runner"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	NATS           NATSConfig           `mapstructure:"nats"`
	RabbitMQ       RabbitMQConfig       `mapstructure:"rabbitmq"`
	Messaging      MessagingConfig      `mapstructure:"messaging"`
	Vault          VaultConfig          `mapstructure:"vault"`
	OpenTelemetry  OpenTelemetryConfig  `mapstructure:"opentelemetry"`
	Prometheus     PrometheusConfig     `mapstructure:"prometheus"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Cache          CacheConfig          `mapstructure:"cache"`
	Storage        StorageConfig        `mapstructure:"storage"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// Simulation holds the tunable parameters of the forecourt. Times keep the
// units the station operators are used to: spawn and wait windows in
// milliseconds, the fueling cap in seconds.
type Simulation struct {
	MinSpawnTime           int          `mapstructure:"min_spawn_time" json:"min_spawn_time"`
	MaxSpawnTime           int          `mapstructure:"max_spawn_time" json:"max_spawn_time"`
	MinServiceTime         int          `mapstructure:"min_service_time" json:"min_service_time"`
	MaxServiceTime         int          `mapstructure:"max_service_time" json:"max_service_time"`
	MaxQueueSize           int          `mapstructure:"max_queue_size" json:"max_queue_size"`
	MaxFuelingTime         int          `mapstructure:"max_fueling_time" json:"max_fueling_time"`
	PumpVelocity           float64      `mapstructure:"pump_velocity" json:"pump_velocity"`
	PumpCount              int          `mapstructure:"pump_count" json:"pump_count"`
	PumpPriorities         []int        `mapstructure:"pump_priorities" json:"pump_priorities"`
	LowestPriorityPump     int          `mapstructure:"lowest_priority_pump" json:"lowest_priority_pump"`
	RecordAbandonments     bool         `mapstructure:"record_abandonments" json:"record_abandonments"`
	InitialFillMaxFraction float64      `mapstructure:"initial_fill_max_fraction" json:"initial_fill_max_fraction"`
	TankCapacity           TankCapacity `mapstructure:"tank_capacity" json:"tank_capacity"`
	Seed                   int64        `mapstructure:"seed" json:"seed"`
}

type TankCapacity struct {
	Car   float64 `mapstructure:"car" json:"car"`
	Van   float64 `mapstructure:"van" json:"van"`
	Lorry float64 `mapstructure:"lorry" json:"lorry"`
}

// PricingConfig is the price per litre of each fuel.
type PricingConfig struct {
	Diesel   float64 `mapstructure:"diesel"`
	Gasoline float64 `mapstructure:"gasoline"`
	LPG      float64 `mapstructure:"lpg"`
	Currency string  `mapstructure:"currency"`
}

type FinanceConfig struct {
	HourlyWage     float64 `mapstructure:"hourly_wage"`
	ShiftHours     float64 `mapstructure:"shift_hours"`
	CommissionRate float64 `mapstructure:"commission_rate"`
}

// RunnerConfig paces the logical clock of the server's simulation against
// the wall clock. The engine itself never looks at the wall clock.
type RunnerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
	StepDuration time.Duration `mapstructure:"step_duration"`
	StopMode     string        `mapstructure:"stop_mode"`
}

type HTTPConfig struct {
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	LogQueries      bool          `mapstructure:"log_queries"`
}

type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

type RabbitMQConfig struct {
	URL string `mapstructure:"url"`
}

// MessagingConfig selects the broker receipts are published to: "nats",
// "rabbitmq" or "none".
type MessagingConfig struct {
	Driver           string `mapstructure:"driver"`
	ReceiptSubject   string `mapstructure:"receipt_subject"`
	AbandonedSubject string `mapstructure:"abandoned_subject"`
}

type VaultConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Token   string `mapstructure:"token"`
}

type OpenTelemetryConfig struct {
	Enabled     bool         `mapstructure:"enabled"`
	Jaeger      JaegerConfig `mapstructure:"jaeger"`
	ServiceName string       `mapstructure:"service_name"`
}

type JaegerConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold float64       `mapstructure:"failure_threshold"`
}

type CacheConfig struct {
	StatisticsTTL   time.Duration `mapstructure:"statistics_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// StorageConfig points at the file-backed settings and receipt journal.
type StorageConfig struct {
	SettingsFile string `mapstructure:"settings_file"`
	DefaultsFile string `mapstructure:"defaults_file"`
	ReceiptsDir  string `mapstructure:"receipts_dir"`
}
