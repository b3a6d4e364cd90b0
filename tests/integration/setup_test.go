package integration

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/sigec-posto/internal/adapter/storage/postgres"
	"github.com/seu-repo/sigec-posto/pkg/config"

	_ "github.com/lib/pq"
)

// TestEnv holds test environment resources
type TestEnv struct {
	DB                *sql.DB
	Gorm              *gorm.DB
	Redis             *redis.Client
	RedisURL          string
	PostgresContainer testcontainers.Container
	RedisContainer    testcontainers.Container
	Logger            *zap.Logger
}

var testEnv *TestEnv

// SetupTestEnvironment starts Postgres and Redis once per package run, or
// connects to DATABASE_URL / REDIS_URL when they are set (CI).
func SetupTestEnvironment(t *testing.T) *TestEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}
	if testEnv != nil {
		return testEnv
	}

	ctx := context.Background()
	logger, _ := zap.NewDevelopment()

	pgURL, redisURL := os.Getenv("DATABASE_URL"), os.Getenv("REDIS_URL")
	env := &TestEnv{Logger: logger}

	if pgURL == "" {
		pgContainer, err := tcpostgres.Run(ctx, "postgres:16-alpine",
			tcpostgres.WithDatabase("posto_test"),
			tcpostgres.WithUsername("posto"),
			tcpostgres.WithPassword("posto_test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			t.Skipf("Postgres container unavailable: %v", err)
		}
		env.PostgresContainer = pgContainer

		pgURL, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("Failed to get postgres connection string: %v", err)
		}
	}

	if redisURL == "" {
		redisContainer, err := tcredis.Run(ctx, "redis:7-alpine",
			testcontainers.WithWaitStrategy(
				wait.ForLog("Ready to accept connections").
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			t.Skipf("Redis container unavailable: %v", err)
		}
		env.RedisContainer = redisContainer

		redisURL, err = redisContainer.ConnectionString(ctx)
		if err != nil {
			t.Fatalf("Failed to get redis connection string: %v", err)
		}
	}

	db, err := sql.Open("postgres", pgURL)
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}
	for i := 0; i < 30; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatalf("Failed to ping postgres: %v", err)
	}
	env.DB = db

	env.Gorm, err = postgres.NewConnection(config.DatabaseConfig{URL: pgURL, MaxOpenConns: 5}, logger)
	if err != nil {
		t.Fatalf("Failed to open gorm connection: %v", err)
	}
	if err := postgres.RunMigrations(env.Gorm); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}
	env.Redis = redis.NewClient(opt)
	if err := env.Redis.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to redis: %v", err)
	}
	env.RedisURL = redisURL

	testEnv = env
	return testEnv
}

func TestMain(m *testing.M) {
	code := m.Run()
	teardown()
	os.Exit(code)
}

func teardown() {
	if testEnv == nil {
		return
	}
	ctx := context.Background()

	if testEnv.DB != nil {
		testEnv.DB.Close()
	}
	if testEnv.Gorm != nil {
		postgres.Close(testEnv.Gorm)
	}
	if testEnv.Redis != nil {
		testEnv.Redis.Close()
	}
	if testEnv.PostgresContainer != nil {
		testEnv.PostgresContainer.Terminate(ctx)
	}
	if testEnv.RedisContainer != nil {
		testEnv.RedisContainer.Terminate(ctx)
	}
	testEnv = nil
}

// CleanDatabase truncates the simulation tables.
func CleanDatabase(t *testing.T, db *sql.DB) {
	for _, table := range []string{"receipts", "abandonments", "simulation_settings"} {
		if _, err := db.Exec("TRUNCATE TABLE " + table); err != nil {
			t.Logf("Failed to truncate %s: %v", table, err)
		}
	}
}

// FlushRedis clears all Redis keys
func FlushRedis(t *testing.T, client *redis.Client) {
	if err := client.FlushAll(context.Background()).Err(); err != nil {
		t.Fatalf("Failed to flush redis: %v", err)
	}
}
