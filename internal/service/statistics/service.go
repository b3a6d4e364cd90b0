package statistics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/observability/telemetry"
	"github.com/seu-repo/sigec-posto/internal/ports"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

const cachePrefix = "posto:stats:"

// Service computes statistics on demand from a fresh snapshot. Results are
// cached per snapshot version, so a cache hit can never be stale.
type Service struct {
	source   ports.SnapshotSource
	cache    ports.Cache
	finance  config.FinanceConfig
	currency string
	ttl      time.Duration
	log      *zap.Logger
	tracer   trace.Tracer
}

// NewService creates the statistics service. cache may be nil.
func NewService(source ports.SnapshotSource, cache ports.Cache, finance config.FinanceConfig, currency string, ttl time.Duration, log *zap.Logger) ports.StatisticsService {
	return &Service{
		source:   source,
		cache:    cache,
		finance:  finance,
		currency: currency,
		ttl:      ttl,
		log:      log,
		tracer:   otel.Tracer("sigec-posto/statistics"),
	}
}

func (s *Service) FuelStats(ctx context.Context) (*domain.FuelStats, error) {
	return compute(ctx, s, "fuel", ComputeFuelStats)
}

func (s *Service) VehicleStats(ctx context.Context) (*domain.VehicleStats, error) {
	return compute(ctx, s, "vehicles", ComputeVehicleStats)
}

func (s *Service) FinancialStats(ctx context.Context) (*domain.FinancialStats, error) {
	return compute(ctx, s, "finance", s.financial)
}

func (s *Service) Report(ctx context.Context) (*domain.StatisticsReport, error) {
	return compute(ctx, s, "report", func(snap domain.Snapshot) domain.StatisticsReport {
		return domain.StatisticsReport{
			Version:  snap.Version,
			Fuel:     ComputeFuelStats(snap),
			Vehicles: ComputeVehicleStats(snap),
			Finance:  s.financial(snap),
		}
	})
}

func (s *Service) financial(snap domain.Snapshot) domain.FinancialStats {
	return ComputeFinancialStats(snap, s.finance, s.currency)
}

func compute[T any](ctx context.Context, s *Service, name string, fn func(domain.Snapshot) T) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "statistics."+name)
	defer span.End()
	start := time.Now()

	snap := s.source.Snapshot()
	key := fmt.Sprintf("%s%s:%s:%d", cachePrefix, snap.RunID, name, snap.Version)
	span.SetAttributes(
		attribute.String("run_id", snap.RunID),
		attribute.Int64("snapshot.version", int64(snap.Version)),
	)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var out T
			if err := json.Unmarshal([]byte(raw), &out); err == nil {
				span.SetAttributes(attribute.Bool("cache.hit", true))
				telemetry.StatisticsLatency.WithLabelValues(name, "hit").Observe(time.Since(start).Seconds())
				return &out, nil
			}
			s.log.Warn("Discarding unreadable cached statistics", zap.String("key", key))
		}
	}

	out := fn(snap)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out, s.ttl); err != nil {
			s.log.Warn("Failed to cache statistics", zap.String("key", key), zap.Error(err))
		}
	}

	span.SetAttributes(attribute.Bool("cache.hit", false))
	telemetry.StatisticsLatency.WithLabelValues(name, "miss").Observe(time.Since(start).Seconds())
	return &out, nil
}
