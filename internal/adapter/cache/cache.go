package cache

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/ports"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

// ErrCacheMiss is returned by Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

// New returns the Redis cache when it is enabled and reachable, and the
// in-memory cache otherwise.
func New(redisCfg config.RedisConfig, cacheCfg config.CacheConfig, log *zap.Logger) ports.Cache {
	if redisCfg.Enabled {
		c, err := NewRedisCache(redisCfg.URL, log)
		if err == nil {
			return c
		}
		log.Warn("Redis unavailable, falling back to in-memory cache", zap.Error(err))
	}
	return NewLocalCache(cacheCfg.CleanupInterval, log)
}

// encode turns a cache value into its stored string form. Structured values
// are stored as JSON.
func encode(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to marshal value: %w", err)
		}
		return string(data), nil
	}
}
