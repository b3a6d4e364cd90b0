package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/pkg/config"
)

func TestLocalCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()

	if err := c.Set(ctx, "plain", "value", 0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := c.Set(ctx, "struct", struct {
		Litres float64 `json:"litres"`
	}{12.5}, 0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if v, err := c.Get(ctx, "plain"); err != nil || v != "value" {
		t.Errorf("expected value, got %q (%v)", v, err)
	}
	if v, err := c.Get(ctx, "struct"); err != nil || v != `{"litres":12.5}` {
		t.Errorf("expected JSON, got %q (%v)", v, err)
	}
}

func TestLocalCache_MissAndExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()

	if _, err := c.Get(ctx, "absent"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}

	_ = c.Set(ctx, "short", "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if _, err := c.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected expired key to miss, got %v", err)
	}

	c.cleanup()
	c.mu.RLock()
	n := len(c.data)
	c.mu.RUnlock()
	if n != 0 {
		t.Errorf("expected cleanup to evict, %d entries left", n)
	}
}

func TestLocalCache_CloseTwice(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	if err := c.Close(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestNew_FallsBackToLocal(t *testing.T) {
	c := New(config.RedisConfig{Enabled: true, URL: "not a url"}, config.CacheConfig{}, zap.NewNop())
	defer c.Close()

	if _, ok := c.(*LocalCache); !ok {
		t.Errorf("expected *LocalCache, got %T", c)
	}
}
