package redis

import (
	"testing"
	"time"

	"github.com/aldomartell/tipply-backend/pkg/config"
)

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when neither url nor address set")
	}
}

func TestOptionsFromConfigAddress(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		Address:     "localhost:6379",
		Password:    "pw",
		DB:          2,
		PoolSize:    5,
		DialTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.Password != "pw" || opts.DB != 2 {
		t.Fatalf("options not propagated: %+v", opts)
	}
	if opts.PoolSize != 5 {
		t.Fatalf("pool size = %d, want 5", opts.PoolSize)
	}
}

func TestOptionsFromConfigURL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:secret@example.com:6380/1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "example.com:6380" {
		t.Fatalf("addr = %s", opts.Addr)
	}
	if opts.DB != 1 {
		t.Fatalf("db = %d, want 1", opts.DB)
	}
}

func TestKeyNamespacing(t *testing.T) {
	c := &Client{}
	if got := c.LockKey("cron-worker"); got != "tip:lock:cron-worker" {
		t.Fatalf("lock key = %s", got)
	}
	if got := c.CounterKey("weekly-runs"); got != "tip:counter:weekly-runs" {
		t.Fatalf("counter key = %s", got)
	}
}
