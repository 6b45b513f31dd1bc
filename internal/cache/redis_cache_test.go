package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestNoopReportCacheAlwaysMisses(t *testing.T) {
	var c ReportCache = NoopReportCache{}
	ctx := context.Background()

	if err := c.Set(ctx, "dashboard", map[string]int{"a": 1}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var out map[string]int
	hit, err := c.Get(ctx, "dashboard", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if hit {
		t.Fatalf("noop cache must never hit")
	}
}

func TestRedisReportCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("CASHFLOW_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CASHFLOW_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	c := NewRedisReportCache(addr, "", 0)
	defer c.Close()
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	type report struct {
		Revenue string `json:"revenue"`
	}
	if err := c.Set(ctx, "test:financial", report{Revenue: "10.50"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got report
	hit, err := c.Get(ctx, "test:financial", &got)
	if err != nil || !hit {
		t.Fatalf("expected hit, got hit=%v err=%v", hit, err)
	}
	if got.Revenue != "10.50" {
		t.Fatalf("unexpected revenue %q", got.Revenue)
	}

	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	hit, err = c.Get(ctx, "test:financial", &got)
	if err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if hit {
		t.Fatalf("expected miss after invalidate")
	}
}
