package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidtube/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

type pingPool struct {
	fakePool
}

func (pingPool) Ping(context.Context) error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func baseConfig() config.Config {
	return config.Config{
		Feed:      config.FeedConfig{DefaultPageSize: 10, MaxPageSize: 100, ProjectionWorkers: 4},
		RateLimit: config.RateLimitConfig{Requests: 10, Window: time.Minute, Burst: 5, TTL: time.Minute},
	}
}

func TestBuildDependencies(t *testing.T) {
	cfg := baseConfig()
	cfg.ObjectStore = config.ObjectStoreConfig{Bucket: "test-bucket", Endpoint: "http://localhost:9000", Region: "us-east-1"}
	cfg.Search = config.SearchConfig{Enabled: true, URL: "http://localhost:9200", Index: "videos"}
	cfg.Reaper = config.ReaperConfig{QueueSize: 4, Workers: 1, Timeout: time.Second}

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	deps, cleanup, err := buildDependencies(context.Background(), fakePool{}, cfg, discardLogger(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected cleanup function")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := cleanup(ctx); err != nil {
			t.Errorf("cleanup: %v", err)
		}
	}()

	if deps.Likes == nil || deps.Subscriptions == nil || deps.Videos == nil {
		t.Fatal("expected engagement services to be configured")
	}
	if deps.Comments == nil || deps.Tweets == nil || deps.Dashboard == nil || deps.Channels == nil {
		t.Fatal("expected content services to be configured")
	}
	if deps.ToggleLimiter == nil {
		t.Fatal("expected toggle rate limiter to be configured")
	}
	if deps.Paging.MaxPageSize != 100 {
		t.Fatalf("expected paging from config got %+v", deps.Paging)
	}
	if deps.Database != nil {
		t.Fatal("expected no health checker for a pool without Ping")
	}
}

func TestBuildDependenciesWithoutOptionalBackends(t *testing.T) {
	deps, cleanup, err := buildDependencies(context.Background(), pingPool{}, baseConfig(), discardLogger(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cleanup(context.Background()); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if deps.Database == nil {
		t.Fatal("expected pool to serve as health checker")
	}
}

func TestBuildDependenciesRejectsBadSearchConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.Search = config.SearchConfig{Enabled: true, URL: "http://localhost:9200"}

	if _, _, err := buildDependencies(context.Background(), fakePool{}, cfg, discardLogger(), nil); err == nil {
		t.Fatal("expected error for missing search index")
	}
}
