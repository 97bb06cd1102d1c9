package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/engagement"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/search"
	"github.com/vidtube/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
// The returned cleanup drains background workers and must be called on shutdown.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger, recorder engagement.ToggleRecorder) (handlers.Dependencies, func(context.Context) error, error) {
	engineDeps := engagement.Dependencies{
		Users:    repositories.NewPostgresUserRepository(pool),
		Videos:   repositories.NewPostgresVideoRepository(pool),
		Comments: repositories.NewPostgresCommentRepository(pool),
		Tweets:   repositories.NewPostgresTweetRepository(pool),
		Edges:    repositories.NewPostgresRelationshipStore(pool),
		History:  repositories.NewPostgresWatchHistory(pool),
		Recorder: recorder,
	}

	if cfg.Search.Enabled {
		searcher, err := search.NewElasticSearcher(cfg.Search)
		if err != nil {
			return handlers.Dependencies{}, nil, err
		}
		engineDeps.Search = searcher
	}

	cleanup := func(context.Context) error { return nil }
	if cfg.ObjectStore.Bucket != "" {
		store, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, nil, fmt.Errorf("configure object storage: %w", err)
		}
		reaper := media.NewReaper(store, media.ReaperConfig{
			QueueSize: cfg.Reaper.QueueSize,
			Workers:   cfg.Reaper.Workers,
			Timeout:   cfg.Reaper.Timeout,
		}, logger)
		engineDeps.Reaper = reaper
		cleanup = reaper.Shutdown
	} else {
		logger.Warn("object storage not configured, replaced media assets will not be deleted")
	}

	paging := engagement.Paging{DefaultPageSize: cfg.Feed.DefaultPageSize, MaxPageSize: cfg.Feed.MaxPageSize}
	engine, err := engagement.NewService(engineDeps, engagement.Options{
		Paging:            paging,
		ProjectionWorkers: cfg.Feed.ProjectionWorkers,
		Policy: engagement.Policy{
			RejectSelfSubscribe: cfg.Policy.RejectSelfSubscribe,
			RejectSelfLike:      cfg.Policy.RejectSelfLike,
		},
	})
	if err != nil {
		return handlers.Dependencies{}, nil, errors.Join(err, cleanup(ctx))
	}

	deps := handlers.Dependencies{
		Likes:         engine,
		Subscriptions: engine,
		Videos:        engine,
		Comments:      engine,
		Tweets:        engine,
		Dashboard:     engine,
		Channels:      engine,
		Paging:        paging,
		ToggleLimiter: middleware.NewKeyedRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst, cfg.RateLimit.TTL),
	}
	if checker, ok := pool.(handlers.HealthChecker); ok {
		deps.Database = checker
	}

	return deps, cleanup, nil
}
