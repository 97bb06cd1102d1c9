package engagement

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/vidtube/backend/internal/models"
)

// StatsReducer computes owner-facing channel rollups. Unpublished videos are
// counted, unlike in the public feed.
type StatsReducer struct {
	users   UserStore
	videos  VideoStore
	edges   EdgeStore
	workers int
}

// NewStatsReducer constructs a StatsReducer.
func NewStatsReducer(users UserStore, videos VideoStore, edges EdgeStore, workers int) *StatsReducer {
	return &StatsReducer{users: users, videos: videos, edges: edges, workers: workers}
}

// ChannelStats reduces the channel's subscribers, videos, views and video
// likes. A channel with nothing yields all zeros.
func (s *StatsReducer) ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error) {
	if err := validateID("channel id", channelID); err != nil {
		return models.ChannelStats{}, err
	}
	if _, err := s.users.FindByID(ctx, channelID); err != nil {
		return models.ChannelStats{}, err
	}

	var stats models.ChannelStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.edges.CountBySubject(gctx, models.EdgeSubscription, channelID)
		stats.SubscribersCount = n
		return err
	})

	g.Go(func() error {
		videos, err := s.videos.ListByOwner(gctx, channelID, true)
		if err != nil {
			return err
		}
		stats.VideosCount = int64(len(videos))
		for _, v := range videos {
			stats.ViewsCount += v.Views
		}

		var likes atomic.Int64
		lg, lctx := errgroup.WithContext(gctx)
		if s.workers > 0 {
			lg.SetLimit(s.workers)
		}
		for _, v := range videos {
			lg.Go(func() error {
				n, err := s.edges.CountBySubject(lctx, models.EdgeVideoLike, v.ID)
				likes.Add(n)
				return err
			})
		}
		if err := lg.Wait(); err != nil {
			return err
		}
		stats.LikesCount = likes.Load()
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.ChannelStats{}, err
	}
	return stats, nil
}
