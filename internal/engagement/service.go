package engagement

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// Dependencies lists the collaborators required by the engine. Search,
// Reaper and Recorder are optional.
type Dependencies struct {
	Users    UserStore
	Videos   VideoStore
	Comments CommentStore
	Tweets   TweetStore
	Edges    EdgeStore
	History  WatchHistory
	Search   Searcher
	Reaper   AssetReaper
	Recorder ToggleRecorder
}

// Policy holds the self-reference rules left to the deployment.
type Policy struct {
	RejectSelfSubscribe bool
	RejectSelfLike      bool
}

// Options tunes the engine.
type Options struct {
	Paging            Paging
	ProjectionWorkers int
	Policy            Policy
}

// Service is the engagement engine exposed to transports.
type Service struct {
	users    UserStore
	videos   VideoStore
	comments CommentStore
	tweets   TweetStore
	edges    EdgeStore
	history  WatchHistory
	reaper   AssetReaper

	toggler   *Toggler
	projector *Projector
	feed      *FeedAssembler
	stats     *StatsReducer

	now   func() time.Time
	newID func() string
}

// NewService validates deps and assembles the engine components.
func NewService(deps Dependencies, opts Options) (*Service, error) {
	switch {
	case deps.Users == nil:
		return nil, errors.New("engagement: user store is required")
	case deps.Videos == nil:
		return nil, errors.New("engagement: video store is required")
	case deps.Comments == nil:
		return nil, errors.New("engagement: comment store is required")
	case deps.Tweets == nil:
		return nil, errors.New("engagement: tweet store is required")
	case deps.Edges == nil:
		return nil, errors.New("engagement: edge store is required")
	case deps.History == nil:
		return nil, errors.New("engagement: watch history is required")
	}

	paging := opts.Paging
	if paging.DefaultPageSize <= 0 {
		paging = DefaultPaging
	}

	toggleOpts := []ToggleOption{WithRecorder(deps.Recorder)}
	if opts.Policy.RejectSelfLike {
		toggleOpts = append(toggleOpts, RejectSelf(models.EdgeVideoLike, models.EdgeCommentLike, models.EdgeTweetLike))
	}
	if opts.Policy.RejectSelfSubscribe {
		toggleOpts = append(toggleOpts, RejectSelf(models.EdgeSubscription))
	}

	projector := NewProjector(deps.Users, deps.Edges)

	return &Service{
		users:     deps.Users,
		videos:    deps.Videos,
		comments:  deps.Comments,
		tweets:    deps.Tweets,
		edges:     deps.Edges,
		history:   deps.History,
		reaper:    deps.Reaper,
		toggler:   NewToggler(deps.Edges, deps.Users, deps.Videos, deps.Comments, deps.Tweets, toggleOpts...),
		projector: projector,
		feed:      NewFeedAssembler(deps.Users, deps.Videos, deps.Comments, deps.Tweets, deps.Edges, deps.Search, projector, paging, opts.ProjectionWorkers),
		stats:     NewStatsReducer(deps.Users, deps.Videos, deps.Edges, opts.ProjectionWorkers),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}, nil
}

// ToggleLike likes or unlikes a video, comment or tweet.
func (s *Service) ToggleLike(ctx context.Context, kind models.EntityKind, subjectID, actorID string) (res ToggleResult, err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.ToggleLike", slog.String("entity_kind", string(kind)), slog.String("subject_id", subjectID))
	defer func() { span.End(err) }()

	edge, ok := models.LikeEdgeFor(kind)
	if !ok {
		return ToggleResult{}, invalidArgument("%q cannot be liked", kind)
	}
	return s.toggler.Toggle(ctx, edge, subjectID, actorID)
}

// ToggleSubscription subscribes subscriberID to channelID or cancels the
// subscription.
func (s *Service) ToggleSubscription(ctx context.Context, channelID, subscriberID string) (res ToggleResult, err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.ToggleSubscription", slog.String("channel_id", channelID))
	defer func() { span.End(err) }()

	return s.toggler.Toggle(ctx, models.EdgeSubscription, channelID, subscriberID)
}

// GetEntityView projects a single entity for viewerID. Videos use the detail
// projection.
func (s *Service) GetEntityView(ctx context.Context, kind models.EntityKind, id, viewerID string) (view models.EntityView, err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.GetEntityView", slog.String("entity_kind", string(kind)), slog.String("entity_id", id))
	defer func() { span.End(err) }()

	if err := validateID(string(kind)+" id", id); err != nil {
		return models.EntityView{}, err
	}
	if err := validateViewer(viewerID); err != nil {
		return models.EntityView{}, err
	}

	view.Kind = kind
	switch kind {
	case models.EntityVideo:
		v, err := s.videos.FindByID(ctx, id)
		if err != nil {
			return models.EntityView{}, err
		}
		if err := visibleTo(v, viewerID); err != nil {
			return models.EntityView{}, err
		}
		projected, err := s.projector.Video(ctx, v, viewerID, true)
		if err != nil {
			return models.EntityView{}, err
		}
		view.Video = &projected
	case models.EntityComment:
		c, err := s.comments.FindByID(ctx, id)
		if err != nil {
			return models.EntityView{}, err
		}
		parent, err := s.videos.FindByID(ctx, c.VideoID)
		if err != nil {
			return models.EntityView{}, err
		}
		if err := visibleTo(parent, viewerID); err != nil {
			return models.EntityView{}, err
		}
		projected, err := s.projector.Comment(ctx, c, viewerID)
		if err != nil {
			return models.EntityView{}, err
		}
		view.Comment = &projected
	case models.EntityTweet:
		t, err := s.tweets.FindByID(ctx, id)
		if err != nil {
			return models.EntityView{}, err
		}
		projected, err := s.projector.Tweet(ctx, t, viewerID)
		if err != nil {
			return models.EntityView{}, err
		}
		view.Tweet = &projected
	case models.EntityChannel:
		u, err := s.users.FindByID(ctx, id)
		if err != nil {
			return models.EntityView{}, err
		}
		projected, err := s.projector.Channel(ctx, u, viewerID)
		if err != nil {
			return models.EntityView{}, err
		}
		view.Channel = &projected
	default:
		return models.EntityView{}, invalidArgument("unknown entity kind %q", kind)
	}
	return view, nil
}

// ListFeed returns one page of the video feed.
func (s *Service) ListFeed(ctx context.Context, filter VideoFilter, order Order, req PageRequest, viewerID string) (page models.Page[models.VideoView], err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.ListFeed", slog.Bool("search", filter.Query != ""), slog.String("owner_id", filter.OwnerID))
	defer func() { span.End(err) }()

	return s.feed.Videos(ctx, filter, order, req, viewerID)
}

// ListChannelVideos returns the channel owner's own videos, unpublished
// included.
func (s *Service) ListChannelVideos(ctx context.Context, channelID string, order Order, req PageRequest) (page models.Page[models.VideoView], err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.ListChannelVideos", slog.String("channel_id", channelID))
	defer func() { span.End(err) }()

	if err := validateID("channel id", channelID); err != nil {
		return models.Page[models.VideoView]{}, err
	}
	return s.feed.Videos(ctx, VideoFilter{OwnerID: channelID}, order, req, channelID)
}

// GetChannelStats returns the owner-facing rollup of channelID.
func (s *Service) GetChannelStats(ctx context.Context, channelID string) (stats models.ChannelStats, err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.GetChannelStats", slog.String("channel_id", channelID))
	defer func() { span.End(err) }()

	return s.stats.ChannelStats(ctx, channelID)
}

// GetChannelSubscribers pages through the subscribers of channelID.
func (s *Service) GetChannelSubscribers(ctx context.Context, channelID string, req PageRequest) (page models.Page[models.OwnerProfile], err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.GetChannelSubscribers", slog.String("channel_id", channelID))
	defer func() { span.End(err) }()

	return s.feed.Subscribers(ctx, channelID, req)
}

// GetSubscribedChannels pages through the channels subscriberID follows.
func (s *Service) GetSubscribedChannels(ctx context.Context, subscriberID string, req PageRequest) (page models.Page[models.OwnerProfile], err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.GetSubscribedChannels", slog.String("subscriber_id", subscriberID))
	defer func() { span.End(err) }()

	return s.feed.SubscribedChannels(ctx, subscriberID, req)
}

// ListVideoComments pages through the comments of videoID.
func (s *Service) ListVideoComments(ctx context.Context, videoID string, req PageRequest, viewerID string) (page models.Page[models.CommentView], err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.ListVideoComments", slog.String("video_id", videoID))
	defer func() { span.End(err) }()

	return s.feed.Comments(ctx, videoID, req, viewerID)
}

// ListUserTweets pages through the tweets of userID.
func (s *Service) ListUserTweets(ctx context.Context, userID string, req PageRequest, viewerID string) (page models.Page[models.TweetView], err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.ListUserTweets", slog.String("user_id", userID))
	defer func() { span.End(err) }()

	return s.feed.Tweets(ctx, userID, req, viewerID)
}

// ListLikedVideos pages through the videos viewerID liked.
func (s *Service) ListLikedVideos(ctx context.Context, viewerID string, req PageRequest) (page models.Page[models.VideoView], err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.ListLikedVideos")
	defer func() { span.End(err) }()

	return s.feed.LikedVideos(ctx, viewerID, req)
}

// GetChannelProfile projects channelID as a channel for viewerID.
func (s *Service) GetChannelProfile(ctx context.Context, channelID, viewerID string) (view models.ChannelView, err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.GetChannelProfile", slog.String("channel_id", channelID))
	defer func() { span.End(err) }()

	if err := validateID("channel id", channelID); err != nil {
		return models.ChannelView{}, err
	}
	if err := validateViewer(viewerID); err != nil {
		return models.ChannelView{}, err
	}
	u, err := s.users.FindByID(ctx, channelID)
	if err != nil {
		return models.ChannelView{}, err
	}
	return s.projector.Channel(ctx, u, viewerID)
}

// WatchVideo returns the detail view of a video and records the view.
// Unpublished videos are only visible to their owner. The returned view
// reflects the count before this watch.
func (s *Service) WatchVideo(ctx context.Context, videoID, viewerID string) (view models.VideoView, err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.WatchVideo", slog.String("video_id", videoID))
	defer func() { span.End(err) }()

	if err := validateID("video id", videoID); err != nil {
		return models.VideoView{}, err
	}
	if err := validateViewer(viewerID); err != nil {
		return models.VideoView{}, err
	}

	v, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return models.VideoView{}, err
	}
	if err := visibleTo(v, viewerID); err != nil {
		return models.VideoView{}, err
	}

	view, err = s.projector.Video(ctx, v, viewerID, true)
	if err != nil {
		return models.VideoView{}, err
	}

	if err := s.videos.IncrementViews(ctx, videoID); err != nil {
		return models.VideoView{}, err
	}
	if viewerID != "" {
		if err := s.history.Append(ctx, viewerID, videoID); err != nil {
			return models.VideoView{}, err
		}
	}
	return view, nil
}
