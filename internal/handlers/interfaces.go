package handlers

import (
	"context"

	"github.com/vidtube/backend/internal/engagement"
	"github.com/vidtube/backend/internal/models"
)

// LikeService toggles likes and lists liked videos.
type LikeService interface {
	ToggleLike(ctx context.Context, kind models.EntityKind, subjectID, actorID string) (engagement.ToggleResult, error)
	ListLikedVideos(ctx context.Context, viewerID string, req engagement.PageRequest) (models.Page[models.VideoView], error)
}

// SubscriptionService toggles subscriptions and lists both ends of them.
type SubscriptionService interface {
	ToggleSubscription(ctx context.Context, channelID, subscriberID string) (engagement.ToggleResult, error)
	GetChannelSubscribers(ctx context.Context, channelID string, req engagement.PageRequest) (models.Page[models.OwnerProfile], error)
	GetSubscribedChannels(ctx context.Context, subscriberID string, req engagement.PageRequest) (models.Page[models.OwnerProfile], error)
}

// VideoService serves the video feed and owner video edits.
type VideoService interface {
	ListFeed(ctx context.Context, filter engagement.VideoFilter, order engagement.Order, req engagement.PageRequest, viewerID string) (models.Page[models.VideoView], error)
	WatchVideo(ctx context.Context, videoID, viewerID string) (models.VideoView, error)
	UpdateVideo(ctx context.Context, videoID, actorID string, patch engagement.VideoPatch) (models.VideoView, error)
	TogglePublish(ctx context.Context, videoID, actorID string) (models.VideoView, error)
	DeleteVideo(ctx context.Context, videoID, actorID string) error
}

// CommentService manages video comments.
type CommentService interface {
	ListVideoComments(ctx context.Context, videoID string, req engagement.PageRequest, viewerID string) (models.Page[models.CommentView], error)
	AddComment(ctx context.Context, videoID, actorID, content string) (models.CommentView, error)
	UpdateComment(ctx context.Context, commentID, actorID, content string) (models.CommentView, error)
	DeleteComment(ctx context.Context, commentID, actorID string) error
}

// TweetService manages tweets.
type TweetService interface {
	CreateTweet(ctx context.Context, actorID, content string) (models.TweetView, error)
	ListUserTweets(ctx context.Context, userID string, req engagement.PageRequest, viewerID string) (models.Page[models.TweetView], error)
	UpdateTweet(ctx context.Context, tweetID, actorID, content string) (models.TweetView, error)
	DeleteTweet(ctx context.Context, tweetID, actorID string) error
}

// DashboardService serves owner-facing channel data.
type DashboardService interface {
	GetChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error)
	ListChannelVideos(ctx context.Context, channelID string, order engagement.Order, req engagement.PageRequest) (models.Page[models.VideoView], error)
}

// ChannelService projects channels and arbitrary entities.
type ChannelService interface {
	GetChannelProfile(ctx context.Context, channelID, viewerID string) (models.ChannelView, error)
	GetEntityView(ctx context.Context, kind models.EntityKind, id, viewerID string) (models.EntityView, error)
}

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
