package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/engagement"
	"github.com/vidtube/backend/internal/models"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{Database: deps.Database}
	likes := LikeHandler{Likes: deps.Likes, Paging: deps.Paging, Limiter: deps.ToggleLimiter}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions, Paging: deps.Paging, Limiter: deps.ToggleLimiter}
	videos := VideoHandler{Videos: deps.Videos, Paging: deps.Paging, Limiter: deps.ToggleLimiter}
	comments := CommentHandler{Comments: deps.Comments, Paging: deps.Paging}
	tweets := TweetHandler{Tweets: deps.Tweets, Paging: deps.Paging}
	dashboard := DashboardHandler{Dashboard: deps.Dashboard, Paging: deps.Paging}
	channels := ChannelHandler{Channels: deps.Channels}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/likes/toggle/v/{id}", likes.Toggle(models.EntityVideo))
	mux.HandleFunc("POST /api/v1/likes/toggle/c/{id}", likes.Toggle(models.EntityComment))
	mux.HandleFunc("POST /api/v1/likes/toggle/t/{id}", likes.Toggle(models.EntityTweet))
	mux.HandleFunc("GET /api/v1/likes/videos", likes.LikedVideos)

	mux.HandleFunc("POST /api/v1/subscriptions/c/{channelId}", subscriptions.Toggle)
	mux.HandleFunc("GET /api/v1/subscriptions/c/{channelId}", subscriptions.Subscribers)
	mux.HandleFunc("GET /api/v1/subscriptions/u/{subscriberId}", subscriptions.Channels)

	mux.HandleFunc("GET /api/v1/videos", videos.List)
	mux.HandleFunc("GET /api/v1/videos/{videoId}", videos.Watch)
	mux.HandleFunc("PATCH /api/v1/videos/{videoId}", videos.Update)
	mux.HandleFunc("DELETE /api/v1/videos/{videoId}", videos.Delete)
	mux.HandleFunc("PATCH /api/v1/videos/toggle/publish/{videoId}", videos.TogglePublish)

	mux.HandleFunc("GET /api/v1/comments/{videoId}", comments.List)
	mux.HandleFunc("POST /api/v1/comments/{videoId}", comments.Create)
	mux.HandleFunc("PATCH /api/v1/comments/c/{commentId}", comments.Update)
	mux.HandleFunc("DELETE /api/v1/comments/c/{commentId}", comments.Delete)

	mux.HandleFunc("POST /api/v1/tweets", tweets.Create)
	mux.HandleFunc("GET /api/v1/tweets/user/{userId}", tweets.List)
	mux.HandleFunc("PATCH /api/v1/tweets/{tweetId}", tweets.Update)
	mux.HandleFunc("DELETE /api/v1/tweets/{tweetId}", tweets.Delete)

	mux.HandleFunc("GET /api/v1/dashboard/stats", dashboard.Stats)
	mux.HandleFunc("GET /api/v1/dashboard/videos", dashboard.Videos)

	mux.HandleFunc("GET /api/v1/channels/{channelId}", channels.Profile)
	mux.HandleFunc("GET /api/v1/views/{kind}/{id}", channels.Entity)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Likes         LikeService
	Subscriptions SubscriptionService
	Videos        VideoService
	Comments      CommentService
	Tweets        TweetService
	Dashboard     DashboardService
	Channels      ChannelService
	Database      HealthChecker

	Paging        engagement.Paging
	ToggleLimiter RateLimiter
}
