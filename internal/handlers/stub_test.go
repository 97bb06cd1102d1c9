package handlers

import (
	"context"

	"github.com/vidtube/backend/internal/engagement"
	"github.com/vidtube/backend/internal/models"
)

// stubEngine records the last call and returns canned results for every
// service interface.
type stubEngine struct {
	err error

	lastKind    models.EntityKind
	lastSubject string
	lastActor   string
	lastViewer  string
	lastReq     engagement.PageRequest
	lastOrder   engagement.Order
	lastFilter  engagement.VideoFilter
	lastPatch   engagement.VideoPatch
	lastContent string

	toggle   engagement.ToggleResult
	videos   models.Page[models.VideoView]
	profiles models.Page[models.OwnerProfile]
	video    models.VideoView
	comment  models.CommentView
	tweet    models.TweetView
	stats    models.ChannelStats
	channel  models.ChannelView
	entity   models.EntityView
}

func (s *stubEngine) ToggleLike(_ context.Context, kind models.EntityKind, subjectID, actorID string) (engagement.ToggleResult, error) {
	s.lastKind, s.lastSubject, s.lastActor = kind, subjectID, actorID
	return s.toggle, s.err
}

func (s *stubEngine) ListLikedVideos(_ context.Context, viewerID string, req engagement.PageRequest) (models.Page[models.VideoView], error) {
	s.lastViewer, s.lastReq = viewerID, req
	return s.videos, s.err
}

func (s *stubEngine) ToggleSubscription(_ context.Context, channelID, subscriberID string) (engagement.ToggleResult, error) {
	s.lastSubject, s.lastActor = channelID, subscriberID
	return s.toggle, s.err
}

func (s *stubEngine) GetChannelSubscribers(_ context.Context, channelID string, req engagement.PageRequest) (models.Page[models.OwnerProfile], error) {
	s.lastSubject, s.lastReq = channelID, req
	return s.profiles, s.err
}

func (s *stubEngine) GetSubscribedChannels(_ context.Context, subscriberID string, req engagement.PageRequest) (models.Page[models.OwnerProfile], error) {
	s.lastActor, s.lastReq = subscriberID, req
	return s.profiles, s.err
}

func (s *stubEngine) ListFeed(_ context.Context, filter engagement.VideoFilter, order engagement.Order, req engagement.PageRequest, viewerID string) (models.Page[models.VideoView], error) {
	s.lastFilter, s.lastOrder, s.lastReq, s.lastViewer = filter, order, req, viewerID
	return s.videos, s.err
}

func (s *stubEngine) WatchVideo(_ context.Context, videoID, viewerID string) (models.VideoView, error) {
	s.lastSubject, s.lastViewer = videoID, viewerID
	return s.video, s.err
}

func (s *stubEngine) UpdateVideo(_ context.Context, videoID, actorID string, patch engagement.VideoPatch) (models.VideoView, error) {
	s.lastSubject, s.lastActor, s.lastPatch = videoID, actorID, patch
	return s.video, s.err
}

func (s *stubEngine) TogglePublish(_ context.Context, videoID, actorID string) (models.VideoView, error) {
	s.lastSubject, s.lastActor = videoID, actorID
	return s.video, s.err
}

func (s *stubEngine) DeleteVideo(_ context.Context, videoID, actorID string) error {
	s.lastSubject, s.lastActor = videoID, actorID
	return s.err
}

func (s *stubEngine) ListVideoComments(_ context.Context, videoID string, req engagement.PageRequest, viewerID string) (models.Page[models.CommentView], error) {
	s.lastSubject, s.lastReq, s.lastViewer = videoID, req, viewerID
	return models.Page[models.CommentView]{Items: []models.CommentView{s.comment}, Page: 1, PageSize: req.PageSize, TotalItems: 1, TotalPages: 1}, s.err
}

func (s *stubEngine) AddComment(_ context.Context, videoID, actorID, content string) (models.CommentView, error) {
	s.lastSubject, s.lastActor, s.lastContent = videoID, actorID, content
	return s.comment, s.err
}

func (s *stubEngine) UpdateComment(_ context.Context, commentID, actorID, content string) (models.CommentView, error) {
	s.lastSubject, s.lastActor, s.lastContent = commentID, actorID, content
	return s.comment, s.err
}

func (s *stubEngine) DeleteComment(_ context.Context, commentID, actorID string) error {
	s.lastSubject, s.lastActor = commentID, actorID
	return s.err
}

func (s *stubEngine) CreateTweet(_ context.Context, actorID, content string) (models.TweetView, error) {
	s.lastActor, s.lastContent = actorID, content
	return s.tweet, s.err
}

func (s *stubEngine) ListUserTweets(_ context.Context, userID string, req engagement.PageRequest, viewerID string) (models.Page[models.TweetView], error) {
	s.lastSubject, s.lastReq, s.lastViewer = userID, req, viewerID
	return models.Page[models.TweetView]{Items: []models.TweetView{}}, s.err
}

func (s *stubEngine) UpdateTweet(_ context.Context, tweetID, actorID, content string) (models.TweetView, error) {
	s.lastSubject, s.lastActor, s.lastContent = tweetID, actorID, content
	return s.tweet, s.err
}

func (s *stubEngine) DeleteTweet(_ context.Context, tweetID, actorID string) error {
	s.lastSubject, s.lastActor = tweetID, actorID
	return s.err
}

func (s *stubEngine) GetChannelStats(_ context.Context, channelID string) (models.ChannelStats, error) {
	s.lastSubject = channelID
	return s.stats, s.err
}

func (s *stubEngine) ListChannelVideos(_ context.Context, channelID string, order engagement.Order, req engagement.PageRequest) (models.Page[models.VideoView], error) {
	s.lastSubject, s.lastOrder, s.lastReq = channelID, order, req
	return s.videos, s.err
}

func (s *stubEngine) GetChannelProfile(_ context.Context, channelID, viewerID string) (models.ChannelView, error) {
	s.lastSubject, s.lastViewer = channelID, viewerID
	return s.channel, s.err
}

func (s *stubEngine) GetEntityView(_ context.Context, kind models.EntityKind, id, viewerID string) (models.EntityView, error) {
	s.lastKind, s.lastSubject, s.lastViewer = kind, id, viewerID
	return s.entity, s.err
}

type stubLimiter struct {
	allow bool
	keys  []string
}

func (l *stubLimiter) Allow(key string) bool {
	l.keys = append(l.keys, key)
	return l.allow
}

type stubChecker struct {
	err error
}

func (c stubChecker) Ping(context.Context) error { return c.err }
