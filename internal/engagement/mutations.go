package engagement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// VideoPatch carries the owner-editable fields of a video. A nil Thumbnail
// keeps the current one.
type VideoPatch struct {
	Title       string
	Description string
	Thumbnail   *string
}

// UpdateVideo applies patch to a video owned by actorID. A replaced thumbnail
// is handed to the asset reaper.
func (s *Service) UpdateVideo(ctx context.Context, videoID, actorID string, patch VideoPatch) (view models.VideoView, err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.UpdateVideo", slog.String("video_id", videoID))
	defer func() { span.End(err) }()

	title, err := requireContent("title", patch.Title)
	if err != nil {
		return models.VideoView{}, err
	}
	description, err := requireContent("description", patch.Description)
	if err != nil {
		return models.VideoView{}, err
	}

	v, err := s.ownedVideo(ctx, videoID, actorID)
	if err != nil {
		return models.VideoView{}, err
	}

	previousThumbnail := v.Thumbnail
	v.Title = title
	v.Description = description
	if patch.Thumbnail != nil {
		v.Thumbnail = *patch.Thumbnail
	}
	v.UpdatedAt = s.now()

	if err := s.videos.Update(ctx, v); err != nil {
		return models.VideoView{}, err
	}
	if previousThumbnail != "" && previousThumbnail != v.Thumbnail {
		s.reap(ctx, previousThumbnail)
	}

	return s.projector.Video(ctx, v, actorID, true)
}

// TogglePublish flips the publication flag of a video owned by actorID.
func (s *Service) TogglePublish(ctx context.Context, videoID, actorID string) (view models.VideoView, err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.TogglePublish", slog.String("video_id", videoID))
	defer func() { span.End(err) }()

	v, err := s.ownedVideo(ctx, videoID, actorID)
	if err != nil {
		return models.VideoView{}, err
	}

	v.IsPublished = !v.IsPublished
	v.UpdatedAt = s.now()
	if err := s.videos.Update(ctx, v); err != nil {
		return models.VideoView{}, err
	}

	return s.projector.Video(ctx, v, actorID, true)
}

// DeleteVideo removes a video owned by actorID together with its likes, its
// comments and their likes. Every step tolerates already-absent rows, so a
// failed delete can simply be repeated.
func (s *Service) DeleteVideo(ctx context.Context, videoID, actorID string) (err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.DeleteVideo", slog.String("video_id", videoID))
	defer func() { span.End(err) }()

	v, err := s.ownedVideo(ctx, videoID, actorID)
	if err != nil {
		return err
	}

	commentIDs, err := s.comments.IDsByVideo(ctx, videoID)
	if err != nil {
		return err
	}
	for _, id := range commentIDs {
		if _, err := s.edges.DeleteAllForSubject(ctx, models.EdgeCommentLike, id); err != nil {
			return fmt.Errorf("cascade comment likes: %w", err)
		}
	}
	if _, err := s.comments.DeleteByVideo(ctx, videoID); err != nil {
		return fmt.Errorf("cascade comments: %w", err)
	}
	if _, err := s.edges.DeleteAllForSubject(ctx, models.EdgeVideoLike, videoID); err != nil {
		return fmt.Errorf("cascade video likes: %w", err)
	}
	if err := s.videos.Delete(ctx, videoID); err != nil {
		return err
	}

	s.reap(ctx, v.VideoFile, v.Thumbnail)
	return nil
}

// AddComment attaches a comment by actorID to a video.
func (s *Service) AddComment(ctx context.Context, videoID, actorID, content string) (view models.CommentView, err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.AddComment", slog.String("video_id", videoID))
	defer func() { span.End(err) }()

	if err := validateID("video id", videoID); err != nil {
		return models.CommentView{}, err
	}
	if err := validateID("actor id", actorID); err != nil {
		return models.CommentView{}, err
	}
	content, err = requireContent("content", content)
	if err != nil {
		return models.CommentView{}, err
	}
	if _, err := s.videos.FindByID(ctx, videoID); err != nil {
		return models.CommentView{}, err
	}

	now := s.now()
	comment := models.Comment{
		ID:        s.newID(),
		VideoID:   videoID,
		OwnerID:   actorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return models.CommentView{}, err
	}
	return s.projector.Comment(ctx, comment, actorID)
}

// UpdateComment replaces the content of a comment owned by actorID.
func (s *Service) UpdateComment(ctx context.Context, commentID, actorID, content string) (view models.CommentView, err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.UpdateComment", slog.String("comment_id", commentID))
	defer func() { span.End(err) }()

	content, err = requireContent("content", content)
	if err != nil {
		return models.CommentView{}, err
	}
	c, err := s.ownedComment(ctx, commentID, actorID)
	if err != nil {
		return models.CommentView{}, err
	}

	if err := s.comments.UpdateContent(ctx, commentID, content); err != nil {
		return models.CommentView{}, err
	}
	c.Content = content
	c.UpdatedAt = s.now()
	return s.projector.Comment(ctx, c, actorID)
}

// DeleteComment removes a comment owned by actorID and its likes.
func (s *Service) DeleteComment(ctx context.Context, commentID, actorID string) (err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.DeleteComment", slog.String("comment_id", commentID))
	defer func() { span.End(err) }()

	if _, err := s.ownedComment(ctx, commentID, actorID); err != nil {
		return err
	}
	if _, err := s.edges.DeleteAllForSubject(ctx, models.EdgeCommentLike, commentID); err != nil {
		return fmt.Errorf("cascade comment likes: %w", err)
	}
	return s.comments.Delete(ctx, commentID)
}

// CreateTweet publishes a tweet on actorID's channel.
func (s *Service) CreateTweet(ctx context.Context, actorID, content string) (view models.TweetView, err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.CreateTweet")
	defer func() { span.End(err) }()

	if err := validateID("actor id", actorID); err != nil {
		return models.TweetView{}, err
	}
	content, err = requireContent("content", content)
	if err != nil {
		return models.TweetView{}, err
	}

	now := s.now()
	tweet := models.Tweet{
		ID:        s.newID(),
		OwnerID:   actorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tweets.Create(ctx, tweet); err != nil {
		return models.TweetView{}, err
	}
	return s.projector.Tweet(ctx, tweet, actorID)
}

// UpdateTweet replaces the content of a tweet owned by actorID.
func (s *Service) UpdateTweet(ctx context.Context, tweetID, actorID, content string) (view models.TweetView, err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.UpdateTweet", slog.String("tweet_id", tweetID))
	defer func() { span.End(err) }()

	content, err = requireContent("content", content)
	if err != nil {
		return models.TweetView{}, err
	}
	t, err := s.ownedTweet(ctx, tweetID, actorID)
	if err != nil {
		return models.TweetView{}, err
	}

	if err := s.tweets.UpdateContent(ctx, tweetID, content); err != nil {
		return models.TweetView{}, err
	}
	t.Content = content
	t.UpdatedAt = s.now()
	return s.projector.Tweet(ctx, t, actorID)
}

// DeleteTweet removes a tweet owned by actorID and its likes.
func (s *Service) DeleteTweet(ctx context.Context, tweetID, actorID string) (err error) {
	ctx, span := logging.StartSpan(ctx, "engagement.DeleteTweet", slog.String("tweet_id", tweetID))
	defer func() { span.End(err) }()

	if _, err := s.ownedTweet(ctx, tweetID, actorID); err != nil {
		return err
	}
	if _, err := s.edges.DeleteAllForSubject(ctx, models.EdgeTweetLike, tweetID); err != nil {
		return fmt.Errorf("cascade tweet likes: %w", err)
	}
	return s.tweets.Delete(ctx, tweetID)
}

func (s *Service) ownedVideo(ctx context.Context, videoID, actorID string) (models.Video, error) {
	if err := validateID("video id", videoID); err != nil {
		return models.Video{}, err
	}
	if err := validateID("actor id", actorID); err != nil {
		return models.Video{}, err
	}
	v, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return models.Video{}, err
	}
	if v.OwnerID != actorID {
		return models.Video{}, fmt.Errorf("%w: video %s belongs to another user", ErrForbidden, videoID)
	}
	return v, nil
}

func (s *Service) ownedComment(ctx context.Context, commentID, actorID string) (models.Comment, error) {
	if err := validateID("comment id", commentID); err != nil {
		return models.Comment{}, err
	}
	if err := validateID("actor id", actorID); err != nil {
		return models.Comment{}, err
	}
	c, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return models.Comment{}, err
	}
	if c.OwnerID != actorID {
		return models.Comment{}, fmt.Errorf("%w: comment %s belongs to another user", ErrForbidden, commentID)
	}
	return c, nil
}

func (s *Service) ownedTweet(ctx context.Context, tweetID, actorID string) (models.Tweet, error) {
	if err := validateID("tweet id", tweetID); err != nil {
		return models.Tweet{}, err
	}
	if err := validateID("actor id", actorID); err != nil {
		return models.Tweet{}, err
	}
	t, err := s.tweets.FindByID(ctx, tweetID)
	if err != nil {
		return models.Tweet{}, err
	}
	if t.OwnerID != actorID {
		return models.Tweet{}, fmt.Errorf("%w: tweet %s belongs to another user", ErrForbidden, tweetID)
	}
	return t, nil
}

// reap hands unreferenced assets to the reaper. Failures are logged and do
// not undo the entity change.
func (s *Service) reap(ctx context.Context, locations ...string) {
	if s.reaper == nil {
		return
	}
	var pending []string
	for _, loc := range locations {
		if loc != "" {
			pending = append(pending, loc)
		}
	}
	if len(pending) == 0 {
		return
	}
	if err := s.reaper.Enqueue(ctx, pending...); err != nil {
		logging.FromContext(ctx).Warn("failed to schedule asset deletion",
			slog.Any("locations", pending),
			slog.String("error", err.Error()),
		)
	}
}
