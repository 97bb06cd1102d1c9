package models

import "time"

// User represents an account that owns content and can act as a channel.
type User struct {
	ID        string
	Username  string
	FullName  string
	Avatar    string
	CreatedAt time.Time
}

// Video is an uploaded video together with its publication state.
type Video struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	VideoFile   string
	Thumbnail   string
	Duration    float64
	Views       int64
	IsPublished bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Comment is a text reply attached to a video.
type Comment struct {
	ID        string
	VideoID   string
	OwnerID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tweet is a short text post published on a channel.
type Tweet struct {
	ID        string
	OwnerID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EntityKind names a primary entity that can be projected.
type EntityKind string

const (
	EntityVideo   EntityKind = "video"
	EntityComment EntityKind = "comment"
	EntityTweet   EntityKind = "tweet"
	EntityChannel EntityKind = "channel"
)

// EdgeKind identifies a relationship table and the subject it points at.
type EdgeKind string

const (
	EdgeVideoLike    EdgeKind = "video_like"
	EdgeCommentLike  EdgeKind = "comment_like"
	EdgeTweetLike    EdgeKind = "tweet_like"
	EdgeSubscription EdgeKind = "subscription"
)

// LikeEdgeFor returns the like edge kind used for subjects of the given entity kind.
func LikeEdgeFor(kind EntityKind) (EdgeKind, bool) {
	switch kind {
	case EntityVideo:
		return EdgeVideoLike, true
	case EntityComment:
		return EdgeCommentLike, true
	case EntityTweet:
		return EdgeTweetLike, true
	}
	return "", false
}

// ToggleState is the outcome of a toggle.
type ToggleState string

const (
	ToggleCreated ToggleState = "created"
	ToggleRemoved ToggleState = "removed"
)
