package models

import "time"

// OwnerProfile is the public fragment of a user embedded in projections.
type OwnerProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// ProfileOf projects the public fields of a user.
func ProfileOf(u User) OwnerProfile {
	return OwnerProfile{ID: u.ID, Username: u.Username, FullName: u.FullName, Avatar: u.Avatar}
}

// OwnerDetail extends the owner profile with subscription facts for detail views.
type OwnerDetail struct {
	OwnerProfile
	SubscribersCount int64 `json:"subscribersCount"`
	IsSubscribed     bool  `json:"isSubscribed"`
}

// VideoView is the viewer-relative projection of a video.
type VideoView struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	VideoFile   string      `json:"videoFile"`
	Thumbnail   string      `json:"thumbnail"`
	Duration    float64     `json:"duration"`
	Views       int64       `json:"views"`
	IsPublished bool        `json:"isPublished"`
	CreatedAt   time.Time   `json:"createdAt"`
	Owner       OwnerDetail `json:"owner"`
	LikesCount  int64       `json:"likesCount"`
	IsLiked     bool        `json:"isLiked"`
}

// CommentView is the viewer-relative projection of a comment.
type CommentView struct {
	ID         string       `json:"id"`
	VideoID    string       `json:"videoId"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"createdAt"`
	Owner      OwnerProfile `json:"owner"`
	LikesCount int64        `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
}

// TweetView is the viewer-relative projection of a tweet.
type TweetView struct {
	ID         string       `json:"id"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"createdAt"`
	Owner      OwnerProfile `json:"owner"`
	LikesCount int64        `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
}

// ChannelView is the viewer-relative projection of a user acting as a channel.
type ChannelView struct {
	OwnerProfile
	SubscribersCount  int64 `json:"subscribersCount"`
	SubscribedToCount int64 `json:"subscribedToCount"`
	IsSubscribed      bool  `json:"isSubscribed"`
}

// EntityView wraps the projection of any primary entity kind. Exactly one of the
// pointer fields is set, matching Kind.
type EntityView struct {
	Kind    EntityKind   `json:"kind"`
	Video   *VideoView   `json:"video,omitempty"`
	Comment *CommentView `json:"comment,omitempty"`
	Tweet   *TweetView   `json:"tweet,omitempty"`
	Channel *ChannelView `json:"channel,omitempty"`
}

// ChannelStats is the owner-facing rollup of a channel.
type ChannelStats struct {
	SubscribersCount int64 `json:"subscribersCount"`
	VideosCount      int64 `json:"videosCount"`
	ViewsCount       int64 `json:"viewsCount"`
	LikesCount       int64 `json:"likesCount"`
}

// Page is one page of a paginated collection.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}
