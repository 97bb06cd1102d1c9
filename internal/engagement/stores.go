package engagement

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// UserStore resolves users. Missing users surface as ErrNotFound; FindByIDs
// omits ids it cannot resolve.
type UserStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
}

// VideoStore is the entity store for videos.
type VideoStore interface {
	FindByID(ctx context.Context, id string) (models.Video, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Video, error)
	ListByOwner(ctx context.Context, ownerID string, includeUnpublished bool) ([]models.Video, error)
	Query(ctx context.Context, q models.VideoQuery) ([]models.Video, int64, error)
	Update(ctx context.Context, video models.Video) error
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// CommentStore is the entity store for comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListByVideo(ctx context.Context, videoID string, window models.Window) ([]models.Comment, int64, error)
	IDsByVideo(ctx context.Context, videoID string) ([]string, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	DeleteByVideo(ctx context.Context, videoID string) (int64, error)
}

// TweetStore is the entity store for tweets.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListByOwner(ctx context.Context, ownerID string, window models.Window) ([]models.Tweet, int64, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
}

// EdgeStore persists like and subscription edges. Create must fail with
// ErrConflict when the (subject, actor) pair already exists.
type EdgeStore interface {
	Exists(ctx context.Context, kind models.EdgeKind, subjectID, actorID string) (bool, error)
	Create(ctx context.Context, kind models.EdgeKind, subjectID, actorID string) (string, error)
	DeleteByKey(ctx context.Context, kind models.EdgeKind, subjectID, actorID string) (int64, error)
	CountBySubject(ctx context.Context, kind models.EdgeKind, subjectID string) (int64, error)
	CountByActor(ctx context.Context, kind models.EdgeKind, actorID string) (int64, error)
	ListActors(ctx context.Context, kind models.EdgeKind, subjectID string, window models.Window) ([]string, error)
	ListSubjects(ctx context.Context, kind models.EdgeKind, actorID string, window models.Window) ([]string, error)
	DeleteAllForSubject(ctx context.Context, kind models.EdgeKind, subjectID string) (int64, error)
}

// WatchHistory records watched videos per user.
type WatchHistory interface {
	Append(ctx context.Context, userID, videoID string) error
}

// Searcher returns video ids matching a free-text query, best match first.
type Searcher interface {
	Search(ctx context.Context, query string, fields []string) ([]string, error)
}

// AssetReaper schedules deletion of media assets that no entity references
// anymore.
type AssetReaper interface {
	Enqueue(ctx context.Context, locations ...string) error
}

// ToggleRecorder observes toggle outcomes.
type ToggleRecorder interface {
	ObserveToggle(kind models.EdgeKind, state models.ToggleState)
	ObserveConflict(kind models.EdgeKind)
}

type nopRecorder struct{}

func (nopRecorder) ObserveToggle(models.EdgeKind, models.ToggleState) {}
func (nopRecorder) ObserveConflict(models.EdgeKind)                   {}
