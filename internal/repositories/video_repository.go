package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// VideoRepository exposes data access for videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Video, error)
	ListByOwner(ctx context.Context, ownerID string, includeUnpublished bool) ([]models.Video, error)
	Query(ctx context.Context, q models.VideoQuery) ([]models.Video, int64, error)
	Update(ctx context.Context, video models.Video) error
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// WatchHistoryRepository records which videos a user has watched.
type WatchHistoryRepository interface {
	Append(ctx context.Context, userID, videoID string) error
}
