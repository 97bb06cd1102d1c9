package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// RelationshipStore persists like and subscription edges. It holds no business
// logic; uniqueness of (subject, actor) is enforced by the schema.
type RelationshipStore interface {
	Exists(ctx context.Context, kind models.EdgeKind, subjectID, actorID string) (bool, error)
	Create(ctx context.Context, kind models.EdgeKind, subjectID, actorID string) (string, error)
	DeleteByKey(ctx context.Context, kind models.EdgeKind, subjectID, actorID string) (int64, error)
	CountBySubject(ctx context.Context, kind models.EdgeKind, subjectID string) (int64, error)
	CountByActor(ctx context.Context, kind models.EdgeKind, actorID string) (int64, error)
	ListActors(ctx context.Context, kind models.EdgeKind, subjectID string, window models.Window) ([]string, error)
	ListSubjects(ctx context.Context, kind models.EdgeKind, actorID string, window models.Window) ([]string, error)
	DeleteAllForSubject(ctx context.Context, kind models.EdgeKind, subjectID string) (int64, error)
}
