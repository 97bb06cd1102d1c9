package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// edgeTable maps an edge kind onto its table and key columns. The identifiers
// are constants and safe to interpolate.
type edgeTable struct {
	table   string
	subject string
	actor   string
}

var edgeTables = map[models.EdgeKind]edgeTable{
	models.EdgeVideoLike:    {table: "likes", subject: "video_id", actor: "liked_by"},
	models.EdgeCommentLike:  {table: "likes", subject: "comment_id", actor: "liked_by"},
	models.EdgeTweetLike:    {table: "likes", subject: "tweet_id", actor: "liked_by"},
	models.EdgeSubscription: {table: "subscriptions", subject: "channel_id", actor: "subscriber_id"},
}

func tableFor(kind models.EdgeKind) (edgeTable, error) {
	t, ok := edgeTables[kind]
	if !ok {
		return edgeTable{}, fmt.Errorf("unknown edge kind %q", kind)
	}
	return t, nil
}

// PostgresRelationshipStore persists like and subscription edges in PostgreSQL.
type PostgresRelationshipStore struct {
	pool db.Pool
	now  func() time.Time
}

// NewPostgresRelationshipStore constructs a relationship store backed by PostgreSQL.
func NewPostgresRelationshipStore(pool db.Pool) *PostgresRelationshipStore {
	return &PostgresRelationshipStore{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

// Exists reports whether the (subject, actor) edge is present.
func (s *PostgresRelationshipStore) Exists(ctx context.Context, kind models.EdgeKind, subjectID, actorID string) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	conn, err := acquire(ctx, s.pool)
	if err != nil {
		return false, err
	}
	defer conn.Release()

	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`, t.table, t.subject, t.actor)
	if err := conn.QueryRow(ctx, query, subjectID, actorID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s edge: %w", kind, err)
	}

	return exists, nil
}

// Create inserts a new edge and returns its id. A duplicate (subject, actor)
// pair fails with ErrConflict; a missing subject or actor with ErrNotFound.
func (s *PostgresRelationshipStore) Create(ctx context.Context, kind models.EdgeKind, subjectID, actorID string) (string, error) {
	t, err := tableFor(kind)
	if err != nil {
		return "", err
	}

	conn, err := acquire(ctx, s.pool)
	if err != nil {
		return "", err
	}
	defer conn.Release()

	id := uuid.NewString()
	query := fmt.Sprintf(`INSERT INTO %s (id, %s, %s, created_at) VALUES ($1, $2, $3, $4)`, t.table, t.subject, t.actor)
	if _, err := conn.Exec(ctx, query, id, subjectID, actorID, s.now()); err != nil {
		return "", translateWriteError(err, fmt.Sprintf("insert %s edge", kind))
	}

	return id, nil
}

// DeleteByKey removes the (subject, actor) edge and reports how many rows went
// away. Deleting an absent edge returns 0.
func (s *PostgresRelationshipStore) DeleteByKey(ctx context.Context, kind models.EdgeKind, subjectID, actorID string) (int64, error) {
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	conn, err := acquire(ctx, s.pool)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, t.table, t.subject, t.actor)
	tag, err := conn.Exec(ctx, query, subjectID, actorID)
	if err != nil {
		return 0, fmt.Errorf("delete %s edge: %w", kind, err)
	}

	return tag.RowsAffected(), nil
}

// CountBySubject counts the edges pointing at subjectID.
func (s *PostgresRelationshipStore) CountBySubject(ctx context.Context, kind models.EdgeKind, subjectID string) (int64, error) {
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	return s.count(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, t.table, t.subject), subjectID, kind)
}

// CountByActor counts the edges created by actorID.
func (s *PostgresRelationshipStore) CountByActor(ctx context.Context, kind models.EdgeKind, actorID string) (int64, error) {
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	// likes rows of other kinds share the actor column, so the subject column must be set.
	return s.count(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1 AND %s IS NOT NULL`, t.table, t.actor, t.subject), actorID, kind)
}

func (s *PostgresRelationshipStore) count(ctx context.Context, query, arg string, kind models.EdgeKind) (int64, error) {
	conn, err := acquire(ctx, s.pool)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	var n int64
	if err := conn.QueryRow(ctx, query, arg).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s edges: %w", kind, err)
	}
	return n, nil
}

// ListActors returns the actors of the edges pointing at subjectID, newest edge first.
func (s *PostgresRelationshipStore) ListActors(ctx context.Context, kind models.EdgeKind, subjectID string, window models.Window) ([]string, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, t.actor, t.table, t.subject)
	return s.listIDs(ctx, query, subjectID, window, kind)
}

// ListSubjects returns the subjects of the edges created by actorID, newest edge first.
func (s *PostgresRelationshipStore) ListSubjects(ctx context.Context, kind models.EdgeKind, actorID string, window models.Window) ([]string, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NOT NULL ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, t.subject, t.table, t.actor, t.subject)
	return s.listIDs(ctx, query, actorID, window, kind)
}

func (s *PostgresRelationshipStore) listIDs(ctx context.Context, query, key string, window models.Window, kind models.EdgeKind) ([]string, error) {
	conn, err := acquire(ctx, s.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, key, window.Limit, window.Offset)
	if err != nil {
		return nil, fmt.Errorf("list %s edges: %w", kind, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect %s edges: %w", kind, err)
	}

	return ids, nil
}

// DeleteAllForSubject removes every edge pointing at subjectID. It is safe to
// repeat.
func (s *PostgresRelationshipStore) DeleteAllForSubject(ctx context.Context, kind models.EdgeKind, subjectID string) (int64, error) {
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	conn, err := acquire(ctx, s.pool)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, t.table, t.subject), subjectID)
	if err != nil {
		return 0, fmt.Errorf("cascade %s edges: %w", kind, err)
	}

	return tag.RowsAffected(), nil
}

var _ RelationshipStore = (*PostgresRelationshipStore)(nil)
