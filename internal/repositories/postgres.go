package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

func acquire(ctx context.Context, pool db.Pool) (*pgxpool.Conn, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: acquire connection: %v", ErrUnavailable, err)
	}
	return conn, nil
}

// translateWriteError maps constraint violations onto the package sentinels.
func translateWriteError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrConflict
		case "23503":
			return ErrNotFound
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// parseUUIDs converts ids for array parameters. Malformed ids can never match a
// row and are skipped.
func parseUUIDs(ids []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		out = append(out, parsed)
	}
	return out
}

type whereBuilder struct {
	clauses []string
	args    []any
}

// arg appends a positional argument and returns its placeholder.
func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) where(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *whereBuilder) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, full_name, avatar, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, user.ID, user.Username, user.FullName, user.Avatar, user.CreatedAt)
	if err != nil {
		return translateWriteError(err, "insert user")
	}

	return nil
}

// FindByID fetches a user by id.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.User{}, err
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, username, full_name, avatar, created_at
        FROM users
        WHERE id = $1
    `, id)

	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.FullName, &user.Avatar, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by id: %w", err)
	}

	return user, nil
}

// FindByIDs fetches the users that exist among ids, keyed by id.
func (r *PostgresUserRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	users := make(map[string]models.User, len(ids))
	parsed := parseUUIDs(ids)
	if len(parsed) == 0 {
		return users, nil
	}

	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, username, full_name, avatar, created_at
        FROM users
        WHERE id = ANY($1::UUID[])
    `, parsed)
	if err != nil {
		return nil, fmt.Errorf("query users by id: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.FullName, &user.Avatar, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users[user.ID] = user
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

const videoColumns = `id, owner_id, title, description, video_file, thumbnail, duration, views, is_published, created_at, updated_at`

var videoSortColumns = map[models.SortField]string{
	models.SortCreatedAt: "created_at",
	models.SortViews:     "views",
	models.SortDuration:  "duration",
	models.SortTitle:     "title",
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var v models.Video
	err := row.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoFile, &v.Thumbnail, &v.Duration, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func collectVideos(rows pgx.Rows) ([]models.Video, error) {
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, nil
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	updatedAt := video.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = video.CreatedAt
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description, video_file, thumbnail, duration, views, is_published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, video.ID, video.OwnerID, video.Title, video.Description, video.VideoFile, video.Thumbnail, video.Duration, video.Views, video.IsPublished, video.CreatedAt, updatedAt)
	if err != nil {
		return translateWriteError(err, "insert video")
	}

	return nil
}

// FindByID fetches a single video.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.Video{}, err
	}
	defer conn.Release()

	video, err := scanVideo(conn.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video by id: %w", err)
	}

	return video, nil
}

// FindByIDs fetches the videos that exist among ids, keyed by id.
func (r *PostgresVideoRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.Video, error) {
	videos := make(map[string]models.Video, len(ids))
	parsed := parseUUIDs(ids)
	if len(parsed) == 0 {
		return videos, nil
	}

	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ANY($1::UUID[])`, parsed)
	if err != nil {
		return nil, fmt.Errorf("query videos by id: %w", err)
	}

	list, err := collectVideos(rows)
	if err != nil {
		return nil, err
	}
	for _, v := range list {
		videos[v.ID] = v
	}

	return videos, nil
}

// ListByOwner returns every video owned by ownerID, newest first.
func (r *PostgresVideoRepository) ListByOwner(ctx context.Context, ownerID string, includeUnpublished bool) ([]models.Video, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE owner_id = $1 AND (is_published OR $2)
        ORDER BY created_at DESC, id DESC
    `, ownerID, includeUnpublished)
	if err != nil {
		return nil, fmt.Errorf("query videos by owner: %w", err)
	}

	return collectVideos(rows)
}

// Query applies the filters, ordering and window of q and reports the total
// number of matching rows alongside the requested slice.
func (r *PostgresVideoRepository) Query(ctx context.Context, q models.VideoQuery) ([]models.Video, int64, error) {
	if q.Restricted && len(q.CandidateIDs) == 0 {
		return nil, 0, nil
	}

	var w whereBuilder
	rankParam := ""
	if q.Restricted {
		candidates := parseUUIDs(q.CandidateIDs)
		if len(candidates) == 0 {
			return nil, 0, nil
		}
		rankParam = w.arg(candidates)
		w.where("id = ANY(" + rankParam + "::UUID[])")
	}
	if q.OwnerID != "" {
		w.where("owner_id = " + w.arg(q.OwnerID))
	}
	if q.PublishedOnly {
		w.where("is_published")
	}

	var orderBy string
	switch {
	case q.Sort == models.SortRank && rankParam != "":
		orderBy = "array_position(" + rankParam + "::UUID[], id) ASC, id ASC"
	default:
		column, ok := videoSortColumns[q.Sort]
		if !ok {
			column = "created_at"
		}
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		orderBy = fmt.Sprintf("%s %s, id %s", column, dir, dir)
	}

	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return nil, 0, err
	}
	defer conn.Release()

	where := w.sql()

	var total int64
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM videos`+where, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count videos: %w", err)
	}

	if total == 0 || q.Window.Offset >= int(total) {
		return nil, total, nil
	}

	limit := w.arg(q.Window.Limit)
	offset := w.arg(q.Window.Offset)
	rows, err := conn.Query(ctx, `SELECT `+videoColumns+` FROM videos`+where+
		` ORDER BY `+orderBy+` LIMIT `+limit+` OFFSET `+offset, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query videos: %w", err)
	}

	videos, err := collectVideos(rows)
	if err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}

// Update persists the owner-mutable fields of a video.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	updatedAt := video.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = $2, description = $3, thumbnail = $4, is_published = $5, updated_at = $6
        WHERE id = $1
    `, video.ID, video.Title, video.Description, video.Thumbnail, video.IsPublished, updatedAt)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// IncrementViews bumps the view counter of a video by one.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment video views: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a video row. Deleting an absent video is a no-op.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	return nil
}

// PostgresWatchHistory records watched videos per user with set semantics.
type PostgresWatchHistory struct {
	pool db.Pool
}

// NewPostgresWatchHistory constructs a watch history store backed by PostgreSQL.
func NewPostgresWatchHistory(pool db.Pool) *PostgresWatchHistory {
	return &PostgresWatchHistory{pool: pool}
}

// Append records that userID watched videoID, refreshing the timestamp when the
// pair already exists.
func (h *PostgresWatchHistory) Append(ctx context.Context, userID, videoID string) error {
	conn, err := acquire(ctx, h.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (user_id, video_id, watched_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, video_id)
        DO UPDATE SET watched_at = EXCLUDED.watched_at
    `, userID, videoID, time.Now().UTC())
	if err != nil {
		return translateWriteError(err, "append watch history")
	}

	return nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
var _ VideoRepository = (*PostgresVideoRepository)(nil)
var _ WatchHistoryRepository = (*PostgresWatchHistory)(nil)
