package engagement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// Projector builds viewer-relative views of single entities. An empty viewer
// id is the anonymous viewer: every viewer-relative flag is false.
type Projector struct {
	users UserStore
	edges EdgeStore
}

// NewProjector constructs a Projector.
func NewProjector(users UserStore, edges EdgeStore) *Projector {
	return &Projector{users: users, edges: edges}
}

// Video projects v. With detail set the owner fragment also carries the
// channel's subscriber count and whether the viewer subscribes to it.
func (p *Projector) Video(ctx context.Context, v models.Video, viewerID string, detail bool) (models.VideoView, error) {
	owner, err := p.owner(ctx, models.EntityVideo, v.ID, v.OwnerID)
	if err != nil {
		return models.VideoView{}, err
	}
	return p.video(ctx, v, owner, viewerID, detail)
}

func (p *Projector) video(ctx context.Context, v models.Video, owner models.User, viewerID string, detail bool) (models.VideoView, error) {
	view := models.VideoView{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		VideoFile:   v.VideoFile,
		Thumbnail:   v.Thumbnail,
		Duration:    v.Duration,
		Views:       v.Views,
		IsPublished: v.IsPublished,
		CreatedAt:   v.CreatedAt,
		Owner:       models.OwnerDetail{OwnerProfile: models.ProfileOf(owner)},
	}

	var err error
	if view.LikesCount, view.IsLiked, err = p.edgeFacts(ctx, models.EdgeVideoLike, v.ID, viewerID); err != nil {
		return models.VideoView{}, err
	}
	if detail {
		if view.Owner.SubscribersCount, view.Owner.IsSubscribed, err = p.edgeFacts(ctx, models.EdgeSubscription, owner.ID, viewerID); err != nil {
			return models.VideoView{}, err
		}
	}
	return view, nil
}

// Comment projects c.
func (p *Projector) Comment(ctx context.Context, c models.Comment, viewerID string) (models.CommentView, error) {
	owner, err := p.owner(ctx, models.EntityComment, c.ID, c.OwnerID)
	if err != nil {
		return models.CommentView{}, err
	}
	return p.comment(ctx, c, owner, viewerID)
}

func (p *Projector) comment(ctx context.Context, c models.Comment, owner models.User, viewerID string) (models.CommentView, error) {
	count, liked, err := p.edgeFacts(ctx, models.EdgeCommentLike, c.ID, viewerID)
	if err != nil {
		return models.CommentView{}, err
	}
	return models.CommentView{
		ID:         c.ID,
		VideoID:    c.VideoID,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
		Owner:      models.ProfileOf(owner),
		LikesCount: count,
		IsLiked:    liked,
	}, nil
}

// Tweet projects t.
func (p *Projector) Tweet(ctx context.Context, t models.Tweet, viewerID string) (models.TweetView, error) {
	owner, err := p.owner(ctx, models.EntityTweet, t.ID, t.OwnerID)
	if err != nil {
		return models.TweetView{}, err
	}
	return p.tweet(ctx, t, owner, viewerID)
}

func (p *Projector) tweet(ctx context.Context, t models.Tweet, owner models.User, viewerID string) (models.TweetView, error) {
	count, liked, err := p.edgeFacts(ctx, models.EdgeTweetLike, t.ID, viewerID)
	if err != nil {
		return models.TweetView{}, err
	}
	return models.TweetView{
		ID:         t.ID,
		Content:    t.Content,
		CreatedAt:  t.CreatedAt,
		Owner:      models.ProfileOf(owner),
		LikesCount: count,
		IsLiked:    liked,
	}, nil
}

// Channel projects u as a channel: how many users subscribe to it, how many
// channels it subscribes to, and whether the viewer is a subscriber.
func (p *Projector) Channel(ctx context.Context, u models.User, viewerID string) (models.ChannelView, error) {
	view := models.ChannelView{OwnerProfile: models.ProfileOf(u)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		view.SubscribersCount, view.IsSubscribed, err = p.edgeFacts(gctx, models.EdgeSubscription, u.ID, viewerID)
		return err
	})
	g.Go(func() error {
		var err error
		view.SubscribedToCount, err = p.edges.CountByActor(gctx, models.EdgeSubscription, u.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.ChannelView{}, err
	}
	return view, nil
}

// edgeFacts counts the edges pointing at subjectID and reports whether the
// viewer holds one of them.
func (p *Projector) edgeFacts(ctx context.Context, kind models.EdgeKind, subjectID, viewerID string) (int64, bool, error) {
	count, err := p.edges.CountBySubject(ctx, kind, subjectID)
	if err != nil {
		return 0, false, err
	}
	if viewerID == "" || count == 0 {
		return count, false, nil
	}
	held, err := p.edges.Exists(ctx, kind, subjectID, viewerID)
	if err != nil {
		return 0, false, err
	}
	return count, held, nil
}

func (p *Projector) owner(ctx context.Context, kind models.EntityKind, entityID, ownerID string) (models.User, error) {
	u, err := p.users.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, missingOwner(ctx, kind, entityID, ownerID)
		}
		return models.User{}, err
	}
	return u, nil
}

// owners resolves the owners of a page in one store call.
func (p *Projector) owners(ctx context.Context, ids []string) (map[string]models.User, error) {
	if len(ids) == 0 {
		return map[string]models.User{}, nil
	}
	return p.users.FindByIDs(ctx, uniq(ids))
}

func ownerFrom(ctx context.Context, owners map[string]models.User, kind models.EntityKind, entityID, ownerID string) (models.User, error) {
	u, ok := owners[ownerID]
	if !ok {
		return models.User{}, missingOwner(ctx, kind, entityID, ownerID)
	}
	return u, nil
}

func missingOwner(ctx context.Context, kind models.EntityKind, entityID, ownerID string) error {
	logging.FromContext(ctx).Error("entity owner missing",
		slog.String("entity_kind", string(kind)),
		slog.String("entity_id", entityID),
		slog.String("owner_id", ownerID),
	)
	return fmt.Errorf("%w: %s %s references missing owner %s", ErrDataIntegrity, kind, entityID, ownerID)
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
