package engagement

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vidtube/backend/internal/models"
)

// searchFields are the video fields matched by free-text queries.
var searchFields = []string{"title", "description"}

// VideoFilter narrows a video feed.
type VideoFilter struct {
	// Query restricts results to search hits and, without an explicit order,
	// keeps the search ranking.
	Query string
	// OwnerID restricts results to one channel. When it matches the viewer,
	// unpublished videos are included.
	OwnerID string
}

// FeedAssembler runs collection reads through a fixed pipeline: search
// candidates, equality filters, sort, paginate, then project each item.
type FeedAssembler struct {
	users     UserStore
	videos    VideoStore
	comments  CommentStore
	tweets    TweetStore
	edges     EdgeStore
	search    Searcher
	projector *Projector
	paging    Paging
	workers   int
}

// NewFeedAssembler constructs a FeedAssembler. search may be nil, in which case
// free-text queries fail with ErrUnavailable.
func NewFeedAssembler(users UserStore, videos VideoStore, comments CommentStore, tweets TweetStore, edges EdgeStore, search Searcher, projector *Projector, paging Paging, workers int) *FeedAssembler {
	return &FeedAssembler{
		users:     users,
		videos:    videos,
		comments:  comments,
		tweets:    tweets,
		edges:     edges,
		search:    search,
		projector: projector,
		paging:    paging,
		workers:   workers,
	}
}

// Videos assembles one page of the video feed.
func (f *FeedAssembler) Videos(ctx context.Context, filter VideoFilter, order Order, req PageRequest, viewerID string) (models.Page[models.VideoView], error) {
	req, err := f.paging.normalize(req)
	if err != nil {
		return models.Page[models.VideoView]{}, err
	}
	if err := validateViewer(viewerID); err != nil {
		return models.Page[models.VideoView]{}, err
	}
	if filter.OwnerID != "" {
		if err := validateID("owner id", filter.OwnerID); err != nil {
			return models.Page[models.VideoView]{}, err
		}
	}

	q := models.VideoQuery{
		OwnerID:       filter.OwnerID,
		PublishedOnly: filter.OwnerID == "" || filter.OwnerID != viewerID,
		Window:        req.window(),
	}

	if query := strings.TrimSpace(filter.Query); query != "" {
		if f.search == nil {
			return models.Page[models.VideoView]{}, fmt.Errorf("%w: search is not configured", ErrUnavailable)
		}
		ids, err := f.search.Search(ctx, query, searchFields)
		if err != nil {
			return models.Page[models.VideoView]{}, fmt.Errorf("search videos: %w", err)
		}
		q.Restricted = true
		q.CandidateIDs = ids
		if order.IsZero() {
			q.Sort = models.SortRank
		}
	}

	if q.Sort == "" {
		if order.IsZero() {
			order = DefaultOrder
		}
		q.Sort, q.Desc = order.Field, order.Desc
	}

	videos, total, err := f.videos.Query(ctx, q)
	if err != nil {
		return models.Page[models.VideoView]{}, err
	}

	views, err := f.projectVideos(ctx, videos, viewerID)
	if err != nil {
		return models.Page[models.VideoView]{}, err
	}
	return newPage(views, req, total), nil
}

// Comments assembles one page of a video's comments, newest first.
func (f *FeedAssembler) Comments(ctx context.Context, videoID string, req PageRequest, viewerID string) (models.Page[models.CommentView], error) {
	req, err := f.paging.normalize(req)
	if err != nil {
		return models.Page[models.CommentView]{}, err
	}
	if err := validateID("video id", videoID); err != nil {
		return models.Page[models.CommentView]{}, err
	}
	if err := validateViewer(viewerID); err != nil {
		return models.Page[models.CommentView]{}, err
	}
	video, err := f.videos.FindByID(ctx, videoID)
	if err != nil {
		return models.Page[models.CommentView]{}, err
	}
	if err := visibleTo(video, viewerID); err != nil {
		return models.Page[models.CommentView]{}, err
	}

	comments, total, err := f.comments.ListByVideo(ctx, videoID, req.window())
	if err != nil {
		return models.Page[models.CommentView]{}, err
	}

	owners, err := f.projector.owners(ctx, ownerIDs(comments, func(c models.Comment) string { return c.OwnerID }))
	if err != nil {
		return models.Page[models.CommentView]{}, err
	}
	views, err := projectAll(ctx, f.workers, comments, func(ctx context.Context, c models.Comment) (models.CommentView, error) {
		owner, err := ownerFrom(ctx, owners, models.EntityComment, c.ID, c.OwnerID)
		if err != nil {
			return models.CommentView{}, err
		}
		return f.projector.comment(ctx, c, owner, viewerID)
	})
	if err != nil {
		return models.Page[models.CommentView]{}, err
	}
	return newPage(views, req, total), nil
}

// Tweets assembles one page of a user's tweets, newest first.
func (f *FeedAssembler) Tweets(ctx context.Context, ownerID string, req PageRequest, viewerID string) (models.Page[models.TweetView], error) {
	req, err := f.paging.normalize(req)
	if err != nil {
		return models.Page[models.TweetView]{}, err
	}
	if err := validateID("user id", ownerID); err != nil {
		return models.Page[models.TweetView]{}, err
	}
	if err := validateViewer(viewerID); err != nil {
		return models.Page[models.TweetView]{}, err
	}

	owner, err := f.users.FindByID(ctx, ownerID)
	if err != nil {
		return models.Page[models.TweetView]{}, err
	}

	tweets, total, err := f.tweets.ListByOwner(ctx, ownerID, req.window())
	if err != nil {
		return models.Page[models.TweetView]{}, err
	}

	views, err := projectAll(ctx, f.workers, tweets, func(ctx context.Context, t models.Tweet) (models.TweetView, error) {
		return f.projector.tweet(ctx, t, owner, viewerID)
	})
	if err != nil {
		return models.Page[models.TweetView]{}, err
	}
	return newPage(views, req, total), nil
}

// LikedVideos assembles the videos actorID liked, most recent like first.
// Videos removed since the page was counted are skipped.
func (f *FeedAssembler) LikedVideos(ctx context.Context, actorID string, req PageRequest) (models.Page[models.VideoView], error) {
	req, err := f.paging.normalize(req)
	if err != nil {
		return models.Page[models.VideoView]{}, err
	}
	if err := validateID("user id", actorID); err != nil {
		return models.Page[models.VideoView]{}, err
	}

	total, err := f.edges.CountByActor(ctx, models.EdgeVideoLike, actorID)
	if err != nil {
		return models.Page[models.VideoView]{}, err
	}
	ids, err := f.edges.ListSubjects(ctx, models.EdgeVideoLike, actorID, req.window())
	if err != nil {
		return models.Page[models.VideoView]{}, err
	}

	var videos []models.Video
	if len(ids) > 0 {
		found, err := f.videos.FindByIDs(ctx, ids)
		if err != nil {
			return models.Page[models.VideoView]{}, err
		}
		videos = pick(ids, found)
	}

	views, err := f.projectVideos(ctx, videos, actorID)
	if err != nil {
		return models.Page[models.VideoView]{}, err
	}
	return newPage(views, req, total), nil
}

// Subscribers lists the users subscribed to channelID, newest first.
func (f *FeedAssembler) Subscribers(ctx context.Context, channelID string, req PageRequest) (models.Page[models.OwnerProfile], error) {
	return f.profiles(ctx, channelID, req, true)
}

// SubscribedChannels lists the channels subscriberID follows, newest first.
func (f *FeedAssembler) SubscribedChannels(ctx context.Context, subscriberID string, req PageRequest) (models.Page[models.OwnerProfile], error) {
	return f.profiles(ctx, subscriberID, req, false)
}

// profiles pages through subscription edges from either end. bySubject lists
// the actors subscribed to userID; otherwise the channels userID subscribes to.
func (f *FeedAssembler) profiles(ctx context.Context, userID string, req PageRequest, bySubject bool) (models.Page[models.OwnerProfile], error) {
	req, err := f.paging.normalize(req)
	if err != nil {
		return models.Page[models.OwnerProfile]{}, err
	}
	if err := validateID("user id", userID); err != nil {
		return models.Page[models.OwnerProfile]{}, err
	}
	if _, err := f.users.FindByID(ctx, userID); err != nil {
		return models.Page[models.OwnerProfile]{}, err
	}

	var (
		total int64
		ids   []string
	)
	if bySubject {
		if total, err = f.edges.CountBySubject(ctx, models.EdgeSubscription, userID); err != nil {
			return models.Page[models.OwnerProfile]{}, err
		}
		ids, err = f.edges.ListActors(ctx, models.EdgeSubscription, userID, req.window())
	} else {
		if total, err = f.edges.CountByActor(ctx, models.EdgeSubscription, userID); err != nil {
			return models.Page[models.OwnerProfile]{}, err
		}
		ids, err = f.edges.ListSubjects(ctx, models.EdgeSubscription, userID, req.window())
	}
	if err != nil {
		return models.Page[models.OwnerProfile]{}, err
	}

	var items []models.OwnerProfile
	if len(ids) > 0 {
		found, err := f.users.FindByIDs(ctx, ids)
		if err != nil {
			return models.Page[models.OwnerProfile]{}, err
		}
		for _, u := range pick(ids, found) {
			items = append(items, models.ProfileOf(u))
		}
	}
	return newPage(items, req, total), nil
}

func (f *FeedAssembler) projectVideos(ctx context.Context, videos []models.Video, viewerID string) ([]models.VideoView, error) {
	owners, err := f.projector.owners(ctx, ownerIDs(videos, func(v models.Video) string { return v.OwnerID }))
	if err != nil {
		return nil, err
	}
	return projectAll(ctx, f.workers, videos, func(ctx context.Context, v models.Video) (models.VideoView, error) {
		owner, err := ownerFrom(ctx, owners, models.EntityVideo, v.ID, v.OwnerID)
		if err != nil {
			return models.VideoView{}, err
		}
		return f.projector.video(ctx, v, owner, viewerID, false)
	})
}

// projectAll maps items through project with at most limit calls in flight.
// Results keep the input order; the first error cancels the rest.
func projectAll[S, T any](ctx context.Context, limit int, items []S, project func(context.Context, S) (T, error)) ([]T, error) {
	out := make([]T, len(items))
	if len(items) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			view, err := project(gctx, item)
			if err != nil {
				return err
			}
			out[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func ownerIDs[T any](items []T, owner func(T) string) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, owner(item))
	}
	return ids
}

// pick returns the entries of found in the order of ids, skipping ids that
// were not found.
func pick[T any](ids []string, found map[string]T) []T {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if v, ok := found[id]; ok {
			out = append(out, v)
		}
	}
	return out
}
