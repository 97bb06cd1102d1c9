package engagement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// ToggleResult reports which way a toggle went.
type ToggleResult struct {
	State models.ToggleState `json:"state"`
}

// ownerLookup resolves a subject and returns the id of the user it belongs
// to. For a channel the owner is the channel itself.
type ownerLookup func(ctx context.Context, subjectID string) (string, error)

// Toggler flips the existence of a like or subscription edge.
//
// The existence check and the write are not atomic. Two callers may both see
// an absent edge; the store's unique key then rejects the second create and
// that caller deletes instead, so both converge on a single edge state.
type Toggler struct {
	edges      EdgeStore
	owners     map[models.EdgeKind]ownerLookup
	recorder   ToggleRecorder
	rejectSelf map[models.EdgeKind]bool
}

// ToggleOption customises a Toggler.
type ToggleOption func(*Toggler)

// WithRecorder reports every outcome to r.
func WithRecorder(r ToggleRecorder) ToggleOption {
	return func(t *Toggler) {
		if r != nil {
			t.recorder = r
		}
	}
}

// RejectSelf forbids actors from creating edges of the given kinds on
// subjects they own. Removing such an edge stays allowed.
func RejectSelf(kinds ...models.EdgeKind) ToggleOption {
	return func(t *Toggler) {
		for _, kind := range kinds {
			t.rejectSelf[kind] = true
		}
	}
}

// NewToggler wires a Toggler to the stores used to resolve subjects.
func NewToggler(edges EdgeStore, users UserStore, videos VideoStore, comments CommentStore, tweets TweetStore, opts ...ToggleOption) *Toggler {
	t := &Toggler{
		edges: edges,
		owners: map[models.EdgeKind]ownerLookup{
			models.EdgeVideoLike: func(ctx context.Context, id string) (string, error) {
				v, err := videos.FindByID(ctx, id)
				return v.OwnerID, err
			},
			models.EdgeCommentLike: func(ctx context.Context, id string) (string, error) {
				c, err := comments.FindByID(ctx, id)
				return c.OwnerID, err
			},
			models.EdgeTweetLike: func(ctx context.Context, id string) (string, error) {
				tw, err := tweets.FindByID(ctx, id)
				return tw.OwnerID, err
			},
			models.EdgeSubscription: func(ctx context.Context, id string) (string, error) {
				u, err := users.FindByID(ctx, id)
				return u.ID, err
			},
		},
		recorder:   nopRecorder{},
		rejectSelf: make(map[models.EdgeKind]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Toggle removes the (subject, actor) edge when it exists and creates it
// otherwise.
func (t *Toggler) Toggle(ctx context.Context, kind models.EdgeKind, subjectID, actorID string) (ToggleResult, error) {
	lookup, ok := t.owners[kind]
	if !ok {
		return ToggleResult{}, invalidArgument("unknown edge kind %q", kind)
	}
	if err := validateID("subject id", subjectID); err != nil {
		return ToggleResult{}, err
	}
	if err := validateID("actor id", actorID); err != nil {
		return ToggleResult{}, err
	}

	ownerID, err := lookup(ctx, subjectID)
	if err != nil {
		return ToggleResult{}, fmt.Errorf("resolve %s subject: %w", kind, err)
	}

	exists, err := t.edges.Exists(ctx, kind, subjectID, actorID)
	if err != nil {
		return ToggleResult{}, err
	}
	if exists {
		return t.remove(ctx, kind, subjectID, actorID)
	}

	if t.rejectSelf[kind] && ownerID == actorID {
		return ToggleResult{}, fmt.Errorf("%w: %s on own subject", ErrForbidden, kind)
	}

	_, err = t.edges.Create(ctx, kind, subjectID, actorID)
	switch {
	case err == nil:
		t.recorder.ObserveToggle(kind, models.ToggleCreated)
		return ToggleResult{State: models.ToggleCreated}, nil
	case errors.Is(err, ErrConflict):
		// A concurrent toggle created the edge between our check and write.
		t.recorder.ObserveConflict(kind)
		logging.FromContext(ctx).Debug("toggle lost create race, removing edge",
			slog.String("edge_kind", string(kind)),
			slog.String("subject_id", subjectID),
		)
		return t.remove(ctx, kind, subjectID, actorID)
	default:
		return ToggleResult{}, err
	}
}

func (t *Toggler) remove(ctx context.Context, kind models.EdgeKind, subjectID, actorID string) (ToggleResult, error) {
	if _, err := t.edges.DeleteByKey(ctx, kind, subjectID, actorID); err != nil {
		return ToggleResult{}, err
	}
	t.recorder.ObserveToggle(kind, models.ToggleRemoved)
	return ToggleResult{State: models.ToggleRemoved}, nil
}
