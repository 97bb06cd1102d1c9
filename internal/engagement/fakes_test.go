package engagement

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
)

// memDB is an in-memory stand-in for the PostgreSQL stores. Like the schema,
// it enforces one edge per (kind, subject, actor).
type memDB struct {
	mu       sync.Mutex
	users    map[string]models.User
	videos   map[string]models.Video
	comments map[string]models.Comment
	tweets   map[string]models.Tweet
	edges    map[edgeKey]memEdge
	history  map[[2]string]int
	seq      int64
}

type edgeKey struct {
	kind    models.EdgeKind
	subject string
	actor   string
}

type memEdge struct {
	id  string
	seq int64
}

func newMemDB() *memDB {
	return &memDB{
		users:    make(map[string]models.User),
		videos:   make(map[string]models.Video),
		comments: make(map[string]models.Comment),
		tweets:   make(map[string]models.Tweet),
		edges:    make(map[edgeKey]memEdge),
		history:  make(map[[2]string]int),
	}
}

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func (db *memDB) addUser(t *testing.T, username string) models.User {
	t.Helper()
	u := models.User{ID: uuid.NewString(), Username: username, FullName: strings.ToUpper(username), Avatar: "https://cdn.test/" + username + ".png", CreatedAt: baseTime}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users[u.ID] = u
	return u
}

func (db *memDB) addVideo(t *testing.T, v models.Video) models.Video {
	t.Helper()
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = baseTime
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.videos[v.ID] = v
	return v
}

func (db *memDB) addComment(t *testing.T, c models.Comment) models.Comment {
	t.Helper()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = baseTime
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.comments[c.ID] = c
	return c
}

func (db *memDB) addTweet(t *testing.T, tw models.Tweet) models.Tweet {
	t.Helper()
	if tw.ID == "" {
		tw.ID = uuid.NewString()
	}
	if tw.CreatedAt.IsZero() {
		tw.CreatedAt = baseTime
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.tweets[tw.ID] = tw
	return tw
}

func (db *memDB) addEdge(t *testing.T, kind models.EdgeKind, subjectID, actorID string) {
	t.Helper()
	if _, err := (memEdges{db}).Create(context.Background(), kind, subjectID, actorID); err != nil {
		t.Fatalf("seed %s edge: %v", kind, err)
	}
}

func (db *memDB) edgeCount(kind models.EdgeKind, subjectID string) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for k := range db.edges {
		if k.kind == kind && k.subject == subjectID {
			n++
		}
	}
	return n
}

func (db *memDB) deps() Dependencies {
	return Dependencies{
		Users:    memUsers{db},
		Videos:   memVideos{db},
		Comments: memComments{db},
		Tweets:   memTweets{db},
		Edges:    memEdges{db},
		History:  memHistory{db},
	}
}

type memUsers struct{ db *memDB }

func (s memUsers) FindByID(_ context.Context, id string) (models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (s memUsers) FindByIDs(_ context.Context, ids []string) (map[string]models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make(map[string]models.User)
	for _, id := range ids {
		if u, ok := s.db.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

type memVideos struct{ db *memDB }

func (s memVideos) FindByID(_ context.Context, id string) (models.Video, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	v, ok := s.db.videos[id]
	if !ok {
		return models.Video{}, ErrNotFound
	}
	return v, nil
}

func (s memVideos) FindByIDs(_ context.Context, ids []string) (map[string]models.Video, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make(map[string]models.Video)
	for _, id := range ids {
		if v, ok := s.db.videos[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (s memVideos) ListByOwner(_ context.Context, ownerID string, includeUnpublished bool) ([]models.Video, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Video
	for _, v := range s.db.videos {
		if v.OwnerID == ownerID && (v.IsPublished || includeUnpublished) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s memVideos) Query(_ context.Context, q models.VideoQuery) ([]models.Video, int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rank := make(map[string]int, len(q.CandidateIDs))
	for i, id := range q.CandidateIDs {
		if _, ok := rank[id]; !ok {
			rank[id] = i
		}
	}

	var matched []models.Video
	for _, v := range s.db.videos {
		if q.Restricted {
			if _, ok := rank[v.ID]; !ok {
				continue
			}
		}
		if q.OwnerID != "" && v.OwnerID != q.OwnerID {
			continue
		}
		if q.PublishedOnly && !v.IsPublished {
			continue
		}
		matched = append(matched, v)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if q.Sort == models.SortRank && q.Restricted {
			return rank[a.ID] < rank[b.ID]
		}
		var cmp int
		switch q.Sort {
		case models.SortViews:
			cmp = compare(a.Views, b.Views)
		case models.SortDuration:
			cmp = compare(a.Duration, b.Duration)
		case models.SortTitle:
			cmp = strings.Compare(a.Title, b.Title)
		default:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		}
		if cmp == 0 {
			cmp = strings.Compare(a.ID, b.ID)
		}
		if q.Desc {
			return cmp > 0
		}
		return cmp < 0
	})

	total := int64(len(matched))
	return window(matched, q.Window), total, nil
}

func compare[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func window[T any](items []T, w models.Window) []T {
	if w.Offset >= len(items) {
		return nil
	}
	end := len(items)
	if w.Limit < end-w.Offset {
		end = w.Offset + w.Limit
	}
	return items[w.Offset:end]
}

func (s memVideos) Update(_ context.Context, v models.Video) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.videos[v.ID]; !ok {
		return ErrNotFound
	}
	s.db.videos[v.ID] = v
	return nil
}

func (s memVideos) IncrementViews(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	v, ok := s.db.videos[id]
	if !ok {
		return ErrNotFound
	}
	v.Views++
	s.db.videos[id] = v
	return nil
}

func (s memVideos) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.videos, id)
	return nil
}

type memComments struct{ db *memDB }

func (s memComments) Create(_ context.Context, c models.Comment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.videos[c.VideoID]; !ok {
		return ErrNotFound
	}
	s.db.comments[c.ID] = c
	return nil
}

func (s memComments) FindByID(_ context.Context, id string) (models.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.comments[id]
	if !ok {
		return models.Comment{}, ErrNotFound
	}
	return c, nil
}

func (s memComments) ListByVideo(_ context.Context, videoID string, w models.Window) ([]models.Comment, int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Comment
	for _, c := range s.db.comments {
		if c.VideoID == videoID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return window(out, w), int64(len(out)), nil
}

func (s memComments) IDsByVideo(_ context.Context, videoID string) ([]string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var ids []string
	for _, c := range s.db.comments {
		if c.VideoID == videoID {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (s memComments) UpdateContent(_ context.Context, id, content string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.comments[id]
	if !ok {
		return ErrNotFound
	}
	c.Content = content
	s.db.comments[id] = c
	return nil
}

func (s memComments) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.comments, id)
	return nil
}

func (s memComments) DeleteByVideo(_ context.Context, videoID string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for id, c := range s.db.comments {
		if c.VideoID == videoID {
			delete(s.db.comments, id)
			n++
		}
	}
	return n, nil
}

type memTweets struct{ db *memDB }

func (s memTweets) Create(_ context.Context, t models.Tweet) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[t.OwnerID]; !ok {
		return ErrNotFound
	}
	s.db.tweets[t.ID] = t
	return nil
}

func (s memTweets) FindByID(_ context.Context, id string) (models.Tweet, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.tweets[id]
	if !ok {
		return models.Tweet{}, ErrNotFound
	}
	return t, nil
}

func (s memTweets) ListByOwner(_ context.Context, ownerID string, w models.Window) ([]models.Tweet, int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Tweet
	for _, t := range s.db.tweets {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return window(out, w), int64(len(out)), nil
}

func (s memTweets) UpdateContent(_ context.Context, id, content string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.tweets[id]
	if !ok {
		return ErrNotFound
	}
	t.Content = content
	s.db.tweets[id] = t
	return nil
}

func (s memTweets) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.tweets, id)
	return nil
}

type memEdges struct{ db *memDB }

func (s memEdges) Exists(_ context.Context, kind models.EdgeKind, subjectID, actorID string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	_, ok := s.db.edges[edgeKey{kind, subjectID, actorID}]
	return ok, nil
}

func (s memEdges) Create(_ context.Context, kind models.EdgeKind, subjectID, actorID string) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	key := edgeKey{kind, subjectID, actorID}
	if _, ok := s.db.edges[key]; ok {
		return "", ErrConflict
	}
	s.db.seq++
	e := memEdge{id: uuid.NewString(), seq: s.db.seq}
	s.db.edges[key] = e
	return e.id, nil
}

func (s memEdges) DeleteByKey(_ context.Context, kind models.EdgeKind, subjectID, actorID string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	key := edgeKey{kind, subjectID, actorID}
	if _, ok := s.db.edges[key]; !ok {
		return 0, nil
	}
	delete(s.db.edges, key)
	return 1, nil
}

func (s memEdges) CountBySubject(_ context.Context, kind models.EdgeKind, subjectID string) (int64, error) {
	return int64(s.db.edgeCount(kind, subjectID)), nil
}

func (s memEdges) CountByActor(_ context.Context, kind models.EdgeKind, actorID string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for k := range s.db.edges {
		if k.kind == kind && k.actor == actorID {
			n++
		}
	}
	return n, nil
}

func (s memEdges) ListActors(_ context.Context, kind models.EdgeKind, subjectID string, w models.Window) ([]string, error) {
	return s.list(kind, w, func(k edgeKey) (string, bool) { return k.actor, k.subject == subjectID }), nil
}

func (s memEdges) ListSubjects(_ context.Context, kind models.EdgeKind, actorID string, w models.Window) ([]string, error) {
	return s.list(kind, w, func(k edgeKey) (string, bool) { return k.subject, k.actor == actorID }), nil
}

func (s memEdges) list(kind models.EdgeKind, w models.Window, pick func(edgeKey) (string, bool)) []string {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	type hit struct {
		id  string
		seq int64
	}
	var hits []hit
	for k, e := range s.db.edges {
		if k.kind != kind {
			continue
		}
		if id, ok := pick(k); ok {
			hits = append(hits, hit{id: id, seq: e.seq})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].seq > hits[j].seq })
	var ids []string
	for _, h := range window(hits, w) {
		ids = append(ids, h.id)
	}
	return ids
}

func (s memEdges) DeleteAllForSubject(_ context.Context, kind models.EdgeKind, subjectID string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for k := range s.db.edges {
		if k.kind == kind && k.subject == subjectID {
			delete(s.db.edges, k)
			n++
		}
	}
	return n, nil
}

type memHistory struct{ db *memDB }

func (s memHistory) Append(_ context.Context, userID, videoID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.history[[2]string{userID, videoID}]++
	return nil
}

type stubSearcher struct {
	ids    []string
	err    error
	query  string
	fields []string
}

func (s *stubSearcher) Search(_ context.Context, query string, fields []string) ([]string, error) {
	s.query = query
	s.fields = fields
	return s.ids, s.err
}

type recordingReaper struct {
	mu        sync.Mutex
	locations []string
}

func (r *recordingReaper) Enqueue(_ context.Context, locations ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations = append(r.locations, locations...)
	return nil
}

type countingRecorder struct {
	mu        sync.Mutex
	toggles   map[models.ToggleState]int
	conflicts int
}

func (r *countingRecorder) ObserveToggle(_ models.EdgeKind, state models.ToggleState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.toggles == nil {
		r.toggles = make(map[models.ToggleState]int)
	}
	r.toggles[state]++
}

func (r *countingRecorder) ObserveConflict(models.EdgeKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflicts++
}

func newTestService(t *testing.T, deps Dependencies, opts Options) *Service {
	t.Helper()
	svc, err := NewService(deps, opts)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}
