package services

import (
	"context"
	"errors"
	"sync"

	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/models"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockVideoStore is a mock implementation of VideoStore.
type MockVideoStore struct {
	mock.Mock
}

func (m *MockVideoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Video), args.Error(1)
}

func (m *MockVideoStore) TextSearch(ctx context.Context, text string, exclude []primitive.ObjectID, limit int64) ([]models.Video, error) {
	args := m.Called(ctx, text, exclude, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Video), args.Error(1)
}

func (m *MockVideoStore) PatternSearch(ctx context.Context, keywords []string, limit int64) ([]models.Video, error) {
	args := m.Called(ctx, keywords, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Video), args.Error(1)
}

func (m *MockVideoStore) FindByContext(ctx context.Context, category *primitive.ObjectID, tags []string, exclude []primitive.ObjectID, limit int64) ([]models.Video, error) {
	args := m.Called(ctx, category, tags, exclude, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Video), args.Error(1)
}

func (m *MockVideoStore) Latest(ctx context.Context, exclude []primitive.ObjectID, limit int64) ([]models.Video, error) {
	args := m.Called(ctx, exclude, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Video), args.Error(1)
}

var _ VideoStore = (*MockVideoStore)(nil)

// memGraph is an in-memory GraphStore over users and videos.
type memGraph struct {
	mu        sync.Mutex
	users     map[primitive.ObjectID]*models.User
	videos    map[primitive.ObjectID]*models.Video
	failSetIn bool
	calls     int
}

func newMemGraph() *memGraph {
	return &memGraph{
		users:  make(map[primitive.ObjectID]*models.User),
		videos: make(map[primitive.ObjectID]*models.Video),
	}
}

func (g *memGraph) addUser() primitive.ObjectID {
	id := primitive.NewObjectID()
	g.users[id] = &models.User{ID: id}
	return id
}

func (g *memGraph) addVideo() primitive.ObjectID {
	id := primitive.NewObjectID()
	g.videos[id] = &models.Video{ID: id, Status: models.VideoStatusApproved}
	return id
}

func (g *memGraph) HasEdge(ctx context.Context, kind EdgeKind, from, to primitive.ObjectID) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	u, ok := g.users[from]
	if !ok {
		return false, apperr.NotFound("User not found")
	}
	set := u.SubscribedTo
	if kind == EdgeLike {
		set = u.LikedVideos
	}
	return containsID(set, to), nil
}

func (g *memGraph) EnsureTarget(ctx context.Context, kind EdgeKind, to primitive.ObjectID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if kind == EdgeLike {
		if _, ok := g.videos[to]; !ok {
			return apperr.NotFound("Video not found")
		}
		return nil
	}
	if _, ok := g.users[to]; !ok {
		return apperr.NotFound("Creator not found")
	}
	return nil
}

func (g *memGraph) SetOut(ctx context.Context, kind EdgeKind, from, to primitive.ObjectID, present bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	u := g.users[from]
	if kind == EdgeLike {
		u.LikedVideos = setID(u.LikedVideos, to, present)
	} else {
		u.SubscribedTo = setID(u.SubscribedTo, to, present)
	}
	return nil
}

func (g *memGraph) SetIn(ctx context.Context, kind EdgeKind, to, from primitive.ObjectID, present bool) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.failSetIn {
		return 0, errors.New("write conflict")
	}
	if kind == EdgeLike {
		v := g.videos[to]
		v.Likes = setID(v.Likes, from, present)
		return len(v.Likes), nil
	}
	u := g.users[to]
	u.Subscribers = setID(u.Subscribers, from, present)
	return len(u.Subscribers), nil
}

var _ GraphStore = (*memGraph)(nil)

func containsID(set []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, s := range set {
		if s == id {
			return true
		}
	}
	return false
}

func setID(set []primitive.ObjectID, id primitive.ObjectID, present bool) []primitive.ObjectID {
	if present {
		if containsID(set, id) {
			return set
		}
		return append(set, id)
	}
	out := set[:0]
	for _, s := range set {
		if s != id {
			out = append(out, s)
		}
	}
	return out
}

// memHistory is an in-memory HistoryStore and VideoFinder.
type memHistory struct {
	mu      sync.Mutex
	history map[primitive.ObjectID][]primitive.ObjectID
	videos  map[primitive.ObjectID]models.Video
}

func newMemHistory() *memHistory {
	return &memHistory{
		history: make(map[primitive.ObjectID][]primitive.ObjectID),
		videos:  make(map[primitive.ObjectID]models.Video),
	}
}

func (h *memHistory) addVideo(status string) primitive.ObjectID {
	id := primitive.NewObjectID()
	h.videos[id] = models.Video{ID: id, Title: "video " + id.Hex(), Status: status}
	return id
}

func (h *memHistory) PushHistory(ctx context.Context, userID, videoID primitive.ObjectID, limit int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.history[userID] = moveToEnd(h.history[userID], videoID, limit)
	return nil
}

func (h *memHistory) History(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]primitive.ObjectID(nil), h.history[userID]...), nil
}

func (h *memHistory) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	v, ok := h.videos[id]
	if !ok {
		return nil, apperr.NotFound("Video not found")
	}
	return &v, nil
}

func (h *memHistory) FindApprovedByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Video, error) {
	out := []models.Video{}
	for id, v := range h.videos {
		if v.Status == models.VideoStatusApproved && containsID(ids, id) {
			out = append(out, v)
		}
	}
	return out, nil
}

var (
	_ HistoryStore = (*memHistory)(nil)
	_ VideoFinder  = (*memHistory)(nil)
)

func approved(title string) models.Video {
	return models.Video{ID: primitive.NewObjectID(), Title: title, Status: models.VideoStatusApproved}
}

// moveToEnd is the in-memory counterpart of the store's history update.
func moveToEnd(history []primitive.ObjectID, id primitive.ObjectID, limit int) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(history)+1)
	for _, h := range history {
		if h != id {
			out = append(out, h)
		}
	}
	out = append(out, id)
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
