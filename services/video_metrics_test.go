package services

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockMetricsStore struct {
	mock.Mock
}

func (m *MockMetricsStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Video), args.Error(1)
}

func (m *MockMetricsStore) SetCounters(ctx context.Context, id primitive.ObjectID, views *int64, likes []primitive.ObjectID) error {
	args := m.Called(ctx, id, views, likes)
	return args.Error(0)
}

func videoWithLikes(n int) *models.Video {
	v := &models.Video{ID: primitive.NewObjectID(), Views: 7, Status: models.VideoStatusApproved}
	for i := 0; i < n; i++ {
		v.Likes = append(v.Likes, primitive.NewObjectID())
	}
	return v
}

func TestMetricsUpdate_RequiresAField(t *testing.T) {
	store := new(MockMetricsStore)
	m := NewMetricsUpdater(store)

	_, err := m.Update(context.Background(), primitive.NewObjectID(), models.UpdateMetricsRequest{})

	require.Error(t, err)
	assert.Equal(t, "Please provide views or likes to update", apperr.MessageOf(err))
	store.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestMetricsUpdate_ViewsFromString(t *testing.T) {
	store := new(MockMetricsStore)
	m := NewMetricsUpdater(store)
	video := videoWithLikes(2)

	store.On("FindByID", mock.Anything, video.ID).Return(video, nil)
	store.On("SetCounters", mock.Anything, video.ID, mock.MatchedBy(func(v *int64) bool {
		return v != nil && *v == 42
	}), []primitive.ObjectID(nil)).Return(nil)

	got, err := m.Update(context.Background(), video.ID, models.UpdateMetricsRequest{Views: "42"})

	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Views)
	assert.Equal(t, 2, got.LikesCount)
	store.AssertExpectations(t)
}

func TestMetricsUpdate_PadsLikesKeepingExisting(t *testing.T) {
	store := new(MockMetricsStore)
	m := NewMetricsUpdater(store)
	video := videoWithLikes(2)
	existing := append([]primitive.ObjectID(nil), video.Likes...)

	var written []primitive.ObjectID
	store.On("FindByID", mock.Anything, video.ID).Return(video, nil)
	store.On("SetCounters", mock.Anything, video.ID, (*int64)(nil), mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(3).([]primitive.ObjectID) }).
		Return(nil)

	got, err := m.Update(context.Background(), video.ID, models.UpdateMetricsRequest{Likes: float64(5)})

	require.NoError(t, err)
	assert.Equal(t, 5, got.LikesCount)
	assert.Equal(t, int64(7), got.Views)
	require.Len(t, written, 5)
	assert.Equal(t, existing, written[:2])
}

func TestMetricsUpdate_TrimsLikes(t *testing.T) {
	store := new(MockMetricsStore)
	m := NewMetricsUpdater(store)
	video := videoWithLikes(4)

	store.On("FindByID", mock.Anything, video.ID).Return(video, nil)
	store.On("SetCounters", mock.Anything, video.ID, (*int64)(nil), video.Likes[:1]).Return(nil)

	got, err := m.Update(context.Background(), video.ID, models.UpdateMetricsRequest{Likes: 1})

	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
	store.AssertExpectations(t)
}

func TestMetricsUpdate_UnchangedLikesSkipsWrite(t *testing.T) {
	store := new(MockMetricsStore)
	m := NewMetricsUpdater(store)
	video := videoWithLikes(3)

	store.On("FindByID", mock.Anything, video.ID).Return(video, nil)

	got, err := m.Update(context.Background(), video.ID, models.UpdateMetricsRequest{Likes: "3"})

	require.NoError(t, err)
	assert.Equal(t, 3, got.LikesCount)
	store.AssertNotCalled(t, "SetCounters", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMetricsUpdate_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  models.UpdateMetricsRequest
		want string
	}{
		{"negative views", models.UpdateMetricsRequest{Views: float64(-1)}, "Views must be a non-negative integer"},
		{"fractional views", models.UpdateMetricsRequest{Views: 1.5}, "Views must be a non-negative integer"},
		{"text views", models.UpdateMetricsRequest{Views: "many"}, "Views must be a non-negative integer"},
		{"views past int64", models.UpdateMetricsRequest{Views: float64(math.MaxInt64)}, "Views must be a non-negative integer"},
		{"views string past int64", models.UpdateMetricsRequest{Views: "9223372036854775808"}, "Views must be a non-negative integer"},
		{"bool likes", models.UpdateMetricsRequest{Likes: true}, "Likes must be a non-negative integer"},
		{"likes jump", models.UpdateMetricsRequest{Likes: float64(10001)}, "Cannot change likes by more than 10,000 in a single request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockMetricsStore)
			m := NewMetricsUpdater(store)
			video := videoWithLikes(0)
			store.On("FindByID", mock.Anything, video.ID).Return(video, nil)

			_, err := m.Update(context.Background(), video.ID, tt.req)

			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
			assert.Equal(t, tt.want, apperr.MessageOf(err))
			store.AssertNotCalled(t, "SetCounters", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestMetricsUpdate_VideoNotFound(t *testing.T) {
	store := new(MockMetricsStore)
	m := NewMetricsUpdater(store)
	id := primitive.NewObjectID()
	store.On("FindByID", mock.Anything, id).Return(nil, apperr.NotFound("Video not found"))

	_, err := m.Update(context.Background(), id, models.UpdateMetricsRequest{Views: 3})

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAdjustLikes(t *testing.T) {
	current := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}

	assert.Len(t, adjustLikes(current, 3), 5)
	assert.Equal(t, current[:1], adjustLikes(current, -1))
	assert.Empty(t, adjustLikes(current, -5))
}

func TestMetricsUpdate_RejectsMaxInt64FromJSON(t *testing.T) {
	var req models.UpdateMetricsRequest
	require.NoError(t, json.Unmarshal([]byte(`{"views": 9223372036854775807}`), &req))

	store := new(MockMetricsStore)
	m := NewMetricsUpdater(store)
	video := videoWithLikes(0)
	store.On("FindByID", mock.Anything, video.ID).Return(video, nil)

	_, err := m.Update(context.Background(), video.ID, req)

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
	store.AssertNotCalled(t, "SetCounters", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestParseCount_Bounds(t *testing.T) {
	n, ok := parseCount(float64(1 << 62))
	assert.True(t, ok)
	assert.Equal(t, int64(1<<62), n)

	_, ok = parseCount(float64(1 << 63))
	assert.False(t, ok)
}

func TestMetricsUpdate_VideoDeletedBeforeWrite(t *testing.T) {
	store := new(MockMetricsStore)
	m := NewMetricsUpdater(store)
	video := videoWithLikes(1)
	store.On("FindByID", mock.Anything, video.ID).Return(video, nil)
	store.On("SetCounters", mock.Anything, video.ID, mock.Anything, mock.Anything).
		Return(apperr.NotFound("Video not found with id of %s", video.ID.Hex()))

	_, err := m.Update(context.Background(), video.ID, models.UpdateMetricsRequest{Views: float64(5)})

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
