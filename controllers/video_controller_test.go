package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/middleware"
	"github.com/streamcart/streamcart_backend/models"
	"github.com/streamcart/streamcart_backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockVideoStore struct {
	mock.Mock
}

func (m *mockVideoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*models.Video)
	return v, args.Error(1)
}

func (m *mockVideoStore) TextSearch(ctx context.Context, text string, exclude []primitive.ObjectID, limit int64) ([]models.Video, error) {
	args := m.Called(ctx, text, exclude, limit)
	v, _ := args.Get(0).([]models.Video)
	return v, args.Error(1)
}

func (m *mockVideoStore) PatternSearch(ctx context.Context, keywords []string, limit int64) ([]models.Video, error) {
	args := m.Called(ctx, keywords, limit)
	v, _ := args.Get(0).([]models.Video)
	return v, args.Error(1)
}

func (m *mockVideoStore) FindByContext(ctx context.Context, category *primitive.ObjectID, tags []string, exclude []primitive.ObjectID, limit int64) ([]models.Video, error) {
	args := m.Called(ctx, category, tags, exclude, limit)
	v, _ := args.Get(0).([]models.Video)
	return v, args.Error(1)
}

func (m *mockVideoStore) Latest(ctx context.Context, exclude []primitive.ObjectID, limit int64) ([]models.Video, error) {
	args := m.Called(ctx, exclude, limit)
	v, _ := args.Get(0).([]models.Video)
	return v, args.Error(1)
}

type mockCreatorLookup struct {
	mock.Mock
}

func (m *mockCreatorLookup) Summaries(ctx context.Context, refs []models.CreatorRef) (map[models.CreatorRef]models.CreatorSummary, error) {
	args := m.Called(ctx, refs)
	s, _ := args.Get(0).(map[models.CreatorRef]models.CreatorSummary)
	return s, args.Error(1)
}

type videoListBody struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Data    []models.Video `json:"data"`
	Error   string         `json:"error"`
}

func approvedVideo(title string, creator primitive.ObjectID) models.Video {
	return models.Video{
		ID:           primitive.NewObjectID(),
		Title:        title,
		Status:       models.VideoStatusApproved,
		CreatorID:    creator,
		CreatorModel: models.CreatorUser,
		Tags:         []string{},
	}
}

func newDiscoveryServer(store *mockVideoStore, creators *mockCreatorLookup) *echo.Echo {
	vc := &VideoController{
		discovery: services.NewDiscoveryService(store),
		creators:  creators,
	}
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = middleware.NewValidator()
	e.GET("/videos/search", vc.SearchVideos)
	e.GET("/videos/:id/related", vc.GetRelatedVideos)
	return e
}

func getJSON(t *testing.T, e *echo.Echo, path string) (int, videoListBody) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body videoListBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestSearchVideos_MergesAndAttachesCreators(t *testing.T) {
	creator := primitive.NewObjectID()
	first := approvedVideo("cat videos", creator)
	second := approvedVideo("funny cat", creator)
	pending := approvedVideo("cat draft", creator)
	pending.Status = models.VideoStatusPending

	store := &mockVideoStore{}
	store.On("TextSearch", mock.Anything, "funny cat", mock.Anything, mock.Anything).
		Return([]models.Video{first}, nil)
	store.On("PatternSearch", mock.Anything, []string{"funny", "cat"}, mock.Anything).
		Return([]models.Video{first, pending, second}, nil)

	ref := models.CreatorRef{Kind: models.CreatorUser, ID: creator}
	creators := &mockCreatorLookup{}
	creators.On("Summaries", mock.Anything, []models.CreatorRef{ref}).
		Return(map[models.CreatorRef]models.CreatorSummary{ref: {ID: creator, Kind: models.CreatorUser, Username: "whiskers"}}, nil)

	code, body := getJSON(t, newDiscoveryServer(store, creators), "/videos/search?q=funny+cat")

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, body.Success)
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Data, 2)
	assert.Equal(t, first.ID, body.Data[0].ID)
	assert.Equal(t, second.ID, body.Data[1].ID)
	for _, v := range body.Data {
		require.NotNil(t, v.Creator)
		assert.Equal(t, "whiskers", v.Creator.Username)
	}
	store.AssertExpectations(t)
	creators.AssertExpectations(t)
}

func TestSearchVideos_BlankQuery(t *testing.T) {
	store := &mockVideoStore{}
	creators := &mockCreatorLookup{}

	code, body := getJSON(t, newDiscoveryServer(store, creators), "/videos/search?q=%20%20")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, body.Count)
	assert.Empty(t, body.Data)
	store.AssertNotCalled(t, "TextSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	creators.AssertNotCalled(t, "Summaries", mock.Anything, mock.Anything)
}

func TestSearchVideos_StoreFailure(t *testing.T) {
	store := &mockVideoStore{}
	store.On("TextSearch", mock.Anything, "cat", mock.Anything, mock.Anything).Return(nil, errors.New("index missing"))
	store.On("PatternSearch", mock.Anything, []string{"cat"}, mock.Anything).Return([]models.Video{}, nil)

	code, body := getJSON(t, newDiscoveryServer(store, &mockCreatorLookup{}), "/videos/search?q=cat")

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Server Error", body.Error)
}

func TestRelatedVideos_FillsWithLatest(t *testing.T) {
	creator := primitive.NewObjectID()
	seed := approvedVideo("guitar lesson", creator)
	seed.Tags = []string{"music"}
	tagged := approvedVideo("bass lesson", creator)
	latest := approvedVideo("cooking", creator)

	store := &mockVideoStore{}
	store.On("FindByID", mock.Anything, seed.ID).Return(&seed, nil)
	store.On("FindByContext", mock.Anything, (*primitive.ObjectID)(nil), []string{"music"}, mock.Anything, mock.Anything).
		Return([]models.Video{tagged}, nil)
	store.On("TextSearch", mock.Anything, "guitar lesson", mock.Anything, mock.Anything).
		Return([]models.Video{seed, tagged}, nil)
	store.On("Latest", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Video{tagged, latest}, nil)

	creators := &mockCreatorLookup{}
	creators.On("Summaries", mock.Anything, mock.Anything).Return(map[models.CreatorRef]models.CreatorSummary{}, nil)

	code, body := getJSON(t, newDiscoveryServer(store, creators), "/videos/"+seed.ID.Hex()+"/related")

	assert.Equal(t, http.StatusOK, code)
	require.Len(t, body.Data, 2)
	assert.Equal(t, tagged.ID, body.Data[0].ID)
	assert.Equal(t, latest.ID, body.Data[1].ID)
	for _, v := range body.Data {
		assert.NotEqual(t, seed.ID, v.ID)
		assert.Nil(t, v.Creator)
	}
}

func TestRelatedVideos_UnknownSeed(t *testing.T) {
	id := primitive.NewObjectID()
	store := &mockVideoStore{}
	store.On("FindByID", mock.Anything, id).Return(nil, apperr.NotFound("Video not found with id of %s", id.Hex()))

	code, body := getJSON(t, newDiscoveryServer(store, &mockCreatorLookup{}), "/videos/"+id.Hex()+"/related")

	assert.Equal(t, http.StatusNotFound, code)
	assert.True(t, strings.HasPrefix(body.Error, "Video not found"))
}

func TestRelatedVideos_MalformedID(t *testing.T) {
	store := &mockVideoStore{}

	code, body := getJSON(t, newDiscoveryServer(store, &mockCreatorLookup{}), "/videos/not-an-id/related")

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Resource not found", body.Error)
	store.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestWithCreator_AttachesSummary(t *testing.T) {
	creator := primitive.NewObjectID()
	video := approvedVideo("liked clip", creator)
	ref := models.CreatorRef{Kind: models.CreatorUser, ID: creator}

	creators := &mockCreatorLookup{}
	creators.On("Summaries", mock.Anything, []models.CreatorRef{ref}).
		Return(map[models.CreatorRef]models.CreatorSummary{ref: {ID: creator, Kind: models.CreatorUser, Username: "whiskers"}}, nil)
	vc := &VideoController{creators: creators}

	got, err := vc.withCreator(context.Background(), &video)

	require.NoError(t, err)
	require.NotNil(t, got.Creator)
	assert.Equal(t, "whiskers", got.Creator.Username)
	assert.Equal(t, video.ID, got.ID)
	assert.Nil(t, video.Creator)
	creators.AssertExpectations(t)
}

func TestWithCreator_LookupFailure(t *testing.T) {
	video := approvedVideo("liked clip", primitive.NewObjectID())
	creators := &mockCreatorLookup{}
	creators.On("Summaries", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	vc := &VideoController{creators: creators}

	_, err := vc.withCreator(context.Background(), &video)

	assert.EqualError(t, err, "db down")
}
