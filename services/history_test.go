package services

import (
	"context"
	"testing"

	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemHistoryMoveToEnd(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	assert.Equal(t, []primitive.ObjectID{a}, moveToEnd(nil, a, 3))
	assert.Equal(t, []primitive.ObjectID{a, c, b}, moveToEnd([]primitive.ObjectID{a, b, c}, b, 3))
	assert.Equal(t, []primitive.ObjectID{b, c}, moveToEnd([]primitive.ObjectID{a, b}, c, 2))
}

func TestMemHistoryMoveToEnd_EvictsOldestAtLimit(t *testing.T) {
	var history []primitive.ObjectID
	first := primitive.NewObjectID()
	history = moveToEnd(history, first, models.WatchHistoryLimit)
	for i := 0; i < models.WatchHistoryLimit; i++ {
		history = moveToEnd(history, primitive.NewObjectID(), models.WatchHistoryLimit)
	}

	assert.Len(t, history, models.WatchHistoryLimit)
	assert.NotContains(t, history, first)
}

func TestHistoryAdd_UnknownVideo(t *testing.T) {
	store := newMemHistory()
	svc := NewHistoryService(store, store)

	err := svc.Add(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestHistoryList_MostRecentFirstApprovedOnly(t *testing.T) {
	store := newMemHistory()
	svc := NewHistoryService(store, store)
	user := primitive.NewObjectID()

	first := store.addVideo(models.VideoStatusApproved)
	hidden := store.addVideo(models.VideoStatusRejected)
	second := store.addVideo(models.VideoStatusApproved)

	ctx := context.Background()
	require.NoError(t, svc.Add(ctx, user, first))
	require.NoError(t, svc.Add(ctx, user, hidden))
	require.NoError(t, svc.Add(ctx, user, second))
	require.NoError(t, svc.Add(ctx, user, first))

	got, err := svc.List(ctx, user)

	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{first, second}, videoIDs(got))
}

func TestHistoryList_Empty(t *testing.T) {
	store := newMemHistory()
	svc := NewHistoryService(store, store)

	got, err := svc.List(context.Background(), primitive.NewObjectID())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
