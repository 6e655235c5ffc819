package services

import (
	"context"
	"testing"

	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestToggleEdge_SubscribeAndUnsubscribe(t *testing.T) {
	store := newMemGraph()
	g := NewGraphMutator(store)
	viewer, creator := store.addUser(), store.addUser()

	state, err := g.ToggleEdge(context.Background(), viewer, creator, EdgeSubscription)
	require.NoError(t, err)
	assert.True(t, state.Present)
	assert.Equal(t, 1, state.InCount)
	assert.Contains(t, store.users[viewer].SubscribedTo, creator)
	assert.Contains(t, store.users[creator].Subscribers, viewer)

	state, err = g.ToggleEdge(context.Background(), viewer, creator, EdgeSubscription)
	require.NoError(t, err)
	assert.False(t, state.Present)
	assert.Equal(t, 0, state.InCount)
	assert.NotContains(t, store.users[viewer].SubscribedTo, creator)
	assert.NotContains(t, store.users[creator].Subscribers, viewer)
}

func TestToggleEdge_SelfSubscriptionRejectedBeforeIO(t *testing.T) {
	store := newMemGraph()
	g := NewGraphMutator(store)
	user := store.addUser()

	_, err := g.ToggleEdge(context.Background(), user, user, EdgeSubscription)

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInvalidOperation))
	assert.Equal(t, "You cannot subscribe to yourself", apperr.MessageOf(err))
	assert.Zero(t, store.calls)
}

func TestToggleEdge_MissingCreator(t *testing.T) {
	store := newMemGraph()
	g := NewGraphMutator(store)
	viewer := store.addUser()

	_, err := g.ToggleEdge(context.Background(), viewer, primitive.NewObjectID(), EdgeSubscription)

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Empty(t, store.users[viewer].SubscribedTo)
}

func TestToggleEdge_MissingSource(t *testing.T) {
	store := newMemGraph()
	g := NewGraphMutator(store)
	video := store.addVideo()

	_, err := g.ToggleEdge(context.Background(), primitive.NewObjectID(), video, EdgeLike)

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestToggleEdge_LikeCountsDistinctUsers(t *testing.T) {
	store := newMemGraph()
	g := NewGraphMutator(store)
	video := store.addVideo()
	alice, bob := store.addUser(), store.addUser()

	_, err := g.ToggleEdge(context.Background(), alice, video, EdgeLike)
	require.NoError(t, err)
	state, err := g.ToggleEdge(context.Background(), bob, video, EdgeLike)
	require.NoError(t, err)

	assert.True(t, state.Present)
	assert.Equal(t, 2, state.InCount)
	assert.Contains(t, store.users[bob].LikedVideos, video)

	state, err = g.ToggleEdge(context.Background(), alice, video, EdgeLike)
	require.NoError(t, err)
	assert.False(t, state.Present)
	assert.Equal(t, []primitive.ObjectID{bob}, store.videos[video].Likes)
}

func TestToggleEdge_TargetWriteFailure(t *testing.T) {
	store := newMemGraph()
	store.failSetIn = true
	g := NewGraphMutator(store)
	viewer, creator := store.addUser(), store.addUser()

	_, err := g.ToggleEdge(context.Background(), viewer, creator, EdgeSubscription)

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInternal))
	assert.Contains(t, store.users[viewer].SubscribedTo, creator)
	assert.Empty(t, store.users[creator].Subscribers)
}

func TestEdgeKindString(t *testing.T) {
	assert.Equal(t, "subscription", EdgeSubscription.String())
	assert.Equal(t, "like", EdgeLike.String())
}
