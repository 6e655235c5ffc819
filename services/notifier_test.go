package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/streamcart/streamcart_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type chanNotifier struct {
	got chan Notification
	err error
}

func (c *chanNotifier) Notify(ctx context.Context, userID primitive.ObjectID, n Notification) error {
	c.got <- n
	return c.err
}

func TestFanOut_DeliversToEverySink(t *testing.T) {
	ok := &chanNotifier{got: make(chan Notification, 1)}
	failing := &chanNotifier{got: make(chan Notification, 1), err: errors.New("offline")}
	f := NewFanOut(ok, failing)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, f.Notify(ctx, primitive.NewObjectID(), Notification{Type: NotificationNewSubscriber}))
	cancel()

	for _, sink := range []*chanNotifier{ok, failing} {
		select {
		case n := <-sink.got:
			assert.Equal(t, NotificationNewSubscriber, n.Type)
		case <-time.After(time.Second):
			t.Fatal("notification not delivered")
		}
	}
}

type MockMessageSender struct {
	mock.Mock
}

func (m *MockMessageSender) Send(ctx context.Context, message *messaging.Message) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

type staticTokens map[primitive.ObjectID]string

func (s staticTokens) FCMToken(ctx context.Context, userID primitive.ObjectID) (string, error) {
	return s[userID], nil
}

func TestPushNotifier_Send(t *testing.T) {
	user := primitive.NewObjectID()
	sender := new(MockMessageSender)
	p := NewPushNotifier(sender, staticTokens{user: "device-token"})

	sender.On("Send", mock.Anything, mock.MatchedBy(func(m *messaging.Message) bool {
		return m.Token == "device-token" &&
			m.Notification.Title == "New subscriber" &&
			m.Data["type"] == NotificationNewSubscriber &&
			m.Data["subscriberId"] == "abc"
	})).Return("projects/x/messages/1", nil)

	err := p.Notify(context.Background(), user, Notification{
		Type:  NotificationNewSubscriber,
		Title: "New subscriber",
		Data:  map[string]string{"subscriberId": "abc"},
	})

	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestPushNotifier_NoToken(t *testing.T) {
	sender := new(MockMessageSender)
	p := NewPushNotifier(sender, staticTokens{})

	err := p.Notify(context.Background(), primitive.NewObjectID(), Notification{Type: NotificationVideoLiked})

	assert.ErrorIs(t, err, ErrNoDeviceToken)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

type MockCreatorLookup struct {
	mock.Mock
}

func (m *MockCreatorLookup) Summaries(ctx context.Context, refs []models.CreatorRef) (map[models.CreatorRef]models.CreatorSummary, error) {
	args := m.Called(ctx, refs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.CreatorRef]models.CreatorSummary), args.Error(1)
}

func TestAttachCreators(t *testing.T) {
	user := models.CreatorRef{Kind: models.CreatorUser, ID: primitive.NewObjectID()}
	admin := models.CreatorRef{Kind: models.CreatorAdmin, ID: primitive.NewObjectID()}
	gone := models.CreatorRef{Kind: models.CreatorUser, ID: primitive.NewObjectID()}

	videos := []models.Video{
		{CreatorID: user.ID, CreatorModel: user.Kind},
		{CreatorID: admin.ID, CreatorModel: admin.Kind},
		{CreatorID: user.ID, CreatorModel: user.Kind},
		{CreatorID: gone.ID, CreatorModel: gone.Kind},
	}

	lookup := new(MockCreatorLookup)
	lookup.On("Summaries", mock.Anything, []models.CreatorRef{user, admin, gone}).Return(map[models.CreatorRef]models.CreatorSummary{
		user:  {ID: user.ID, Kind: user.Kind, Username: "maker"},
		admin: {ID: admin.ID, Kind: admin.Kind, Name: "Staff"},
	}, nil)

	require.NoError(t, AttachCreators(context.Background(), lookup, videos))

	require.NotNil(t, videos[0].Creator)
	assert.Equal(t, "maker", videos[0].Creator.Username)
	assert.Equal(t, "Staff", videos[1].Creator.Name)
	assert.Equal(t, "maker", videos[2].Creator.Username)
	assert.Nil(t, videos[3].Creator)
	lookup.AssertExpectations(t)
}
