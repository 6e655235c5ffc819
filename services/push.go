package services

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenSource returns the FCM registration token stored for a user.
type TokenSource interface {
	FCMToken(ctx context.Context, userID primitive.ObjectID) (string, error)
}

// MessageSender is satisfied by *messaging.Client.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

var ErrNoDeviceToken = errors.New("user has no FCM token")

// PushNotifier sends notifications through Firebase Cloud Messaging.
type PushNotifier struct {
	client MessageSender
	tokens TokenSource
}

func NewPushNotifier(client MessageSender, tokens TokenSource) *PushNotifier {
	return &PushNotifier{client: client, tokens: tokens}
}

func (p *PushNotifier) Notify(ctx context.Context, userID primitive.ObjectID, n Notification) error {
	token, err := p.tokens.FCMToken(ctx, userID)
	if err != nil {
		return err
	}
	if token == "" {
		return ErrNoDeviceToken
	}

	data := map[string]string{"type": n.Type}
	for k, v := range n.Data {
		data[k] = v
	}

	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Message,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "streamcart_activity",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{Title: n.Title, Body: n.Message},
					Sound: "default",
				},
			},
		},
	}

	if _, err := p.client.Send(ctx, message); err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}
