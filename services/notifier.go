package services

import (
	"context"
	"time"

	"github.com/streamcart/streamcart_backend/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotificationNewSubscriber = "new_subscriber"
	NotificationVideoLiked    = "video_liked"
	NotificationVideoStatus   = "video_status"
)

type Notification struct {
	Type    string            `json:"type"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
}

// Notifier delivers a notification to one user. Implementations must be
// safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, userID primitive.ObjectID, n Notification) error
}

// FanOut delivers to every sink in the background so callers never wait on
// websocket writes or push gateways.
type FanOut struct {
	sinks   []Notifier
	timeout time.Duration
}

func NewFanOut(sinks ...Notifier) *FanOut {
	return &FanOut{sinks: sinks, timeout: 10 * time.Second}
}

func (f *FanOut) Notify(ctx context.Context, userID primitive.ObjectID, n Notification) error {
	base := context.WithoutCancel(ctx)
	for _, sink := range f.sinks {
		sink := sink
		go func() {
			sctx, cancel := context.WithTimeout(base, f.timeout)
			defer cancel()
			if err := sink.Notify(sctx, userID, n); err != nil {
				logger.Debug().Err(err).Str("userId", userID.Hex()).Str("type", n.Type).Msg("notification not delivered")
			}
		}()
	}
	return nil
}
