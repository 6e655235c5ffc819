package services

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxLikeDelta caps how many like entries one request may add or remove.
const MaxLikeDelta = 10000

type MetricsStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	// SetCounters overwrites views when non-nil and the like set when non-nil.
	SetCounters(ctx context.Context, id primitive.ObjectID, views *int64, likes []primitive.ObjectID) error
}

// MetricsUpdater lets admins overwrite a video's view counter and pad or trim
// its like set.
type MetricsUpdater struct {
	store MetricsStore
}

func NewMetricsUpdater(store MetricsStore) *MetricsUpdater {
	return &MetricsUpdater{store: store}
}

func (m *MetricsUpdater) Update(ctx context.Context, id primitive.ObjectID, req models.UpdateMetricsRequest) (*models.VideoMetrics, error) {
	if req.Views == nil && req.Likes == nil {
		return nil, apperr.InvalidInput("Please provide views or likes to update")
	}

	video, err := m.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var views *int64
	if req.Views != nil {
		n, ok := parseCount(req.Views)
		if !ok {
			return nil, apperr.InvalidInput("Views must be a non-negative integer")
		}
		views = &n
	}

	var likes []primitive.ObjectID
	if req.Likes != nil {
		n, ok := parseCount(req.Likes)
		if !ok {
			return nil, apperr.InvalidInput("Likes must be a non-negative integer")
		}
		current := int64(len(video.Likes))
		delta := n - current
		if delta > MaxLikeDelta || delta < -MaxLikeDelta {
			return nil, apperr.InvalidInput("Cannot change likes by more than 10,000 in a single request")
		}
		if delta != 0 {
			likes = adjustLikes(video.Likes, delta)
		}
	}

	if views != nil || likes != nil {
		if err := m.store.SetCounters(ctx, id, views, likes); err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return nil, err
			}
			return nil, apperr.Internal(err)
		}
	}

	result := &models.VideoMetrics{ID: video.ID, Views: video.Views, LikesCount: len(video.Likes)}
	if views != nil {
		result.Views = *views
	}
	if likes != nil {
		result.LikesCount = len(likes)
	}
	return result, nil
}

// adjustLikes appends delta synthetic ids when positive and drops -delta
// entries from the end when negative.
func adjustLikes(current []primitive.ObjectID, delta int64) []primitive.ObjectID {
	if delta < 0 {
		keep := int64(len(current)) + delta
		if keep < 0 {
			keep = 0
		}
		out := make([]primitive.ObjectID, keep)
		copy(out, current[:keep])
		return out
	}
	out := make([]primitive.ObjectID, len(current), int64(len(current))+delta)
	copy(out, current)
	for i := int64(0); i < delta; i++ {
		out = append(out, primitive.NewObjectID())
	}
	return out
}

// parseCount accepts a JSON number or a decimal string holding a
// non-negative integer.
func parseCount(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		// float64(MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if n < 0 || n != math.Trunc(n) || n >= math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), n >= 0
	case int64:
		return n, n >= 0
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil || parsed < 0 {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
