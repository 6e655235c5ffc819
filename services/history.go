package services

import (
	"context"

	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HistoryStore interface {
	// PushHistory moves videoID to the end of the user's history, keeping at
	// most limit entries.
	PushHistory(ctx context.Context, userID, videoID primitive.ObjectID, limit int) error
	// History returns the stored history, most-recent-last.
	History(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type VideoFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	// FindApprovedByIDs returns the approved videos among ids in any order.
	FindApprovedByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Video, error)
}

type HistoryService struct {
	store  HistoryStore
	videos VideoFinder
}

func NewHistoryService(store HistoryStore, videos VideoFinder) *HistoryService {
	return &HistoryService{store: store, videos: videos}
}

func (h *HistoryService) Add(ctx context.Context, userID, videoID primitive.ObjectID) error {
	if _, err := h.videos.FindByID(ctx, videoID); err != nil {
		return err
	}
	if err := h.store.PushHistory(ctx, userID, videoID, models.WatchHistoryLimit); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// List returns watched approved videos, most recent first.
func (h *HistoryService) List(ctx context.Context, userID primitive.ObjectID) ([]models.Video, error) {
	ids, err := h.store.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	found, err := h.videos.FindApprovedByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	byID := make(map[primitive.ObjectID]models.Video, len(found))
	for _, v := range found {
		byID[v.ID] = v
	}
	out := make([]models.Video, 0, len(found))
	for i := len(ids) - 1; i >= 0; i-- {
		if v, ok := byID[ids[i]]; ok {
			out = append(out, v)
			delete(byID, ids[i])
		}
	}
	return out, nil
}
