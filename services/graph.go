package services

import (
	"context"

	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/logger"
	"github.com/streamcart/streamcart_backend/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EdgeKind names a mirrored relationship between two documents.
type EdgeKind int

const (
	// EdgeSubscription links user.subscribedTo to creator.subscribers.
	EdgeSubscription EdgeKind = iota
	// EdgeLike links user.likedVideos to video.likes.
	EdgeLike
)

func (k EdgeKind) String() string {
	if k == EdgeLike {
		return "like"
	}
	return "subscription"
}

// GraphStore persists the two sides of an edge. The outgoing side lives on
// the source document, the incoming side on the target document.
type GraphStore interface {
	// HasEdge reports whether to is in the source's outgoing set. It returns
	// an apperr NotFound error when the source does not exist.
	HasEdge(ctx context.Context, kind EdgeKind, from, to primitive.ObjectID) (bool, error)
	// EnsureTarget returns an apperr NotFound error when the target does not exist.
	EnsureTarget(ctx context.Context, kind EdgeKind, to primitive.ObjectID) error
	// SetOut adds (add-if-absent) or removes to in the source's outgoing set.
	SetOut(ctx context.Context, kind EdgeKind, from, to primitive.ObjectID, present bool) error
	// SetIn adds or removes from in the target's incoming set and returns the
	// size of that set after the write.
	SetIn(ctx context.Context, kind EdgeKind, to, from primitive.ObjectID, present bool) (int, error)
}

// EdgeState is the relationship after a toggle.
type EdgeState struct {
	Present bool
	InCount int
}

// GraphMutator is the only writer of mirrored relationship sets.
//
// A toggle is two independent writes, source first. The store offers no
// cross-document transaction here, so a failure between them leaves a
// one-sided edge; it is logged with both ids for the repair job.
type GraphMutator struct {
	store GraphStore
}

func NewGraphMutator(store GraphStore) *GraphMutator {
	return &GraphMutator{store: store}
}

func (g *GraphMutator) ToggleEdge(ctx context.Context, from, to primitive.ObjectID, kind EdgeKind) (EdgeState, error) {
	if kind == EdgeSubscription && from == to {
		return EdgeState{}, apperr.InvalidOperation("You cannot subscribe to yourself")
	}

	present, err := g.store.HasEdge(ctx, kind, from, to)
	if err != nil {
		return EdgeState{}, err
	}
	if err := g.store.EnsureTarget(ctx, kind, to); err != nil {
		return EdgeState{}, err
	}

	want := !present
	if err := g.store.SetOut(ctx, kind, from, to, want); err != nil {
		return EdgeState{}, apperr.Internal(err)
	}
	count, err := g.store.SetIn(ctx, kind, to, from, want)
	if err != nil {
		logger.Error().Err(err).
			Str("edge", kind.String()).
			Str("from", from.Hex()).
			Str("to", to.Hex()).
			Bool("present", want).
			Msg("one-sided edge: source updated, target write failed")
		return EdgeState{}, apperr.Internal(err)
	}

	metrics.GraphToggles.WithLabelValues(kind.String(), toggleDirection(want)).Inc()
	return EdgeState{Present: want, InCount: count}, nil
}

func toggleDirection(present bool) string {
	if present {
		return "add"
	}
	return "remove"
}
