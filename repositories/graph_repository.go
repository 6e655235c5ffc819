package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/config"
	"github.com/streamcart/streamcart_backend/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// edgeFields names the array on each side of an edge kind.
type edgeFields struct {
	out    string
	in     string
	target *mongo.Collection
	what   string
}

// GraphRepository stores subscription and like edges as mirrored arrays on
// users and videos.
type GraphRepository struct {
	users  *mongo.Collection
	videos *mongo.Collection
}

func NewGraphRepository(db *mongo.Database) *GraphRepository {
	return &GraphRepository{
		users:  db.Collection(config.UsersCollection),
		videos: db.Collection(config.VideosCollection),
	}
}

func (r *GraphRepository) fields(kind services.EdgeKind) edgeFields {
	if kind == services.EdgeLike {
		return edgeFields{out: "likedVideos", in: "likes", target: r.videos, what: "Video"}
	}
	return edgeFields{out: "subscribedTo", in: "subscribers", target: r.users, what: "Creator"}
}

func (r *GraphRepository) HasEdge(ctx context.Context, kind services.EdgeKind, from, to primitive.ObjectID) (bool, error) {
	f := r.fields(kind)
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var doc bson.M
	opts := options.FindOne().SetProjection(bson.M{"_id": 1, "linked": bson.M{
		"$in": bson.A{to, bson.M{"$ifNull": bson.A{"$" + f.out, bson.A{}}}},
	}})
	if err := r.users.FindOne(ctx, bson.M{"_id": from}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, apperr.NotFound(userNotFound)
		}
		return false, fmt.Errorf("read %s: %w", f.out, err)
	}
	linked, _ := doc["linked"].(bool)
	return linked, nil
}

func (r *GraphRepository) EnsureTarget(ctx context.Context, kind services.EdgeKind, to primitive.ObjectID) error {
	f := r.fields(kind)
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	n, err := f.target.CountDocuments(ctx, bson.M{"_id": to}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("count %s: %w", f.target.Name(), err)
	}
	if n == 0 {
		return apperr.NotFound(notFoundWithID(f.what, to))
	}
	return nil
}

func (r *GraphRepository) SetOut(ctx context.Context, kind services.EdgeKind, from, to primitive.ObjectID, present bool) error {
	f := r.fields(kind)
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.users.UpdateByID(ctx, from, edgeUpdate(f.out, to, present))
	if err != nil {
		return fmt.Errorf("update %s: %w", f.out, err)
	}
	return nil
}

func (r *GraphRepository) SetIn(ctx context.Context, kind services.EdgeKind, to, from primitive.ObjectID, present bool) (int, error) {
	f := r.fields(kind)
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"count": bson.M{"$size": bson.M{"$ifNull": bson.A{"$" + f.in, bson.A{}}}}})
	var doc struct {
		Count int `bson:"count"`
	}
	err := f.target.FindOneAndUpdate(ctx, bson.M{"_id": to}, edgeUpdate(f.in, from, present), opts).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", f.in, err)
	}
	return doc.Count, nil
}

func edgeUpdate(field string, id primitive.ObjectID, present bool) bson.M {
	if present {
		return bson.M{"$addToSet": bson.M{field: id}, "$set": bson.M{"updatedAt": time.Now()}}
	}
	return bson.M{"$pull": bson.M{field: id}, "$set": bson.M{"updatedAt": time.Now()}}
}

var _ services.GraphStore = (*GraphRepository)(nil)
