package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/streamcart/streamcart_backend/apperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const queryTimeout = 10 * time.Second

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}

// findOne decodes a single document, mapping a miss to an apperr NotFound
// carrying notFound.
func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, notFound string, opts ...*options.FindOneOptions) (*T, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var out T
	if err := coll.FindOne(ctx, filter, opts...).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound(notFound)
		}
		return nil, fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	return &out, nil
}

// findOneAndUpdate applies update and returns the document after the write.
func findOneAndUpdate[T any](ctx context.Context, coll *mongo.Collection, filter, update interface{}, notFound string) (*T, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var out T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound(notFound)
		}
		return nil, fmt.Errorf("update %s: %w", coll.Name(), err)
	}
	return &out, nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, notFound string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound(notFound)
	}
	return nil
}

func insert(ctx context.Context, coll *mongo.Collection, doc interface{}) (primitive.ObjectID, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, err
		}
		return primitive.NilObjectID, fmt.Errorf("insert %s: %w", coll.Name(), err)
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

// containsPattern is a case-insensitive substring match with regex
// metacharacters quoted.
func containsPattern(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func notFoundWithID(what string, id primitive.ObjectID) string {
	return fmt.Sprintf("%s not found with id of %s", what, id.Hex())
}
