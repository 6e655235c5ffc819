package repositories

import (
	"context"
	"time"

	"github.com/streamcart/streamcart_backend/config"
	"github.com/streamcart/streamcart_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CategoryRepository struct {
	collection *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{collection: db.Collection(config.CategoriesCollection)}
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	category.CreatedAt = time.Now()
	id, err := insert(ctx, r.collection, category)
	if err != nil {
		return err
	}
	category.ID = id
	return nil
}

// FindByIDOrSlug accepts either a hex ObjectID or a slug.
func (r *CategoryRepository) FindByIDOrSlug(ctx context.Context, key string) (*models.Category, error) {
	filter := bson.M{"slug": key}
	if id, err := primitive.ObjectIDFromHex(key); err == nil {
		filter = bson.M{"_id": id}
	}
	return findOne[models.Category](ctx, r.collection, filter, "Category not found with id of "+key)
}

func (r *CategoryRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	return n > 0, err
}

// ListPublic returns approved, active categories with their parent resolved.
func (r *CategoryRepository) ListPublic(ctx context.Context) ([]models.CategoryDetail, error) {
	return r.listDetailed(ctx, bson.M{"status": models.CategoryStatusApproved, "isActive": true})
}

func (r *CategoryRepository) ListAll(ctx context.Context) ([]models.CategoryDetail, error) {
	return r.listDetailed(ctx, bson.M{})
}

func (r *CategoryRepository) listDetailed(ctx context.Context, match bson.M) ([]models.CategoryDetail, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         config.CategoriesCollection,
			"localField":   "parent",
			"foreignField": "_id",
			"as":           "parentCategory",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$parentCategory", "preserveNullAndEmptyArrays": true}}},
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	out := []models.CategoryDetail{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Category, error) {
	return findOneAndUpdate[models.Category](ctx, r.collection, bson.M{"_id": id}, bson.M{"$set": set}, notFoundWithID("Category", id))
}

func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, id, notFoundWithID("Category", id))
}
