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

const adminNotFound = "Admin not found"

type AdminRepository struct {
	collection *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) *AdminRepository {
	return &AdminRepository{collection: db.Collection(config.AdminsCollection)}
}

func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	now := time.Now()
	admin.CreatedAt, admin.UpdatedAt = now, now
	id, err := insert(ctx, r.collection, admin)
	if err != nil {
		return err
	}
	admin.ID = id
	return nil
}

func (r *AdminRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	return findOne[models.Admin](ctx, r.collection, bson.M{"_id": id}, notFoundWithID("Admin", id))
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return findOne[models.Admin](ctx, r.collection, bson.M{"email": email}, adminNotFound)
}

// FindByResetToken returns the admin holding an unexpired reset token hash.
func (r *AdminRepository) FindByResetToken(ctx context.Context, hash string) (*models.Admin, error) {
	filter := bson.M{
		"passwordResetToken":   hash,
		"passwordResetExpires": bson.M{"$gt": time.Now()},
	}
	return findOne[models.Admin](ctx, r.collection, filter, "Invalid or expired token")
}

func (r *AdminRepository) List(ctx context.Context) ([]models.Admin, error) {
	return findAll[models.Admin](ctx, r.collection, bson.M{}, options.Find().SetSort(byNewest))
}

func (r *AdminRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Admin, error) {
	set["updatedAt"] = time.Now()
	return findOneAndUpdate[models.Admin](ctx, r.collection, bson.M{"_id": id}, bson.M{"$set": set}, notFoundWithID("Admin", id))
}

func (r *AdminRepository) TouchLogin(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.Update(ctx, id, bson.M{"lastLogin": time.Now()})
	return err
}

// SetPassword stores a new hash, clears any reset token and stamps
// passwordChangedAt one second in the past so a token issued right after
// the change stays valid.
func (r *AdminRepository) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) (*models.Admin, error) {
	changed := time.Now().Add(-time.Second)
	update := bson.M{
		"$set": bson.M{
			"password":          hash,
			"passwordChangedAt": changed,
			"updatedAt":         time.Now(),
		},
		"$unset": bson.M{"passwordResetToken": "", "passwordResetExpires": ""},
	}
	return findOneAndUpdate[models.Admin](ctx, r.collection, bson.M{"_id": id}, update, notFoundWithID("Admin", id))
}

func (r *AdminRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, hash string, expires time.Time) error {
	_, err := r.Update(ctx, id, bson.M{"passwordResetToken": hash, "passwordResetExpires": expires})
	return err
}

func (r *AdminRepository) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$unset": bson.M{"passwordResetToken": "", "passwordResetExpires": ""}})
	return err
}

// ToggleActive flips isActive in a single pipeline update.
func (r *AdminRepository) ToggleActive(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"isActive":  bson.M{"$not": bson.A{bson.M{"$ifNull": bson.A{"$isActive", false}}}},
			"updatedAt": "$$NOW",
		}}},
	}
	return findOneAndUpdate[models.Admin](ctx, r.collection, bson.M{"_id": id}, pipeline, notFoundWithID("Admin", id))
}

func (r *AdminRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, id, notFoundWithID("Admin", id))
}

func (r *AdminRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return r.collection.CountDocuments(ctx, bson.M{})
}
