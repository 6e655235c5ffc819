package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/config"
	"github.com/streamcart/streamcart_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userNotFound = "User not found"

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection(config.UsersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	id, err := insert(ctx, r.collection, user)
	if err != nil {
		return err
	}
	user.ID = id
	user.Normalize()
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := findOne[models.User](ctx, r.collection, bson.M{"_id": id}, userNotFound)
	if err != nil {
		return nil, err
	}
	user.Normalize()
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := findOne[models.User](ctx, r.collection, bson.M{"email": email}, userNotFound)
	if err != nil {
		return nil, err
	}
	user.Normalize()
	return user, nil
}

// Taken reports whether email or username already belongs to another user.
func (r *UserRepository) Taken(ctx context.Context, email, username string, except primitive.ObjectID) (bool, error) {
	or := bson.A{}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if len(or) == 0 {
		return false, nil
	}
	filter := bson.M{"$or": or}
	if !except.IsZero() {
		filter["_id"] = bson.M{"$ne": except}
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func (r *UserRepository) update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	set["updatedAt"] = time.Now()
	user, err := findOneAndUpdate[models.User](ctx, r.collection, bson.M{"_id": id}, bson.M{"$set": set}, userNotFound)
	if err != nil {
		return nil, err
	}
	user.Normalize()
	return user, nil
}

// UpdateDetails sets the non-empty fields of req.
func (r *UserRepository) UpdateDetails(ctx context.Context, id primitive.ObjectID, req models.UpdateUserRequest) (*models.User, error) {
	set := bson.M{}
	if req.Username != "" {
		set["username"] = req.Username
	}
	if req.Email != "" {
		set["email"] = req.Email
	}
	if req.PhoneNumber != "" {
		set["phoneNumber"] = req.PhoneNumber
	}
	return r.update(ctx, id, set)
}

func (r *UserRepository) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	_, err := r.update(ctx, id, bson.M{"password": hash})
	return err
}

func (r *UserRepository) SetVerified(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.update(ctx, id, bson.M{"isVerified": true})
	return err
}

func (r *UserRepository) SetProfilePicture(ctx context.Context, id primitive.ObjectID, url string) (*models.User, error) {
	return r.update(ctx, id, bson.M{"profilePicture": url})
}

func (r *UserRepository) SetFCMToken(ctx context.Context, id primitive.ObjectID, token string) error {
	_, err := r.update(ctx, id, bson.M{"fcmToken": token})
	return err
}

// FCMToken implements services.TokenSource.
func (r *UserRepository) FCMToken(ctx context.Context, id primitive.ObjectID) (string, error) {
	opts := options.FindOne().SetProjection(bson.M{"fcmToken": 1})
	user, err := findOne[models.User](ctx, r.collection, bson.M{"_id": id}, userNotFound, opts)
	if err != nil {
		return "", err
	}
	return user.FCMToken, nil
}

// AddAddress appends an address. The first address, or one flagged
// isDefault, becomes the only default.
func (r *UserRepository) AddAddress(ctx context.Context, id primitive.ObjectID, addr models.Address) (*models.User, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	addr.ID = primitive.NewObjectID()
	if len(user.Addresses) == 0 {
		addr.IsDefault = true
	}
	if addr.IsDefault {
		if err := r.clearDefaultAddress(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.apply(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"addresses": addr},
		"$set":  bson.M{"updatedAt": time.Now()},
	}, nil)
}

func (r *UserRepository) UpdateAddress(ctx context.Context, id, addressID primitive.ObjectID, addr models.Address) (*models.User, error) {
	if addr.IsDefault {
		if err := r.clearDefaultAddress(ctx, id); err != nil {
			return nil, err
		}
	}
	set := bson.M{
		"addresses.$[a].street":    addr.Street,
		"addresses.$[a].city":      addr.City,
		"addresses.$[a].state":     addr.State,
		"addresses.$[a].zipCode":   addr.ZipCode,
		"addresses.$[a].country":   addr.Country,
		"addresses.$[a].isDefault": addr.IsDefault,
		"updatedAt":                time.Now(),
	}
	filters := []interface{}{bson.M{"a._id": addressID}}
	return r.apply(ctx, bson.M{"_id": id, "addresses._id": addressID}, bson.M{"$set": set}, filters)
}

func (r *UserRepository) DeleteAddress(ctx context.Context, id, addressID primitive.ObjectID) (*models.User, error) {
	return r.apply(ctx, bson.M{"_id": id, "addresses._id": addressID}, bson.M{
		"$pull": bson.M{"addresses": bson.M{"_id": addressID}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}, nil)
}

func (r *UserRepository) clearDefaultAddress(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "addresses.0": bson.M{"$exists": true}},
		bson.M{"$set": bson.M{"addresses.$[].isDefault": false}})
	if err != nil {
		return fmt.Errorf("clear default address: %w", err)
	}
	return nil
}

func (r *UserRepository) apply(ctx context.Context, filter, update interface{}, arrayFilters []interface{}) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if arrayFilters != nil {
		opts.SetArrayFilters(options.ArrayFilters{Filters: arrayFilters})
	}
	var user models.User
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Address not found")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	user.Normalize()
	return &user, nil
}

// historyPipeline drops videoID from watchHistory, appends it and keeps the
// last limit entries.
func historyPipeline(videoID primitive.ObjectID, limit int) mongo.Pipeline {
	history := bson.M{"$ifNull": bson.A{"$watchHistory", bson.A{}}}
	without := bson.M{"$filter": bson.M{
		"input": history,
		"cond":  bson.M{"$ne": bson.A{"$$this", videoID}},
	}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"watchHistory": bson.M{"$slice": bson.A{
				bson.M{"$concatArrays": bson.A{without, bson.A{videoID}}},
				-limit,
			}},
		}}},
	}
}

// PushHistory moves videoID to the end of watchHistory and keeps the newest
// limit entries, in one pipeline update.
func (r *UserRepository) PushHistory(ctx context.Context, userID, videoID primitive.ObjectID, limit int) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	res, err := r.collection.UpdateByID(ctx, userID, historyPipeline(videoID, limit))
	if err != nil {
		return fmt.Errorf("push history: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound(userNotFound)
	}
	return nil
}

func (r *UserRepository) History(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.FindOne().SetProjection(bson.M{"watchHistory": 1})
	user, err := findOne[models.User](ctx, r.collection, bson.M{"_id": userID}, userNotFound, opts)
	if err != nil {
		return nil, err
	}
	return user.WatchHistory, nil
}

// ActiveEmails lists the addresses of every active user for bulk mail.
func (r *UserRepository) ActiveEmails(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"email": 1})
	users, err := findAll[models.User](ctx, r.collection, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(users))
	for _, u := range users {
		emails = append(emails, u.Email)
	}
	return emails, nil
}
