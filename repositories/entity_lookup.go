package repositories

import (
	"context"

	"github.com/streamcart/streamcart_backend/config"
	"github.com/streamcart/streamcart_backend/models"
	"github.com/streamcart/streamcart_backend/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EntityLookup resolves creator references against the users and admins
// collections, one query per kind.
type EntityLookup struct {
	users  *mongo.Collection
	admins *mongo.Collection
}

func NewEntityLookup(db *mongo.Database) *EntityLookup {
	return &EntityLookup{
		users:  db.Collection(config.UsersCollection),
		admins: db.Collection(config.AdminsCollection),
	}
}

type creatorDoc struct {
	ID               primitive.ObjectID `bson:"_id"`
	Username         string             `bson:"username"`
	Name             string             `bson:"name"`
	ProfilePicture   string             `bson:"profilePicture"`
	ProfileImage     string             `bson:"profileImage"`
	SubscribersCount *int               `bson:"subscribersCount"`
}

var (
	userSummaryProjection = bson.M{
		"username":         1,
		"profilePicture":   1,
		"subscribersCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$subscribers", bson.A{}}}},
	}
	adminSummaryProjection = bson.M{"name": 1, "profileImage": 1}
)

func (l *EntityLookup) Summaries(ctx context.Context, refs []models.CreatorRef) (map[models.CreatorRef]models.CreatorSummary, error) {
	ids := map[models.CreatorKind][]primitive.ObjectID{}
	for _, ref := range refs {
		ids[ref.Kind] = append(ids[ref.Kind], ref.ID)
	}

	out := make(map[models.CreatorRef]models.CreatorSummary, len(refs))
	for kind, kindIDs := range ids {
		coll, projection := l.users, userSummaryProjection
		if kind == models.CreatorAdmin {
			coll, projection = l.admins, adminSummaryProjection
		} else if kind != models.CreatorUser {
			continue
		}

		docs, err := findAll[creatorDoc](ctx, coll, bson.M{"_id": bson.M{"$in": kindIDs}}, options.Find().SetProjection(projection))
		if err != nil {
			return nil, err
		}
		for _, d := range docs {
			out[models.CreatorRef{Kind: kind, ID: d.ID}] = models.CreatorSummary{
				ID:               d.ID,
				Kind:             kind,
				Username:         d.Username,
				Name:             d.Name,
				ProfilePicture:   d.ProfilePicture,
				ProfileImage:     d.ProfileImage,
				SubscribersCount: d.SubscribersCount,
			}
		}
	}
	return out, nil
}

var _ services.CreatorLookup = (*EntityLookup)(nil)
