package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/streamcart/streamcart_backend/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	UsersCollection           = "users"
	AdminsCollection          = "admins"
	VideosCollection          = "videos"
	CategoriesCollection      = "categories"
	ProductsCollection        = "products"
	OrdersCollection          = "orders"
	ContactsCollection        = "contacts"
	JobApplicationsCollection = "playboyjobapplications"
)

// ConnectDB connects to MongoDB, pings it and ensures indexes exist.
func ConnectDB(cfg MongoConfig) (*mongo.Client, error) {
	logger.Info().Str("uri", maskMongoURI(cfg.URI)).Msg("connecting to MongoDB")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info().Str("database", cfg.Database).Msg("connected to MongoDB")

	setupCollections(client.Database(cfg.Database))
	return client, nil
}

func setupCollections(db *mongo.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "subscribedTo", Value: 1}}},
			{Keys: bson.D{{Key: "likedVideos", Value: 1}}},
		},
		AdminsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		VideosCollection: {
			{Keys: bson.D{{Key: "creator", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "likes", Value: 1}}},
			{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}}},
		},
		CategoriesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "slug", Value: 1}}},
		},
		ProductsCollection: {
			{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			{Keys: bson.D{{Key: "slug", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		JobApplicationsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			logger.Warn().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}
	logger.Info().Msg("database collections and indexes setup complete")
}

// maskMongoURI hides the password component of a connection string.
func maskMongoURI(uri string) string {
	if idx := strings.Index(uri, "@"); idx > 0 {
		if colonIdx := strings.LastIndex(uri[:idx], ":"); colonIdx > 0 && colonIdx > strings.Index(uri, "://")+2 {
			return uri[:colonIdx+1] + "***" + uri[idx:]
		}
	}
	return uri
}
