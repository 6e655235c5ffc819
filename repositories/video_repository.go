package repositories

import (
	"context"
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

const TrendingLimit = 20

var (
	byNewest         = bson.D{{Key: "createdAt", Value: -1}}
	byViewsThenNew   = bson.D{{Key: "views", Value: -1}, {Key: "createdAt", Value: -1}}
	byTextScore      = bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}, {Key: "views", Value: -1}, {Key: "createdAt", Value: -1}}
	textScoreProject = bson.M{"score": bson.M{"$meta": "textScore"}}
)

type VideoRepository struct {
	collection *mongo.Collection
}

func NewVideoRepository(db *mongo.Database) *VideoRepository {
	return &VideoRepository{collection: db.Collection(config.VideosCollection)}
}

func approvedFilter(exclude []primitive.ObjectID) bson.M {
	filter := bson.M{"status": models.VideoStatusApproved}
	if len(exclude) > 0 {
		filter["_id"] = bson.M{"$nin": exclude}
	}
	return filter
}

func normalizeVideos(videos []models.Video) []models.Video {
	for i := range videos {
		videos[i].Normalize()
	}
	return videos
}

func (r *VideoRepository) find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Video, error) {
	videos, err := findAll[models.Video](ctx, r.collection, filter, opts...)
	if err != nil {
		return nil, err
	}
	return normalizeVideos(videos), nil
}

func (r *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	now := time.Now()
	video.CreatedAt, video.UpdatedAt = now, now
	if video.Tags == nil {
		video.Tags = []string{}
	}
	id, err := insert(ctx, r.collection, video)
	if err != nil {
		return err
	}
	video.ID = id
	video.Normalize()
	return nil
}

func (r *VideoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	video, err := findOne[models.Video](ctx, r.collection, bson.M{"_id": id}, notFoundWithID("Video", id))
	if err != nil {
		return nil, err
	}
	video.Normalize()
	return video, nil
}

// RecordView increments the view counter and returns the updated video.
func (r *VideoRepository) RecordView(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	video, err := findOneAndUpdate[models.Video](ctx, r.collection,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"views": 1}},
		notFoundWithID("Video", id))
	if err != nil {
		return nil, err
	}
	video.Normalize()
	return video, nil
}

// ListApproved returns approved videos newest first, optionally filtered by a
// substring of the title or description.
func (r *VideoRepository) ListApproved(ctx context.Context, search string) ([]models.Video, error) {
	filter := approvedFilter(nil)
	if search != "" {
		p := containsPattern(search)
		filter["$or"] = bson.A{bson.M{"title": p}, bson.M{"description": p}}
	}
	return r.find(ctx, filter, options.Find().SetSort(byNewest))
}

func (r *VideoRepository) ListAll(ctx context.Context) ([]models.Video, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(byNewest))
}

// Trending puts manually flagged videos first, then the most viewed.
func (r *VideoRepository) Trending(ctx context.Context) ([]models.Video, error) {
	sort := bson.D{{Key: "isTrending", Value: -1}, {Key: "views", Value: -1}}
	return r.find(ctx, approvedFilter(nil), options.Find().SetSort(sort).SetLimit(TrendingLimit))
}

func (r *VideoRepository) ByCreators(ctx context.Context, creators []primitive.ObjectID) ([]models.Video, error) {
	if len(creators) == 0 {
		return []models.Video{}, nil
	}
	filter := approvedFilter(nil)
	filter["creator"] = bson.M{"$in": creators}
	return r.find(ctx, filter, options.Find().SetSort(byNewest))
}

// ByCreator lists one creator's approved uploads, newest first.
func (r *VideoRepository) ByCreator(ctx context.Context, ref models.CreatorRef) ([]models.Video, error) {
	filter := approvedFilter(nil)
	filter["creator"] = ref.ID
	filter["creatorModel"] = ref.Kind
	return r.find(ctx, filter, options.Find().SetSort(byNewest))
}

func (r *VideoRepository) FindApprovedByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Video, error) {
	if len(ids) == 0 {
		return []models.Video{}, nil
	}
	filter := approvedFilter(nil)
	filter["_id"] = bson.M{"$in": ids}
	return r.find(ctx, filter)
}

func (r *VideoRepository) TextSearch(ctx context.Context, text string, exclude []primitive.ObjectID, limit int64) ([]models.Video, error) {
	filter := approvedFilter(exclude)
	filter["$text"] = bson.M{"$search": text}
	opts := options.Find().SetProjection(textScoreProject).SetSort(byTextScore).SetLimit(limit)
	return r.find(ctx, filter, opts)
}

func (r *VideoRepository) PatternSearch(ctx context.Context, keywords []string, limit int64) ([]models.Video, error) {
	if len(keywords) == 0 {
		return []models.Video{}, nil
	}
	clauses := make(bson.A, 0, len(keywords)*3)
	for _, k := range keywords {
		p := containsPattern(k)
		clauses = append(clauses, bson.M{"title": p}, bson.M{"description": p}, bson.M{"tags": p})
	}
	filter := approvedFilter(nil)
	filter["$or"] = clauses
	return r.find(ctx, filter, options.Find().SetSort(byViewsThenNew).SetLimit(limit))
}

func (r *VideoRepository) FindByContext(ctx context.Context, category *primitive.ObjectID, tags []string, exclude []primitive.ObjectID, limit int64) ([]models.Video, error) {
	clauses := bson.A{}
	if category != nil {
		clauses = append(clauses, bson.M{"category": *category})
	}
	if len(tags) > 0 {
		clauses = append(clauses, bson.M{"tags": bson.M{"$in": tags}})
	}
	if len(clauses) == 0 {
		return []models.Video{}, nil
	}
	filter := approvedFilter(exclude)
	filter["$or"] = clauses
	return r.find(ctx, filter, options.Find().SetSort(byViewsThenNew).SetLimit(limit))
}

func (r *VideoRepository) Latest(ctx context.Context, exclude []primitive.ObjectID, limit int64) ([]models.Video, error) {
	return r.find(ctx, approvedFilter(exclude), options.Find().SetSort(byNewest).SetLimit(limit))
}

func (r *VideoRepository) SetCounters(ctx context.Context, id primitive.ObjectID, views *int64, likes []primitive.ObjectID) error {
	set := bson.M{"updatedAt": time.Now()}
	if views != nil {
		set["views"] = *views
	}
	if likes != nil {
		set["likes"] = likes
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	res, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("set video counters: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound(notFoundWithID("Video", id))
	}
	return nil
}

func (r *VideoRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Video, error) {
	video, err := findOneAndUpdate[models.Video](ctx, r.collection,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
		notFoundWithID("Video", id))
	if err != nil {
		return nil, err
	}
	video.Normalize()
	return video, nil
}

// ToggleTrending flips isTrending in a single pipeline update.
func (r *VideoRepository) ToggleTrending(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"isTrending": bson.M{"$not": bson.A{bson.M{"$ifNull": bson.A{"$isTrending", false}}}},
			"updatedAt":  "$$NOW",
		}}},
	}
	video, err := findOneAndUpdate[models.Video](ctx, r.collection, bson.M{"_id": id}, pipeline, notFoundWithID("Video", id))
	if err != nil {
		return nil, err
	}
	video.Normalize()
	return video, nil
}

func (r *VideoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, id, notFoundWithID("Video", id))
}

// SitemapVideos returns approved videos, most recently updated first.
func (r *VideoRepository) SitemapVideos(ctx context.Context) ([]models.Video, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetProjection(bson.M{"likes": 0})
	return r.find(ctx, approvedFilter(nil), opts)
}
