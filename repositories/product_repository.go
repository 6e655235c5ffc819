package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/streamcart/streamcart_backend/config"
	"github.com/streamcart/streamcart_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultProductPageSize = 25
	MaxProductPageSize     = 100
)

var productSortFields = map[string]bool{
	"name": true, "price": true, "createdAt": true, "stock": true, "ratingsAverage": true, "brand": true,
}

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{collection: db.Collection(config.ProductsCollection)}
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	product.CreatedAt = time.Now()
	id, err := insert(ctx, r.collection, product)
	if err != nil {
		return err
	}
	product.ID = id
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return findOne[models.Product](ctx, r.collection, bson.M{"_id": id}, notFoundWithID("Product", id))
}

func (r *ProductRepository) FindByIDOrSlug(ctx context.Context, key string) (*models.Product, error) {
	filter := bson.M{"slug": key}
	if id, err := primitive.ObjectIDFromHex(key); err == nil {
		filter = bson.M{"_id": id}
	}
	return findOne[models.Product](ctx, r.collection, filter, "Product not found with id of "+key)
}

// ProductFilterQuery translates the list filter into a Mongo query.
func ProductFilterQuery(f models.ProductFilter) bson.M {
	query := bson.M{}
	if id, err := primitive.ObjectIDFromHex(f.Category); err == nil {
		query["category"] = id
	}
	if f.Brand != "" {
		query["brand"] = containsPattern(f.Brand)
	}
	if len(f.Tags) > 0 {
		query["tags"] = bson.M{"$in": f.Tags}
	}
	if f.Active != nil {
		query["isActive"] = *f.Active
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}
	if f.Search != "" {
		p := containsPattern(f.Search)
		query["$or"] = bson.A{bson.M{"name": p}, bson.M{"description": p}, bson.M{"brand": p}}
	}
	return query
}

// ParseSort turns "-price,name" into a sort document. Unknown fields are
// ignored; the default is newest first.
func ParseSort(raw string) bson.D {
	sort := bson.D{}
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		dir := 1
		if strings.HasPrefix(field, "-") {
			dir, field = -1, field[1:]
		}
		if productSortFields[field] {
			sort = append(sort, bson.E{Key: field, Value: dir})
		}
	}
	if len(sort) == 0 {
		return bson.D{{Key: "createdAt", Value: -1}}
	}
	return sort
}

// PageBounds clamps page and limit to sane values.
func PageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultProductPageSize
	}
	if limit > MaxProductPageSize {
		limit = MaxProductPageSize
	}
	return page, limit
}

// Paginate builds next/prev references for a page of total results.
func Paginate(page, limit int, total int64) *models.Pagination {
	p := &models.Pagination{}
	if int64(page*limit) < total {
		p.Next = &models.PageRef{Page: page + 1, Limit: limit}
	}
	if page > 1 {
		p.Prev = &models.PageRef{Page: page - 1, Limit: limit}
	}
	return p
}

// List returns one page of products and the total match count.
func (r *ProductRepository) List(ctx context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	query := ProductFilterQuery(f)
	page, limit := PageBounds(f.Page, f.Limit)

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(ParseSort(f.Sort)).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	products, err := findAll[models.Product](ctx, r.collection, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *ProductRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error) {
	return findOneAndUpdate[models.Product](ctx, r.collection, bson.M{"_id": id}, bson.M{"$set": set}, notFoundWithID("Product", id))
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, id, notFoundWithID("Product", id))
}

// Summaries returns name and price for the given products keyed by id.
func (r *ProductRepository) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.OrderProduct, error) {
	out := make(map[primitive.ObjectID]models.OrderProduct, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"name": 1, "price": 1})
	products, err := findAll[models.Product](ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = models.OrderProduct{ID: p.ID, Name: p.Name, Price: p.Price}
	}
	return out, nil
}
