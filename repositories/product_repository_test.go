package repositories

import (
	"testing"

	"github.com/streamcart/streamcart_backend/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseSort(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "price", Value: -1}, {Key: "name", Value: 1}}, ParseSort("-price, name"))
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, ParseSort(""))
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, ParseSort("password"))
}

func TestPageBounds(t *testing.T) {
	page, limit := PageBounds(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultProductPageSize, limit)

	_, limit = PageBounds(2, 1000)
	assert.Equal(t, MaxProductPageSize, limit)
}

func TestPaginate(t *testing.T) {
	p := Paginate(1, 25, 60)
	assert.Equal(t, &models.PageRef{Page: 2, Limit: 25}, p.Next)
	assert.Nil(t, p.Prev)

	p = Paginate(3, 25, 60)
	assert.Nil(t, p.Next)
	assert.Equal(t, &models.PageRef{Page: 2, Limit: 25}, p.Prev)
}

func TestProductFilterQuery(t *testing.T) {
	category := primitive.NewObjectID()
	min, max := 10.0, 50.0
	active := true

	q := ProductFilterQuery(models.ProductFilter{
		Category: category.Hex(),
		Tags:     []string{"summer"},
		MinPrice: &min,
		MaxPrice: &max,
		Active:   &active,
		Search:   "shoe (red)",
	})

	assert.Equal(t, category, q["category"])
	assert.Equal(t, bson.M{"$gte": 10.0, "$lte": 50.0}, q["price"])
	assert.Equal(t, true, q["isActive"])
	assert.Equal(t, bson.M{"$in": []string{"summer"}}, q["tags"])

	or := q["$or"].(bson.A)
	assert.Equal(t, bson.M{"name": primitive.Regex{Pattern: `shoe \(red\)`, Options: "i"}}, or[0])
}

func TestProductFilterQuery_IgnoresBadCategory(t *testing.T) {
	q := ProductFilterQuery(models.ProductFilter{Category: "shoes"})

	assert.NotContains(t, q, "category")
}
