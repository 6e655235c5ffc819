package models

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Variant struct {
	Name    string   `json:"name" bson:"name"`
	Options []string `json:"options" bson:"options"`
}

type Specification struct {
	Name  string `json:"name" bson:"name"`
	Value string `json:"value" bson:"value"`
}

// Specifications accepts either a JSON array or a JSON-encoded string holding
// that array, which is what multipart clients send.
type Specifications []Specification

func (s *Specifications) UnmarshalJSON(data []byte) error {
	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		parsed, err := ParseSpecifications(encoded)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}
	var list []Specification
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = list
	return nil
}

// ParseSpecifications decodes a JSON-encoded specification list. Blank input
// yields an empty list.
func ParseSpecifications(raw string) (Specifications, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Specifications{}, nil
	}
	var list []Specification
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return list, nil
}

type Product struct {
	ID              primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name"`
	Slug            string             `json:"slug" bson:"slug"`
	Description     string             `json:"description" bson:"description"`
	Price           float64            `json:"price" bson:"price"`
	DiscountPrice   *float64           `json:"discountPrice,omitempty" bson:"discountPrice,omitempty"`
	Category        primitive.ObjectID `json:"category" bson:"category"`
	Images          []string           `json:"images" bson:"images"`
	Brand           string             `json:"brand" bson:"brand"`
	Stock           int                `json:"stock" bson:"stock"`
	SKU             string             `json:"sku,omitempty" bson:"sku,omitempty"`
	Variants        []Variant          `json:"variants" bson:"variants"`
	Specifications  Specifications     `json:"specifications" bson:"specifications"`
	Tags            []string           `json:"tags" bson:"tags"`
	RatingsAverage  *float64           `json:"ratingsAverage,omitempty" bson:"ratingsAverage,omitempty"`
	RatingsQuantity int                `json:"ratingsQuantity" bson:"ratingsQuantity"`
	QRCode          string             `json:"qrCode,omitempty" bson:"qrCode,omitempty"`
	IsActive        bool               `json:"isActive" bson:"isActive"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
}

type ProductInput struct {
	Name           string         `json:"name" validate:"required,max=100"`
	Description    string         `json:"description" validate:"required,max=2000"`
	Price          float64        `json:"price" validate:"gte=0"`
	DiscountPrice  *float64       `json:"discountPrice" validate:"omitempty,gte=0"`
	Category       string         `json:"category" validate:"required,len=24,hexadecimal"`
	Images         []string       `json:"images"`
	Brand          string         `json:"brand" validate:"required"`
	Stock          int            `json:"stock" validate:"gte=0"`
	SKU            string         `json:"sku"`
	Variants       []Variant      `json:"variants"`
	Specifications Specifications `json:"specifications"`
	Tags           []string       `json:"tags"`
	RatingsAverage *float64       `json:"ratingsAverage" validate:"omitempty,min=1,max=5"`
	QRCode         string         `json:"qrCode"`
	IsActive       *bool          `json:"isActive"`
}

// ProductFilter is parsed from the list query string.
type ProductFilter struct {
	Category string
	Brand    string
	Search   string
	Tags     []string
	MinPrice *float64
	MaxPrice *float64
	Active   *bool
	Sort     string
	Page     int
	Limit    int
}
