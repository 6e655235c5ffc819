package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CategoryStatusPending  = "pending"
	CategoryStatusApproved = "approved"
	CategoryStatusRejected = "rejected"
)

type Category struct {
	ID           primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	Name         string              `json:"name" bson:"name"`
	Slug         string              `json:"slug" bson:"slug"`
	Description  string              `json:"description,omitempty" bson:"description,omitempty"`
	Image        string              `json:"image" bson:"image"`
	ImageKey     string              `json:"-" bson:"imageKey,omitempty"`
	Parent       *primitive.ObjectID `json:"parent" bson:"parent"`
	Status       string              `json:"status" bson:"status"`
	CreatorID    *primitive.ObjectID `json:"creator,omitempty" bson:"creator,omitempty"`
	CreatorModel CreatorKind         `json:"creatorModel" bson:"creatorModel"`
	IsActive     bool                `json:"isActive" bson:"isActive"`
	CreatedAt    time.Time           `json:"createdAt" bson:"createdAt"`
}

// CategoryInput is bound from JSON or multipart form fields.
type CategoryInput struct {
	Name        string `json:"name" form:"name" validate:"required,max=50"`
	Description string `json:"description" form:"description" validate:"max=500"`
	Parent      string `json:"parent" form:"parent" validate:"omitempty,len=24,hexadecimal"`
	Status      string `json:"status" form:"status" validate:"omitempty,oneof=pending approved rejected"`
	IsActive    *bool  `json:"isActive" form:"isActive"`
}

// CategorySummary is the parent projection attached to listed categories.
type CategorySummary struct {
	ID   primitive.ObjectID `json:"_id" bson:"_id"`
	Name string             `json:"name" bson:"name"`
	Slug string             `json:"slug" bson:"slug"`
}

// CategoryDetail is a category with its parent resolved.
type CategoryDetail struct {
	Category       `bson:",inline"`
	ParentCategory *CategorySummary `json:"parentCategory,omitempty" bson:"parentCategory,omitempty"`
}
