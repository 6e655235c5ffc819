package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

type Order struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Product       primitive.ObjectID `json:"-" bson:"product"`
	ProductInfo   *OrderProduct      `json:"product,omitempty" bson:"-"`
	FullName      string             `json:"fullName" bson:"fullName"`
	Phone         string             `json:"phone" bson:"phone"`
	Address       string             `json:"address" bson:"address"`
	City          string             `json:"city,omitempty" bson:"city,omitempty"`
	State         string             `json:"state,omitempty" bson:"state,omitempty"`
	Pincode       string             `json:"pincode" bson:"pincode"`
	PaymentMethod string             `json:"paymentMethod" bson:"paymentMethod"`
	PaymentStatus string             `json:"paymentStatus" bson:"paymentStatus"`
	Amount        float64            `json:"amount" bson:"amount"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}

// OrderProduct is the product projection attached to listed orders.
type OrderProduct struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Price float64            `json:"price"`
}

type CreateOrderRequest struct {
	Product       string   `json:"product" validate:"required,len=24,hexadecimal"`
	FullName      string   `json:"fullName" validate:"required"`
	Phone         string   `json:"phone" validate:"required"`
	Address       string   `json:"address" validate:"required"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	Pincode       string   `json:"pincode" validate:"required"`
	PaymentMethod string   `json:"paymentMethod"`
	Amount        *float64 `json:"amount" validate:"omitempty,gte=0"`
}
