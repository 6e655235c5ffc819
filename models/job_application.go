package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ApplicationPaymentPending  = "pending"
	ApplicationPaymentVerified = "verified"
	ApplicationPaymentFailed   = "failed"
)

type Birthday struct {
	Day   int `json:"day" bson:"day" validate:"required,min=1,max=31"`
	Month int `json:"month" bson:"month" validate:"required,min=1,max=12"`
	Year  int `json:"year" bson:"year" validate:"required,min=1900"`
}

type ApplicantAddress struct {
	State        string `json:"state" bson:"state" validate:"required"`
	AddressLine1 string `json:"addressLine1" bson:"addressLine1" validate:"required"`
	City         string `json:"city" bson:"city" validate:"required"`
	ZipCode      string `json:"zipCode" bson:"zipCode" validate:"required"`
}

type JobApplication struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	FirstName     string             `json:"firstName" bson:"firstName"`
	LastName      string             `json:"lastName" bson:"lastName"`
	Email         string             `json:"email" bson:"email"`
	Phone         string             `json:"phone" bson:"phone"`
	Birthday      Birthday           `json:"birthday" bson:"birthday"`
	Address       ApplicantAddress   `json:"address" bson:"address"`
	PaymentStatus string             `json:"paymentStatus" bson:"paymentStatus"`
	UTRNumber     string             `json:"utrNumber,omitempty" bson:"utrNumber,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}

type JobApplicationRequest struct {
	FirstName string           `json:"firstName" validate:"required"`
	LastName  string           `json:"lastName" validate:"required"`
	Email     string           `json:"email" validate:"required,email"`
	Phone     string           `json:"phone" validate:"required"`
	Birthday  Birthday         `json:"birthday" validate:"required"`
	Address   ApplicantAddress `json:"address" validate:"required"`
}

type SubmitUTRRequest struct {
	Email     string `json:"email" validate:"required,email"`
	UTRNumber string `json:"utrNumber" validate:"required,min=6,max=32"`
}

type UpdateApplicationStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" validate:"required,oneof=pending verified failed"`
}
