package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	// WatchHistoryLimit bounds User.WatchHistory; oldest entries are evicted first.
	WatchHistoryLimit = 100

	DefaultProfilePicture = "/uploads/defaults/avatar.png"
)

type Address struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Street    string             `json:"street" bson:"street" validate:"required"`
	City      string             `json:"city" bson:"city" validate:"required"`
	State     string             `json:"state" bson:"state" validate:"required"`
	ZipCode   string             `json:"zipCode" bson:"zipCode" validate:"required"`
	Country   string             `json:"country" bson:"country" validate:"required"`
	IsDefault bool               `json:"isDefault" bson:"isDefault"`
}

// User is a platform member. WatchHistory is ordered most-recent-last.
type User struct {
	ID             primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Username       string               `json:"username" bson:"username"`
	Email          string               `json:"email" bson:"email"`
	Password       string               `json:"-" bson:"password"`
	ProfilePicture string               `json:"profilePicture" bson:"profilePicture"`
	Role           string               `json:"role" bson:"role"`
	SubscribedTo   []primitive.ObjectID `json:"subscribedTo" bson:"subscribedTo,omitempty"`
	Subscribers    []primitive.ObjectID `json:"subscribers" bson:"subscribers,omitempty"`
	WatchHistory   []primitive.ObjectID `json:"watchHistory" bson:"watchHistory,omitempty"`
	LikedVideos    []primitive.ObjectID `json:"likedVideos" bson:"likedVideos,omitempty"`
	Addresses      []Address            `json:"addresses" bson:"addresses,omitempty"`
	PhoneNumber    string               `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	IsVerified     bool                 `json:"isVerified" bson:"isVerified"`
	IsActive       bool                 `json:"isActive" bson:"isActive"`
	FCMToken       string               `json:"-" bson:"fcmToken,omitempty"`
	CreatedAt      time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) Normalize() {
	if u.SubscribedTo == nil {
		u.SubscribedTo = []primitive.ObjectID{}
	}
	if u.Subscribers == nil {
		u.Subscribers = []primitive.ObjectID{}
	}
	if u.WatchHistory == nil {
		u.WatchHistory = []primitive.ObjectID{}
	}
	if u.LikedVideos == nil {
		u.LikedVideos = []primitive.ObjectID{}
	}
	if u.Addresses == nil {
		u.Addresses = []Address{}
	}
}

// PublicProfile is the unauthenticated view of a user.
type PublicProfile struct {
	ID               primitive.ObjectID `json:"_id"`
	Username         string             `json:"username"`
	ProfilePicture   string             `json:"profilePicture"`
	SubscribersCount int                `json:"subscribersCount"`
}

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RegisterUserRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	OTP      string `json:"otp" validate:"required,len=6,numeric"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordOTPRequest struct {
	Email    string `json:"email" validate:"required,email"`
	OTP      string `json:"otp" validate:"required,len=6,numeric"`
	Password string `json:"password" validate:"required,min=8"`
}

type UpdateUserRequest struct {
	Username    string `json:"username" validate:"omitempty,username"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=20"`
}

type FCMTokenRequest struct {
	Token string `json:"fcmToken" validate:"required"`
}

type SubscriptionResult struct {
	IsSubscribed     bool `json:"isSubscribed"`
	SubscribersCount int  `json:"subscribersCount"`
}

type LikeResult struct {
	IsLiked    bool   `json:"isLiked"`
	LikesCount int    `json:"likesCount"`
	Video      *Video `json:"video"`
}

// AuthResult is returned by login and registration. The token sits next to
// success rather than inside data.
type AuthResult struct {
	Success      bool        `json:"success"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	User         interface{} `json:"user"`
}
