package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	VideoStatusPending  = "pending"
	VideoStatusApproved = "approved"
	VideoStatusRejected = "rejected"

	VideoSourceUpload      = "upload"
	VideoSourceGoogleDrive = "google_drive"
)

// Video is a stored video document. Likes holds each liking user at most once.
type Video struct {
	ID              primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Title           string               `json:"title" bson:"title"`
	Description     string               `json:"description" bson:"description"`
	VideoURL        string               `json:"videoUrl" bson:"videoUrl"`
	VideoSourceType string               `json:"videoSourceType" bson:"videoSourceType"`
	ThumbnailURL    string               `json:"thumbnailUrl" bson:"thumbnailUrl"`
	VideoKey        string               `json:"-" bson:"videoKey,omitempty"`
	ThumbnailKey    string               `json:"-" bson:"thumbnailKey,omitempty"`
	Duration        float64              `json:"duration" bson:"duration"`
	Size            int64                `json:"size" bson:"size"`
	Status          string               `json:"status" bson:"status"`
	CreatorID       primitive.ObjectID   `json:"-" bson:"creator"`
	CreatorModel    CreatorKind          `json:"creatorModel" bson:"creatorModel"`
	Creator         *CreatorSummary      `json:"creator,omitempty" bson:"-"`
	Views           int64                `json:"views" bson:"views"`
	IsTrending      bool                 `json:"isTrending" bson:"isTrending"`
	Tags            []string             `json:"tags" bson:"tags"`
	Likes           []primitive.ObjectID `json:"likes" bson:"likes,omitempty"`
	LikesCount      int                  `json:"likesCount" bson:"-"`
	Category        *primitive.ObjectID  `json:"category,omitempty" bson:"category,omitempty"`
	CreatedAt       time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt" bson:"updatedAt"`
}

func (v *Video) Ref() CreatorRef {
	return CreatorRef{Kind: v.CreatorModel, ID: v.CreatorID}
}

// Normalize fills derived fields and replaces nil slices after decoding.
func (v *Video) Normalize() {
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if v.Likes == nil {
		v.Likes = []primitive.ObjectID{}
	}
	v.LikesCount = len(v.Likes)
}

// IsOwnedBy reports whether ref created the video.
func (v *Video) IsOwnedBy(ref CreatorRef) bool {
	return v.CreatorModel == ref.Kind && v.CreatorID == ref.ID
}

func ValidVideoStatus(status string) bool {
	switch status {
	case VideoStatusPending, VideoStatusApproved, VideoStatusRejected:
		return true
	}
	return false
}

// VideoMetrics is the reduced view returned after an admin counter update.
type VideoMetrics struct {
	ID         primitive.ObjectID `json:"_id"`
	Views      int64              `json:"views"`
	LikesCount int                `json:"likesCount"`
}

type UpdateVideoStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

// UpdateMetricsRequest accepts numbers or numeric strings.
type UpdateMetricsRequest struct {
	Views interface{} `json:"views"`
	Likes interface{} `json:"likes"`
}
