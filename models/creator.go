package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CreatorKind discriminates the collection a creator reference points into.
type CreatorKind string

const (
	CreatorUser  CreatorKind = "User"
	CreatorAdmin CreatorKind = "Admin"
)

func (k CreatorKind) Valid() bool {
	return k == CreatorUser || k == CreatorAdmin
}

// CreatorRef is a polymorphic reference to a User or an Admin.
type CreatorRef struct {
	Kind CreatorKind
	ID   primitive.ObjectID
}

// CreatorSummary is the public projection of a creator attached to videos.
type CreatorSummary struct {
	ID               primitive.ObjectID `json:"_id"`
	Kind             CreatorKind        `json:"kind"`
	Username         string             `json:"username,omitempty"`
	Name             string             `json:"name,omitempty"`
	ProfilePicture   string             `json:"profilePicture,omitempty"`
	ProfileImage     string             `json:"profileImage,omitempty"`
	SubscribersCount *int               `json:"subscribersCount,omitempty"`
}
