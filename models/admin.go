package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AdminRoleSuper     = "superadmin"
	AdminRoleAdmin     = "admin"
	AdminRoleModerator = "moderator"
)

type CRUDPermission struct {
	View   bool `json:"view" bson:"view"`
	Create bool `json:"create" bson:"create"`
	Edit   bool `json:"edit" bson:"edit"`
	Delete bool `json:"delete" bson:"delete"`
}

type AdminPermissions struct {
	Users     CRUDPermission `json:"users" bson:"users"`
	Products  CRUDPermission `json:"products" bson:"products"`
	Orders    CRUDPermission `json:"orders" bson:"orders"`
	Analytics CRUDPermission `json:"analytics" bson:"analytics"`
}

func DefaultAdminPermissions() AdminPermissions {
	return AdminPermissions{
		Users:     CRUDPermission{View: true, Create: true, Edit: true},
		Products:  CRUDPermission{View: true, Create: true, Edit: true, Delete: true},
		Orders:    CRUDPermission{View: true, Edit: true},
		Analytics: CRUDPermission{View: true},
	}
}

type Admin struct {
	ID                   primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name                 string             `json:"name" bson:"name"`
	Email                string             `json:"email" bson:"email"`
	Password             string             `json:"-" bson:"password"`
	Role                 string             `json:"role" bson:"role"`
	Permissions          AdminPermissions   `json:"permissions" bson:"permissions"`
	IsActive             bool               `json:"isActive" bson:"isActive"`
	LastLogin            *time.Time         `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	PasswordChangedAt    *time.Time         `json:"-" bson:"passwordChangedAt,omitempty"`
	PasswordResetToken   string             `json:"-" bson:"passwordResetToken,omitempty"`
	PasswordResetExpires *time.Time         `json:"-" bson:"passwordResetExpires,omitempty"`
	ProfileImage         string             `json:"profileImage" bson:"profileImage"`
	CreatedAt            time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ChangedPasswordAfter reports whether the password changed after a token
// issued at iat (unix seconds).
func (a *Admin) ChangedPasswordAfter(iat int64) bool {
	if a.PasswordChangedAt == nil {
		return false
	}
	return a.PasswordChangedAt.Unix() > iat
}

type RegisterAdminRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=superadmin admin moderator"`
}

type UpdateAdminDetailsRequest struct {
	Name  string `json:"name" validate:"omitempty,max=50"`
	Email string `json:"email" validate:"omitempty,email"`
}

type UpdateAdminRequest struct {
	Name        string            `json:"name" validate:"omitempty,max=50"`
	Email       string            `json:"email" validate:"omitempty,email"`
	Role        string            `json:"role" validate:"omitempty,oneof=superadmin admin moderator"`
	Permissions *AdminPermissions `json:"permissions"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

type BulkEmailRequest struct {
	Subject    string   `json:"subject" validate:"required"`
	Message    string   `json:"message" validate:"required"`
	Recipients []string `json:"recipients" validate:"omitempty,dive,email"`
}
