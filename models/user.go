package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered boutique customer (or the admin operator)
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Email           string             `bson:"email" json:"email"`
	Password        string             `bson:"password,omitempty" json:"-"` // Password is not returned in JSON
	InstagramHandle string             `bson:"instagram_handle,omitempty" json:"instagram_handle,omitempty"`
	IsAdmin         bool               `bson:"is_admin" json:"is_admin"`
	Status          string             `bson:"status" json:"status"` // pending, verified, active
	OTP             string             `bson:"otp,omitempty" json:"-"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}
