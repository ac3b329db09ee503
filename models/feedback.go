package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback represents a customer message to the boutique
type Feedback struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	Message     string             `bson:"message" json:"message"`
	ContactBack bool               `bson:"contact_back" json:"contact_back"`
	FilePaths   []string           `bson:"file_paths,omitempty" json:"file_paths,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
