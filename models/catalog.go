package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogItem is one garment in the boutique catalog. ImageURL holds the
// S3 object key; handlers presign it before responding.
type CatalogItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ImageURL    string             `bson:"image_url" json:"image_url"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	SourceURL   string             `bson:"source_url,omitempty" json:"source_url,omitempty"` // set when imported from an external page
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
