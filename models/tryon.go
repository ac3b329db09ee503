package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TryOnResult is the audit record of one successful try-on generation.
// Image references hold S3 keys, remote URLs or data URIs; they are
// presigned where applicable before being returned to clients.
type TryOnResult struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         string             `bson:"user_id" json:"user_id"`
	SourceImageRef string             `bson:"source_image_ref" json:"source_image_ref"`
	GarmentItemID  string             `bson:"garment_item_id" json:"garment_item_id"`
	ResultImageRef string             `bson:"result_image_ref" json:"result_image_ref"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
