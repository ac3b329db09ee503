package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/mkovacevic/boutique-tryon/config"
	"github.com/mkovacevic/boutique-tryon/models"
	"github.com/mkovacevic/boutique-tryon/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GalleryResponse represents the response structure for the gallery API
type GalleryResponse struct {
	Images      []models.TryOnResult `json:"images"`
	Total       int64                `json:"total"`
	CurrentPage int                  `json:"current_page"`
	TotalPages  int                  `json:"total_pages"`
}

// GalleryHandler handles fetching the user's generated try-on images
func GalleryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondError(w, nil, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, nil, "Unauthorized", http.StatusUnauthorized)
		return
	}

	page := 1
	limit := 10
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	collection := utils.GetCollection(config.DBName, "tryon_results")
	filter := bson.M{"user_id": userID}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		utils.RespondError(w, nil, "Failed to fetch data", http.StatusInternalServerError)
		return
	}

	skip := (page - 1) * limit
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}). // Show latest first
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		utils.RespondError(w, nil, "Failed to fetch data", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var results []models.TryOnResult
	if err = cursor.All(ctx, &results); err != nil {
		utils.RespondError(w, nil, "Failed to decode data", http.StatusInternalServerError)
		return
	}

	// Stored refs may be S3 keys; presign those, pass URLs and data URIs through
	for i := range results {
		results[i].ResultImageRef = utils.PresignImageURL(r.Context(), results[i].ResultImageRef)
		results[i].SourceImageRef = utils.PresignImageURL(r.Context(), results[i].SourceImageRef)
	}

	// Ensure empty slice is returned as [] instead of null
	if results == nil {
		results = []models.TryOnResult{}
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	utils.RespondJSON(w, http.StatusOK, GalleryResponse{
		Images:      results,
		Total:       total,
		CurrentPage: page,
		TotalPages:  totalPages,
	})
}
