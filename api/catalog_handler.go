package api

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/mkovacevic/boutique-tryon/config"
	"github.com/mkovacevic/boutique-tryon/models"
	"github.com/mkovacevic/boutique-tryon/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CatalogResponse is the public catalog listing
type CatalogResponse struct {
	Items      []models.CatalogItem `json:"items"`
	Categories []string             `json:"categories"`
}

// ListCatalogHandler returns all catalog items, newest first, with an
// optional ?category= filter and the distinct category list.
func ListCatalogHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondError(w, nil, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	collection := utils.GetCollection(config.DBName, "catalog_items")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		utils.RespondError(w, nil, "Failed to fetch catalog", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var items []models.CatalogItem
	if err = cursor.All(ctx, &items); err != nil {
		utils.RespondError(w, nil, "Failed to decode catalog", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.CatalogItem{}
	}

	categoriesRaw, err := collection.Distinct(ctx, "category", bson.M{"category": bson.M{"$ne": ""}})
	var categories []string
	if err == nil {
		for _, c := range categoriesRaw {
			if s, ok := c.(string); ok && s != "" {
				categories = append(categories, s)
			}
		}
	}
	if categories == nil {
		categories = []string{}
	}

	// Stored values are S3 keys; presign for display
	for i := range items {
		items[i].ImageURL = utils.PresignImageURL(r.Context(), items[i].ImageURL)
	}

	utils.RespondJSON(w, http.StatusOK, CatalogResponse{Items: items, Categories: categories})
}

// CreateCatalogItemHandler handles admin item creation with an image upload
func CreateCatalogItemHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Create Catalog Item API]")

	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Error parsing form data", http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		utils.RespondError(w, &logMessageBuilder, "Title is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := filepath.Ext(header.Filename)
	objectKey := fmt.Sprintf("catalog/%d%s", time.Now().UnixNano(), ext)

	if _, err := utils.UploadFileToS3(r.Context(), file, objectKey, header.Header.Get("Content-Type")); err != nil {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Failed to upload image: %v", err), http.StatusInternalServerError)
		return
	}

	item := models.CatalogItem{
		ID:          primitive.NewObjectID(),
		ImageURL:    objectKey,
		Title:       title,
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		CreatedAt:   time.Now(),
	}

	collection := utils.GetCollection(config.DBName, "catalog_items")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.InsertOne(ctx, item); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Failed to save catalog item", http.StatusInternalServerError)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, "Catalog item created: "+title)
	item.ImageURL = utils.PresignImageURL(r.Context(), item.ImageURL)
	utils.RespondJSON(w, http.StatusCreated, item)
}

// UpdateCatalogItemHandler handles admin edits, with an optional
// replacement image.
func UpdateCatalogItemHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Update Catalog Item API]")

	itemID, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid item ID", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Error parsing form data", http.StatusBadRequest)
		return
	}

	set := bson.M{}
	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		set["title"] = title
	}
	if _, ok := r.MultipartForm.Value["description"]; ok {
		set["description"] = r.FormValue("description")
	}
	if _, ok := r.MultipartForm.Value["category"]; ok {
		set["category"] = r.FormValue("category")
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		ext := filepath.Ext(header.Filename)
		objectKey := fmt.Sprintf("catalog/%d%s", time.Now().UnixNano(), ext)
		if _, err := utils.UploadFileToS3(r.Context(), file, objectKey, header.Header.Get("Content-Type")); err != nil {
			utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Failed to upload image: %v", err), http.StatusInternalServerError)
			return
		}
		set["image_url"] = objectKey
	}

	if len(set) == 0 {
		utils.RespondError(w, &logMessageBuilder, "Nothing to update", http.StatusBadRequest)
		return
	}

	collection := utils.GetCollection(config.DBName, "catalog_items")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := collection.UpdateOne(ctx, bson.M{"_id": itemID}, bson.M{"$set": set})
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Failed to update catalog item", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondError(w, &logMessageBuilder, "Catalog item not found", http.StatusNotFound)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, "Catalog item updated")
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Catalog item updated"})
}

// DeleteCatalogItemHandler removes a catalog item
func DeleteCatalogItemHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Delete Catalog Item API]")

	itemID, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid item ID", http.StatusBadRequest)
		return
	}

	collection := utils.GetCollection(config.DBName, "catalog_items")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := collection.DeleteOne(ctx, bson.M{"_id": itemID})
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Failed to delete catalog item", http.StatusInternalServerError)
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondError(w, &logMessageBuilder, "Catalog item not found", http.StatusNotFound)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, "Catalog item deleted")
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Catalog item deleted"})
}
