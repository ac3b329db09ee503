package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mkovacevic/boutique-tryon/config"
	"github.com/mkovacevic/boutique-tryon/importer"
	"github.com/mkovacevic/boutique-tryon/models"
	"github.com/mkovacevic/boutique-tryon/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ImportCatalogItemHandler creates a catalog item from an external
// product page URL: the page's title/description/image are extracted and
// the image is copied into our bucket.
func ImportCatalogItemHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Import Catalog Item API]")

	var req struct {
		URL      string `json:"url"`
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		utils.RespondError(w, &logMessageBuilder, "Please provide a 'url' in the JSON body", http.StatusBadRequest)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, "Importing from: "+req.URL)

	page, err := importer.New().Fetch(req.URL)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Import failed: %v", err), http.StatusBadGateway)
		return
	}

	objectKey, err := utils.DownloadToS3(r.Context(), page.ImageURL, "catalog")
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Failed to store product image: %v", err), http.StatusInternalServerError)
		return
	}

	item := models.CatalogItem{
		ID:          primitive.NewObjectID(),
		ImageURL:    objectKey,
		Title:       page.Title,
		Description: page.Description,
		Category:    req.Category,
		SourceURL:   page.SourceURL,
		CreatedAt:   time.Now(),
	}

	collection := utils.GetCollection(config.DBName, "catalog_items")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.InsertOne(ctx, item); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Failed to save catalog item", http.StatusInternalServerError)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, "Imported: "+item.Title)
	item.ImageURL = utils.PresignImageURL(r.Context(), item.ImageURL)
	utils.RespondJSON(w, http.StatusCreated, item)
}
