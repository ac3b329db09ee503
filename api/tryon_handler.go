package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mkovacevic/boutique-tryon/config"
	"github.com/mkovacevic/boutique-tryon/models"
	"github.com/mkovacevic/boutique-tryon/tryon"
	"github.com/mkovacevic/boutique-tryon/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// pipeline is the configured try-on orchestrator; set from main at startup.
var pipeline *tryon.Orchestrator

// InitTryOn wires the orchestrator the handler runs requests through.
func InitTryOn(provider tryon.Provider, opts tryon.Options) {
	pipeline = tryon.NewOrchestrator(provider, s3ObjectStore{}, mongoRecordStore{}, opts)
}

// s3ObjectStore adapts the S3 helpers to the pipeline's ObjectStore:
// uploads a blob and hands back a presigned URL the provider can fetch.
type s3ObjectStore struct{}

func (s3ObjectStore) Upload(ctx context.Context, data []byte, contentType, path string) (string, error) {
	key, err := utils.UploadFileToS3(ctx, bytes.NewReader(data), path, contentType)
	if err != nil {
		return "", err
	}
	return utils.GetPresignedURL(ctx, key)
}

// mongoRecordStore adapts the tryon_results collection to the pipeline's
// RecordStore.
type mongoRecordStore struct{}

func (mongoRecordStore) Insert(ctx context.Context, rec tryon.Record) error {
	doc := models.TryOnResult{
		ID:             primitive.NewObjectID(),
		UserID:         rec.UserID,
		SourceImageRef: rec.SourceImageRef,
		GarmentItemID:  rec.GarmentItemID,
		ResultImageRef: rec.ResultImageRef,
		CreatedAt:      time.Now(),
	}
	collection := utils.GetCollection(config.DBName, "tryon_results")
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := collection.InsertOne(ctx, doc)
	return err
}

// TryOnHandler handles the virtual try-on request
func TryOnHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Virtual Try-On API]")

	if r.Method != http.MethodPost {
		utils.RespondError(w, &logMessageBuilder, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if pipeline == nil {
		utils.RespondError(w, &logMessageBuilder, "Try-on is not available right now", http.StatusServiceUnavailable)
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Unauthorized", http.StatusUnauthorized)
		return
	}

	photo, itemID, err := parseTryOnRequest(r)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusBadRequest)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Try-On Request: UserID=%s, ItemID=%s", userID, itemID))

	itemObjID, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid item ID", http.StatusBadRequest)
		return
	}

	collection := utils.GetCollection(config.DBName, "catalog_items")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var item models.CatalogItem
	if err := collection.FindOne(ctx, bson.M{"_id": itemObjID}).Decode(&item); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Catalog item not found", http.StatusNotFound)
		return
	}

	// The provider must be able to fetch the garment image, so presign
	// the stored key.
	garment := tryon.Garment{
		ID:       item.ID.Hex(),
		ImageURL: utils.PresignImageURL(r.Context(), item.ImageURL),
	}

	// Use a background context with a generous timeout for the
	// generation itself; it can poll for up to two minutes.
	genCtx, cancelGen := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancelGen()

	result, err := pipeline.Run(genCtx, tryon.Identity{UserID: userID}, photo, garment)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Try-on pipeline failed: %v", err))
		respondTryOnError(w, err)
		return
	}

	displayURL, err := displayableResult(r.Context(), result)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Failed to store generated image: %v", err))
		// Still return the raw reference; the client can render a data URI.
		displayURL = result.String()
	}

	utils.AddToLogMessage(&logMessageBuilder, "Try-on generated successfully")
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"result":  displayURL,
		"item_id": itemID,
	})
}

// parseTryOnRequest accepts either a multipart upload ("photo" file +
// "item_id" field) or a JSON body with a data-URI photo.
func parseTryOnRequest(r *http.Request) (tryon.ImageRef, string, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			return tryon.ImageRef{}, "", fmt.Errorf("error parsing form data")
		}
		itemID := r.FormValue("item_id")
		if itemID == "" {
			return tryon.ImageRef{}, "", fmt.Errorf("item_id is required")
		}
		file, header, err := r.FormFile("photo")
		if err != nil {
			return tryon.ImageRef{}, "", fmt.Errorf("photo is required")
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil || len(data) == 0 {
			return tryon.ImageRef{}, "", fmt.Errorf("photo could not be read")
		}
		return tryon.InlineImage(data, header.Header.Get("Content-Type")), itemID, nil
	}

	var req struct {
		Photo  string `json:"photo"`
		ItemID string `json:"item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return tryon.ImageRef{}, "", fmt.Errorf("invalid request body")
	}
	if req.ItemID == "" {
		return tryon.ImageRef{}, "", fmt.Errorf("item_id is required")
	}
	if req.Photo == "" {
		return tryon.ImageRef{}, "", fmt.Errorf("photo is required")
	}
	ref, err := tryon.ParseImageRef(req.Photo)
	if err != nil {
		return tryon.ImageRef{}, "", fmt.Errorf("photo: %v", err)
	}
	return ref, req.ItemID, nil
}

// displayableResult returns something the client can render: remote URLs
// pass through; inline results are parked in S3 and presigned.
func displayableResult(ctx context.Context, result tryon.ImageRef) (string, error) {
	if result.IsURL() {
		return result.URL, nil
	}
	objectKey := fmt.Sprintf("generated_images/generated_tryon_%d.jpg", time.Now().UnixNano())
	if _, err := utils.UploadFileToS3(ctx, bytes.NewReader(result.Data), objectKey, result.MIME); err != nil {
		return "", err
	}
	return utils.GetPresignedURL(ctx, objectKey)
}

// respondTryOnError maps the pipeline's error taxonomy to HTTP codes.
func respondTryOnError(w http.ResponseWriter, err error) {
	var (
		inputErr   *tryon.InputError
		cfgErr     *tryon.ConfigError
		timeoutErr *tryon.TimeoutError
		provErr    *tryon.ProviderError
	)
	switch {
	case errors.As(err, &inputErr):
		utils.RespondError(w, nil, inputErr.Error(), http.StatusBadRequest)
	case errors.As(err, &cfgErr):
		utils.RespondError(w, nil, "Try-on is not configured on this server", http.StatusServiceUnavailable)
	case errors.As(err, &timeoutErr):
		utils.RespondError(w, nil, "Generation took too long. Please try again.", http.StatusGatewayTimeout)
	case tryon.IsQuotaError(err):
		utils.RespondError(w, nil, "Quota exceeded. Please try again later.", http.StatusTooManyRequests)
	case errors.As(err, &provErr):
		utils.RespondError(w, nil, "Failed to generate try-on image. Please try again.", http.StatusBadGateway)
	default:
		utils.RespondError(w, nil, "Failed to generate try-on image: "+err.Error(), http.StatusInternalServerError)
	}
}
