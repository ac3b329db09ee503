package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mkovacevic/boutique-tryon/config"
	"github.com/mkovacevic/boutique-tryon/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileHandler serves and updates the authenticated user's profile
func ProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, nil, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := findUserByID(r.Context(), userID)
		if err != nil {
			utils.RespondError(w, nil, "User not found", http.StatusNotFound)
			return
		}
		utils.RespondJSON(w, http.StatusOK, user)

	case http.MethodPut:
		var req struct {
			Name            *string `json:"name"`
			InstagramHandle *string `json:"instagram_handle"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, nil, "Invalid request body", http.StatusBadRequest)
			return
		}

		set := bson.M{"updated_at": time.Now()}
		if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
			set["name"] = strings.TrimSpace(*req.Name)
		}
		if req.InstagramHandle != nil {
			set["instagram_handle"] = strings.TrimSpace(*req.InstagramHandle)
		}

		objID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			utils.RespondError(w, nil, "Invalid user ID", http.StatusBadRequest)
			return
		}

		collection := utils.GetCollection(config.DBName, "users")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if _, err := collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set}); err != nil {
			utils.RespondError(w, nil, "Failed to update profile", http.StatusInternalServerError)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Profile updated"})

	default:
		utils.RespondError(w, nil, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
