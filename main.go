package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/mkovacevic/boutique-tryon/api"
	"github.com/mkovacevic/boutique-tryon/config"
	"github.com/mkovacevic/boutique-tryon/tryon"
	"github.com/mkovacevic/boutique-tryon/utils"
)

func main() {
	config.LoadConfig()

	// Initialize MongoDB
	if err := utils.ConnectMongo(config.MongoURI); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	// Initialize S3
	if err := utils.InitS3(); err != nil {
		log.Fatalf("Failed to initialize S3: %v", err)
	}

	// Build the configured generation provider
	provider, err := buildProvider()
	if err != nil {
		// The rest of the store still works without try-on; the handler
		// answers 503 until the operator fixes the configuration.
		log.Printf("Try-on disabled: %v", err)
	} else {
		api.InitTryOn(provider, tryon.Options{
			PollInterval:    config.TryOnPollEvery,
			MaxPollAttempts: config.TryOnPollBudget,
		})
		log.Printf("Try-on provider: %s", provider.Name())
	}

	// CORS Middleware
	corsMiddleware := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Auth routes
	http.HandleFunc("/auth/signup", corsMiddleware(api.SignupHandler))
	http.HandleFunc("/auth/verify-otp", corsMiddleware(api.VerifyOTPHandler))
	http.HandleFunc("/auth/login", corsMiddleware(api.LoginHandler))
	http.HandleFunc("/auth/forgot-password", corsMiddleware(api.ForgotPasswordHandler))
	http.HandleFunc("/auth/reset-password", corsMiddleware(api.ResetPasswordHandler))
	http.HandleFunc("/auth/google/login", corsMiddleware(api.GoogleLoginHandler))
	http.HandleFunc("/auth/google/callback", corsMiddleware(api.GoogleCallbackHandler))

	// Catalog: public browsing, admin editing
	http.HandleFunc("GET /catalog", corsMiddleware(api.ListCatalogHandler))
	http.HandleFunc("POST /admin/catalog", corsMiddleware(api.AdminMiddleware(api.CreateCatalogItemHandler)))
	http.HandleFunc("PUT /admin/catalog/{id}", corsMiddleware(api.AdminMiddleware(api.UpdateCatalogItemHandler)))
	http.HandleFunc("DELETE /admin/catalog/{id}", corsMiddleware(api.AdminMiddleware(api.DeleteCatalogItemHandler)))
	http.HandleFunc("POST /admin/catalog/import", corsMiddleware(api.AdminMiddleware(api.ImportCatalogItemHandler)))

	// Try-on, gallery, profile, feedback (all authenticated)
	http.HandleFunc("/try-on", corsMiddleware(api.AuthMiddleware(api.TryOnHandler)))
	http.HandleFunc("/gallery", corsMiddleware(api.AuthMiddleware(api.GalleryHandler)))
	http.HandleFunc("/profile", corsMiddleware(api.AuthMiddleware(api.ProfileHandler)))
	http.HandleFunc("/feedback", corsMiddleware(api.AuthMiddleware(api.FeedbackHandler)))

	port := config.Port
	fmt.Printf("Server starting on port %s...\n", port)
	if err := http.ListenAndServe(":"+port, utils.LatencyMiddleware(http.DefaultServeMux)); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func buildProvider() (tryon.Provider, error) {
	switch config.TryOnProvider {
	case "gemini":
		return tryon.NewGeminiProvider(context.Background(), config.GeminiAPIKey)
	default:
		return tryon.NewKieProvider(config.KieAPIKey, config.KieAPIBase, nil)
	}
}
