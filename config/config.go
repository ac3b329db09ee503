package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const DBName = "boutique"

var (
	MongoURI           string
	Port               string
	JWTSecret          string
	AdminEmail         string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	AWSRegion          string
	AWSBucketName      string

	// Try-on provider selection and poll tuning
	TryOnProvider   string // "kie" or "gemini"
	KieAPIKey       string
	KieAPIBase      string
	GeminiAPIKey    string
	TryOnPollEvery  time.Duration
	TryOnPollBudget int
)

// LoadConfig loads environment variables from .env file
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	MongoURI = os.Getenv("MONGO_URI")
	if MongoURI == "" {
		MongoURI = "mongodb://localhost:27017/"
	}

	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "8080"
	}

	JWTSecret = os.Getenv("JWT_SECRET")
	AdminEmail = os.Getenv("ADMIN_EMAIL")

	GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	GoogleRedirectURL = os.Getenv("GOOGLE_REDIRECT_URL")
	if GoogleRedirectURL == "" {
		GoogleRedirectURL = "http://localhost:8080/auth/google/callback"
	}

	AWSRegion = os.Getenv("AWS_REGION")
	if AWSRegion == "" {
		AWSRegion = "eu-central-1"
	}
	AWSBucketName = os.Getenv("AWS_BUCKET_NAME")

	TryOnProvider = os.Getenv("TRYON_PROVIDER")
	if TryOnProvider == "" {
		TryOnProvider = "kie"
	}
	KieAPIKey = os.Getenv("KIE_API_KEY")
	KieAPIBase = os.Getenv("KIE_API_BASE")
	GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	TryOnPollEvery = 2 * time.Second
	if ms := os.Getenv("TRYON_POLL_INTERVAL_MS"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 {
			TryOnPollEvery = time.Duration(v) * time.Millisecond
		}
	}

	TryOnPollBudget = 60
	if n := os.Getenv("TRYON_POLL_MAX_ATTEMPTS"); n != "" {
		if v, err := strconv.Atoi(n); err == nil && v > 0 {
			TryOnPollBudget = v
		}
	}
}
