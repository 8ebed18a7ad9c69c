package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	AppEnv       string
	IsProduction bool

	Port        string
	MongoURI    string
	MongoDBName string

	JWTSecret string

	GeminiAPIKey string
	GeminiModel  string

	// runtime tunables
	RateLimitWindowSeconds int
	RateLimitCapacity      int
)

// Load reads configuration from the environment, loading .env first outside
// production. Called once from main; tests set package vars directly.
func Load() {
	AppEnv = os.Getenv("APP_ENV")
	if AppEnv != "production" {
		// best-effort; a missing .env just means the host env is the source
		_ = godotenv.Load()
	}
	IsProduction = AppEnv == "production"

	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "5000"
	}

	MongoURI = os.Getenv("MONGODB_URI")
	if MongoURI == "" {
		MongoURI = "mongodb://localhost:27017"
	}
	MongoDBName = os.Getenv("MONGO_DB_NAME")
	if MongoDBName == "" {
		MongoDBName = "chatfree"
	}

	JWTSecret = os.Getenv("JWT_SECRET_KEY")
	if IsProduction && JWTSecret == "" {
		log.Fatal("JWT_SECRET_KEY must be set in production")
	}

	GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	GeminiModel = os.Getenv("GEMINI_MODEL")
	if GeminiModel == "" {
		GeminiModel = "gemini-1.5-flash"
	}

	RateLimitWindowSeconds = atoiOr(os.Getenv("RATE_LIMIT_WINDOW_SECONDS"), 10)
	RateLimitCapacity = atoiOr(os.Getenv("RATE_LIMIT_CAPACITY"), 5)

	log.Printf("[config] AppEnv=%s Port=%s", AppEnv, Port)
	log.Printf("[config] GeminiModel=%s GeminiAPIKeyPresent=%v", GeminiModel, GeminiAPIKey != "")
	log.Printf("[config] RateLimit window=%ds capacity=%d", RateLimitWindowSeconds, RateLimitCapacity)
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
