package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Environment struct {
	// Server configs
	IsDocker          bool
	Port              string
	Environment       string
	CorsAllowedOrigin string
	LogLevel          string

	// Auth configs
	JWTSecret                 string
	JWTExpirationMilliseconds int
	AdminUsername             string
	AdminPassword             string

	// Database configs
	MongoURI          string
	MongoDatabaseName string

	// Redis configs
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string

	// LLM configs
	LLMProvider    string
	LLMModel       string
	LLMTemperature float64
	GeminiAPIKey   string
	GroqAPIKey     string
	GroqBaseURL    string
	OllamaBaseURL  string

	// Recommendation configs
	RecommendationTimeoutSeconds int
	CacheTTLSeconds              int
	GenAIRateLimitMax            int
	GenAIRateLimitWindowSeconds  int
}

var Env Environment

// LoadEnv loads environment variables from .env file if present
// and validates required variables
func LoadEnv() error {
	// Check if running in Docker
	Env.IsDocker = os.Getenv("IS_DOCKER") == "true"

	// Load .env file only if not running in Docker
	if !Env.IsDocker {
		if err := godotenv.Load(); err != nil {
			Logger.Warnf("Warning: .env file not found: %v", err)
		}
	}

	// Server configs
	Env.Port = getEnvWithDefault("PORT", "5000")
	Env.Environment = getEnvWithDefault("ENVIRONMENT", "DEVELOPMENT")
	Env.CorsAllowedOrigin = getEnvWithDefault("CORS_ALLOWED_ORIGIN", "http://localhost:5173")
	Env.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")

	// Auth configs
	Env.JWTSecret = getEnvWithDefault("JWT_SECRET", "aneka_keramik_jwt_secret")
	Env.JWTExpirationMilliseconds = getIntEnvWithDefault("JWT_EXPIRATION_MILLISECONDS", 1000*60*60*24) // 1 day default
	Env.AdminUsername = getEnvWithDefault("ADMIN_USERNAME", "admin")
	Env.AdminPassword = getEnvWithDefault("ADMIN_PASSWORD", "")

	// Database configs
	Env.MongoURI = getEnvWithDefault("MONGODB_URI", "mongodb://localhost:27017/aneka_keramik")
	Env.MongoDatabaseName = getEnvWithDefault("MONGODB_DB_NAME", "aneka_keramik")
	Env.RedisHost = getEnvWithDefault("REDIS_HOST", "localhost")
	Env.RedisPort = getEnvWithDefault("REDIS_PORT", "6379")
	Env.RedisUsername = getEnvWithDefault("REDIS_USERNAME", "")
	Env.RedisPassword = getEnvWithDefault("REDIS_PASSWORD", "")

	// LLM configs
	Env.LLMProvider = strings.ToLower(getEnvWithDefault("LLM_PROVIDER", "gemini"))
	Env.LLMModel = getEnvWithDefault("LLM_MODEL", "")
	Env.LLMTemperature = getFloatEnvWithDefault("LLM_TEMPERATURE", 0.7)
	Env.GeminiAPIKey = getEnvWithDefault("GEMINI_API_KEY", "")
	Env.GroqAPIKey = getEnvWithDefault("GROQ_API_KEY", "")
	Env.GroqBaseURL = getEnvWithDefault("GROQ_BASE_URL", "")
	Env.OllamaBaseURL = getEnvWithDefault("OLLAMA_BASE_URL", "http://localhost:11434")

	// Recommendation configs
	Env.RecommendationTimeoutSeconds = getIntEnvWithDefault("RECOMMENDATION_TIMEOUT_SECONDS", 60)
	Env.CacheTTLSeconds = getIntEnvWithDefault("CACHE_TTL_SECONDS", 3600)
	Env.GenAIRateLimitMax = getIntEnvWithDefault("GENAI_RATE_LIMIT_MAX", 10)
	Env.GenAIRateLimitWindowSeconds = getIntEnvWithDefault("GENAI_RATE_LIMIT_WINDOW_SECONDS", 15*60)

	if err := validateConfig(); err != nil {
		return err
	}
	return ConfigureLogger(Env.LogLevel)
}

// Helper functions to get environment variables with defaults and validation
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvWithDefault(key string, defaultValue int) int {
	strValue := os.Getenv(key)
	if strValue == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(strValue)
	if err != nil {
		Logger.Warnf("Warning: Invalid value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getFloatEnvWithDefault(key string, defaultValue float64) float64 {
	strValue := os.Getenv(key)
	if strValue == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		Logger.Warnf("Warning: Invalid value for %s, using default: %v", key, defaultValue)
		return defaultValue
	}
	return value
}

func validateConfig() error {
	// Validate MongoDB URI format
	if !isValidURI(Env.MongoURI) {
		return fmt.Errorf("invalid MONGODB_URI format: %s", Env.MongoURI)
	}

	// Validate JWT expiration
	if Env.JWTExpirationMilliseconds <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_MILLISECONDS must be positive, got: %d", Env.JWTExpirationMilliseconds)
	}

	if Env.RecommendationTimeoutSeconds <= 0 {
		return fmt.Errorf("RECOMMENDATION_TIMEOUT_SECONDS must be positive, got: %d", Env.RecommendationTimeoutSeconds)
	}

	if Env.GenAIRateLimitMax <= 0 || Env.GenAIRateLimitWindowSeconds <= 0 {
		return fmt.Errorf("GENAI_RATE_LIMIT_MAX and GENAI_RATE_LIMIT_WINDOW_SECONDS must be positive")
	}

	if Env.LLMTemperature < 0 || Env.LLMTemperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got: %v", Env.LLMTemperature)
	}

	return nil
}

func isValidURI(uri string) bool {
	return strings.HasPrefix(uri, "mongodb://") || strings.HasPrefix(uri, "mongodb+srv://")
}
