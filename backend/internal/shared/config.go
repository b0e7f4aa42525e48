// ============================================================================
// backend/internal/shared/config.go
// Configuration management and environment variable helpers
// ============================================================================

package shared

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ============================================================================
// Configuration Structs
// ============================================================================

// Config holds everything the mark list service needs at startup.
// It is built once by LoadConfig and passed by reference to constructors.
type Config struct {
	Environment string // development, staging, production

	// Subjects is the ordered list of mark fields every record carries
	Subjects []string

	// StoreDriver selects the record store: mongo, sqlite or postgres
	StoreDriver  string
	QueryTimeout time.Duration

	MongoDB  MongoConfig
	SQL      SQLConfig
	HTTP     HTTPConfig
	CORS     CORSConfig
	Feedback FeedbackConfig
	Security SecurityConfig
}

// SQLConfig holds the GORM-backed store configuration
type SQLConfig struct {
	DSN string
}

// HTTPConfig holds the HTTP listener configuration
type HTTPConfig struct {
	Port            string
	StaticDir       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int // in seconds
}

// FeedbackConfig holds the generative-language API configuration
type FeedbackConfig struct {
	APIKey   string
	Endpoint string
	Model    string
	Timeout  time.Duration
}

// SecurityConfig holds the optional write-protection settings.
// An empty TokenSecret leaves the write routes open.
type SecurityConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
}

// ============================================================================
// Defaults
// ============================================================================

const (
	DefaultHTTPPort         = "5000"
	DefaultStoreDriver      = "mongo"
	DefaultMongoDatabase    = "marklist"
	DefaultSQLiteDSN        = "marklist.db"
	DefaultStaticDir        = "frontend"
	DefaultFeedbackEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultFeedbackModel    = "gemini-2.0-flash"

	StoreDriverMongo    = "mongo"
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
)

// DefaultSubjects is the named-subject layout used by the current frontend.
var DefaultSubjects = []string{"tamil", "english", "maths", "science", "social"}

// reservedFields are JSON keys a subject name may not shadow
var reservedFields = map[string]bool{
	"_id":            true,
	"studentName":    true,
	"registerNumber": true,
	"createdAt":      true,
	"updatedAt":      true,
	"total":          true,
	"average":        true,
	"grade":          true,
}

// ============================================================================
// Configuration Loading Functions
// ============================================================================

// LoadEnv loads environment variables from .env file
func LoadEnv(envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}

	if err := godotenv.Load(envFile); err != nil {
		log.Printf("WARN: %s file not found, using system environment variables", envFile)
		return err
	}

	log.Printf("INFO: Successfully loaded environment from %s", envFile)
	return nil
}

// LoadConfig reads the service configuration from the environment.
// It does not validate; callers pick the validation that matches their needs.
func LoadConfig() *Config {
	config := &Config{
		Environment:  GetEnv("ENVIRONMENT", "development"),
		Subjects:     GetStringSliceEnv("SUBJECTS", DefaultSubjects),
		StoreDriver:  strings.ToLower(GetEnv("STORE_DRIVER", DefaultStoreDriver)),
		QueryTimeout: GetDurationEnv("STORE_QUERY_TIMEOUT", 10*time.Second),
	}

	// No fallback URI: a missing MONGO_URI is reported by ValidateConfig
	config.MongoDB = MongoConfig{
		URI:            GetEnv("MONGO_URI", ""),
		Database:       GetEnv("MONGO_DB_NAME", DefaultMongoDatabase),
		ConnectTimeout: GetDurationEnv("MONGO_CONNECT_TIMEOUT", 20*time.Second),
		MaxPoolSize:    uint64(GetIntEnv("MONGO_MAX_POOL_SIZE", 50)),
		MinPoolSize:    uint64(GetIntEnv("MONGO_MIN_POOL_SIZE", 5)),
		MaxIdleTime:    GetDurationEnv("MONGO_MAX_IDLE_TIME", 30*time.Second),
	}

	config.SQL = SQLConfig{
		DSN: GetEnv("SQL_DSN", ""),
	}
	if config.SQL.DSN == "" && config.StoreDriver == StoreDriverSQLite {
		config.SQL.DSN = DefaultSQLiteDSN
	}

	config.HTTP = HTTPConfig{
		Port:            GetEnv("PORT", DefaultHTTPPort),
		StaticDir:       GetEnv("STATIC_DIR", DefaultStaticDir),
		ReadTimeout:     GetDurationEnv("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    GetDurationEnv("HTTP_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:     GetDurationEnv("HTTP_IDLE_TIMEOUT", 60*time.Second),
		RequestTimeout:  GetDurationEnv("HTTP_REQUEST_TIMEOUT", 60*time.Second),
		ShutdownTimeout: GetDurationEnv("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	config.CORS = CORSConfig{
		AllowedOrigins:   GetStringSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		AllowedMethods:   GetStringSliceEnv("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders:   GetStringSliceEnv("CORS_ALLOWED_HEADERS", []string{"Accept", "Authorization", "Content-Type"}),
		AllowCredentials: GetBoolEnv("CORS_ALLOW_CREDENTIALS", false),
		MaxAge:           GetIntEnv("CORS_MAX_AGE", 300),
	}

	config.Feedback = FeedbackConfig{
		APIKey:   GetEnv("GEMINI_API_KEY", ""),
		Endpoint: strings.TrimRight(GetEnv("FEEDBACK_ENDPOINT", DefaultFeedbackEndpoint), "/"),
		Model:    GetEnv("FEEDBACK_MODEL", DefaultFeedbackModel),
		Timeout:  GetDurationEnv("FEEDBACK_TIMEOUT", 30*time.Second),
	}

	config.Security = SecurityConfig{
		TokenSecret: GetEnv("API_TOKEN_SECRET", ""),
		TokenTTL:    GetDurationEnv("API_TOKEN_TTL", 24*time.Hour),
	}

	return config
}

// ============================================================================
// Environment Variable Helper Functions
// ============================================================================

// GetEnv retrieves an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetIntEnv retrieves an integer environment variable or returns a default value
func GetIntEnv(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("WARN: Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// GetBoolEnv retrieves a boolean environment variable or returns a default value
func GetBoolEnv(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("WARN: Invalid boolean value for %s: %s, using default: %t", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// GetDurationEnv retrieves a duration environment variable or returns a default value
// Supports format like "30s", "5m", "1h"
func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("WARN: Invalid duration value for %s: %s, using default: %v", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// GetStringSliceEnv retrieves a comma-separated string list or returns a default value
func GetStringSliceEnv(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var result []string
	for _, part := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}

// ============================================================================
// Configuration Validation
// ============================================================================

// ValidateConfig checks the settings every command needs: subjects and store.
func ValidateConfig(config *Config) error {
	if err := ValidateSubjects(config.Subjects); err != nil {
		return err
	}

	switch config.StoreDriver {
	case StoreDriverMongo:
		if config.MongoDB.URI == "" {
			return fmt.Errorf("MONGO_URI environment variable is required")
		}
		if config.MongoDB.Database == "" {
			return fmt.Errorf("MongoDB database name is required")
		}
	case StoreDriverSQLite, StoreDriverPostgres:
		if config.SQL.DSN == "" {
			return fmt.Errorf("SQL_DSN environment variable is required for the %s store", config.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want mongo, sqlite or postgres)", config.StoreDriver)
	}

	if config.QueryTimeout <= 0 {
		return fmt.Errorf("STORE_QUERY_TIMEOUT must be positive")
	}

	return nil
}

// ValidateServeConfig checks what the HTTP server needs on top of ValidateConfig.
func ValidateServeConfig(config *Config) error {
	if err := ValidateConfig(config); err != nil {
		return err
	}

	if config.HTTP.Port == "" {
		return fmt.Errorf("HTTP port is required")
	}

	if config.Feedback.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	if config.Feedback.Endpoint == "" || config.Feedback.Model == "" {
		return fmt.Errorf("feedback endpoint and model are required")
	}

	return nil
}

// ValidateSubjects requires a non-empty list of unique subject names that
// do not collide with the record's own JSON fields.
func ValidateSubjects(subjects []string) error {
	if len(subjects) == 0 {
		return fmt.Errorf("at least one subject is required")
	}

	seen := make(map[string]bool, len(subjects))
	for _, subject := range subjects {
		if subject == "" {
			return fmt.Errorf("subject names cannot be empty")
		}
		if reservedFields[subject] {
			return fmt.Errorf("subject name %q is reserved", subject)
		}
		if seen[subject] {
			return fmt.Errorf("duplicate subject %q", subject)
		}
		seen[subject] = true
	}

	return nil
}

// ============================================================================
// Configuration Display (for debugging)
// ============================================================================

// PrintConfig prints configuration (sanitized) for debugging
func PrintConfig(config *Config) {
	log.Println("=== Service Configuration ===")
	log.Printf("Environment: %s", config.Environment)
	log.Printf("Subjects: %v", config.Subjects)
	log.Printf("Store Driver: %s", config.StoreDriver)
	log.Printf("Query Timeout: %v", config.QueryTimeout)
	log.Println("=== Store Configuration ===")
	if config.StoreDriver == StoreDriverMongo {
		log.Printf("Database: %s", config.MongoDB.Database)
		log.Printf("Max Pool Size: %d", config.MongoDB.MaxPoolSize)
		log.Printf("Min Pool Size: %d", config.MongoDB.MinPoolSize)
	} else {
		log.Printf("SQL DSN set: %t", config.SQL.DSN != "")
	}
	log.Println("=== HTTP Configuration ===")
	log.Printf("Port: %s", config.HTTP.Port)
	log.Printf("Static Dir: %s", config.HTTP.StaticDir)
	log.Printf("Allowed Origins: %v", config.CORS.AllowedOrigins)
	log.Println("=== Feedback Configuration ===")
	log.Printf("Endpoint: %s", config.Feedback.Endpoint)
	log.Printf("Model: %s", config.Feedback.Model)
	log.Printf("Timeout: %v", config.Feedback.Timeout)
	log.Println("=== Security Configuration ===")
	log.Printf("Write Protection: %t", config.Security.TokenSecret != "")
	log.Println("=============================")
}

// IsDevelopment checks if running in development environment
func IsDevelopment(config *Config) bool {
	return config.Environment == "development"
}
