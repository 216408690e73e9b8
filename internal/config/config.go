package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	TablePrefix string

	// Persistence
	PersistenceBackend string // postgres, sqlite, memory
	DatabaseURL        string
	SQLitePath         string

	// Content store (artwork images)
	ContentBackend  string // s3, filesystem
	MediaDir        string
	MediaBaseURL    string
	S3Bucket        string
	S3Region        string
	S3Endpoint      string // Optional, for R2/MinIO
	S3PublicBaseURL string
	S3AccessKey     string
	S3SecretKey     string

	// Authentication
	AuthSecret         string
	UserEmail          string
	UserPassword       string
	SupabaseURL        string
	SupabaseJWKSURL    string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	SupabaseServiceKey string // Optional; lets cmd/seed provision the user in Supabase

	// Hierarchy policy
	CascadeDelete  bool
	RelinkArtworks bool

	// Logging
	LogDir      string
	LogMaxFiles int

	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	supabaseURL := getEnv("SUPABASE_URL", "")

	var jwksURL string
	if supabaseURL != "" {
		jwksURL = supabaseURL + "/auth/v1/.well-known/jwks.json"
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: tablePrefix,

		PersistenceBackend: getEnv("PERSISTENCE_BACKEND", "memory"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		SQLitePath:         getEnv("SQLITE_PATH", "gallery.db"),

		ContentBackend:  getEnv("CONTENT_BACKEND", "filesystem"),
		MediaDir:        getEnv("MEDIA_DIR", "./data/media"),
		MediaBaseURL:    getEnv("MEDIA_BASE_URL", "/media"),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Region:        getEnv("S3_REGION", "auto"),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),

		AuthSecret:         getEnv("AUTH_SECRET", "dev-secret-change-me"),
		UserEmail:          getEnv("GALLERY_USER_EMAIL", "artist@mock.com"),
		UserPassword:       getEnv("GALLERY_USER_PASSWORD", "password123"),
		SupabaseURL:        supabaseURL,
		SupabaseJWKSURL:    jwksURL,
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),

		CascadeDelete:  getEnv("CASCADE_DELETE", "false") == "true",
		RelinkArtworks: getEnv("RELINK_ARTWORKS", "false") == "true",

		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),

		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
