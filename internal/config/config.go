package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Backend selectors.
const (
	GatewaySupabase = "supabase"
	GatewayMemory   = "memory"

	FavoritesSupabase = "supabase"
	FavoritesMongoDB  = "mongodb"

	ImageStoreSupabase   = "supabase"
	ImageStoreCloudinary = "cloudinary"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	Port              string
	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
	StorageBucket     string
	Gateway           string
	FavoritesBackend  string
	MongoDBURI        string
	MongoDBPassword   string
	MongoDBName       string
	ImageStore        string
	CloudinaryName    string
	CloudinaryKey     string
	CloudinarySecret  string
	CloudinaryFolder  string
	CacheBackend      string
	RedisAddr         string
	RedisPassword     string
	RedisPrefix       string
	AllowedOrigins    []string
	Environment       string
	LogLevel          string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "8080"),
		SupabaseURL:       strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseAnonKey:   os.Getenv("SUPABASE_URL_ANON_KEY"),
		SupabaseJWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),
		StorageBucket:     getEnvWithDefault("STORAGE_BUCKET", "property-images"),
		Gateway:           strings.ToLower(getEnvWithDefault("GATEWAY", GatewaySupabase)),
		FavoritesBackend:  strings.ToLower(getEnvWithDefault("FAVORITES_BACKEND", FavoritesSupabase)),
		MongoDBURI:        os.Getenv("MONGODB_URI"),
		MongoDBPassword:   os.Getenv("MONGODB_PASSWORD"),
		MongoDBName:       getEnvWithDefault("MONGODB_DB", "estately"),
		ImageStore:        strings.ToLower(getEnvWithDefault("IMAGE_STORE", ImageStoreSupabase)),
		CloudinaryName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryKey:     os.Getenv("CLOUDINARY_API_KEY"),
		CloudinarySecret:  os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:  getEnvWithDefault("CLOUDINARY_FOLDER", "estately/properties"),
		CacheBackend:      strings.ToLower(getEnvWithDefault("CACHE_BACKEND", CacheMemory)),
		RedisAddr:         getEnvWithDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisPrefix:       getEnvWithDefault("REDIS_PREFIX", "estately:cache"),
		AllowedOrigins:    splitList(getEnvWithDefault("ALLOWED_ORIGINS", "http://localhost:3000")),
		Environment:       getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.Gateway {
	case GatewaySupabase:
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required")
		}
		if c.SupabaseAnonKey == "" {
			return fmt.Errorf("SUPABASE_URL_ANON_KEY is required")
		}
	case GatewayMemory:
		if c.SupabaseJWTSecret == "" {
			return fmt.Errorf("SUPABASE_JWT_SECRET is required to sign tokens with the memory gateway")
		}
		if c.FavoritesBackend != FavoritesSupabase || c.ImageStore != ImageStoreSupabase {
			return fmt.Errorf("the memory gateway keeps favourites and images in process; unset FAVORITES_BACKEND and IMAGE_STORE")
		}
	default:
		return fmt.Errorf("unsupported GATEWAY %q", c.Gateway)
	}

	switch c.FavoritesBackend {
	case FavoritesSupabase:
	case FavoritesMongoDB:
		if c.MongoDBURI == "" {
			return fmt.Errorf("MONGODB_URI is required")
		}
		if strings.Contains(c.MongoDBURI, "<password>") && c.MongoDBPassword == "" {
			return fmt.Errorf("MONGODB_PASSWORD is required")
		}
	default:
		return fmt.Errorf("unsupported FAVORITES_BACKEND %q", c.FavoritesBackend)
	}

	switch c.ImageStore {
	case ImageStoreSupabase:
	case ImageStoreCloudinary:
		if c.CloudinaryName == "" || c.CloudinaryKey == "" || c.CloudinarySecret == "" {
			return fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required")
		}
	default:
		return fmt.Errorf("unsupported IMAGE_STORE %q", c.ImageStore)
	}

	switch c.CacheBackend {
	case CacheMemory:
	case CacheRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required")
		}
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND %q", c.CacheBackend)
	}

	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_ORIGINS must list at least one origin")
	}
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
