package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/joshua-takyi/estately/internal/config"
	"github.com/joshua-takyi/estately/internal/connect"
	"github.com/joshua-takyi/estately/internal/container"
	"github.com/joshua-takyi/estately/internal/helpers"
	"github.com/joshua-takyi/estately/internal/routes"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	logger.Info("Starting Estately API server",
		"environment", cfg.Environment,
		"gateway", cfg.Gateway,
		"favorites", cfg.FavoritesBackend,
		"images", cfg.ImageStore,
		"cache", cfg.CacheBackend,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	clients, err := connectClients(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to connect backends", "error", err)
		os.Exit(1)
	}

	var validator *helpers.TokenValidator
	if cfg.Gateway == config.GatewayMemory {
		validator = helpers.NewSecretValidator(cfg.SupabaseJWTSecret)
	} else {
		validator, err = helpers.NewTokenValidator(ctx, cfg.SupabaseURL, cfg.SupabaseJWTSecret, logger)
		if err != nil {
			logger.Error("Failed to set up token validation", "error", err)
			os.Exit(1)
		}
	}
	defer validator.Close()

	appContainer := container.NewContainer(cfg, logger, clients, validator)
	router := routes.SetupRoutes(appContainer)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if err := connect.MongoDBDisconnect(clients.MongoDB); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}
	if clients.Redis != nil {
		if err := clients.Redis.Close(); err != nil {
			logger.Error("Error closing Redis", "error", err)
		}
	}

	logger.Info("Server exited")
}

// connectClients opens only the backends the config selects.
func connectClients(ctx context.Context, cfg *config.Config, logger *slog.Logger) (container.Clients, error) {
	var clients container.Clients
	var err error

	if cfg.Gateway == config.GatewaySupabase {
		clients.Supabase, err = connect.InitSupabase(cfg)
		if err != nil {
			return clients, err
		}
		logger.Info("Connected to Supabase successfully")
	}

	if cfg.FavoritesBackend == config.FavoritesMongoDB {
		clients.MongoDB, err = connect.MongoDBConnect(ctx, cfg)
		if err != nil {
			return clients, err
		}
		logger.Info("Connected to MongoDB successfully")
	}

	if cfg.ImageStore == config.ImageStoreCloudinary {
		clients.Cloudinary, err = connect.CloudinaryCredentials(cfg)
		if err != nil {
			return clients, err
		}
		logger.Info("Cloudinary configured successfully")
	}

	if cfg.CacheBackend == config.CacheRedis {
		clients.Redis, err = connect.RedisConnect(ctx, cfg)
		if err != nil {
			return clients, err
		}
		logger.Info("Connected to Redis successfully", "addr", cfg.RedisAddr)
	}

	return clients, nil
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.SlogLevel(),
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.SlogLevel(),
		})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
