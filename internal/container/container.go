package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joshua-takyi/estately/internal/cache"
	"github.com/joshua-takyi/estately/internal/config"
	"github.com/joshua-takyi/estately/internal/helpers"
	"github.com/joshua-takyi/estately/internal/models"
	"github.com/joshua-takyi/estately/internal/services"
	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Clients are the connected backends. Only those selected in the config need
// to be set.
type Clients struct {
	Supabase   *supabase.Client
	MongoDB    *mongo.Client
	Cloudinary *cloudinary.Cloudinary
	Redis      *redis.Client
}

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *slog.Logger
	Clients        Clients
	Cache          *cache.Coordinator
	TokenValidator *helpers.TokenValidator
	// Memory is set when the in-process gateway is selected.
	Memory            *models.MemoryRepo
	UserService       *services.UserService
	PropertyService   *services.PropertyService
	FavouritesService *services.FavouriteService
}

type gateway struct {
	properties models.PropertyRepo
	images     models.ImageRepo
	favourites models.FavoriteRepo
	profiles   models.ProfileRepo
	roles      models.RoleRepo
	objects    models.ObjectStore
	auth       models.AuthRepo
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, logger *slog.Logger, clients Clients, validator *helpers.TokenValidator) *Container {
	c := &Container{
		Config:         cfg,
		Logger:         logger,
		Clients:        clients,
		TokenValidator: validator,
	}

	var gw gateway
	switch cfg.Gateway {
	case config.GatewayMemory:
		mem := models.NewMemoryRepo("")
		c.Memory = mem
		gw = gateway{
			properties: mem,
			images:     mem,
			favourites: mem,
			profiles:   mem,
			roles:      mem,
			objects:    mem,
			auth:       models.NewMemoryAuth(mem, cfg.SupabaseJWTSecret),
		}
	default:
		supa := models.SupabaseNewRepo(clients.Supabase, cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.StorageBucket)
		gw = gateway{
			properties: supa,
			images:     supa,
			favourites: supa,
			profiles:   supa,
			roles:      supa,
			objects:    supa,
			auth:       supa,
		}
		if cfg.FavoritesBackend == config.FavoritesMongoDB {
			gw.favourites = models.MongodbNewRepo(clients.MongoDB, cfg.MongoDBName)
		}
		if cfg.ImageStore == config.ImageStoreCloudinary {
			gw.objects = models.NewCloudinaryStore(clients.Cloudinary, cfg.CloudinaryFolder)
		}
	}

	var store cache.Store = cache.NewMemoryStore()
	if cfg.CacheBackend == config.CacheRedis && clients.Redis != nil {
		store = cache.NewRedisStore(clients.Redis, cfg.RedisPrefix)
	}
	c.Cache = cache.NewCoordinator(store, logger)

	c.UserService = services.NewUserService(gw.auth, gw.profiles, gw.roles, c.Cache, logger)
	c.PropertyService = services.NewPropertyService(gw.properties, gw.images, gw.profiles, gw.objects, c.Cache, logger)
	c.FavouritesService = services.NewFavouriteService(gw.favourites, gw.properties, c.Cache, logger)

	return c
}
