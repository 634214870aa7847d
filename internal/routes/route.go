package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/estately/internal/container"
	"github.com/joshua-takyi/estately/internal/handlers"
	"github.com/joshua-takyi/estately/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     container.Config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	secure := container.Config.IsProduction()

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "estately-api",
			})
		})

		// public routes
		v1.POST("/signup", handlers.SignUp(container.UserService))
		v1.POST("/login", handlers.SignIn(container.UserService, secure))
		v1.POST("/refresh", handlers.Refresh(container.UserService, secure))
		v1.POST("/logout", handlers.Logout(secure))

		v1.GET("/properties", handlers.ListProperties(container.PropertyService))
		v1.GET("/properties/:id", handlers.GetProperty(container.PropertyService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.TokenValidator, container.UserService, secure, container.Logger))
	{
		protected.GET("/profile", handlers.Profile())
		protected.GET("/me/properties", handlers.ListMyProperties(container.PropertyService))

		protected.PATCH("/properties/:id", handlers.UpdateProperty(container.PropertyService))
		protected.DELETE("/properties/:id", handlers.DeleteProperty(container.PropertyService))
		protected.POST("/properties/:id/images", handlers.AddPropertyImages(container.PropertyService))
		protected.DELETE("/properties/:id/images/:imageId", handlers.DeletePropertyImage(container.PropertyService))
	}

	sellerRoutes := protected.Group("/")
	sellerRoutes.Use(middleware.RequireSeller())
	{
		sellerRoutes.POST("/properties", handlers.CreateProperty(container.PropertyService))
	}

	favouriteRoutes := protected.Group("/favorites")
	{
		favouriteRoutes.GET("", handlers.ListFavorites(container.FavouritesService))
		favouriteRoutes.GET("/ids", handlers.ListFavoriteIds(container.FavouritesService))
		favouriteRoutes.POST("/:id/toggle", handlers.ToggleFavorite(container.FavouritesService))
	}

	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(middleware.RequireAdmin())
	{
		adminRoutes.GET("/properties", handlers.ListAllPropertiesAdmin(container.PropertyService))
		adminRoutes.GET("/users", handlers.ListAllUsers(container.UserService))
		adminRoutes.PATCH("/users/:id/role", handlers.UpdateUserRole(container.UserService))
		adminRoutes.DELETE("/users/:id", handlers.DeleteUser(container.UserService))
	}

	return r
}
