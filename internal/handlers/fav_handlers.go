package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/estately/internal/helpers"
	"github.com/joshua-takyi/estately/internal/services"
)

func ListFavorites(f *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}

		favorites, err := f.ListFavorites(c.Request.Context(), claims.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.ListResponse(favorites, len(favorites)))
	}
}

func ListFavoriteIds(f *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}

		ids, err := f.ListFavoriteIds(c.Request.Context(), claims.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.ListResponse(ids, len(ids)))
	}
}

// ToggleFavorite flips the favourite state of the listing in :id. The body
// carries the state the client currently shows.
func ToggleFavorite(f *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		propertyID, ok := pathID(c, "id", "property")
		if !ok {
			return
		}

		var reqBody struct {
			IsFavorite *bool `json:"is_favorite"`
		}
		if err := c.ShouldBindJSON(&reqBody); err != nil || reqBody.IsFavorite == nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("Invalid request body: is_favorite is required"))
			return
		}

		notice, err := f.ToggleFavorite(c.Request.Context(), claims.UserID, propertyID, *reqBody.IsFavorite)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{
			"property_id": propertyID,
			"is_favorite": !*reqBody.IsFavorite,
		}, notice))
	}
}
