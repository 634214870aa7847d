package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/estately/internal/cache"
	"github.com/joshua-takyi/estately/internal/helpers"
	"github.com/joshua-takyi/estately/internal/models"
	"github.com/joshua-takyi/estately/internal/services"
)

// currentUser returns the caller stored by AuthMiddleware, writing the error
// response itself when there is none.
func currentUser(c *gin.Context) (*helpers.EnhancedClaims, bool) {
	userClaims, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, helpers.ErrorResponse("unauthorized"))
		return nil, false
	}
	claims, ok := userClaims.(*helpers.EnhancedClaims)
	if !ok {
		c.JSON(http.StatusInternalServerError, helpers.ErrorResponse("invalid user claims"))
		return nil, false
	}
	return claims, true
}

// pathID parses a uuid path parameter. Surrounding spaces and quotes are
// tolerated.
func pathID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	raw := strings.Trim(strings.TrimSpace(c.Param(name)), "\"'")
	if raw == "" {
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse(label+" ID is required"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid "+label+" ID format"))
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	var merr *services.MutationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse(verr.Error()))
	case errors.As(err, &merr):
		status := http.StatusInternalServerError
		if errors.Is(merr.Err, models.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, helpers.NoticeResponse(merr.Title, merr.Err.Error()))
	case errors.Is(err, models.ErrAccountExists):
		c.JSON(http.StatusConflict, helpers.ErrorResponse(err.Error()))
	case errors.Is(err, services.ErrInvalidID), errors.Is(err, models.ErrInvalidSignUp):
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, helpers.ErrorResponse(err.Error()))
	case errors.Is(err, cache.ErrDisabled):
		c.JSON(http.StatusUnauthorized, helpers.ErrorResponse("unauthorized"))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, helpers.ErrorResponse(err.Error()))
	}
}
