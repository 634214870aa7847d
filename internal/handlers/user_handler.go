package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/estately/internal/helpers"
	"github.com/joshua-takyi/estately/internal/models"
	"github.com/joshua-takyi/estately/internal/services"
)

func ListAllUsers(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := u.ListAllUsers(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.ListResponse(users, len(users)))
	}
}

func UpdateUserRole(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := pathID(c, "id", "user")
		if !ok {
			return
		}

		var req models.RoleUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		if err := u.UpdateUserRole(c.Request.Context(), userID, req.Role); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{"user_id": userID, "role": req.Role}, services.NoticeRoleUpdated))
	}
}

func DeleteUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := pathID(c, "id", "user")
		if !ok {
			return
		}
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		if claims.IsOwner(userID) {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("admins cannot delete their own account"))
			return
		}

		if err := u.DeleteUser(c.Request.Context(), userID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, services.NoticeUserDeleted))
	}
}
