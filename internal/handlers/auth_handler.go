package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/estately/internal/helpers"
	"github.com/joshua-takyi/estately/internal/models"
	"github.com/joshua-takyi/estately/internal/services"
	"github.com/supabase-community/gotrue-go/types"
)

func SignUp(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SignUpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		createdUser, err := u.CreateUser(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, helpers.SuccessResponse(createdUser, "Account created successfully"))
	}
}

func SignIn(u *services.UserService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SignInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "message": "invalid request payload"})
			return
		}

		authResponse, err := u.AuthenticateUser(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "message": "invalid email or password"})
			return
		}

		if tokenRes, ok := authResponse.(*types.TokenResponse); ok && tokenRes.AccessToken != "" {
			helpers.SetAuthCookies(c, tokenRes, secureCookies)

			// tokens travel in cookies only
			c.JSON(http.StatusOK, gin.H{
				"user": tokenRes.User,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid token response"})
	}
}

func Refresh(u *services.UserService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken, err := c.Cookie(helpers.RefreshTokenCookie)
		if err != nil || refreshToken == "" {
			c.JSON(http.StatusUnauthorized, helpers.ErrorResponse("refresh token not found"))
			return
		}

		refreshResponse, err := u.RefreshToken(c.Request.Context(), refreshToken)
		if err != nil {
			helpers.ClearAuthCookies(c, secureCookies)
			c.JSON(http.StatusUnauthorized, helpers.ErrorResponse(err.Error()))
			return
		}

		tokenRes, ok := refreshResponse.(*types.TokenResponse)
		if !ok || tokenRes.AccessToken == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid token response"})
			return
		}
		helpers.SetAuthCookies(c, tokenRes, secureCookies)
		c.JSON(http.StatusOK, gin.H{"user": tokenRes.User})
	}
}

func Logout(secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		helpers.ClearAuthCookies(c, secureCookies)

		c.JSON(http.StatusOK, gin.H{
			"message": "Logged out successfully",
		})
	}
}

// Profile returns the authenticated caller.
func Profile() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "OK",
			"user_id":    claims.UserID,
			"email":      claims.Email,
			"role":       claims.Role,
			"fullname":   claims.Fullname,
			"phone":      claims.PhoneNumber,
			"avatar_url": claims.AvatarURL,
			"is_admin":   claims.IsAdmin(),
			"is_seller":  claims.CanSell(),
		})
	}
}
