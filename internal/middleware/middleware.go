package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/estately/internal/helpers"
	"github.com/joshua-takyi/estately/internal/models"
	"github.com/joshua-takyi/estately/internal/services"
	"github.com/supabase-community/gotrue-go/types"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		if raw != "" {
			path = path + "?" + raw
		}
		requestID, _ := c.Get("request_id")

		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", latency,
			"client_ip", c.ClientIP(),
		}
		if user, ok := c.Get("user"); ok {
			if claims, ok := user.(*helpers.EnhancedClaims); ok {
				attrs = append(attrs, "user_id", claims.UserID)
			}
		}
		logger.Info("HTTP Request", attrs...)
	}
}

// ErrorHandler provides centralized error handling
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			requestID, _ := c.Get("request_id")

			logger.Error("Request error",
				"request_id", requestID,
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)

			if !c.Writer.Written() {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":      "Internal server error",
					"request_id": requestID,
				})
			}
		}
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if token, err := c.Cookie(helpers.AccessTokenCookie); err == nil {
		return token
	}
	return ""
}

func unauthorized(c *gin.Context, reason string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"message": "Unauthorized access",
		"error":   reason,
	})
}

// AuthMiddleware validates the caller's access token, refreshing it from the
// refresh_token cookie when it has expired, and stores the caller as
// *helpers.EnhancedClaims under "user". The token is also placed on the
// request context so gateway calls run with the caller's permissions.
func AuthMiddleware(validator *helpers.TokenValidator, userService *services.UserService, secureCookies bool, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			unauthorized(c, "access token not found")
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			refreshToken, refreshErr := c.Cookie(helpers.RefreshTokenCookie)
			if refreshErr != nil || refreshToken == "" {
				unauthorized(c, err.Error())
				return
			}

			refreshResponse, refreshErr := userService.RefreshToken(c.Request.Context(), refreshToken)
			if refreshErr != nil {
				logger.Error("Token refresh failed", "error", refreshErr)
				unauthorized(c, "Token expired and refresh failed")
				return
			}

			tokenRes, ok := refreshResponse.(*types.TokenResponse)
			if !ok || tokenRes.AccessToken == "" {
				unauthorized(c, "Invalid refresh response")
				return
			}
			logger.Info("Token refreshed successfully",
				"user_id", tokenRes.User.ID,
				"expires_in", tokenRes.ExpiresIn,
			)
			helpers.SetAuthCookies(c, tokenRes, secureCookies)

			token = tokenRes.AccessToken
			claims, err = validator.ValidateToken(token)
			if err != nil {
				unauthorized(c, "Refreshed token validation failed")
				return
			}
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			logger.Error("Invalid user ID in token", "user_id", claims.Subject, "error", err)
			unauthorized(c, "invalid user ID in token")
			return
		}

		ctx := models.WithAccessToken(c.Request.Context(), token)
		c.Request = c.Request.WithContext(ctx)

		role, err := userService.GetRole(ctx, userID)
		if err != nil {
			logger.Warn("Role lookup failed, using buyer", "user_id", userID, "error", err)
			role = models.RoleBuyer
		}

		enhancedClaims := &helpers.EnhancedClaims{
			CustomClaims: claims,
			Role:         role,
			UserID:       userID,
			Email:        claims.Email,
		}

		profile, err := userService.GetProfile(ctx, userID)
		if err != nil {
			logger.Info("Profile not found", "user_id", userID, "error", err)
		} else if profile != nil {
			enhancedClaims.Fullname = profile.FullName
			if profile.Phone != nil {
				enhancedClaims.PhoneNumber = *profile.Phone
			}
			if profile.AvatarURL != nil {
				enhancedClaims.AvatarURL = *profile.AvatarURL
			}
			enhancedClaims.CreatedAt = profile.CreatedAt.Format(time.RFC3339)
		}

		c.Set("user", enhancedClaims)
		c.Next()
	}
}

// RequireAdmin rejects callers whose role is not admin. It runs after
// AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return requireRole("admin access required", func(r models.Role) bool { return r.IsAdmin() })
}

// RequireSeller rejects callers that may not list properties.
func RequireSeller() gin.HandlerFunc {
	return requireRole("only sellers can manage listings", func(r models.Role) bool { return r.CanSell() })
}

func requireRole(reason string, allowed func(models.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists {
			unauthorized(c, "unauthorized")
			return
		}
		claims, ok := user.(*helpers.EnhancedClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, helpers.ErrorResponse("invalid user claims"))
			return
		}
		if !allowed(claims.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, helpers.ErrorResponse(reason))
			return
		}
		c.Next()
	}
}
