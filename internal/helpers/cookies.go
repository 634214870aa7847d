package helpers

import (
	"github.com/gin-gonic/gin"
	"github.com/supabase-community/gotrue-go/types"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	refreshTokenMaxAge = 3600 * 24 * 30
)

// SetAuthCookies stores a session's tokens as HTTP-only cookies.
func SetAuthCookies(c *gin.Context, tokenRes *types.TokenResponse, secure bool) {
	c.SetCookie(
		AccessTokenCookie,
		tokenRes.AccessToken,
		tokenRes.ExpiresIn,
		"/",
		"", // let Gin pick current domain
		secure,
		true,
	)
	c.SetCookie(
		RefreshTokenCookie,
		tokenRes.RefreshToken,
		refreshTokenMaxAge,
		"/",
		"",
		secure,
		true,
	)
}

func ClearAuthCookies(c *gin.Context, secure bool) {
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}
