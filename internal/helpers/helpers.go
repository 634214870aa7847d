package helpers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims is the payload of a Supabase access token.
type CustomClaims struct {
	Role        string `json:"role"`
	Email       string `json:"email"`
	AppMetadata struct {
		Provider  string   `json:"provider"`
		Providers []string `json:"providers"`
	} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// TokenValidator checks access tokens against the project's JWKS for
// asymmetric keys and the project JWT secret for HS256 tokens.
type TokenValidator struct {
	jwks   *keyfunc.JWKS
	secret []byte
}

// NewTokenValidator loads the JWKS published under supabaseURL. A JWKS that
// cannot be loaded is logged and leaves only the shared secret, if any.
func NewTokenValidator(ctx context.Context, supabaseURL, jwtSecret string, logger *slog.Logger) (*TokenValidator, error) {
	v := &TokenValidator{}
	if jwtSecret != "" {
		v.secret = []byte(jwtSecret)
	}

	if supabaseURL != "" {
		jwksURL := fmt.Sprintf("%s/auth/v1/.well-known/jwks.json", supabaseURL)

		fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
			Ctx:               fetchCtx,
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				logger.Warn("JWKS refresh failed", "url", jwksURL, "error", err)
			},
		})
		if err != nil {
			logger.Warn("JWKS unavailable, falling back to the JWT secret", "url", jwksURL, "error", err)
		} else {
			v.jwks = jwks
		}
	}

	if v.jwks == nil && v.secret == nil {
		return nil, errors.New("no JWKS and no JWT secret configured for token validation")
	}
	return v, nil
}

// NewSecretValidator validates HS256 tokens only.
func NewSecretValidator(jwtSecret string) *TokenValidator {
	return &TokenValidator{secret: []byte(jwtSecret)}
}

func (v *TokenValidator) keyfunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
		if v.secret == nil {
			return nil, errors.New("HS256 token but no JWT secret configured")
		}
		return v.secret, nil
	}
	if v.jwks == nil {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return v.jwks.Keyfunc(token)
}

func (v *TokenValidator) ValidateToken(tokenStr string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, v.keyfunc, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// Close stops the background JWKS refresh.
func (v *TokenValidator) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
