package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/atelier/backend/internal/infrastructure/auth"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

const claimsKey = "auth_claims"

// TokenAuthenticator validates bearer tokens
type TokenAuthenticator interface {
	Authenticate(token string) (*auth.Claims, error)
}

// Auth rejects requests without a valid bearer token, except for skipPaths
func Auth(authenticator TokenAuthenticator, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.FullPath()] || skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abort(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Missing or malformed bearer token")
			return
		}

		claims, err := authenticator.Authenticate(strings.TrimSpace(token))
		if err != nil {
			code := dto.ErrCodeUnauthorized
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrCodeTokenExpired
			}
			logger.GetGinLogger(c).Debug("Token rejected")
			abort(c, http.StatusUnauthorized, code, err.Error())
			return
		}

		SetClaims(c, claims)
		c.Next()
	}
}

// SetClaims records claims for the rest of the chain and tags the request
// context with the operator
func SetClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(claimsKey, claims)
	c.Request = c.Request.WithContext(logger.WithOperator(c.Request.Context(), claims.Username))
}

// ClaimsFrom returns the claims stored by Auth, or nil
func ClaimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
