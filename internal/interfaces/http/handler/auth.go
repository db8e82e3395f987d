package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/atelier/backend/internal/infrastructure/auth"
	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/atelier/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// OperatorAuthenticator signs the operator in and out
type OperatorAuthenticator interface {
	Login(ctx context.Context, username, password string) (*auth.Token, error)
	Logout(claims *auth.Claims)
}

// LoginRequest carries operator credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=200"`
}

// MeResponse describes the authenticated operator
type MeResponse struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthHandler handles login and logout
type AuthHandler struct {
	BaseHandler
	authenticator OperatorAuthenticator
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(authenticator OperatorAuthenticator, v *dto.Validator) *AuthHandler {
	return &AuthHandler{BaseHandler: newBase(v), authenticator: authenticator}
}

// Login exchanges credentials for an access token.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	token, err := h.authenticator.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, err.Error()))
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, token)
}

// Logout revokes the token used for this request.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.authenticator.Logout(middleware.ClaimsFrom(c))
	h.Message(c, "Logged out")
}

// Me returns the operator behind the token.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication is disabled"))
		return
	}
	h.Success(c, MeResponse{
		Username:  claims.Username,
		ExpiresAt: claims.ExpiresAtTime(),
	})
}
