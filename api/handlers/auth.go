package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sentinelops/sentinel/internal/auth"
	"github.com/sentinelops/sentinel/pkg/validation"
)

// AuthHandler authenticates against the config-provisioned admin account.
type AuthHandler struct {
	authService  *auth.Service
	adminUser    string
	passwordHash string
	tokenExpiry  time.Duration
}

func NewAuthHandler(authService *auth.Service, adminUser, passwordHash string, tokenExpiry time.Duration) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		adminUser:    adminUser,
		passwordHash: passwordHash,
		tokenExpiry:  tokenExpiry,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
	Username  string `json:"username"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if req.Username != h.adminUser || !auth.CheckPassword(req.Password, h.passwordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.authService.GenerateToken(1, req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresIn: int(h.tokenExpiry.Seconds()),
		Username:  req.Username,
	})
}
