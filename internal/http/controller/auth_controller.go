package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-dashboard/internal/http/middleware"
	"github.com/iyhunko/inventory-dashboard/internal/model"
)

// AuthService registers and logs in users.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error)
}

// AuthController handles HTTP requests for accounts and tokens.
type AuthController struct {
	authService AuthService
}

// NewAuthController creates a new AuthController.
func NewAuthController(authService AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// CredentialsRequest is the body of login and registration.
type CredentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
}

// UserResponse represents an account without its credentials.
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Disabled  bool   `json:"disabled"`
	CreatedAt string `json:"created_at"`
}

// Login handles POST /auth/login.
func (ac *AuthController) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	token, expiresAt, err := ac.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err, "log in")
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	})
}

// Register handles POST /auth/register.
func (ac *AuthController) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := ac.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err, "register user")
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(user))
}

// Me handles GET /users/me.
func (ac *AuthController) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Disabled:  user.Disabled,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}
