package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func authRouter(svc AuthService) *gin.Engine {
	ctr := NewAuthController(svc)
	router := newTestRouter(func(api *gin.RouterGroup) {
		api.GET("/users/me", ctr.Me)
	})
	router.POST("/auth/login", ctr.Login)
	router.POST("/auth/register", ctr.Register)
	return router
}

func TestAuthController_Login(t *testing.T) {
	t.Run("issues bearer token", func(t *testing.T) {
		svc := new(MockAuthService)
		expiresAt := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
		svc.On("Login", mock.Anything, "bob", "secret").Return("jwt", expiresAt, nil)

		w := doRequest(t, authRouter(svc), http.MethodPost, "/auth/login", CredentialsRequest{Username: "bob", Password: "secret"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, TokenResponse{AccessToken: "jwt", TokenType: "bearer", ExpiresAt: "2024-03-01T12:30:00Z"}, decode[TokenResponse](t, w))
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, "bob", "nope").Return("", time.Time{}, service.ErrInvalidCredentials)

		w := doRequest(t, authRouter(svc), http.MethodPost, "/auth/login", CredentialsRequest{Username: "bob", Password: "nope"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := new(MockAuthService)

		w := doRequest(t, authRouter(svc), http.MethodPost, "/auth/login", map[string]string{"username": "bob"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthController_Register(t *testing.T) {
	tests := []struct {
		name       string
		user       *model.User
		err        error
		wantStatus int
	}{
		{"created", &model.User{ID: uuid.New(), Username: "bob"}, nil, http.StatusCreated},
		{"taken", nil, service.ErrUserExists, http.StatusConflict},
		{"invalid fields", nil, service.ErrInvalidUser, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAuthService)
			svc.On("Register", mock.Anything, "bob", "secret").Return(tt.user, tt.err)

			w := doRequest(t, authRouter(svc), http.MethodPost, "/auth/register", CredentialsRequest{Username: "bob", Password: "secret"})

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NotContains(t, w.Body.String(), "password")
		})
	}
}

func TestAuthController_Me(t *testing.T) {
	router := authRouter(new(MockAuthService))

	t.Run("returns the authenticated user", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/users/me", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, testOwner, decode[UserResponse](t, w).Username)
	})

	t.Run("rejects a bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		req.Header.Set("Authorization", "Bearer forged")

		w := newRecorder(router, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
