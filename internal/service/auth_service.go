package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iyhunko/inventory-dashboard/internal/auth"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/repository"
)

const minPasswordLength = 6

// AuthService handles accounts and bearer tokens.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.Tokens
}

// NewAuthService creates an AuthService.
func NewAuthService(users repository.UserRepository, tokens *auth.Tokens) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates an enabled account.
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidUser)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must have at least %d characters", ErrInvalidUser, minPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &model.User{Username: username, PasswordHash: hash})
	if err != nil {
		var unique *repository.UniqueConstraintError
		if errors.As(err, &unique) {
			return nil, fmt.Errorf("%w: %s", ErrUserExists, username)
		}
		return nil, err
	}

	slog.Info("User registered", slog.String("username", username))
	return user, nil
}

// Login checks the password of an enabled account and issues a token for it.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}
	if user.Disabled || !auth.CheckPassword(user.PasswordHash, password) {
		return "", time.Time{}, ErrInvalidCredentials
	}

	return s.tokens.Issue(user.Username)
}

// Authenticate resolves a bearer token to its enabled account.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	username, err := s.tokens.Subject(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user", auth.ErrUnauthorized)
		}
		return nil, err
	}
	if user.Disabled {
		return nil, fmt.Errorf("%w: user disabled", auth.ErrUnauthorized)
	}
	return user, nil
}
