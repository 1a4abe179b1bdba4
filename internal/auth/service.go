// Package auth authenticates back-office operators and enforces role
// permissions on every write.
package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/domain/models"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrForbidden indicates the caller's role may not perform the action.
var ErrForbidden = errors.New("forbidden")

// UserStore looks up operator accounts.
type UserStore interface {
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
	UpdateUser(ctx context.Context, u models.User) error
}

// Session is the result of a successful login.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

// Service logs operators in.
type Service struct {
	users  UserStore
	tokens *JWTManager
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the login service.
func NewService(users UserStore, tokens *JWTManager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{users: users, tokens: tokens, logger: logger, now: time.Now}
}

// Tokens exposes the token manager for request authentication.
func (s *Service) Tokens() *JWTManager {
	return s.tokens
}

// Login verifies credentials and issues a token.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	user, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login rejected", zap.String("username", username), zap.String("reason", "unknown user"))
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("load user %s: %w", username, err)
	}
	if user.Status == models.StatusInactive || !CheckPassword(user.PasswordHash, password) {
		s.logger.Info("login rejected", zap.String("username", username), zap.String("reason", "bad credentials or inactive"))
		return Session{}, ErrInvalidCredentials
	}

	token, expires, err := s.tokens.GenerateToken(user)
	if err != nil {
		return Session{}, err
	}

	user.LastActive = s.now().UTC().Format(time.RFC3339)
	if err := s.users.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("failed to record last activity", zap.String("username", username), zap.Error(err))
	}

	return Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// Authorize returns ErrForbidden unless role is one of allowed. Admins are
// always allowed.
func Authorize(role models.Role, allowed ...models.Role) error {
	if role == models.RoleAdmin || slices.Contains(allowed, role) {
		return nil
	}
	return fmt.Errorf("%w: role %s", ErrForbidden, role)
}
