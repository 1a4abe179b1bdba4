package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/domain/models"
)

// AccountStore lists and creates operator accounts.
type AccountStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, u models.User) error
}

// EnsureAdmin creates the first administrator so a fresh deployment can be
// logged into. Nothing happens while an active admin with a password exists.
// It reports whether an account was created.
func EnsureAdmin(ctx context.Context, users AccountStore, username, password string, logger *zap.Logger) (bool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, fmt.Errorf("admin username and password are required")
	}

	all, err := users.ListUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("list users: %w", err)
	}
	for _, u := range all {
		if u.Role == models.RoleAdmin && u.Status == models.StatusActive && u.PasswordHash != "" {
			return false, nil
		}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	admin := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Name:         "Administrator",
		Role:         models.RoleAdmin,
		PasswordHash: hash,
		Status:       models.StatusActive,
	}
	if err := users.CreateUser(ctx, admin); err != nil {
		return false, fmt.Errorf("create admin %s: %w", username, err)
	}
	logger.Info("bootstrap admin created", zap.String("username", username))
	return true, nil
}
