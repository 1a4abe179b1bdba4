package registry

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/auth"
	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/service/filter"
)

// RoleAll disables the role filter of ListUsers.
const RoleAll = "all"

// ListUsers returns users whose name, email or username contains search,
// optionally restricted to one role.
func (s *Service) ListUsers(ctx context.Context, search, role string) ([]models.User, error) {
	all, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return filter.Keep(all, func(u models.User) bool {
		if role != "" && role != RoleAll && string(u.Role) != role {
			return false
		}
		return filter.MatchesAny(strings.TrimSpace(search), u.Name, u.Email, u.Username)
	}), nil
}

// CreateUser adds an operator account with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, in models.User, password string) (models.User, error) {
	u := in
	u.Username = strings.TrimSpace(u.Username)
	switch {
	case u.Username == "":
		return models.User{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	case strings.TrimSpace(u.Name) == "":
		return models.User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case !u.Role.Valid():
		return models.User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, u.Role)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	u.ID = s.newID()
	u.PasswordHash = hash
	u.LastActive = ""
	if u.Status == "" {
		u.Status = models.StatusActive
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return models.User{}, mapRepoError("user", u.Username, err)
	}
	s.logger.Info("user created", zap.String("username", u.Username), zap.String("role", string(u.Role)))
	return u, nil
}

// SetUserStatus activates or deactivates an account.
func (s *Service) SetUserStatus(ctx context.Context, id string, status models.PartyStatus) (models.User, error) {
	if status != models.StatusActive && status != models.StatusInactive {
		return models.User{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return models.User{}, mapRepoError("user", id, err)
	}
	u.Status = status
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return models.User{}, mapRepoError("user", id, err)
	}
	return u, nil
}
