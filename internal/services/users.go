package services

import (
	"context"
	"strings"

	"github.com/arnold/couples-api/internal/apperrors"
	"github.com/arnold/couples-api/internal/models"
	"github.com/arnold/couples-api/internal/store"
	"github.com/google/uuid"
)

type UserService struct {
	store *store.Store
}

func NewUserService(st *store.Store) *UserService {
	return &UserService{store: st}
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, internal("Failed to load user", err)
	}
	if u == nil {
		return nil, apperrors.NotFound("User not found")
	}
	return u, nil
}

// UpdateProfile applies the present fields of patch to the caller.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, patch models.UserPatch) (*models.User, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperrors.BadRequest("Name cannot be empty")
	}
	u, err := s.store.UpdateUser(ctx, userID, patch)
	if err != nil {
		return nil, internal("Failed to update profile", err)
	}
	if u == nil {
		return nil, apperrors.NotFound("User not found")
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, internal("Failed to fetch users", err)
	}
	return users, nil
}
