package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/arnold/couples-api/internal/models"
	"github.com/google/uuid"
)

// CreateUser persists a user together with their first auth provider.
func (s *Store) CreateUser(ctx context.Context, user *models.User, provider *models.UserAuthProvider) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if err := tx.conn(ctx).Create(user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		provider.UserID = user.ID
		if err := tx.conn(ctx).Create(provider).Error; err != nil {
			return fmt.Errorf("create auth provider: %w", err)
		}
		return nil
	})
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := first[models.User](s.conn(ctx), "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// LockUser reads a user and holds its row lock for the rest of the transaction.
func (s *Store) LockUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := first[models.User](s.forUpdate(ctx), "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("lock user %s: %w", id, err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.conn(ctx).Order("name ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UsersByID loads the given users keyed by id. Missing ids are absent from the map.
func (s *Store) UsersByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	out := make(map[uuid.UUID]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

// UpdateUser applies the present fields of patch. An empty patch is a plain read.
func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error) {
	if patch.Empty() {
		return s.GetUser(ctx, id)
	}
	updates := map[string]any{"updated_at": now()}
	if patch.Name != nil {
		updates["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.AvatarURL != nil {
		updates["avatar_url"] = *patch.AvatarURL
	}
	res := s.conn(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return s.GetUser(ctx, id)
}

// SetUsersCouple points every given user at coupleID, or clears the
// reference when coupleID is nil.
func (s *Store) SetUsersCouple(ctx context.Context, userIDs []uuid.UUID, coupleID *uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	err := s.conn(ctx).Model(&models.User{}).
		Where("id IN ?", userIDs).
		Updates(map[string]any{"couple_id": nullable(coupleID), "updated_at": now()}).Error
	if err != nil {
		return fmt.Errorf("set couple of users: %w", err)
	}
	return nil
}

// UserEmails returns the distinct emails of every provider registered to the user.
func (s *Store) UserEmails(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var emails []string
	err := s.conn(ctx).Model(&models.UserAuthProvider{}).
		Where("user_id = ?", userID).
		Distinct("email").
		Order("email ASC").
		Pluck("email", &emails).Error
	if err != nil {
		return nil, fmt.Errorf("list emails of user %s: %w", userID, err)
	}
	return emails, nil
}

func (s *Store) FindProvider(ctx context.Context, provider, email string) (*models.UserAuthProvider, error) {
	p, err := first[models.UserAuthProvider](s.conn(ctx), "provider = ? AND email = ?", provider, email)
	if err != nil {
		return nil, fmt.Errorf("find %s provider: %w", provider, err)
	}
	return p, nil
}

// FindProviderByEmail returns any provider registered under email.
func (s *Store) FindProviderByEmail(ctx context.Context, email string) (*models.UserAuthProvider, error) {
	p, err := first[models.UserAuthProvider](s.conn(ctx).Order("created_at ASC"), "email = ?", email)
	if err != nil {
		return nil, fmt.Errorf("find provider by email: %w", err)
	}
	return p, nil
}

func (s *Store) CreateProvider(ctx context.Context, p *models.UserAuthProvider) error {
	if err := s.conn(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create auth provider: %w", err)
	}
	return nil
}
