package store

import (
	"context"
	"fmt"

	"github.com/arnold/couples-api/internal/models"
	"github.com/google/uuid"
)

func (s *Store) CreateActivity(ctx context.Context, a *models.Activity) error {
	if err := s.conn(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// ListActivity returns one page of a couple's feed, newest first. page is
// 1-based.
func (s *Store) ListActivity(ctx context.Context, coupleID uuid.UUID, page, limit int) (*models.ActivityPage, error) {
	out := &models.ActivityPage{Activities: []models.Activity{}, Page: page, Limit: limit}

	err := s.conn(ctx).Model(&models.Activity{}).Where("couple_id = ?", coupleID).Count(&out.Total).Error
	if err != nil {
		return nil, fmt.Errorf("count activity of couple %s: %w", coupleID, err)
	}
	err = s.conn(ctx).
		Where("couple_id = ?", coupleID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&out.Activities).Error
	if err != nil {
		return nil, fmt.Errorf("list activity of couple %s: %w", coupleID, err)
	}
	return out, nil
}
