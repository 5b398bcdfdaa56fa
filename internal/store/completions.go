package store

import (
	"context"
	"fmt"

	"github.com/arnold/couples-api/internal/models"
	"github.com/google/uuid"
)

func (s *Store) CreateCompletion(ctx context.Context, c *models.TaskCompletion) error {
	if err := s.conn(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create completion: %w", err)
	}
	return nil
}

func (s *Store) GetCompletion(ctx context.Context, id uuid.UUID) (*models.TaskCompletion, error) {
	c, err := first[models.TaskCompletion](s.conn(ctx), "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get completion %s: %w", id, err)
	}
	return c, nil
}

func (s *Store) DeleteCompletion(ctx context.Context, id uuid.UUID) (bool, error) {
	res := s.conn(ctx).Where("id = ?", id).Delete(&models.TaskCompletion{})
	if res.Error != nil {
		return false, fmt.Errorf("delete completion %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ListCompletions returns the completions logged against a challenge's
// tasks, most recent first.
func (s *Store) ListCompletions(ctx context.Context, challengeID uuid.UUID) ([]models.TaskCompletion, error) {
	var completions []models.TaskCompletion
	err := s.conn(ctx).
		Joins("JOIN tasks ON tasks.id = task_completions.task_id").
		Where("tasks.challenge_id = ?", challengeID).
		Order("task_completions.completed_at DESC").
		Find(&completions).Error
	if err != nil {
		return nil, fmt.Errorf("list completions of challenge %s: %w", challengeID, err)
	}
	return completions, nil
}
