package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/arnold/couples-api/internal/models"
	"github.com/google/uuid"
)

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	if err := s.conn(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (s *Store) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	t, err := first[models.Task](s.conn(ctx), "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

// LockTask serializes completions of a task for the rest of the transaction.
func (s *Store) LockTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	t, err := first[models.Task](s.forUpdate(ctx), "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("lock task %s: %w", id, err)
	}
	return t, nil
}

type taskCount struct {
	TaskID uuid.UUID
	Count  int
}

// ListTasksWithProgress returns a challenge's tasks in creation order, each
// with its completion count.
func (s *Store) ListTasksWithProgress(ctx context.Context, challengeID uuid.UUID) ([]models.TaskProgress, error) {
	var tasks []models.Task
	err := s.conn(ctx).
		Where("challenge_id = ?", challengeID).
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks of challenge %s: %w", challengeID, err)
	}

	var counts []taskCount
	err = s.conn(ctx).Model(&models.TaskCompletion{}).
		Select("task_completions.task_id AS task_id, COUNT(*) AS count").
		Joins("JOIN tasks ON tasks.id = task_completions.task_id").
		Where("tasks.challenge_id = ?", challengeID).
		Group("task_completions.task_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("count completions of challenge %s: %w", challengeID, err)
	}
	byTask := make(map[uuid.UUID]int, len(counts))
	for _, c := range counts {
		byTask[c.TaskID] = c.Count
	}

	out := make([]models.TaskProgress, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, models.TaskProgress{Task: t, CompletionCount: byTask[t.ID]})
	}
	return out, nil
}

// UpdateTask applies the present fields of patch. An empty patch is a plain read.
func (s *Store) UpdateTask(ctx context.Context, id uuid.UUID, patch models.TaskPatch) (*models.Task, error) {
	if patch.Empty() {
		return s.GetTask(ctx, id)
	}
	updates := map[string]any{"updated_at": now()}
	if patch.Name != nil {
		updates["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Points != nil {
		updates["points"] = *patch.Points
	}
	if patch.MaxCompletions != nil {
		updates["max_completions"] = *patch.MaxCompletions
	}
	res := s.conn(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update task %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return s.GetTask(ctx, id)
}

// DeleteTask removes a task and its completions. It reports false when the
// task did not exist.
func (s *Store) DeleteTask(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.conn(ctx).Where("task_id = ?", id).Delete(&models.TaskCompletion{}).Error; err != nil {
			return fmt.Errorf("delete completions of task %s: %w", id, err)
		}
		res := tx.conn(ctx).Where("id = ?", id).Delete(&models.Task{})
		if res.Error != nil {
			return fmt.Errorf("delete task %s: %w", id, res.Error)
		}
		deleted = res.RowsAffected == 1
		return nil
	})
	return deleted, err
}

func (s *Store) CountCompletions(ctx context.Context, taskID uuid.UUID) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.TaskCompletion{}).Where("task_id = ?", taskID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count completions of task %s: %w", taskID, err)
	}
	return n, nil
}
