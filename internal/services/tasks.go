package services

import (
	"context"
	"strings"

	"github.com/arnold/couples-api/internal/apperrors"
	"github.com/arnold/couples-api/internal/models"
	"github.com/arnold/couples-api/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TaskService manages task definitions. Any partner of the couple may edit
// or delete any task of the active challenge; the owner field records who
// defined the task and only restricts who may complete it.
type TaskService struct {
	store    *store.Store
	activity *ActivityService
	log      *zap.Logger
}

func NewTaskService(st *store.Store, activity *ActivityService, log *zap.Logger) *TaskService {
	return &TaskService{store: st, activity: activity, log: log}
}

// challengeAndCouple loads a challenge and the caller's couple concurrently.
func challengeAndCouple(ctx context.Context, st *store.Store, challengeID, userID uuid.UUID) (*models.Challenge, *models.Couple, error) {
	var (
		challenge *models.Challenge
		couple    *models.Couple
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		challenge, err = st.GetChallenge(gctx, challengeID)
		return err
	})
	g.Go(func() error {
		var err error
		couple, err = st.FindCoupleForUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, internal("Failed to load challenge", err)
	}
	if challenge == nil {
		return nil, nil, apperrors.NotFound("Challenge not found")
	}
	if couple == nil {
		return nil, nil, apperrors.NotFound("You don't have a couple")
	}
	return challenge, couple, nil
}

func validatePoints(points *int, maxCompletions *int) error {
	if points != nil && *points <= 0 {
		return apperrors.BadRequest("Points must be greater than zero")
	}
	if maxCompletions != nil && *maxCompletions <= 0 {
		return apperrors.BadRequest("Max completions must be greater than zero")
	}
	return nil
}

// stillActive re-reads the challenge under lock so a concurrent finish
// cannot slip between the checks and the write.
func stillActive(ctx context.Context, tx *store.Store, challengeID uuid.UUID, msg string) error {
	c, err := tx.LockChallenge(ctx, challengeID)
	if err != nil {
		return internal("Failed to load challenge", err)
	}
	if c == nil {
		return apperrors.NotFound("Challenge not found")
	}
	if c.Status != models.ChallengeActive {
		return apperrors.BadRequest(msg)
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, userID uuid.UUID, in models.CreateTaskInput) (*models.Task, error) {
	challenge, couple, err := challengeAndCouple(ctx, s.store, in.ChallengeID, userID)
	if err != nil {
		return nil, err
	}
	if challenge.CoupleID != couple.ID {
		return nil, apperrors.BadRequest("This challenge doesn't belong to your couple")
	}
	if challenge.Status != models.ChallengeActive {
		return nil, apperrors.BadRequest("Only active challenges can have tasks")
	}
	if err := validatePoints(&in.Points, in.MaxCompletions); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.BadRequest("Name is required")
	}

	task := &models.Task{
		ChallengeID:    challenge.ID,
		OwnerID:        userID,
		Name:           name,
		Description:    in.Description,
		Points:         in.Points,
		MaxCompletions: in.MaxCompletions,
	}
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := stillActive(ctx, tx, challenge.ID, "Only active challenges can have tasks"); err != nil {
			return err
		}
		if err := tx.CreateTask(ctx, task); err != nil {
			return internal("Failed to create task", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, couple.ID, userID, models.ActionTaskCreated, &task.ID, map[string]any{
		"name":   task.Name,
		"points": task.Points,
	})
	return task, nil
}

func (s *TaskService) ListTasksWithProgress(ctx context.Context, userID, challengeID uuid.UUID) ([]models.TaskProgress, error) {
	challenge, couple, err := challengeAndCouple(ctx, s.store, challengeID, userID)
	if err != nil {
		return nil, err
	}
	if challenge.CoupleID != couple.ID {
		return nil, apperrors.BadRequest("This challenge doesn't belong to your couple")
	}
	tasks, err := s.store.ListTasksWithProgress(ctx, challenge.ID)
	if err != nil {
		return nil, internal("Failed to fetch tasks", err)
	}
	return tasks, nil
}

// mutableTask loads a task and checks it belongs to the caller's couple's
// active challenge.
func (s *TaskService) mutableTask(ctx context.Context, userID, taskID uuid.UUID, msg string) (*models.Task, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, internal("Failed to load task", err)
	}
	if task == nil {
		return nil, apperrors.NotFound("Task not found")
	}
	challenge, couple, err := challengeAndCouple(ctx, s.store, task.ChallengeID, userID)
	if err != nil {
		return nil, err
	}
	if challenge.CoupleID != couple.ID {
		return nil, apperrors.BadRequest("This task doesn't belong to your couple")
	}
	if challenge.Status != models.ChallengeActive {
		return nil, apperrors.BadRequest(msg)
	}
	return task, nil
}

// UpdateTask applies the present fields of patch. Edits never touch the
// points already snapshotted into completions.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID uuid.UUID, patch models.TaskPatch) (*models.Task, error) {
	const inactive = "Only tasks from active challenges can be updated"
	task, err := s.mutableTask(ctx, userID, taskID, inactive)
	if err != nil {
		return nil, err
	}
	if err := validatePoints(patch.Points, patch.MaxCompletions); err != nil {
		return nil, err
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperrors.BadRequest("Name is required")
	}

	var updated *models.Task
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := stillActive(ctx, tx, task.ChallengeID, inactive); err != nil {
			return err
		}
		if patch.MaxCompletions != nil {
			// Completions lock the task row too, so the count cannot grow
			// past the new cap before it is written.
			locked, err := tx.LockTask(ctx, task.ID)
			if err != nil {
				return internal("Failed to load task", err)
			}
			if locked == nil {
				return apperrors.NotFound("Task not found")
			}
			n, err := tx.CountCompletions(ctx, task.ID)
			if err != nil {
				return internal("Failed to count completions", err)
			}
			if n > int64(*patch.MaxCompletions) {
				return apperrors.BadRequest("Max completions cannot be lower than the completions already logged")
			}
		}
		var err error
		updated, err = tx.UpdateTask(ctx, task.ID, patch)
		if err != nil {
			return internal("Failed to update task", err)
		}
		if updated == nil {
			return apperrors.NotFound("Task not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTask removes a task together with its completions.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	const inactive = "Only tasks from active challenges can be deleted"
	task, err := s.mutableTask(ctx, userID, taskID, inactive)
	if err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := stillActive(ctx, tx, task.ChallengeID, inactive); err != nil {
			return err
		}
		deleted, err := tx.DeleteTask(ctx, task.ID)
		if err != nil {
			return internal("Failed to delete task", err)
		}
		if !deleted {
			return apperrors.NotFound("Task not found")
		}
		return nil
	})
}
