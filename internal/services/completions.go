package services

import (
	"context"

	"github.com/arnold/couples-api/internal/apperrors"
	"github.com/arnold/couples-api/internal/models"
	"github.com/arnold/couples-api/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CompletionService struct {
	store    *store.Store
	activity *ActivityService
	log      *zap.Logger
}

func NewCompletionService(st *store.Store, activity *ActivityService, log *zap.Logger) *CompletionService {
	return &CompletionService{store: st, activity: activity, log: log}
}

// CompleteTask logs one completion of the caller's own task, snapshotting
// the task's current points. The challenge and task rows stay locked until
// the completion is written, so concurrent calls cannot overrun the cap and
// a concurrent finish sees either all or none of them.
func (s *CompletionService) CompleteTask(ctx context.Context, userID uuid.UUID, in models.CompleteTaskInput) (*models.TaskCompletion, error) {
	var (
		completion *models.TaskCompletion
		coupleID   uuid.UUID
	)
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		task, err := tx.GetTask(ctx, in.TaskID)
		if err != nil {
			return internal("Failed to load task", err)
		}
		if task == nil {
			return apperrors.NotFound("Task not found")
		}

		couple, err := tx.FindCoupleForUser(ctx, userID)
		if err != nil {
			return internal("Failed to load couple", err)
		}
		if couple == nil {
			return apperrors.NotFound("You don't have a couple")
		}
		if couple.Status != models.CoupleActive {
			return apperrors.BadRequest("You don't have an active couple")
		}
		challenge, err := tx.LockChallenge(ctx, task.ChallengeID)
		if err != nil {
			return internal("Failed to load challenge", err)
		}
		if challenge == nil {
			return apperrors.NotFound("Challenge not found")
		}
		if challenge.CoupleID != couple.ID {
			return apperrors.BadRequest("This task doesn't belong to your couple")
		}
		if challenge.Status != models.ChallengeActive {
			return apperrors.BadRequest("Only tasks from active challenges can be completed")
		}

		task, err = tx.LockTask(ctx, task.ID)
		if err != nil {
			return internal("Failed to load task", err)
		}
		if task == nil {
			return apperrors.NotFound("Task not found")
		}
		if task.OwnerID != userID {
			return apperrors.BadRequest("You can only complete your own tasks")
		}
		if task.MaxCompletions != nil {
			n, err := tx.CountCompletions(ctx, task.ID)
			if err != nil {
				return internal("Failed to count completions", err)
			}
			if n >= int64(*task.MaxCompletions) {
				return apperrors.BadRequest("Task has reached max completions")
			}
		}

		completion = &models.TaskCompletion{
			TaskID:       task.ID,
			UserID:       userID,
			PhotoURL:     in.PhotoRef,
			PointsEarned: task.Points,
		}
		if err := tx.CreateCompletion(ctx, completion); err != nil {
			return internal("Failed to complete task", err)
		}
		coupleID = couple.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, coupleID, userID, models.ActionTaskCompleted, &completion.ID, map[string]any{
		"taskId":       completion.TaskID,
		"pointsEarned": completion.PointsEarned,
	})
	return completion, nil
}

// ListCompletions returns a challenge's completion history, newest first.
func (s *CompletionService) ListCompletions(ctx context.Context, userID, challengeID uuid.UUID) ([]models.TaskCompletion, error) {
	challenge, couple, err := challengeAndCouple(ctx, s.store, challengeID, userID)
	if err != nil {
		return nil, err
	}
	if challenge.CoupleID != couple.ID {
		return nil, apperrors.BadRequest("This challenge doesn't belong to your couple")
	}
	completions, err := s.store.ListCompletions(ctx, challenge.ID)
	if err != nil {
		return nil, internal("Failed to fetch completions", err)
	}
	return completions, nil
}

// UndoCompletion removes one of the caller's own completions while its
// challenge is still active.
func (s *CompletionService) UndoCompletion(ctx context.Context, userID, completionID uuid.UUID) error {
	var coupleID uuid.UUID
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		c, err := tx.GetCompletion(ctx, completionID)
		if err != nil {
			return internal("Failed to load completion", err)
		}
		if c == nil {
			return apperrors.NotFound("Completion not found")
		}
		if c.UserID != userID {
			return apperrors.BadRequest("You can only undo your own completions")
		}
		task, err := tx.GetTask(ctx, c.TaskID)
		if err != nil {
			return internal("Failed to load task", err)
		}
		if task == nil {
			return apperrors.NotFound("Task not found")
		}
		challenge, err := tx.LockChallenge(ctx, task.ChallengeID)
		if err != nil {
			return internal("Failed to load challenge", err)
		}
		if challenge == nil {
			return apperrors.NotFound("Challenge not found")
		}
		if challenge.Status != models.ChallengeActive {
			return apperrors.BadRequest("Only completions from active challenges can be undone")
		}
		if _, err := tx.DeleteCompletion(ctx, c.ID); err != nil {
			return internal("Failed to undo completion", err)
		}
		coupleID = challenge.CoupleID
		return nil
	})
	if err != nil {
		return err
	}

	s.activity.Record(ctx, coupleID, userID, models.ActionCompletionUndone, &completionID, nil)
	return nil
}
