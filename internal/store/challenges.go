package store

import (
	"context"
	"fmt"
	"time"

	"github.com/arnold/couples-api/internal/models"
	"github.com/google/uuid"
)

func (s *Store) CreateChallenge(ctx context.Context, c *models.Challenge) error {
	if err := s.conn(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create challenge: %w", err)
	}
	return nil
}

func (s *Store) GetChallenge(ctx context.Context, id uuid.UUID) (*models.Challenge, error) {
	c, err := first[models.Challenge](s.conn(ctx), "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get challenge %s: %w", id, err)
	}
	return c, nil
}

func (s *Store) LockChallenge(ctx context.Context, id uuid.UUID) (*models.Challenge, error) {
	c, err := first[models.Challenge](s.forUpdate(ctx), "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("lock challenge %s: %w", id, err)
	}
	return c, nil
}

func (s *Store) CoupleHasActiveChallenge(ctx context.Context, coupleID uuid.UUID) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Challenge{}).
		Where("couple_id = ? AND status = ?", coupleID, models.ChallengeActive).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check active challenge of couple %s: %w", coupleID, err)
	}
	return n > 0, nil
}

// ListChallenges returns a couple's challenges, latest start first.
func (s *Store) ListChallenges(ctx context.Context, coupleID uuid.UUID) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := s.conn(ctx).
		Where("couple_id = ?", coupleID).
		Order("start_date DESC").
		Find(&challenges).Error
	if err != nil {
		return nil, fmt.Errorf("list challenges of couple %s: %w", coupleID, err)
	}
	return challenges, nil
}

// ActiveChallengeAt returns the couple's active challenge whose date range
// contains at.
func (s *Store) ActiveChallengeAt(ctx context.Context, coupleID uuid.UUID, at time.Time) (*models.Challenge, error) {
	var c models.Challenge
	res := s.conn(ctx).
		Where("couple_id = ? AND status = ?", coupleID, models.ChallengeActive).
		Where("start_date <= ? AND end_date >= ?", at, at).
		Order("start_date DESC").
		Limit(1).
		Find(&c)
	if res.Error != nil {
		return nil, fmt.Errorf("find active challenge of couple %s: %w", coupleID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &c, nil
}

// CompleteChallenge records the outcome of an active challenge. It reports
// false when the challenge was no longer active.
func (s *Store) CompleteChallenge(ctx context.Context, id uuid.UUID, winnerID *uuid.UUID, winnerScore, loserScore int) (bool, error) {
	res := s.conn(ctx).Model(&models.Challenge{}).
		Where("id = ? AND status = ?", id, models.ChallengeActive).
		Updates(map[string]any{
			"status":       models.ChallengeCompleted,
			"winner_id":    nullable(winnerID),
			"winner_score": winnerScore,
			"loser_score":  loserScore,
			"updated_at":   now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("complete challenge %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) CancelChallenge(ctx context.Context, id uuid.UUID) (bool, error) {
	res := s.conn(ctx).Model(&models.Challenge{}).
		Where("id = ? AND status = ?", id, models.ChallengeActive).
		Updates(map[string]any{"status": models.ChallengeCancelled, "updated_at": now()})
	if res.Error != nil {
		return false, fmt.Errorf("cancel challenge %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

type partnerTotals struct {
	UserID      uuid.UUID
	Points      int
	Tasks       int
	Completions int
}

// ChallengeScore sums the completions of a challenge per partner. Points
// come from the snapshots taken at completion time; Tasks counts distinct
// tasks completed at least once. A nil partner gets an empty score.
func (s *Store) ChallengeScore(ctx context.Context, challengeID uuid.UUID, firstID, secondID *uuid.UUID) (models.ChallengeScore, error) {
	score := models.ChallengeScore{
		ChallengeID: challengeID,
		First:       models.PartnerScore{UserID: firstID},
		Second:      models.PartnerScore{UserID: secondID},
	}

	var rows []partnerTotals
	err := s.conn(ctx).Model(&models.TaskCompletion{}).
		Select("task_completions.user_id AS user_id, "+
			"COALESCE(SUM(task_completions.points_earned), 0) AS points, "+
			"COUNT(DISTINCT task_completions.task_id) AS tasks, "+
			"COUNT(*) AS completions").
		Joins("JOIN tasks ON tasks.id = task_completions.task_id").
		Where("tasks.challenge_id = ?", challengeID).
		Group("task_completions.user_id").
		Scan(&rows).Error
	if err != nil {
		return score, fmt.Errorf("score challenge %s: %w", challengeID, err)
	}

	for _, r := range rows {
		var slot *models.PartnerScore
		switch {
		case firstID != nil && r.UserID == *firstID:
			slot = &score.First
		case secondID != nil && r.UserID == *secondID:
			slot = &score.Second
		default:
			continue
		}
		slot.Points, slot.Tasks, slot.Completions = r.Points, r.Tasks, r.Completions
	}
	return score, nil
}
