package services

import (
	"context"
	"strings"
	"time"

	"github.com/arnold/couples-api/internal/apperrors"
	"github.com/arnold/couples-api/internal/models"
	"github.com/arnold/couples-api/internal/scoring"
	"github.com/arnold/couples-api/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ChallengeService struct {
	store    *store.Store
	activity *ActivityService
	log      *zap.Logger
	now      func() time.Time
}

func NewChallengeService(st *store.Store, activity *ActivityService, log *zap.Logger) *ChallengeService {
	return &ChallengeService{
		store:    st,
		activity: activity,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ChallengeService) CreateChallenge(ctx context.Context, userID uuid.UUID, in models.CreateChallengeInput) (*models.Challenge, error) {
	couple, err := activeCoupleOf(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	if !in.EndDate.After(in.StartDate) {
		return nil, apperrors.BadRequest("End date must be after start date")
	}
	if !models.ValidPeriodType(in.PeriodType) {
		return nil, apperrors.BadRequest("Invalid period type. Must be: mensal, trimestral, semestral, or anual")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.BadRequest("Name is required")
	}

	challenge := &models.Challenge{
		CoupleID:   couple.ID,
		Name:       name,
		StartDate:  in.StartDate.UTC(),
		EndDate:    in.EndDate.UTC(),
		PeriodType: in.PeriodType,
		Status:     models.ChallengeActive,
	}
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		c, err := tx.LockCouple(ctx, couple.ID)
		if err != nil {
			return internal("Failed to load couple", err)
		}
		if c == nil || c.Status != models.CoupleActive {
			return apperrors.BadRequest("You don't have an active couple")
		}
		busy, err := tx.CoupleHasActiveChallenge(ctx, couple.ID)
		if err != nil {
			return internal("Failed to check active challenge", err)
		}
		if busy {
			return apperrors.BadRequest("You already have an active challenge")
		}
		if err := tx.CreateChallenge(ctx, challenge); err != nil {
			return internal("Failed to create challenge", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, couple.ID, userID, models.ActionChallengeCreated, &challenge.ID, map[string]any{
		"name":       challenge.Name,
		"periodType": challenge.PeriodType,
	})
	return challenge, nil
}

func (s *ChallengeService) ListChallenges(ctx context.Context, userID uuid.UUID) ([]models.Challenge, error) {
	couple, err := activeCoupleOf(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	challenges, err := s.store.ListChallenges(ctx, couple.ID)
	if err != nil {
		return nil, internal("Failed to fetch challenges", err)
	}
	return challenges, nil
}

// GetActiveChallenge returns the couple's active challenge if today falls
// inside its date range.
func (s *ChallengeService) GetActiveChallenge(ctx context.Context, userID uuid.UUID) (*models.Challenge, error) {
	couple, err := activeCoupleOf(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	c, err := s.store.ActiveChallengeAt(ctx, couple.ID, s.now())
	if err != nil {
		return nil, internal("Failed to fetch active challenge", err)
	}
	if c == nil {
		return nil, apperrors.NotFound("No active challenge found")
	}
	return c, nil
}

// FinishChallenge scores an active challenge and closes it.
func (s *ChallengeService) FinishChallenge(ctx context.Context, userID, challengeID uuid.UUID) (*models.ChallengeResult, error) {
	couple, err := activeCoupleOf(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}

	var (
		challenge *models.Challenge
		result    scoring.Result
	)
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		c, err := tx.LockChallenge(ctx, challengeID)
		if err != nil {
			return internal("Failed to load challenge", err)
		}
		if c == nil {
			return apperrors.NotFound("Challenge not found")
		}
		if c.CoupleID != couple.ID {
			return apperrors.BadRequest("This challenge doesn't belong to your couple")
		}
		if c.Status != models.ChallengeActive {
			return apperrors.BadRequest("Only active challenges can be finished")
		}

		score, err := tx.ChallengeScore(ctx, c.ID, &couple.InitiatorID, couple.PartnerID)
		if err != nil {
			return internal("Failed to score challenge", err)
		}
		if score.Completions() == 0 {
			return apperrors.NotFound("No completions found for this challenge")
		}

		result = scoring.Decide(
			scoring.Tally{UserID: score.First.UserID, Points: score.First.Points, Tasks: score.First.Tasks},
			scoring.Tally{UserID: score.Second.UserID, Points: score.Second.Points, Tasks: score.Second.Tasks},
		)
		if _, err := tx.CompleteChallenge(ctx, c.ID, result.WinnerID, result.WinnerScore, result.LoserScore); err != nil {
			return internal("Failed to finish challenge", err)
		}
		challenge = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.Stringer("challenge_id", challenge.ID),
		zap.Int("winner_score", result.WinnerScore),
		zap.Int("loser_score", result.LoserScore),
	}
	if result.Draw() {
		fields = append(fields, zap.Bool("draw", true))
	} else {
		fields = append(fields, zap.Stringer("winner_id", *result.WinnerID))
	}
	s.log.Info("challenge finished", fields...)
	s.activity.Record(ctx, couple.ID, userID, models.ActionChallengeFinished, &challenge.ID, map[string]any{
		"winnerId":    result.WinnerID,
		"winnerScore": result.WinnerScore,
		"loserScore":  result.LoserScore,
	})

	return s.result(ctx, challenge.ID)
}

// CancelChallenge closes the couple's active challenge without scoring it.
func (s *ChallengeService) CancelChallenge(ctx context.Context, userID, challengeID uuid.UUID) (*models.Challenge, error) {
	couple, err := activeCoupleOf(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		c, err := tx.LockChallenge(ctx, challengeID)
		if err != nil {
			return internal("Failed to load challenge", err)
		}
		if c == nil {
			return apperrors.NotFound("Challenge not found")
		}
		if c.CoupleID != couple.ID {
			return apperrors.BadRequest("This challenge doesn't belong to your couple")
		}
		ok, err := tx.CancelChallenge(ctx, c.ID)
		if err != nil {
			return internal("Failed to cancel challenge", err)
		}
		if !ok {
			return apperrors.BadRequest("Only active challenges can be cancelled")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("challenge cancelled", zap.Stringer("challenge_id", challengeID), zap.Stringer("user_id", userID))
	s.activity.Record(ctx, couple.ID, userID, models.ActionChallengeCancelled, &challengeID, nil)

	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, internal("Failed to load challenge", err)
	}
	return c, nil
}

// Scoreboard returns the running per-partner totals of one of the
// couple's challenges.
func (s *ChallengeService) Scoreboard(ctx context.Context, userID, challengeID uuid.UUID) (*models.ChallengeScore, error) {
	couple, err := coupleOf(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, internal("Failed to load challenge", err)
	}
	if c == nil {
		return nil, apperrors.NotFound("Challenge not found")
	}
	if c.CoupleID != couple.ID {
		return nil, apperrors.BadRequest("This challenge doesn't belong to your couple")
	}
	score, err := s.store.ChallengeScore(ctx, c.ID, &couple.InitiatorID, couple.PartnerID)
	if err != nil {
		return nil, internal("Failed to score challenge", err)
	}
	return &score, nil
}

func (s *ChallengeService) result(ctx context.Context, challengeID uuid.UUID) (*models.ChallengeResult, error) {
	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, internal("Failed to load challenge", err)
	}
	if c == nil {
		return nil, apperrors.NotFound("Challenge not found")
	}
	res := &models.ChallengeResult{Challenge: *c}
	if c.WinnerID != nil {
		winner, err := s.store.GetUser(ctx, *c.WinnerID)
		if err != nil {
			return nil, internal("Failed to load winner", err)
		}
		res.Winner = winner.Summary()
	}
	return res, nil
}
