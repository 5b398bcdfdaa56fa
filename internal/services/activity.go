package services

import (
	"context"
	"encoding/json"

	"github.com/arnold/couples-api/internal/models"
	"github.com/arnold/couples-api/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 50
)

type ActivityService struct {
	store *store.Store
	log   *zap.Logger
}

func NewActivityService(st *store.Store, log *zap.Logger) *ActivityService {
	return &ActivityService{store: st, log: log}
}

// Record appends an entry to a couple's feed. The feed is informational, so
// a failed write is logged and otherwise ignored.
func (s *ActivityService) Record(ctx context.Context, coupleID, userID uuid.UUID, action string, targetID *uuid.UUID, metadata map[string]any) {
	a := models.Activity{
		CoupleID:   coupleID,
		UserID:     userID,
		ActionType: action,
		TargetID:   targetID,
	}
	if metadata != nil {
		if data, err := json.Marshal(metadata); err == nil {
			m := string(data)
			a.Metadata = &m
		}
	}
	if err := s.store.CreateActivity(ctx, &a); err != nil {
		s.log.Warn("record activity failed",
			zap.String("action", action),
			zap.Stringer("couple_id", coupleID),
			zap.Error(err))
	}
}

// List returns one page of the caller's couple feed. Out-of-range page and
// limit values fall back to the defaults.
func (s *ActivityService) List(ctx context.Context, userID uuid.UUID, page, limit int) (*models.ActivityPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxActivityLimit {
		limit = defaultActivityLimit
	}

	couple, err := coupleOf(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	out, err := s.store.ListActivity(ctx, couple.ID, page, limit)
	if err != nil {
		return nil, internal("Failed to fetch activity", err)
	}
	return out, nil
}
