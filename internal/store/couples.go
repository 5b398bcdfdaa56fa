package store

import (
	"context"
	"fmt"

	"github.com/arnold/couples-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// coupleRank prefers an active couple over a pending one over anything else.
const coupleRank = "CASE status WHEN 'active' THEN 1 WHEN 'pending' THEN 2 ELSE 3 END, created_at DESC"

func (s *Store) CreateCouple(ctx context.Context, c *models.Couple) error {
	if err := s.conn(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create couple: %w", err)
	}
	return nil
}

func (s *Store) GetCouple(ctx context.Context, id uuid.UUID) (*models.Couple, error) {
	c, err := first[models.Couple](s.conn(ctx), "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get couple %s: %w", id, err)
	}
	return c, nil
}

func (s *Store) LockCouple(ctx context.Context, id uuid.UUID) (*models.Couple, error) {
	c, err := first[models.Couple](s.forUpdate(ctx), "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("lock couple %s: %w", id, err)
	}
	return c, nil
}

// FindCoupleForUser returns the couple the user occupies a slot in.
func (s *Store) FindCoupleForUser(ctx context.Context, userID uuid.UUID) (*models.Couple, error) {
	var c models.Couple
	res := s.conn(ctx).
		Where("initiator_id = ? OR partner_id = ?", userID, userID).
		Order(coupleRank).
		Limit(1).
		Find(&c)
	if res.Error != nil {
		return nil, fmt.Errorf("find couple of user %s: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &c, nil
}

// UserHasOpenCouple reports whether the user is in a pending or active couple.
func (s *Store) UserHasOpenCouple(ctx context.Context, userID uuid.UUID) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Couple{}).
		Where("initiator_id = ? OR partner_id = ?", userID, userID).
		Where("status IN ?", []string{models.CouplePending, models.CoupleActive}).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check open couple of user %s: %w", userID, err)
	}
	return n > 0, nil
}

// AcceptCouple fills the partner slot of a pending couple. It reports false
// when the couple was no longer pending.
func (s *Store) AcceptCouple(ctx context.Context, id, partnerID uuid.UUID) (bool, error) {
	res := s.conn(ctx).Model(&models.Couple{}).
		Where("id = ? AND status = ?", id, models.CouplePending).
		Updates(map[string]any{
			"partner_id": partnerID,
			"status":     models.CoupleActive,
			"updated_at": now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("accept couple %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// TransitionCouple moves a couple from one status to another. It reports
// false when the couple was not in the expected status.
func (s *Store) TransitionCouple(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	res := s.conn(ctx).Model(&models.Couple{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": now()})
	if res.Error != nil {
		return false, fmt.Errorf("move couple %s to %s: %w", id, to, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// CancelPendingInvitesExcept cancels every pending couple that involves one
// of the users, either by slot or by invited email, other than exceptID.
func (s *Store) CancelPendingInvitesExcept(ctx context.Context, userIDs []uuid.UUID, emails []string, exceptID uuid.UUID) (int64, error) {
	involved := s.db.Session(&gorm.Session{NewDB: true}).
		Where("initiator_id IN ?", userIDs).
		Or("partner_id IN ?", userIDs)
	if len(emails) > 0 {
		involved = involved.Or("invited_email IN ?", emails)
	}
	res := s.conn(ctx).Model(&models.Couple{}).
		Where("status = ? AND id <> ?", models.CouplePending, exceptID).
		Where(involved).
		Updates(map[string]any{"status": models.CoupleCancelled, "updated_at": now()})
	if res.Error != nil {
		return 0, fmt.Errorf("cancel pending invites: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// PendingInvitesForEmails lists pending couples addressed to any of emails,
// newest invite first.
func (s *Store) PendingInvitesForEmails(ctx context.Context, emails []string) ([]models.Couple, error) {
	var couples []models.Couple
	if len(emails) == 0 {
		return couples, nil
	}
	err := s.conn(ctx).
		Where("status = ? AND invited_email IN ?", models.CouplePending, emails).
		Order("invited_at DESC").
		Find(&couples).Error
	if err != nil {
		return nil, fmt.Errorf("list pending invites: %w", err)
	}
	return couples, nil
}

func (s *Store) ListCouples(ctx context.Context) ([]models.Couple, error) {
	var couples []models.Couple
	if err := s.conn(ctx).Order("created_at DESC").Find(&couples).Error; err != nil {
		return nil, fmt.Errorf("list couples: %w", err)
	}
	return couples, nil
}

// UpdateCouple applies the present fields of patch. An empty patch is a plain read.
func (s *Store) UpdateCouple(ctx context.Context, id uuid.UUID, patch models.CouplePatch) (*models.Couple, error) {
	if patch.Empty() {
		return s.GetCouple(ctx, id)
	}
	updates := map[string]any{"updated_at": now()}
	if patch.PhotoURL != nil {
		if *patch.PhotoURL == "" {
			updates["photo_url"] = nil
		} else {
			updates["photo_url"] = *patch.PhotoURL
		}
	}
	res := s.conn(ctx).Model(&models.Couple{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update couple %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return s.GetCouple(ctx, id)
}
