package services

import (
	"context"
	"time"

	"github.com/arnold/couples-api/internal/apperrors"
	"github.com/arnold/couples-api/internal/models"
	"github.com/arnold/couples-api/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type CoupleService struct {
	store    *store.Store
	activity *ActivityService
	log      *zap.Logger
}

func NewCoupleService(st *store.Store, activity *ActivityService, log *zap.Logger) *CoupleService {
	return &CoupleService{store: st, activity: activity, log: log}
}

// CreateInvite opens a pending couple from inviterID towards invitedEmail.
func (s *CoupleService) CreateInvite(ctx context.Context, inviterID uuid.UUID, invitedEmail string) (*models.Couple, error) {
	email := normalizeEmail(invitedEmail)

	own, err := s.store.UserEmails(ctx, inviterID)
	if err != nil {
		return nil, internal("Failed to load your emails", err)
	}
	if contains(own, email) {
		return nil, apperrors.BadRequest("You cannot invite yourself")
	}
	if !validEmail(email) {
		return nil, apperrors.BadRequest("Invalid email format")
	}

	invitedAt := time.Now().UTC()
	couple := &models.Couple{
		InitiatorID:  inviterID,
		InvitedEmail: &email,
		InvitedAt:    &invitedAt,
		Status:       models.CouplePending,
	}
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		// Holding the inviter's row serializes concurrent invites from them.
		u, err := tx.LockUser(ctx, inviterID)
		if err != nil {
			return internal("Failed to load user", err)
		}
		if u == nil {
			return apperrors.NotFound("User not found")
		}
		open, err := tx.UserHasOpenCouple(ctx, inviterID)
		if err != nil {
			return internal("Failed to check your couple", err)
		}
		if open {
			return apperrors.Conflict("You already have a couple or pending invitation")
		}
		if err := tx.CreateCouple(ctx, couple); err != nil {
			return internal("Failed to create invitation", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return couple, nil
}

// CancelInvite withdraws a pending invitation. Only its initiator may do so.
func (s *CoupleService) CancelInvite(ctx context.Context, userID, coupleID uuid.UUID) error {
	return s.store.Transaction(ctx, func(tx *store.Store) error {
		c, err := tx.LockCouple(ctx, coupleID)
		if err != nil {
			return internal("Failed to load couple", err)
		}
		if c == nil {
			return apperrors.NotFound("Couple not found")
		}
		if c.InitiatorID != userID {
			return apperrors.BadRequest("You don't have permission to cancel this invitation")
		}
		if c.Status != models.CouplePending {
			return apperrors.BadRequest("Only pending invitations can be cancelled")
		}
		if _, err := tx.TransitionCouple(ctx, c.ID, models.CouplePending, models.CoupleCancelled); err != nil {
			return internal("Failed to cancel invitation", err)
		}
		return nil
	})
}

// checkInvitee validates that userID may answer the invitation c. emails
// are the user's registered identity emails.
func checkInvitee(ctx context.Context, tx *store.Store, c *models.Couple, userID uuid.UUID, emails []string) error {
	if c == nil {
		return apperrors.NotFound("Couple not found")
	}
	if c.Status != models.CouplePending {
		return apperrors.BadRequest("Only pending invitations can be answered")
	}
	if c.InvitedEmail == nil || *c.InvitedEmail == "" {
		return apperrors.BadRequest("This invitation has no invited email")
	}
	if !contains(emails, normalizeEmail(*c.InvitedEmail)) {
		return apperrors.BadRequest("This invitation was not sent to you")
	}
	open, err := tx.UserHasOpenCouple(ctx, userID)
	if err != nil {
		return internal("Failed to check your couple", err)
	}
	if open {
		return apperrors.Conflict("You already have a couple or pending invitation")
	}
	return nil
}

// AcceptInvite pairs userID into the pending couple. Once the couple is
// active, both users are pointed at it and every other pending invitation
// involving either of them is cancelled; those two sweeps run concurrently
// and both must finish before the call returns.
func (s *CoupleService) AcceptInvite(ctx context.Context, userID, coupleID uuid.UUID) (*models.CoupleView, error) {
	emails, err := s.store.UserEmails(ctx, userID)
	if err != nil {
		return nil, internal("Failed to load your emails", err)
	}

	var couple *models.Couple
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		u, err := tx.LockUser(ctx, userID)
		if err != nil {
			return internal("Failed to load user", err)
		}
		if u == nil {
			return apperrors.NotFound("User not found")
		}
		c, err := tx.LockCouple(ctx, coupleID)
		if err != nil {
			return internal("Failed to load couple", err)
		}
		if err := checkInvitee(ctx, tx, c, userID, emails); err != nil {
			return err
		}
		ok, err := tx.AcceptCouple(ctx, c.ID, userID)
		if err != nil {
			return internal("Failed to accept invitation", err)
		}
		if !ok {
			return apperrors.BadRequest("Only pending invitations can be answered")
		}
		couple = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	members := []uuid.UUID{couple.InitiatorID, userID}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.store.Transaction(gctx, func(tx *store.Store) error {
			return tx.SetUsersCouple(gctx, members, &couple.ID)
		})
	})
	g.Go(func() error {
		inviterEmails, err := s.store.UserEmails(gctx, couple.InitiatorID)
		if err != nil {
			return err
		}
		all := append(append([]string{}, emails...), inviterEmails...)
		return s.store.Transaction(gctx, func(tx *store.Store) error {
			n, err := tx.CancelPendingInvitesExcept(gctx, members, all, couple.ID)
			if err == nil && n > 0 {
				s.log.Info("cancelled competing invitations",
					zap.Stringer("couple_id", couple.ID),
					zap.Int64("count", n))
			}
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, internal("Failed to finish pairing", err)
	}

	s.log.Info("invitation accepted",
		zap.Stringer("couple_id", couple.ID),
		zap.Stringer("initiator_id", couple.InitiatorID),
		zap.Stringer("partner_id", userID))
	s.activity.Record(ctx, couple.ID, userID, models.ActionInviteAccepted, nil, nil)

	return s.view(ctx, couple.ID)
}

// DeclineInvite refuses a pending invitation addressed to the user.
func (s *CoupleService) DeclineInvite(ctx context.Context, userID, coupleID uuid.UUID) error {
	emails, err := s.store.UserEmails(ctx, userID)
	if err != nil {
		return internal("Failed to load your emails", err)
	}
	return s.store.Transaction(ctx, func(tx *store.Store) error {
		c, err := tx.LockCouple(ctx, coupleID)
		if err != nil {
			return internal("Failed to load couple", err)
		}
		if err := checkInvitee(ctx, tx, c, userID, emails); err != nil {
			return err
		}
		ok, err := tx.TransitionCouple(ctx, c.ID, models.CouplePending, models.CoupleCancelled)
		if err != nil {
			return internal("Failed to decline invitation", err)
		}
		if !ok {
			return apperrors.BadRequest("Only pending invitations can be answered")
		}
		return nil
	})
}

// LeaveCouple dissolves the caller's active couple.
func (s *CoupleService) LeaveCouple(ctx context.Context, userID uuid.UUID) error {
	couple, err := activeCoupleOf(ctx, s.store, userID)
	if err != nil {
		return err
	}
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		ok, err := tx.TransitionCouple(ctx, couple.ID, models.CoupleActive, models.CoupleInactive)
		if err != nil {
			return internal("Failed to leave couple", err)
		}
		if !ok {
			return apperrors.BadRequest("You don't have an active couple")
		}
		if err := tx.SetUsersCouple(ctx, couple.Members(), nil); err != nil {
			return internal("Failed to leave couple", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("couple dissolved", zap.Stringer("couple_id", couple.ID), zap.Stringer("user_id", userID))
	s.activity.Record(ctx, couple.ID, userID, models.ActionCoupleLeft, nil, nil)
	return nil
}

// GetActiveCouple returns the caller's couple with both partner projections.
func (s *CoupleService) GetActiveCouple(ctx context.Context, userID uuid.UUID) (*models.CoupleView, error) {
	couple, err := coupleOf(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, couple.ID)
}

// ListPendingInvitesForUser lists invitations addressed to any of the
// caller's emails, newest first.
func (s *CoupleService) ListPendingInvitesForUser(ctx context.Context, userID uuid.UUID) ([]models.CoupleView, error) {
	emails, err := s.store.UserEmails(ctx, userID)
	if err != nil {
		return nil, internal("Failed to load your emails", err)
	}
	if len(emails) == 0 {
		return nil, apperrors.Internal("User has no email registered")
	}

	couples, err := s.store.PendingInvitesForEmails(ctx, emails)
	if err != nil {
		return nil, internal("Failed to fetch invitations", err)
	}
	ids := make([]uuid.UUID, 0, len(couples))
	for _, c := range couples {
		ids = append(ids, c.InitiatorID)
	}
	users, err := s.store.UsersByID(ctx, ids)
	if err != nil {
		return nil, internal("Failed to fetch invitations", err)
	}

	out := make([]models.CoupleView, 0, len(couples))
	for _, c := range couples {
		out = append(out, models.CoupleView{Couple: c, Initiator: users[c.InitiatorID].Summary()})
	}
	return out, nil
}

func (s *CoupleService) ListAll(ctx context.Context) ([]models.Couple, error) {
	couples, err := s.store.ListCouples(ctx)
	if err != nil {
		return nil, internal("Failed to fetch couples", err)
	}
	return couples, nil
}

// UpdateCouplePhoto replaces the shared photo reference of the caller's
// active couple. An empty string clears it.
func (s *CoupleService) UpdateCouplePhoto(ctx context.Context, userID uuid.UUID, patch models.CouplePatch) (*models.CoupleView, error) {
	couple, err := activeCoupleOf(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateCouple(ctx, couple.ID, patch)
	if err != nil {
		return nil, internal("Failed to update couple", err)
	}
	if updated == nil {
		return nil, apperrors.NotFound("Couple not found")
	}
	return s.view(ctx, updated.ID)
}

func (s *CoupleService) view(ctx context.Context, coupleID uuid.UUID) (*models.CoupleView, error) {
	c, err := s.store.GetCouple(ctx, coupleID)
	if err != nil {
		return nil, internal("Failed to load couple", err)
	}
	if c == nil {
		return nil, apperrors.NotFound("Couple not found")
	}
	users, err := s.store.UsersByID(ctx, c.Members())
	if err != nil {
		return nil, internal("Failed to load partners", err)
	}
	v := &models.CoupleView{Couple: *c, Initiator: users[c.InitiatorID].Summary()}
	if c.PartnerID != nil {
		v.Partner = users[*c.PartnerID].Summary()
	}
	return v, nil
}
