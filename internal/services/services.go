// Package services holds the pairing, challenge and task rules. Every
// operation is a short read-decide-write sequence against the store;
// invariants that span rows are checked under row locks inside a
// transaction.
package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/arnold/couples-api/internal/apperrors"
	"github.com/arnold/couples-api/internal/models"
	"github.com/arnold/couples-api/internal/store"
	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func internal(msg string, err error) error {
	return apperrors.Wrap(apperrors.KindInternal, msg, err)
}

// coupleOf returns the couple the user belongs to, whatever its status.
func coupleOf(ctx context.Context, st *store.Store, userID uuid.UUID) (*models.Couple, error) {
	c, err := st.FindCoupleForUser(ctx, userID)
	if err != nil {
		return nil, internal("Failed to load couple", err)
	}
	if c == nil {
		return nil, apperrors.NotFound("You don't have a couple")
	}
	return c, nil
}

func activeCoupleOf(ctx context.Context, st *store.Store, userID uuid.UUID) (*models.Couple, error) {
	c, err := coupleOf(ctx, st, userID)
	if err != nil {
		return nil, err
	}
	if c.Status != models.CoupleActive {
		return nil, apperrors.BadRequest("You don't have an active couple")
	}
	return c, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
