package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CouplePending   = "pending"
	CoupleActive    = "active"
	CoupleInactive  = "inactive"
	CoupleCancelled = "cancelled"
)

type Couple struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	InitiatorID  uuid.UUID  `json:"initiatorId" gorm:"type:uuid;index;not null"`
	PartnerID    *uuid.UUID `json:"partnerId" gorm:"type:uuid;index"`
	InvitedEmail *string    `json:"invitedEmail" gorm:"index"`
	InvitedAt    *time.Time `json:"invitedAt"`
	Status       string     `json:"status" gorm:"not null;default:'pending';index"` // pending, active, inactive, cancelled
	PhotoURL     *string    `json:"photoUrl"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (c *Couple) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// HasMember reports whether userID occupies either partner slot.
func (c *Couple) HasMember(userID uuid.UUID) bool {
	if c.InitiatorID == userID {
		return true
	}
	return c.PartnerID != nil && *c.PartnerID == userID
}

// Members returns the user ids occupying the couple's slots.
func (c *Couple) Members() []uuid.UUID {
	ids := []uuid.UUID{c.InitiatorID}
	if c.PartnerID != nil {
		ids = append(ids, *c.PartnerID)
	}
	return ids
}

// CouplePatch carries the couple fields that can change outside of the
// pairing state machine.
type CouplePatch struct {
	PhotoURL *string `json:"photoUrl"`
}

func (p CouplePatch) Empty() bool {
	return p.PhotoURL == nil
}

// CoupleView is a couple joined with its partners' public projections.
type CoupleView struct {
	Couple
	Initiator *UserSummary `json:"initiator"`
	Partner   *UserSummary `json:"partner"`
}

// Couple DTOs
type CreateInviteRequest struct {
	InvitedEmail string `json:"invitedEmail"`
}

type UpdateCouplePhotoRequest struct {
	PhotoURL *string `json:"photoUrl"`
}
