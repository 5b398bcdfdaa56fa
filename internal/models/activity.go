package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity action types.
const (
	ActionInviteAccepted     = "invite_accepted"
	ActionCoupleLeft         = "couple_left"
	ActionChallengeCreated   = "challenge_created"
	ActionChallengeFinished  = "challenge_finished"
	ActionChallengeCancelled = "challenge_cancelled"
	ActionTaskCreated        = "task_created"
	ActionTaskCompleted      = "task_completed"
	ActionCompletionUndone   = "completion_undone"
)

type Activity struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	CoupleID   uuid.UUID  `json:"coupleId" gorm:"type:uuid;index;not null"`
	UserID     uuid.UUID  `json:"userId" gorm:"type:uuid;not null"`
	ActionType string     `json:"actionType" gorm:"not null"`
	TargetID   *uuid.UUID `json:"targetId" gorm:"type:uuid"` // challenge, task or completion id depending on action
	Metadata   *string    `json:"metadata"`                  // JSON string for extra context
	CreatedAt  time.Time  `json:"createdAt" gorm:"index"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type ActivityPage struct {
	Activities []Activity `json:"activities"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
}
