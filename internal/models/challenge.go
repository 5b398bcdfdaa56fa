package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ChallengeActive    = "active"
	ChallengeCompleted = "completed"
	ChallengeCancelled = "cancelled"
)

// Period types, in the vocabulary clients send.
const (
	PeriodMonthly    = "mensal"
	PeriodQuarterly  = "trimestral"
	PeriodSemiannual = "semestral"
	PeriodAnnual     = "anual"
)

var PeriodTypes = []string{PeriodMonthly, PeriodQuarterly, PeriodSemiannual, PeriodAnnual}

func ValidPeriodType(p string) bool {
	for _, v := range PeriodTypes {
		if v == p {
			return true
		}
	}
	return false
}

type Challenge struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	CoupleID    uuid.UUID  `json:"coupleId" gorm:"type:uuid;not null;index;uniqueIndex:idx_challenges_one_active,where:status = 'active'"`
	Name        string     `json:"name" gorm:"not null"`
	StartDate   time.Time  `json:"startDate" gorm:"not null"`
	EndDate     time.Time  `json:"endDate" gorm:"not null"`
	PeriodType  string     `json:"periodType" gorm:"not null"`                    // mensal, trimestral, semestral, anual
	Status      string     `json:"status" gorm:"not null;default:'active';index"` // active, completed, cancelled
	WinnerID    *uuid.UUID `json:"winnerId" gorm:"type:uuid"`
	WinnerScore *int       `json:"winnerScore"`
	LoserScore  *int       `json:"loserScore"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (c *Challenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// InWindow reports whether t falls inside the challenge's date range.
func (c *Challenge) InWindow(t time.Time) bool {
	return !t.Before(c.StartDate) && !t.After(c.EndDate)
}

// ChallengeResult is a finished challenge joined with the winner projection.
// Winner is nil on a draw.
type ChallengeResult struct {
	Challenge
	Winner *UserSummary `json:"winner"`
}

// PartnerScore is one partner's running total for a challenge.
type PartnerScore struct {
	UserID      *uuid.UUID `json:"userId"`
	Points      int        `json:"points"`
	Tasks       int        `json:"tasks"` // distinct tasks completed at least once
	Completions int        `json:"completions"`
}

// ChallengeScore is the per-partner aggregate used by the scoring engine.
type ChallengeScore struct {
	ChallengeID uuid.UUID    `json:"challengeId"`
	First       PartnerScore `json:"first"`
	Second      PartnerScore `json:"second"`
}

// Completions is the number of completions recorded by both partners.
func (s ChallengeScore) Completions() int {
	return s.First.Completions + s.Second.Completions
}

// Challenge DTOs
type CreateChallengeRequest struct {
	Name       string `json:"name"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	PeriodType string `json:"periodType"`
}

type CreateChallengeInput struct {
	Name       string
	StartDate  time.Time
	EndDate    time.Time
	PeriodType string
}
