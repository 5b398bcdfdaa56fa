package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Task struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ChallengeID    uuid.UUID `json:"challengeId" gorm:"type:uuid;index;not null"`
	OwnerID        uuid.UUID `json:"ownerId" gorm:"type:uuid;index;not null"`
	Name           string    `json:"name" gorm:"not null"`
	Description    *string   `json:"description"`
	Points         int       `json:"points" gorm:"not null"`
	MaxCompletions *int      `json:"maxCompletions"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TaskPatch carries the editable task fields. Nil fields are left untouched.
type TaskPatch struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	Points         *int    `json:"points"`
	MaxCompletions *int    `json:"maxCompletions"`
}

func (p TaskPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Points == nil && p.MaxCompletions == nil
}

// TaskProgress pairs a task with the number of completions logged for it.
type TaskProgress struct {
	Task            Task `json:"task"`
	CompletionCount int  `json:"completionCount"`
}

type TaskCompletion struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TaskID       uuid.UUID `json:"taskId" gorm:"type:uuid;index;not null"`
	UserID       uuid.UUID `json:"userId" gorm:"type:uuid;index;not null"`
	CompletedAt  time.Time `json:"completedAt" gorm:"not null;index"`
	PhotoURL     *string   `json:"photoUrl"`
	PointsEarned int       `json:"pointsEarned" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (tc *TaskCompletion) BeforeCreate(tx *gorm.DB) error {
	if tc.ID == uuid.Nil {
		tc.ID = uuid.New()
	}
	if tc.CompletedAt.IsZero() {
		tc.CompletedAt = time.Now().UTC()
	}
	return nil
}

// Task DTOs
type CreateTaskRequest struct {
	ChallengeID    string  `json:"challengeId"`
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	Points         int     `json:"points"`
	MaxCompletions *int    `json:"maxCompletions"`
}

type CreateTaskInput struct {
	ChallengeID    uuid.UUID
	Name           string
	Description    *string
	Points         int
	MaxCompletions *int
}

type CompleteTaskRequest struct {
	TaskID   string  `json:"taskId"`
	PhotoURL *string `json:"photoUrl"`
}

type CompleteTaskInput struct {
	TaskID   uuid.UUID
	PhotoRef *string
}
