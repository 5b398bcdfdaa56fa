package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string     `json:"name" gorm:"not null"`
	AvatarURL *string    `json:"avatarUrl"`
	CoupleID  *uuid.UUID `json:"coupleId" gorm:"type:uuid;index"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Summary is the public projection embedded in couple and challenge views.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}

// UserSummary is the (id, name, avatar) projection of a user.
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatarUrl"`
}

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// UserAuthProvider is one registered identity of a user. A user may hold
// several, and the set of their emails is what invites are matched against.
type UserAuthProvider struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `json:"userId" gorm:"type:uuid;index;not null"`
	Provider   string    `json:"provider" gorm:"not null;uniqueIndex:idx_provider_email"`
	Email      string    `json:"email" gorm:"not null;index;uniqueIndex:idx_provider_email"`
	Password   *string   `json:"-"`
	ProviderID *string   `json:"providerId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (p *UserAuthProvider) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// UserPatch carries the profile fields a caller may change. Nil fields are
// left untouched.
type UserPatch struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
}

func (p UserPatch) Empty() bool {
	return p.Name == nil && p.AvatarURL == nil
}

// Auth DTOs
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleAuthRequest struct {
	IDToken string `json:"idToken"`
}

type AuthUser struct {
	ID       uuid.UUID  `json:"id"`
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	CoupleID *uuid.UUID `json:"coupleId"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}
