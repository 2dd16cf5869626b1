package model

import "time"

// User — учётная запись владельца гардероба.
type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`

	Preferences JSONMap `gorm:"type:text" json:"preferences"`

	OnboardingCompleted bool `gorm:"not null;default:false" json:"onboarding_completed"`
	EmailVerified       bool `gorm:"not null;default:false" json:"email_verified"`
	IsActive            bool `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
