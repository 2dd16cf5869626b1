package model

import "time"

// Outfit — именованный набор предметов гардероба одного пользователя.
// ClothingItemIDs хранится в порядке, заданном при создании, без дедупликации.
type Outfit struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`

	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description,omitempty"`

	ClothingItemIDs StringList `gorm:"type:text" json:"clothing_item_ids"`
	Tags            StringList `gorm:"type:text" json:"tags,omitempty"`

	IsFavorite        bool   `gorm:"not null;default:false" json:"is_favorite"`
	GeneratedImageURL string `json:"generated_image_url,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
