package model

import "time"

// ClothingItem — предмет гардероба пользователя.
// Category и Color обязательны при создании, остальное опционально.
type ClothingItem struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`

	// Связи
	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Name     string `gorm:"not null" json:"name"`
	Category string `gorm:"not null" json:"category"`
	Color    string `gorm:"not null" json:"color"`

	Brand        string     `json:"brand,omitempty"`
	Size         string     `json:"size,omitempty"`
	Season       StringList `gorm:"type:text" json:"season,omitempty"`
	Tags         StringList `gorm:"type:text" json:"tags,omitempty"`
	Price        *float64   `json:"price,omitempty"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`

	ImageURL string  `json:"image_url,omitempty"`
	Metadata JSONMap `gorm:"type:text" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
