package model

import "time"

// Статусы обработки фотографии модели.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// UserModel — загруженная пользователем фотография-«модель», на которую
// примеряются сгенерированные образы. Не имеет отношения к ML-моделям.
type UserModel struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`

	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	ModelType         string `gorm:"not null;default:full_body" json:"model_type"`
	OriginalImageURL  string `gorm:"not null" json:"original_image_url"`
	ProcessedImageURL string `json:"processed_image_url,omitempty"`

	ProcessingStatus   string `gorm:"not null;default:pending" json:"processing_status"`
	ProcessingProgress int    `gorm:"not null;default:0" json:"processing_progress"`
	ErrorMessage       string `json:"error_message,omitempty"`

	IsPrimary bool    `gorm:"not null;default:false" json:"is_primary"`
	Metadata  JSONMap `gorm:"type:text" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
