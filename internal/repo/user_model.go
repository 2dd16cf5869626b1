package repo

import (
	"WardrobeAI/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

// UserModelRepository определяет контракт доступа к UserModel.
type UserModelRepository interface {
	Create(ctx context.Context, m *model.UserModel) error
	FindByID(ctx context.Context, id string) (*model.UserModel, error)
	FindByUserID(ctx context.Context, userID string) ([]model.UserModel, error)
	Update(ctx context.Context, id string, fields map[string]any) (*model.UserModel, error)
	Delete(ctx context.Context, id string) (bool, error)

	// SetPrimary снимает флаг is_primary со всех моделей пользователя
	// и выставляет его указанной модели. Оба шага выполняются в одной
	// транзакции, чтобы у пользователя всегда была ровно одна главная модель.
	SetPrimary(ctx context.Context, userID, modelID string) error

	// UpdateStatus обновляет статус и прогресс обработки модели.
	UpdateStatus(ctx context.Context, id, status string, progress int, errMsg string) error
}

type userModelRepo struct {
	db *gorm.DB
}

// NewUserModelRepository создаёт реализацию репозитория для UserModel.
func NewUserModelRepository(db *gorm.DB) UserModelRepository {
	return &userModelRepo{db: db}
}

func (r *userModelRepo) Create(ctx context.Context, m *model.UserModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *userModelRepo) FindByID(ctx context.Context, id string) (*model.UserModel, error) {
	var m model.UserModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *userModelRepo) FindByUserID(ctx context.Context, userID string) ([]model.UserModel, error) {
	var models []model.UserModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	return models, err
}

func (r *userModelRepo) Update(ctx context.Context, id string, fields map[string]any) (*model.UserModel, error) {
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&model.UserModel{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return r.FindByID(ctx, id)
}

func (r *userModelRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.UserModel{})
	return res.RowsAffected > 0, res.Error
}

func (r *userModelRepo) SetPrimary(ctx context.Context, userID, modelID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.UserModel{}).
			Where("user_id = ?", userID).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		res := tx.Model(&model.UserModel{}).
			Where("id = ? AND user_id = ?", modelID, userID).
			Update("is_primary", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *userModelRepo) UpdateStatus(ctx context.Context, id, status string, progress int, errMsg string) error {
	return r.db.WithContext(ctx).Model(&model.UserModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"processing_status":   status,
			"processing_progress": progress,
			"error_message":       errMsg,
		}).Error
}
