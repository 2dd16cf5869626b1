package repo

import (
	"WardrobeAI/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

// ClothingItemRepository определяет контракт доступа к ClothingItem.
type ClothingItemRepository interface {
	Create(ctx context.Context, item *model.ClothingItem) error
	FindByID(ctx context.Context, id string) (*model.ClothingItem, error)
	FindByUserID(ctx context.Context, userID string) ([]model.ClothingItem, error)
	Update(ctx context.Context, id string, fields map[string]any) (*model.ClothingItem, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type clothingItemRepo struct {
	db *gorm.DB
}

// NewClothingItemRepository создаёт реализацию репозитория для ClothingItem.
func NewClothingItemRepository(db *gorm.DB) ClothingItemRepository {
	return &clothingItemRepo{db: db}
}

func (r *clothingItemRepo) Create(ctx context.Context, item *model.ClothingItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *clothingItemRepo) FindByID(ctx context.Context, id string) (*model.ClothingItem, error) {
	var item model.ClothingItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *clothingItemRepo) FindByUserID(ctx context.Context, userID string) ([]model.ClothingItem, error) {
	var items []model.ClothingItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *clothingItemRepo) Update(ctx context.Context, id string, fields map[string]any) (*model.ClothingItem, error) {
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&model.ClothingItem{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return r.FindByID(ctx, id)
}

func (r *clothingItemRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ClothingItem{})
	return res.RowsAffected > 0, res.Error
}
