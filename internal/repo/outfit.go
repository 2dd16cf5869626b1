package repo

import (
	"WardrobeAI/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

// OutfitRepository определяет контракт доступа к Outfit.
type OutfitRepository interface {
	Create(ctx context.Context, outfit *model.Outfit) error
	FindByID(ctx context.Context, id string) (*model.Outfit, error)
	FindByUserID(ctx context.Context, userID string) ([]model.Outfit, error)
	Update(ctx context.Context, id string, fields map[string]any) (*model.Outfit, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type outfitRepo struct {
	db *gorm.DB
}

// NewOutfitRepository создаёт реализацию репозитория для Outfit.
func NewOutfitRepository(db *gorm.DB) OutfitRepository {
	return &outfitRepo{db: db}
}

func (r *outfitRepo) Create(ctx context.Context, outfit *model.Outfit) error {
	return r.db.WithContext(ctx).Create(outfit).Error
}

func (r *outfitRepo) FindByID(ctx context.Context, id string) (*model.Outfit, error) {
	var outfit model.Outfit
	err := r.db.WithContext(ctx).First(&outfit, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &outfit, nil
}

func (r *outfitRepo) FindByUserID(ctx context.Context, userID string) ([]model.Outfit, error) {
	var outfits []model.Outfit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&outfits).Error
	return outfits, err
}

func (r *outfitRepo) Update(ctx context.Context, id string, fields map[string]any) (*model.Outfit, error) {
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&model.Outfit{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return r.FindByID(ctx, id)
}

func (r *outfitRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Outfit{})
	return res.RowsAffected > 0, res.Error
}
