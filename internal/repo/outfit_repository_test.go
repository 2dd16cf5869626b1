package repo

import (
	"WardrobeAI/internal/model"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOutfitRepository_ItemOrderPreserved(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	r := NewOutfitRepository(db)
	ctx := context.Background()

	u := newTestUser(t, users)

	// порядок и дубликаты сохраняются как есть
	ids := model.StringList{"id-2", "id-1", "id-2"}
	outfit := &model.Outfit{
		ID:              uuid.NewString(),
		UserID:          u.ID,
		Name:            "Weekend",
		ClothingItemIDs: ids,
	}
	assert.NoError(t, r.Create(ctx, outfit))

	got, err := r.FindByID(ctx, outfit.ID)
	assert.NoError(t, err)
	assert.Equal(t, ids, got.ClothingItemIDs)
}

func TestOutfitRepository_UpdateFavorite(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	r := NewOutfitRepository(db)
	ctx := context.Background()

	u := newTestUser(t, users)
	outfit := &model.Outfit{ID: uuid.NewString(), UserID: u.ID, Name: "Office", ClothingItemIDs: model.StringList{"a"}}
	assert.NoError(t, r.Create(ctx, outfit))

	got, err := r.Update(ctx, outfit.ID, map[string]any{"is_favorite": true})
	assert.NoError(t, err)
	assert.True(t, got.IsFavorite)
	assert.Equal(t, "Office", got.Name)

	got, err = r.Update(ctx, outfit.ID, map[string]any{"generated_image_url": "https://example.com/img.png"})
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com/img.png", got.GeneratedImageURL)
}
