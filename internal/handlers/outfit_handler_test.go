package handlers_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// uploadModel загружает фото модели через API и возвращает её id.
func uploadModel(t *testing.T, env *testEnv, token string) string {
	t.Helper()
	code, body := env.doMultipart(t, http.MethodPost, "/api/model/upload", token, nil, testJPEG(t, 600, 900))
	if code != http.StatusCreated {
		t.Fatalf("upload model: want 201, got %d (%v)", code, body)
	}
	return body["data"].(map[string]any)["id"].(string)
}

func createOutfit(t *testing.T, env *testEnv, userID, token string, itemIDs []string) string {
	t.Helper()
	code, body := env.do(t, http.MethodPost, "/api/outfits/"+userID, token, map[string]any{
		"name":              "Test outfit",
		"clothing_item_ids": itemIDs,
	})
	if code != http.StatusCreated {
		t.Fatalf("create outfit: want 201, got %d (%v)", code, body)
	}
	return body["data"].(map[string]any)["id"].(string)
}

func TestOutfit_CRUDAndFavorites(t *testing.T) {
	env := newTestEnv(t, nil)
	userID, token := env.register(t, "outfit-crud@example.com")

	itemID := createItem(t, env, userID, token, "Shirt", "Shirts", "blue")
	outfitID := createOutfit(t, env, userID, token, []string{itemID})

	// чужой предмет в образе отклоняется
	code, body := env.do(t, http.MethodPost, "/api/outfits/"+userID, token, map[string]any{
		"name":              "Bad outfit",
		"clothing_item_ids": []string{"no-such-item"},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["message"], "Invalid clothing item: no-such-item")

	// переключение избранного
	code, body = env.do(t, http.MethodPost, "/api/outfits/"+userID+"/"+outfitID+"/favorite", token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Outfit added to favorites", body["message"])

	code, body = env.do(t, http.MethodGet, "/api/outfits/"+userID+"/favorites", token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"].([]any), 1)

	code, body = env.do(t, http.MethodPost, "/api/outfits/"+userID+"/"+outfitID+"/favorite", token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Outfit removed from favorites", body["message"])

	// удаление
	code, _ = env.do(t, http.MethodDelete, "/api/outfits/"+userID+"/"+outfitID, token, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = env.do(t, http.MethodGet, "/api/outfits/"+userID+"/"+outfitID, token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestOutfit_ShareAndShared(t *testing.T) {
	env := newTestEnv(t, nil)
	userID, token := env.register(t, "outfit-share@example.com")

	itemID := createItem(t, env, userID, token, "Shirt", "Shirts", "blue")
	outfitID := createOutfit(t, env, userID, token, []string{itemID})

	code, body := env.do(t, http.MethodPost, "/api/outfits/"+userID+"/"+outfitID+"/share", token, nil)
	assert.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.True(t, strings.HasPrefix(data["shareId"].(string), "outfit_"+outfitID))
	assert.NotEmpty(t, data["shareUrl"])

	// просмотр расшаренного образа пока не реализован
	code, _ = env.do(t, http.MethodGet, "/api/outfits/shared/some-share-id", token, nil)
	assert.Equal(t, http.StatusNotImplemented, code)
}

func TestOutfit_GenerateFullCycle(t *testing.T) {
	env := newTestEnv(t, newPredictOK(t))
	userID, token := env.register(t, "outfit-generate@example.com")

	shirt := createItem(t, env, userID, token, "Blue shirt", "Shirts", "blue")
	pants := createItem(t, env, userID, token, "Black pants", "Pants", "black")
	uploadModel(t, env, token)
	outfitID := createOutfit(t, env, userID, token, []string{shirt, pants})

	code, body := env.do(t, http.MethodPost, "/api/outfits/"+userID+"/generate", token, map[string]any{
		"outfitId": outfitID,
		"style":    "elegant",
	})
	assert.Equal(t, http.StatusOK, code)

	data := body["data"].(map[string]any)
	assert.Equal(t, outfitID, data["outfitId"])
	assert.NotEmpty(t, data["generatedImageUrl"])
	assert.Len(t, data["clothingItems"].([]any), 2)
	assert.NotEmpty(t, data["userModel"].(map[string]any)["id"])
	assert.Equal(t, "elegant", data["generationMetadata"].(map[string]any)["style"])

	// URL сохранён на образе
	outfit, err := env.outfits.FindByID(context.Background(), outfitID)
	assert.NoError(t, err)
	assert.NotEmpty(t, outfit.GeneratedImageURL)
}

func TestOutfit_GenerateWithoutModel(t *testing.T) {
	env := newTestEnv(t, newPredictOK(t))
	userID, token := env.register(t, "outfit-nomodel@example.com")

	itemID := createItem(t, env, userID, token, "Shirt", "Shirts", "blue")
	outfitID := createOutfit(t, env, userID, token, []string{itemID})

	code, body := env.do(t, http.MethodPost, "/api/outfits/"+userID+"/generate", token, map[string]any{
		"outfitId": outfitID,
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "No user model found. Please upload a model first.", body["message"])
}

func TestOutfit_GenerateFailureLeavesOutfitUntouched(t *testing.T) {
	env := newTestEnv(t, newPredictFail(t))
	userID, token := env.register(t, "outfit-genfail@example.com")

	itemID := createItem(t, env, userID, token, "Shirt", "Shirts", "blue")
	uploadModel(t, env, token)
	outfitID := createOutfit(t, env, userID, token, []string{itemID})

	code, body := env.do(t, http.MethodPost, "/api/outfits/"+userID+"/generate", token, map[string]any{
		"outfitId": outfitID,
	})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Failed to generate outfit image", body["message"])
	assert.NotEmpty(t, body["error"])

	outfit, err := env.outfits.FindByID(context.Background(), outfitID)
	assert.NoError(t, err)
	assert.Empty(t, outfit.GeneratedImageURL)
}

func TestOutfit_PreviewDoesNotPersist(t *testing.T) {
	env := newTestEnv(t, newPredictOK(t))
	userID, token := env.register(t, "outfit-preview@example.com")

	itemID := createItem(t, env, userID, token, "Shirt", "Shirts", "blue")
	uploadModel(t, env, token)
	outfitID := createOutfit(t, env, userID, token, []string{itemID})

	code, body := env.do(t, http.MethodPost, "/api/outfits/"+userID+"/preview", token, map[string]any{
		"clothingItemIds": []string{itemID},
	})
	assert.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["previewImageUrl"])
	assert.Equal(t, true, data["generationMetadata"].(map[string]any)["isPreview"])

	// образ не изменился
	outfit, err := env.outfits.FindByID(context.Background(), outfitID)
	assert.NoError(t, err)
	assert.Empty(t, outfit.GeneratedImageURL)
}

func TestOutfit_PreviewRejectsUnknownItem(t *testing.T) {
	env := newTestEnv(t, newPredictOK(t))
	userID, token := env.register(t, "outfit-preview-bad@example.com")
	uploadModel(t, env, token)

	// превью, в отличие от генерации, строго валидирует каждый id
	code, body := env.do(t, http.MethodPost, "/api/outfits/"+userID+"/preview", token, map[string]any{
		"clothingItemIds": []string{"ghost-item"},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["message"], "Invalid clothing item: ghost-item")
}
