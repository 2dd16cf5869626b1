package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fillWardrobe создаёт минимальный гардероб, из которого стилист может
// собирать комплекты: верх, низ и обувь.
func fillWardrobe(t *testing.T, env *testEnv, userID, token string) {
	t.Helper()
	createItem(t, env, userID, token, "White tee", "T-Shirts", "white")
	createItem(t, env, userID, token, "Black jeans", "Pants", "black")
	createItem(t, env, userID, token, "Sneakers", "Sneakers", "white")
}

func TestStylist_Recommendations(t *testing.T) {
	env := newTestEnv(t, nil)
	userID, token := env.register(t, "stylist-recs@example.com")
	fillWardrobe(t, env, userID, token)

	code, body := env.do(t, http.MethodPost, "/api/ai-stylist/"+userID+"/recommendations", token, nil)
	assert.Equal(t, http.StatusOK, code)
	recs := body["data"].([]any)
	assert.Len(t, recs, 1)

	rec := recs[0].(map[string]any)
	assert.Len(t, rec["items"].([]any), 3)
	assert.Equal(t, "Color coordination and style balance", rec["reason"])
	assert.GreaterOrEqual(t, rec["confidence"].(float64), float64(70))
}

func TestStylist_RecommendationsEmptyWardrobe(t *testing.T) {
	env := newTestEnv(t, nil)
	userID, token := env.register(t, "stylist-empty@example.com")

	code, body := env.do(t, http.MethodPost, "/api/ai-stylist/"+userID+"/recommendations", token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["data"])
}

func TestStylist_StyleAnalysisAndSuggestions(t *testing.T) {
	env := newTestEnv(t, nil)
	userID, token := env.register(t, "stylist-analysis@example.com")
	fillWardrobe(t, env, userID, token)

	code, body := env.do(t, http.MethodPost, "/api/ai-stylist/"+userID+"/style-analysis", token, nil)
	assert.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Minimalist", data["stylePersonality"])
	assert.Equal(t, float64(3), data["totalItems"])
	assert.NotEmpty(t, data["dominantCategories"])

	code, body = env.do(t, http.MethodPost, "/api/ai-stylist/"+userID+"/outfit-suggestions?max=5", token, nil)
	assert.Equal(t, http.StatusOK, code)
	combos := body["data"].([]any)
	assert.Len(t, combos, 1)
	assert.Len(t, combos[0].(map[string]any)["items"].([]any), 2)
}

func TestStylist_SeasonalAndOccasion(t *testing.T) {
	env := newTestEnv(t, nil)
	userID, token := env.register(t, "stylist-seasonal@example.com")
	fillWardrobe(t, env, userID, token)

	code, body := env.do(t, http.MethodGet, "/api/ai-stylist/"+userID+"/seasonal/Fall", token, nil)
	assert.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Fall", data["season"])
	assert.NotEmpty(t, data["tips"])

	code, body = env.do(t, http.MethodPost, "/api/ai-stylist/"+userID+"/occasion/work", token, nil)
	assert.Equal(t, http.StatusOK, code)
	data = body["data"].(map[string]any)
	assert.Equal(t, "work", data["occasion"])
	assert.NotEmpty(t, data["suggestions"])
}

func TestStylist_StyleProfileRoundTrip(t *testing.T) {
	env := newTestEnv(t, nil)
	userID, token := env.register(t, "stylist-profile@example.com")

	code, body := env.do(t, http.MethodGet, "/api/ai-stylist/"+userID+"/style-profile", token, nil)
	assert.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Contains(t, data, "styles")
	assert.Contains(t, data, "occasions")

	code, body = env.do(t, http.MethodPut, "/api/ai-stylist/"+userID+"/style-profile", token, map[string]any{
		"styles": []string{"casual", "street"},
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Style profile updated", body["message"])

	code, body = env.do(t, http.MethodGet, "/api/ai-stylist/"+userID+"/style-profile", token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"casual", "street"}, body["data"].(map[string]any)["styles"])
}

func TestStylist_TrendsAndFeedback(t *testing.T) {
	env := newTestEnv(t, nil)
	userID, token := env.register(t, "stylist-trends@example.com")
	fillWardrobe(t, env, userID, token)

	// общий список трендов не требует userId в пути
	code, body := env.do(t, http.MethodGet, "/api/ai-stylist/trends/current", token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["data"])

	code, _ = env.do(t, http.MethodGet, "/api/ai-stylist/trends/current", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = env.do(t, http.MethodPost, "/api/ai-stylist/"+userID+"/trends/personalized", token, nil)
	assert.Equal(t, http.StatusOK, code)
	trends := body["data"].([]any)
	assert.Len(t, trends, 3)
	assert.Contains(t, trends[0].(map[string]any)["reason"], "Based on your")

	code, body = env.do(t, http.MethodPost, "/api/ai-stylist/"+userID+"/feedback", token, map[string]any{
		"outfitId": "some-outfit",
		"rating":   5,
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Feedback recorded", body["message"])
}

func TestStylist_ColorAnalysisAndMatch(t *testing.T) {
	env := newTestEnv(t, nil)
	userID, token := env.register(t, "stylist-colors@example.com")
	createItem(t, env, userID, token, "White tee", "T-Shirts", "white")
	createItem(t, env, userID, token, "Blue jeans", "Pants", "blue")
	createItem(t, env, userID, token, "Navy coat", "Jackets", "navy")

	code, body := env.do(t, http.MethodPost, "/api/ai-stylist/"+userID+"/color-analysis", token, nil)
	assert.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["dominantColors"])
	assert.NotEmpty(t, data["palette"])

	// green из холодной семьи: сочетается с blue и navy, но не с white
	code, body = env.do(t, http.MethodPost, "/api/ai-stylist/"+userID+"/color-match?color=green", token, nil)
	assert.Equal(t, http.StatusOK, code)
	matches := body["data"].([]any)
	assert.Len(t, matches, 2)
}
