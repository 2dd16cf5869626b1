package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestModel_UploadAndList(t *testing.T) {
	env := newTestEnv(t, nil)
	userID, token := env.register(t, "model-upload@example.com")

	code, body := env.doMultipart(t, http.MethodPost, "/api/model/upload", token,
		map[string]string{"model_type": "portrait"}, testJPEG(t, 600, 900))
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Model uploaded successfully", body["message"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "portrait", data["model_type"])
	assert.Equal(t, "completed", data["processing_status"])
	assert.Equal(t, float64(100), data["processing_progress"])
	// первая модель пользователя сразу становится главной
	assert.Equal(t, true, data["is_primary"])
	assert.NotEmpty(t, data["original_image_url"])
	assert.NotEmpty(t, data["processed_image_url"])
	assert.NotEmpty(t, data["metadata"].(map[string]any)["thumbnail_url"])

	// вторая модель главной не становится
	secondID := uploadModel(t, env, token)

	code, body = env.do(t, http.MethodGet, "/api/model/user/"+userID, token, nil)
	assert.Equal(t, http.StatusOK, code)
	models := body["data"].([]any)
	assert.Len(t, models, 2)

	primaries := 0
	for _, m := range models {
		if m.(map[string]any)["is_primary"] == true {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries)

	code, body = env.do(t, http.MethodGet, "/api/model/primary/"+userID, token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.NotEqual(t, secondID, body["data"].(map[string]any)["id"])
}

func TestModel_UploadRejectsNonImage(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.register(t, "model-bad-upload@example.com")

	code, body := env.doMultipart(t, http.MethodPost, "/api/model/upload", token, nil,
		[]byte("definitely not a jpeg"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Uploaded file is not a valid image", body["message"])
}

func TestModel_PrimaryMissing(t *testing.T) {
	env := newTestEnv(t, nil)
	userID, token := env.register(t, "model-no-primary@example.com")

	code, body := env.do(t, http.MethodGet, "/api/model/primary/"+userID, token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "No primary model found", body["message"])
}

func TestModel_SetPrimary(t *testing.T) {
	env := newTestEnv(t, nil)
	userID, token := env.register(t, "model-set-primary@example.com")

	firstID := uploadModel(t, env, token)
	secondID := uploadModel(t, env, token)

	code, body := env.do(t, http.MethodPost, "/api/model/primary/"+userID+"/"+secondID, token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Primary model updated", body["message"])
	assert.Equal(t, true, body["data"].(map[string]any)["is_primary"])

	code, body = env.do(t, http.MethodGet, "/api/model/primary/"+userID, token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, secondID, body["data"].(map[string]any)["id"])

	// прежняя главная разжалована
	code, body = env.do(t, http.MethodGet, "/api/model/"+firstID+"/status", token, nil)
	assert.Equal(t, http.StatusOK, code)

	// чужая модель недоступна
	_, otherToken := env.register(t, "model-set-primary-other@example.com")
	code, body = env.do(t, http.MethodPost, "/api/model/primary/"+userID+"/"+secondID, otherToken, nil)
	assert.Equal(t, http.StatusOK, code) // userId в пути имеет приоритет над токеном

	otherUserID, otherToken := env.register(t, "model-foreign@example.com")
	code, body = env.do(t, http.MethodPost, "/api/model/primary/"+otherUserID+"/"+secondID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Model not found", body["message"])
}

func TestModel_StatusAndProgress(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.register(t, "model-status@example.com")
	modelID := uploadModel(t, env, token)

	for _, path := range []string{
		"/api/model/" + modelID + "/status",
		"/api/model/" + modelID + "/progress",
	} {
		code, body := env.do(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusOK, code)
		data := body["data"].(map[string]any)
		assert.Equal(t, modelID, data["modelId"])
		assert.Equal(t, "completed", data["processingStatus"])
		assert.Equal(t, float64(100), data["progress"])
	}

	code, body := env.do(t, http.MethodGet, "/api/model/no-such-model/status", token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Model not found", body["message"])
}

func TestModel_Delete(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.register(t, "model-delete@example.com")
	modelID := uploadModel(t, env, token)

	stored := env.store.Len()
	assert.Greater(t, stored, 0)

	code, body := env.do(t, http.MethodDelete, "/api/model/"+modelID, token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Model deleted successfully", body["message"])
	// оригинал и обработанное фото удалены из хранилища
	assert.Equal(t, stored-2, env.store.Len())

	code, _ = env.do(t, http.MethodDelete, "/api/model/"+modelID, token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

// waitForTask опрашивает задачу через API, пока она не завершится.
func waitForTask(t *testing.T, env *testEnv, token, taskID string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		code, body := env.do(t, http.MethodGet, "/api/model/tasks/"+taskID, token, nil)
		if code != http.StatusOK {
			t.Fatalf("get task: want 200, got %d (%v)", code, body)
		}
		task := body["data"].(map[string]any)
		if task["status"] != "processing" {
			return task
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("task did not finish in time")
	return nil
}

func TestModel_RegenerateTracksTask(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.register(t, "model-regenerate@example.com")
	modelID := uploadModel(t, env, token)

	code, body := env.do(t, http.MethodPost, "/api/model/"+modelID+"/regenerate", token, nil)
	assert.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, "Model processing started", body["message"])
	taskID := body["data"].(map[string]any)["taskId"].(string)
	assert.NotEmpty(t, taskID)

	// оригинал лежит в памяти и недоступен по HTTP, так что фоновая
	// переобработка завершается ошибкой и помечает модель failed
	task := waitForTask(t, env, token, taskID)
	assert.Equal(t, "failed", task["status"])

	code, body = env.do(t, http.MethodGet, "/api/model/"+modelID+"/status", token, nil)
	assert.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "failed", data["processingStatus"])
	assert.NotEmpty(t, data["errorMessage"])

	code, body = env.do(t, http.MethodGet, "/api/model/tasks/no-such-task", token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Task not found", body["message"])
}

func TestModel_ApplyOutfitWithAI(t *testing.T) {
	predict := newPredictOK(t)
	env := newTestEnv(t, predict)
	userID, token := env.register(t, "model-apply@example.com")

	modelID := uploadModel(t, env, token)
	itemID := createItem(t, env, userID, token, "Blazer", "Jackets", "navy")

	code, body := env.do(t, http.MethodPost, "/api/model/"+modelID+"/apply-outfit", token, map[string]any{
		"clothingItemIds": []string{itemID},
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Outfit applied to model", body["message"])

	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["aiGenerated"])
	assert.NotEmpty(t, data["generatedImageUrl"])

	outfit := data["outfit"].(map[string]any)
	assert.Equal(t, "AI Generated Outfit", outfit["name"])
	assert.Equal(t, data["generatedImageUrl"], outfit["generated_image_url"])
}

func TestModel_ApplyOutfitFallsBackWithoutAI(t *testing.T) {
	predict := newPredictFail(t)
	env := newTestEnv(t, predict)
	userID, token := env.register(t, "model-apply-fallback@example.com")

	modelID := uploadModel(t, env, token)
	itemID := createItem(t, env, userID, token, "Hoodie", "Sweaters", "gray")

	code, body := env.do(t, http.MethodPost, "/api/model/"+modelID+"/apply-outfit", token, map[string]any{
		"clothingItemIds": []string{itemID},
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Outfit created without AI generation", body["message"])

	data := body["data"].(map[string]any)
	assert.Equal(t, false, data["aiGenerated"])
	assert.Empty(t, data["generatedImageUrl"])
	assert.Equal(t, "AI Generated Outfit", data["outfit"].(map[string]any)["name"])
}

func TestModel_ApplyOutfitValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	userID, token := env.register(t, "model-apply-validate@example.com")
	modelID := uploadModel(t, env, token)

	code, body := env.do(t, http.MethodPost, "/api/model/"+modelID+"/apply-outfit", token, map[string]any{
		"clothingItemIds": []string{},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Clothing item IDs are required", body["message"])

	itemID := createItem(t, env, userID, token, "Shirt", "Shirts", "white")
	code, body = env.do(t, http.MethodPost, "/api/model/no-such-model/apply-outfit", token, map[string]any{
		"clothingItemIds": []string{itemID},
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Model not found", body["message"])
}
