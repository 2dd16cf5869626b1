package handlers

import (
	"WardrobeAI/internal/config"
	"WardrobeAI/internal/service"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ModelHandler — загрузка и управление фото-моделями пользователя.
type ModelHandler struct {
	Models *service.ModelService
	Logger *zap.SugaredLogger
	Config *config.Config
}

// NewModelHandler создаёт хендлер user models
func NewModelHandler(models *service.ModelService, logger *zap.SugaredLogger, cfg *config.Config) *ModelHandler {
	return &ModelHandler{Models: models, Logger: logger, Config: cfg}
}

// Upload принимает фото модели, обрабатывает и сохраняет её
func (h *ModelHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	data, ok := readImageUpload(w, r, h.Config.UploadMaxSizeMB, h.Logger)
	if !ok {
		return
	}

	m, err := h.Models.Upload(r.Context(), userID, data, r.FormValue("model_type"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, m, "Model uploaded successfully")
}

// List все модели пользователя
func (h *ModelHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	models, err := h.Models.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, models, "")
}

// GetPrimary основная модель пользователя
func (h *ModelHandler) GetPrimary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	m, err := h.Models.GetPrimary(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, m, "")
}

// SetPrimary назначает модель основной
func (h *ModelHandler) SetPrimary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	m, err := h.Models.SetPrimary(r.Context(), userID, chi.URLParam(r, "modelId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, m, "Primary model updated")
}

// Get одна модель
func (h *ModelHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	m, err := h.Models.Get(r.Context(), userID, chi.URLParam(r, "modelId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, m, "")
}

// Status статус обработки модели
func (h *ModelHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	m, err := h.Models.Get(r.Context(), userID, chi.URLParam(r, "modelId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"modelId":          m.ID,
		"processingStatus": m.ProcessingStatus,
		"progress":         m.ProcessingProgress,
		"errorMessage":     m.ErrorMessage,
	}, "")
}

// Delete удаление модели и её файлов
func (h *ModelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.Models.Delete(r.Context(), userID, chi.URLParam(r, "modelId")); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Model deleted successfully")
}

// Regenerate запускает фоновую переобработку модели
func (h *ModelHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	taskID, err := h.Models.Regenerate(r.Context(), userID, chi.URLParam(r, "modelId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusAccepted, map[string]any{"taskId": taskID}, "Model processing started")
}

// Task статус фоновой задачи переобработки
func (h *ModelHandler) Task(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	task, ok := h.Models.Task(chi.URLParam(r, "taskId"))
	if !ok {
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Message: "Task not found"})
		return
	}
	respondData(w, http.StatusOK, task, "")
}

// ApplyOutfit надевает набор предметов на модель через AI-генерацию
func (h *ModelHandler) ApplyOutfit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var in struct {
		ClothingItemIDs []string `json:"clothingItemIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	result, err := h.Models.ApplyOutfit(r.Context(), userID, chi.URLParam(r, "modelId"), in.ClothingItemIDs)
	if err != nil {
		respondError(w, err)
		return
	}

	msg := "Outfit applied to model"
	if !result.AIGenerated {
		msg = "Outfit created without AI generation"
	}
	respondData(w, http.StatusOK, result, msg)
}
