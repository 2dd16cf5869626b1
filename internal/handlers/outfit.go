package handlers

import (
	"WardrobeAI/internal/config"
	"WardrobeAI/internal/service"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OutfitHandler — CRUD образов и генерация их изображений.
type OutfitHandler struct {
	Outfits *service.OutfitService
	Logger  *zap.SugaredLogger
	Config  *config.Config
}

// NewOutfitHandler создаёт хендлер outfits
func NewOutfitHandler(outfits *service.OutfitService, logger *zap.SugaredLogger, cfg *config.Config) *OutfitHandler {
	return &OutfitHandler{Outfits: outfits, Logger: logger, Config: cfg}
}

// List образы пользователя
func (h *OutfitHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	outfits, err := h.Outfits.List(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, outfits, "")
}

// Create новый образ из существующих предметов
func (h *OutfitHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var in service.CreateOutfitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	outfit, err := h.Outfits.Create(r.Context(), userID, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, outfit, "Outfit created successfully")
}

// Get один образ
func (h *OutfitHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	outfit, err := h.Outfits.Get(r.Context(), userID, chi.URLParam(r, "outfitId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, outfit, "")
}

// Update частичное обновление образа
func (h *OutfitHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var in service.UpdateOutfitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	outfit, err := h.Outfits.Update(r.Context(), userID, chi.URLParam(r, "outfitId"), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, outfit, "Outfit updated successfully")
}

// Delete удаление образа
func (h *OutfitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.Outfits.Delete(r.Context(), userID, chi.URLParam(r, "outfitId")); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Outfit deleted successfully")
}

// Favorites избранные образы
func (h *OutfitHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	outfits, err := h.Outfits.Favorites(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, outfits, "")
}

// ToggleFavorite переключает флаг избранного
func (h *OutfitHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	outfit, err := h.Outfits.ToggleFavorite(r.Context(), userID, chi.URLParam(r, "outfitId"))
	if err != nil {
		respondError(w, err)
		return
	}

	msg := "Outfit removed from favorites"
	if outfit.IsFavorite {
		msg = "Outfit added to favorites"
	}
	respondData(w, http.StatusOK, outfit, msg)
}

// Share выдаёт публичную ссылку на образ
func (h *OutfitHandler) Share(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	link, err := h.Outfits.Share(r.Context(), userID, chi.URLParam(r, "outfitId"), h.Config.BaseURL)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, link, "Share link created")
}

// GetShared просмотр опубликованного образа. Пока не реализован.
func (h *OutfitHandler) GetShared(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotImplemented, envelope{Success: false, Message: "Shared outfit viewing not implemented yet"})
}

// Stats агрегаты по образам
func (h *OutfitHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	stats, err := h.Outfits.Stats(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, stats, "")
}

// Generate запускает генерацию изображения образа на модели пользователя
func (h *OutfitHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var in service.GenerateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	result, err := h.Outfits.Generate(r.Context(), userID, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, result, "Outfit image generated successfully")
}

// Preview генерирует изображение без сохранения результата
func (h *OutfitHandler) Preview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var in service.PreviewInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	result, err := h.Outfits.Preview(r.Context(), userID, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, result, "Preview generated successfully")
}
