package handlers

import (
	"WardrobeAI/internal/service"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StylistHandler — рекомендации AI-стилиста.
type StylistHandler struct {
	Stylist *service.StylistService
	Logger  *zap.SugaredLogger
}

// NewStylistHandler создаёт хендлер stylist
func NewStylistHandler(stylist *service.StylistService, logger *zap.SugaredLogger) *StylistHandler {
	return &StylistHandler{Stylist: stylist, Logger: logger}
}

// Recommendations подборки образов из гардероба пользователя
func (h *StylistHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	recs, err := h.Stylist.Recommendations(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, recs, "")
}

// StyleAnalysis анализ стиля по составу гардероба
func (h *StylistHandler) StyleAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	analysis, err := h.Stylist.StyleAnalysis(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, analysis, "")
}

// OutfitSuggestions комбинации верх-низ
func (h *StylistHandler) OutfitSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	maxCombinations, _ := strconv.Atoi(r.URL.Query().Get("max"))
	combos, err := h.Stylist.OutfitSuggestions(r.Context(), userID, maxCombinations)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, combos, "")
}

// Seasonal сезонные рекомендации
func (h *StylistHandler) Seasonal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	result, err := h.Stylist.Seasonal(r.Context(), userID, chi.URLParam(r, "season"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, result, "")
}

// Occasion рекомендации под событие
func (h *StylistHandler) Occasion(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	result, err := h.Stylist.Occasion(r.Context(), userID, chi.URLParam(r, "occasion"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, result, "")
}

// StyleProfile сохранённый стилевой профиль
func (h *StylistHandler) StyleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	profile, err := h.Stylist.StyleProfile(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, profile, "")
}

// UpdateStyleProfile обновление стилевого профиля
func (h *StylistHandler) UpdateStyleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var profile map[string]any
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	updated, err := h.Stylist.UpdateStyleProfile(r.Context(), userID, profile)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, updated, "Style profile updated")
}

// Feedback оценка рекомендации
func (h *StylistHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var in struct {
		OutfitID string `json:"outfitId"`
		Rating   int    `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	if err := h.Stylist.Feedback(r.Context(), userID, in.OutfitID, in.Rating); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Feedback recorded")
}

// CurrentTrends общие модные тренды
func (h *StylistHandler) CurrentTrends(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	respondData(w, http.StatusOK, h.Stylist.CurrentTrends(), "")
}

// PersonalizedTrends тренды с привязкой к гардеробу пользователя
func (h *StylistHandler) PersonalizedTrends(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	trends, err := h.Stylist.PersonalizedTrends(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, trends, "")
}

// ColorAnalysis разбор цветовой палитры гардероба
func (h *StylistHandler) ColorAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	analysis, err := h.Stylist.ColorAnalysis(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, analysis, "")
}

// ColorMatch предметы, сочетающиеся с заданным цветом
func (h *StylistHandler) ColorMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	items, err := h.Stylist.ColorMatch(r.Context(), userID, r.URL.Query().Get("color"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, items, "")
}
