package handlers

import (
	"WardrobeAI/internal/config"
	"WardrobeAI/internal/middleware"
	"WardrobeAI/internal/model"
	"WardrobeAI/internal/service"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserHandler — профиль и предпочтения пользователя.
type UserHandler struct {
	Users  *service.UserService
	Logger *zap.SugaredLogger
	Config *config.Config
}

// NewUserHandler создаёт хендлер users
func NewUserHandler(users *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{Users: users, Logger: logger, Config: cfg}
}

// requireUser проверяет авторизацию. Если в пути есть userId, он имеет
// приоритет над идентификатором из токена.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	tokenUserID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "Authentication required"})
		return "", false
	}
	if userID := chi.URLParam(r, "userId"); userID != "" {
		return userID, true
	}
	return tokenUserID, true
}

// Get профиль пользователя
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := h.Users.Get(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, user, "")
}

// Update частичное обновление профиля
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req service.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Update: invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	user, err := h.Users.Update(r.Context(), userID, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, user, "Profile updated successfully")
}

// Delete удаление учётной записи
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.Users.Delete(r.Context(), userID); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Account deleted successfully")
}

// GetPreferences предпочтения пользователя
func (h *UserHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	prefs, err := h.Users.GetPreferences(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, prefs, "")
}

// UpdatePreferences слияние новых предпочтений с существующими
func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var prefs model.JSONMap
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	merged, err := h.Users.UpdatePreferences(r.Context(), userID, prefs)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, merged, "Preferences updated successfully")
}

// CompleteOnboarding отметка о прохождении онбординга
func (h *UserHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.Users.CompleteOnboarding(r.Context(), userID); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Onboarding completed")
}

// UploadProfileImage загрузка аватара профиля (multipart)
func (h *UserHandler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	data, ok := readImageUpload(w, r, h.Config.UploadMaxSizeMB, h.Logger)
	if !ok {
		return
	}

	user, err := h.Users.UploadProfileImage(r.Context(), userID, data)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, user, "Profile image updated")
}

// readImageUpload читает файл image из multipart-формы с лимитом размера.
func readImageUpload(w http.ResponseWriter, r *http.Request, maxSizeMB int, logger *zap.SugaredLogger) ([]byte, bool) {
	maxBody := int64(maxSizeMB)*1024*1024 + 1*1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		logger.Warnw("readImageUpload: invalid multipart form", "error", err)
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid multipart form"})
		return nil, false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Image file is required"})
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Failed to read image"})
		return nil, false
	}
	if int64(len(data)) > int64(maxSizeMB)*1024*1024 {
		writeJSON(w, http.StatusRequestEntityTooLarge, envelope{Success: false, Message: "Image is too large"})
		return nil, false
	}
	return data, true
}
