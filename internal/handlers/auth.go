package handlers

import (
	"WardrobeAI/internal/config"
	"WardrobeAI/internal/middleware"
	"WardrobeAI/internal/service"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// AuthHandler обрабатывает жизненный цикл учётной записи.
type AuthHandler struct {
	Auth   *service.AuthService
	Users  *service.UserService
	Logger *zap.SugaredLogger
	Config *config.Config
}

// NewAuthHandler создаёт хендлер auth
func NewAuthHandler(auth *service.AuthService, users *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Auth: auth, Users: users, Logger: logger, Config: cfg}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Register регистрация нового пользователя
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Register: invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	user, tokens, err := h.Auth.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		h.Logger.Warnw("Register: failed", "email", req.Email, "error", err)
		respondError(w, err)
		return
	}

	respondData(w, http.StatusCreated, map[string]any{
		"user":   user,
		"tokens": tokens,
	}, "User registered successfully")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login вход по email и паролю
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Login: invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	user, tokens, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]any{
		"user":   user,
		"tokens": tokens,
	}, "Login successful")
}

// Logout выход. Токены stateless, серверного состояния сессии нет.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondMessage(w, http.StatusOK, "Logged out successfully")
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh обмен refresh-токена на новую пару
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Refresh token is required"})
		return
	}

	tokens, err := h.Auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, tokens, "")
}

// Me профиль авторизованного пользователя
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "Authentication required"})
		return
	}

	user, err := h.Users.Get(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, user, "")
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword смена пароля авторизованного пользователя
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "Authentication required"})
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	if err := h.Auth.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Password changed successfully")
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword запускает сброс пароля
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Email is required"})
		return
	}

	if err := h.Auth.ForgotPassword(r.Context(), req.Email); err != nil {
		h.Logger.Errorw("ForgotPassword: failed", "email", req.Email, "error", err)
		respondError(w, err)
		return
	}
	// независимо от существования адреса
	respondMessage(w, http.StatusOK, "If the email exists, a reset link has been sent")
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword устанавливает новый пароль по токену сброса
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Token and password are required"})
		return
	}

	if err := h.Auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Password reset successfully")
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

// VerifyEmail подтверждает email по токену
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Token is required"})
		return
	}

	if err := h.Auth.VerifyEmail(r.Context(), req.Token); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Email verified successfully")
}

// ResendVerification повторно отправляет письмо подтверждения
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "Authentication required"})
		return
	}

	if err := h.Auth.ResendVerification(r.Context(), userID); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Verification email sent")
}
