package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuth_RegisterLoginMe(t *testing.T) {
	env := newTestEnv(t, nil)

	userID, token := env.register(t, "auth-flow@example.com")
	assert.NotEmpty(t, userID)
	assert.NotEmpty(t, token)

	// повторная регистрация того же email — 409
	code, body := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    "auth-flow@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, false, body["success"])

	// вход с верным паролем
	code, body = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "auth-flow@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, code)
	loginToken := body["data"].(map[string]any)["tokens"].(map[string]any)["access_token"].(string)
	assert.NotEmpty(t, loginToken)

	// вход с неверным паролем
	code, _ = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "auth-flow@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, code)

	// профиль по токену
	code, body = env.do(t, http.MethodGet, "/api/auth/me", loginToken, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, userID, body["data"].(map[string]any)["id"])

	// профиль без токена
	code, _ = env.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAuth_RegisterValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	// короткий пароль
	code, body := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    "short-pass@example.com",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["message"], "at least 8 characters")

	// мусорный email
	code, _ = env.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    "not-an-email",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAuth_RefreshFlow(t *testing.T) {
	env := newTestEnv(t, nil)

	code, body := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    "refresh-flow@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, code)
	tokens := body["data"].(map[string]any)["tokens"].(map[string]any)

	// обмен refresh-токена на новую пару
	code, body = env.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]any{
		"refresh_token": tokens["refresh_token"],
	})
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["data"].(map[string]any)["access_token"])

	// access-токен в роли refresh не принимается
	code, _ = env.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]any{
		"refresh_token": tokens["access_token"],
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAuth_ChangePassword(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.register(t, "change-pass@example.com")

	code, _ := env.do(t, http.MethodPut, "/api/auth/change-password", token, map[string]any{
		"current_password": "password123",
		"new_password":     "newpassword456",
	})
	assert.Equal(t, http.StatusOK, code)

	// старый пароль больше не работает
	code, _ = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "change-pass@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "change-pass@example.com",
		"password": "newpassword456",
	})
	assert.Equal(t, http.StatusOK, code)
}
