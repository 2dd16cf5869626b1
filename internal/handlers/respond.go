package handlers

import (
	"WardrobeAI/internal/service"
	"encoding/json"
	"errors"
	"net/http"
)

// envelope — общий формат JSON-ответа API.
type envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination — блок пагинации списковых ответов.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// respondData отвечает успешным конвертом.
func respondData(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, envelope{Success: true, Data: data, Message: message})
}

// respondList отвечает успешным конвертом с пагинацией.
func respondList(w http.ResponseWriter, data any, p Pagination) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Pagination: &p})
}

// respondError отображает доменную ошибку в HTTP-статус и конверт с
// человекочитаемым сообщением.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"
	detail := ""

	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Message
		detail = svcErr.Detail
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidState):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrServiceUnavailable):
		// исторически отдаём 500, а не 503
		status = http.StatusInternalServerError
	default:
		message = "Internal server error"
	}

	writeJSON(w, status, envelope{Success: false, Message: message, Error: detail})
}

// respondMessage отвечает конвертом без данных.
func respondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: true, Message: message})
}
