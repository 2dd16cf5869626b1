package handlers

import (
	"WardrobeAI/internal/aiclient"
	"WardrobeAI/internal/config"
	"WardrobeAI/internal/imagegen"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// AIHandler — прямой доступ к AI-сервисам: анализ фото и текстовые советы.
type AIHandler struct {
	Gemini *aiclient.Gemini
	Gen    *imagegen.Client
	Logger *zap.SugaredLogger
	Config *config.Config
}

// NewAIHandler создаёт хендлер ai
func NewAIHandler(gemini *aiclient.Gemini, gen *imagegen.Client, logger *zap.SugaredLogger, cfg *config.Config) *AIHandler {
	return &AIHandler{Gemini: gemini, Gen: gen, Logger: logger, Config: cfg}
}

// ProcessModel анализ фото модели пользователя через Gemini
func (h *AIHandler) ProcessModel(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	data, format, ok := h.readAIUpload(w, r)
	if !ok {
		return
	}

	result, err := h.Gemini.ProcessModelPhoto(r.Context(), data, format)
	if err != nil {
		h.Logger.Errorw("ProcessModel: gemini request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: "AI processing failed", Error: err.Error()})
		return
	}
	respondData(w, http.StatusOK, result, "Model photo processed")
}

// ProcessClothing анализ фото предмета одежды через Gemini
func (h *AIHandler) ProcessClothing(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	data, format, ok := h.readAIUpload(w, r)
	if !ok {
		return
	}

	result, err := h.Gemini.ProcessClothingItem(r.Context(), data, format)
	if err != nil {
		h.Logger.Errorw("ProcessClothing: gemini request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: "AI processing failed", Error: err.Error()})
		return
	}
	respondData(w, http.StatusOK, result, "Clothing item processed")
}

// OutfitAdvice текстовый совет стилиста через Gemini
func (h *AIHandler) OutfitAdvice(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var in struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Prompt is required"})
		return
	}

	result, err := h.Gemini.OutfitAdvice(r.Context(), in.Prompt)
	if err != nil {
		h.Logger.Errorw("OutfitAdvice: gemini request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: "AI processing failed", Error: err.Error()})
		return
	}
	respondData(w, http.StatusOK, result, "")
}

// Status доступность AI-сервисов
func (h *AIHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]any{
		"gemini":          h.Gemini.Status(),
		"imageGeneration": h.Gen.Status(),
	}, "")
}

// readAIUpload читает файл image и определяет его формат по расширению.
func (h *AIHandler) readAIUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	maxBody := int64(h.Config.UploadMaxSizeMB)*1024*1024 + 1*1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.Logger.Warnw("readAIUpload: invalid multipart form", "error", err)
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid multipart form"})
		return nil, "", false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Image file is required"})
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Failed to read image"})
		return nil, "", false
	}
	if int64(len(data)) > int64(h.Config.UploadMaxSizeMB)*1024*1024 {
		writeJSON(w, http.StatusRequestEntityTooLarge, envelope{Success: false, Message: "Image is too large"})
		return nil, "", false
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	if format == "" || format == "jpg" {
		format = "jpeg"
	}
	return data, format, true
}
