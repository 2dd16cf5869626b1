package handlers

import (
	"WardrobeAI/internal/config"
	"WardrobeAI/internal/service"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// WardrobeHandler — CRUD предметов гардероба.
type WardrobeHandler struct {
	Wardrobe *service.WardrobeService
	Logger   *zap.SugaredLogger
	Config   *config.Config
}

// NewWardrobeHandler создаёт хендлер wardrobe
func NewWardrobeHandler(wardrobe *service.WardrobeService, logger *zap.SugaredLogger, cfg *config.Config) *WardrobeHandler {
	return &WardrobeHandler{Wardrobe: wardrobe, Logger: logger, Config: cfg}
}

// List предметы пользователя с фильтрами и пагинацией
func (h *WardrobeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := service.ItemFilter{
		Category: q.Get("category"),
		Color:    q.Get("color"),
		Season:   q.Get("season"),
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	items, total, err := h.Wardrobe.List(r.Context(), userID, filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, items, Pagination{Limit: filter.Limit, Offset: filter.Offset, Total: total})
}

// Create новый предмет; изображение опционально, multipart
func (h *WardrobeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	in, image, ok := h.readItemForm(w, r)
	if !ok {
		return
	}

	item, err := h.Wardrobe.Create(r.Context(), userID, in, image)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, item, "Clothing item created successfully")
}

// Get один предмет
func (h *WardrobeHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	item, err := h.Wardrobe.Get(r.Context(), userID, chi.URLParam(r, "itemId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, item, "")
}

// Update частичное обновление; новое изображение заменяет старое
func (h *WardrobeHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	itemID := chi.URLParam(r, "itemId")

	var in service.UpdateItemInput
	var image []byte

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		formIn, formImage, ok := h.readItemUpdateForm(w, r)
		if !ok {
			return
		}
		in, image = formIn, formImage
	} else if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.Logger.Warnw("Update: invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	item, err := h.Wardrobe.Update(r.Context(), userID, itemID, in, image)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, item, "Clothing item updated successfully")
}

// Delete удаление предмета вместе с картинкой (best effort)
func (h *WardrobeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.Wardrobe.Delete(r.Context(), userID, chi.URLParam(r, "itemId")); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Clothing item deleted successfully")
}

// Categories список категорий пользователя
func (h *WardrobeHandler) Categories(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	categories, err := h.Wardrobe.Categories(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, categories, "")
}

// Search поиск по имени, бренду и тегам
func (h *WardrobeHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	items, err := h.Wardrobe.Search(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, items, "")
}

// Stats агрегаты по гардеробу
func (h *WardrobeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	stats, err := h.Wardrobe.Stats(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, stats, "")
}

// Enhance генерация улучшенного продуктового фото предмета
func (h *WardrobeHandler) Enhance(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	item, result, err := h.Wardrobe.Enhance(r.Context(), userID, chi.URLParam(r, "itemId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"item":       item,
		"generation": result,
	}, "Item image enhanced")
}

// readItemForm разбирает multipart-форму создания предмета.
func (h *WardrobeHandler) readItemForm(w http.ResponseWriter, r *http.Request) (service.CreateItemInput, []byte, bool) {
	var in service.CreateItemInput

	maxBody := int64(h.Config.UploadMaxSizeMB)*1024*1024 + 1*1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		// допускаем и чистый JSON без картинки
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
			return in, nil, false
		}
		return in, nil, true
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.Logger.Warnw("readItemForm: invalid multipart form", "error", err)
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid multipart form"})
		return in, nil, false
	}

	in.Name = r.FormValue("name")
	in.Category = r.FormValue("category")
	in.Color = r.FormValue("color")
	in.Brand = r.FormValue("brand")
	in.Size = r.FormValue("size")
	if s := r.FormValue("season"); s != "" {
		in.Season = splitCSV(s)
	}
	if t := r.FormValue("tags"); t != "" {
		in.Tags = splitCSV(t)
	}
	if p := r.FormValue("price"); p != "" {
		if price, err := strconv.ParseFloat(p, 64); err == nil {
			in.Price = &price
		}
	}
	if d := r.FormValue("purchase_date"); d != "" {
		if t, err := time.Parse(time.RFC3339, d); err == nil {
			in.PurchaseDate = &t
		}
	}

	image, ok := h.readOptionalImage(w, r)
	if !ok {
		return in, nil, false
	}
	return in, image, true
}

// readItemUpdateForm разбирает multipart-форму обновления предмета.
func (h *WardrobeHandler) readItemUpdateForm(w http.ResponseWriter, r *http.Request) (service.UpdateItemInput, []byte, bool) {
	var in service.UpdateItemInput

	maxBody := int64(h.Config.UploadMaxSizeMB)*1024*1024 + 1*1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.Logger.Warnw("readItemUpdateForm: invalid multipart form", "error", err)
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid multipart form"})
		return in, nil, false
	}

	setIfPresent := func(field string, dst **string) {
		if values, ok := r.MultipartForm.Value[field]; ok && len(values) > 0 {
			v := values[0]
			*dst = &v
		}
	}
	setIfPresent("name", &in.Name)
	setIfPresent("category", &in.Category)
	setIfPresent("color", &in.Color)
	setIfPresent("brand", &in.Brand)
	setIfPresent("size", &in.Size)
	if s := r.FormValue("season"); s != "" {
		in.Season = splitCSV(s)
	}
	if t := r.FormValue("tags"); t != "" {
		in.Tags = splitCSV(t)
	}
	if p := r.FormValue("price"); p != "" {
		if price, err := strconv.ParseFloat(p, 64); err == nil {
			in.Price = &price
		}
	}

	image, ok := h.readOptionalImage(w, r)
	if !ok {
		return in, nil, false
	}
	return in, image, true
}

// readOptionalImage читает файл image из уже разобранной multipart-формы.
// Отсутствие файла не является ошибкой.
func (h *WardrobeHandler) readOptionalImage(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, true
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Failed to read image"})
		return nil, false
	}
	if int64(len(data)) > int64(h.Config.UploadMaxSizeMB)*1024*1024 {
		writeJSON(w, http.StatusRequestEntityTooLarge, envelope{Success: false, Message: "Image is too large"})
		return nil, false
	}
	return data, true
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
