package service

import (
	"WardrobeAI/internal/imagegen"
	"WardrobeAI/internal/imageutil"
	"WardrobeAI/internal/model"
	"WardrobeAI/internal/repo"
	"WardrobeAI/internal/storage"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WardrobeService — операции над предметами гардероба.
type WardrobeService struct {
	items   repo.ClothingItemRepository
	storage storage.ObjectStorage
	gen     *imagegen.Client
	logger  *zap.SugaredLogger
}

func NewWardrobeService(items repo.ClothingItemRepository, store storage.ObjectStorage, gen *imagegen.Client, logger *zap.SugaredLogger) *WardrobeService {
	return &WardrobeService{items: items, storage: store, gen: gen, logger: logger}
}

// ItemFilter — фильтры и пагинация списка предметов.
type ItemFilter struct {
	Category string
	Color    string
	Season   string
	Limit    int
	Offset   int
}

// List возвращает страницу предметов пользователя и общее число после фильтров.
func (s *WardrobeService) List(ctx context.Context, userID string, f ItemFilter) ([]model.ClothingItem, int, error) {
	items, err := s.items.FindByUserID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	filtered := items[:0:0]
	for _, item := range items {
		if f.Category != "" && !strings.EqualFold(item.Category, f.Category) {
			continue
		}
		if f.Color != "" && !strings.EqualFold(item.Color, f.Color) {
			continue
		}
		if f.Season != "" && !containsFold(item.Season, f.Season) {
			continue
		}
		filtered = append(filtered, item)
	}

	total := len(filtered)
	if f.Offset > 0 {
		if f.Offset >= total {
			return []model.ClothingItem{}, total, nil
		}
		filtered = filtered[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(filtered) {
		filtered = filtered[:f.Limit]
	}
	return filtered, total, nil
}

// CreateItemInput — атрибуты нового предмета. Name, Category и Color обязательны.
type CreateItemInput struct {
	Name         string         `json:"name"`
	Category     string         `json:"category"`
	Color        string         `json:"color"`
	Brand        string         `json:"brand"`
	Size         string         `json:"size"`
	Season       []string       `json:"season"`
	Tags         []string       `json:"tags"`
	Price        *float64       `json:"price"`
	PurchaseDate *time.Time     `json:"purchase_date"`
	Metadata     map[string]any `json:"metadata"`
}

// Create создаёт предмет. Изображение (опционально) сжимается и уходит в
// объектное хранилище.
func (s *WardrobeService) Create(ctx context.Context, userID string, in CreateItemInput, image []byte) (*model.ClothingItem, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errInvalidInput("Name is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return nil, errInvalidInput("Category is required")
	}
	if strings.TrimSpace(in.Color) == "" {
		return nil, errInvalidInput("Color is required")
	}

	item := &model.ClothingItem{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         in.Name,
		Category:     in.Category,
		Color:        in.Color,
		Brand:        in.Brand,
		Size:         in.Size,
		Season:       in.Season,
		Tags:         in.Tags,
		Price:        in.Price,
		PurchaseDate: in.PurchaseDate,
		Metadata:     in.Metadata,
	}

	if len(image) > 0 {
		url, err := s.storeItemImage(ctx, userID, item.ID, image)
		if err != nil {
			return nil, err
		}
		item.ImageURL = url
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create clothing item: %w", err)
	}
	return item, nil
}

// Get возвращает предмет пользователя; чужой предмет неотличим от отсутствующего.
func (s *WardrobeService) Get(ctx context.Context, userID, itemID string) (*model.ClothingItem, error) {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.UserID != userID {
		return nil, errNotFound("Clothing item not found")
	}
	return item, nil
}

// UpdateItemInput — частичное обновление: в запрос попадают только
// переданные поля.
type UpdateItemInput struct {
	Name         *string    `json:"name"`
	Category     *string    `json:"category"`
	Color        *string    `json:"color"`
	Brand        *string    `json:"brand"`
	Size         *string    `json:"size"`
	Season       []string   `json:"season"`
	Tags         []string   `json:"tags"`
	Price        *float64   `json:"price"`
	PurchaseDate *time.Time `json:"purchase_date"`
}

func (s *WardrobeService) Update(ctx context.Context, userID, itemID string, in UpdateItemInput, image []byte) (*model.ClothingItem, error) {
	item, err := s.Get(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, errInvalidInput("Name cannot be empty")
		}
		fields["name"] = *in.Name
	}
	if in.Category != nil {
		if strings.TrimSpace(*in.Category) == "" {
			return nil, errInvalidInput("Category cannot be empty")
		}
		fields["category"] = *in.Category
	}
	if in.Color != nil {
		if strings.TrimSpace(*in.Color) == "" {
			return nil, errInvalidInput("Color cannot be empty")
		}
		fields["color"] = *in.Color
	}
	if in.Brand != nil {
		fields["brand"] = *in.Brand
	}
	if in.Size != nil {
		fields["size"] = *in.Size
	}
	if in.Season != nil {
		fields["season"] = model.StringList(in.Season)
	}
	if in.Tags != nil {
		fields["tags"] = model.StringList(in.Tags)
	}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if in.PurchaseDate != nil {
		fields["purchase_date"] = *in.PurchaseDate
	}

	if len(image) > 0 {
		url, err := s.storeItemImage(ctx, userID, itemID, image)
		if err != nil {
			return nil, err
		}
		fields["image_url"] = url

		if item.ImageURL != "" {
			if err := s.storage.Delete(ctx, item.ImageURL); err != nil {
				s.logger.Warnw("Update: failed to delete old item image", "item_id", itemID, "error", err)
			}
		}
	}

	return s.items.Update(ctx, itemID, fields)
}

// Delete удаляет предмет. Удаление картинки из хранилища — best effort:
// при ошибке запись из БД всё равно удаляется.
func (s *WardrobeService) Delete(ctx context.Context, userID, itemID string) error {
	item, err := s.Get(ctx, userID, itemID)
	if err != nil {
		return err
	}

	if item.ImageURL != "" {
		if err := s.storage.Delete(ctx, item.ImageURL); err != nil {
			s.logger.Warnw("Delete: failed to delete item image", "item_id", itemID, "error", err)
		}
	}

	deleted, err := s.items.Delete(ctx, itemID)
	if err != nil {
		return err
	}
	if !deleted {
		return errNotFound("Clothing item not found")
	}
	return nil
}

// Categories возвращает отсортированный список категорий пользователя.
func (s *WardrobeService) Categories(ctx context.Context, userID string) ([]string, error) {
	items, err := s.items.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var categories []string
	for _, item := range items {
		if item.Category != "" && !seen[item.Category] {
			seen[item.Category] = true
			categories = append(categories, item.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// Search ищет по имени, бренду и тегам без учёта регистра.
func (s *WardrobeService) Search(ctx context.Context, userID, query string) ([]model.ClothingItem, error) {
	items, err := s.items.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items, nil
	}

	var matched []model.ClothingItem
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), q) ||
			strings.Contains(strings.ToLower(item.Brand), q) ||
			containsFold(item.Tags, q) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// WardrobeStats — агрегаты по гардеробу пользователя.
type WardrobeStats struct {
	TotalItems int            `json:"totalItems"`
	ByCategory map[string]int `json:"byCategory"`
	ByColor    map[string]int `json:"byColor"`
	TotalValue float64        `json:"totalValue"`
}

func (s *WardrobeService) Stats(ctx context.Context, userID string) (WardrobeStats, error) {
	items, err := s.items.FindByUserID(ctx, userID)
	if err != nil {
		return WardrobeStats{}, err
	}

	stats := WardrobeStats{
		TotalItems: len(items),
		ByCategory: map[string]int{},
		ByColor:    map[string]int{},
	}
	for _, item := range items {
		stats.ByCategory[item.Category]++
		if item.Color != "" {
			stats.ByColor[item.Color]++
		}
		if item.Price != nil {
			stats.TotalValue += *item.Price
		}
	}
	return stats, nil
}

// Enhance генерирует улучшенное продуктовое фото предмета и кладёт URL
// результата в metadata предмета.
func (s *WardrobeService) Enhance(ctx context.Context, userID, itemID string) (*model.ClothingItem, imagegen.Result, error) {
	item, err := s.Get(ctx, userID, itemID)
	if err != nil {
		return nil, imagegen.Result{}, err
	}
	if !s.gen.IsConfigured() {
		return nil, imagegen.Result{}, errServiceUnavailable("AI image generation service not configured", "")
	}

	results := s.gen.GenerateClothingVariations(ctx, []string{"enhanced studio lighting and clean background"})
	result := results[0]
	if result.Status == imagegen.StatusFailed {
		detail, _ := result.Metadata["error"].(string)
		return nil, result, errServiceUnavailable("Failed to enhance item image", detail)
	}

	meta := model.JSONMap{}
	for k, v := range item.Metadata {
		meta[k] = v
	}
	meta["enhanced_image_url"] = result.ImageURL
	meta["enhanced_at"] = time.Now().UTC().Format(time.RFC3339)

	updated, err := s.items.Update(ctx, itemID, map[string]any{"metadata": meta})
	return updated, result, err
}

func (s *WardrobeService) storeItemImage(ctx context.Context, userID, itemID string, image []byte) (string, error) {
	processed, err := imageutil.ProcessUpload(image, imageutil.WardrobeMaxWidth, imageutil.WardrobeMaxHeight, imageutil.WardrobeQuality)
	if err != nil {
		return "", errInvalidInput("Uploaded file is not a valid image")
	}

	key := fmt.Sprintf("wardrobe/%s/%s.jpg", userID, itemID)
	url, err := s.storage.Put(ctx, processed, key, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("store item image: %w", err)
	}
	return url, nil
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
