package service

import (
	"WardrobeAI/internal/imagegen"
	"WardrobeAI/internal/metrics"
	"WardrobeAI/internal/model"
	"WardrobeAI/internal/repo"
	"WardrobeAI/internal/storage"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OutfitService — CRUD образов и оркестрация генерации изображений.
type OutfitService struct {
	outfits   repo.OutfitRepository
	items     repo.ClothingItemRepository
	models    repo.UserModelRepository
	gen       imagegen.Generator
	storage   storage.ObjectStorage
	collector *metrics.Collector
	httpc     *http.Client
	logger    *zap.SugaredLogger
}

func NewOutfitService(
	outfits repo.OutfitRepository,
	items repo.ClothingItemRepository,
	models repo.UserModelRepository,
	gen imagegen.Generator,
	store storage.ObjectStorage,
	collector *metrics.Collector,
	logger *zap.SugaredLogger,
) *OutfitService {
	return &OutfitService{
		outfits:   outfits,
		items:     items,
		models:    models,
		gen:       gen,
		storage:   store,
		collector: collector,
		httpc:     &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
	}
}

func (s *OutfitService) List(ctx context.Context, userID string) ([]model.Outfit, error) {
	return s.outfits.FindByUserID(ctx, userID)
}

// CreateOutfitInput — атрибуты нового образа.
type CreateOutfitInput struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	ClothingItemIDs []string `json:"clothing_item_ids"`
	Tags            []string `json:"tags"`
}

// Create создаёт образ. Каждый id из списка обязан разрешаться в предмет
// этого же пользователя; список сохраняется как есть, без дедупликации.
func (s *OutfitService) Create(ctx context.Context, userID string, in CreateOutfitInput) (*model.Outfit, error) {
	if strings.TrimSpace(in.Name) == "" || len(in.ClothingItemIDs) == 0 {
		return nil, errInvalidInput("Name and clothing items are required")
	}

	for _, itemID := range in.ClothingItemIDs {
		item, err := s.items.FindByID(ctx, itemID)
		if err != nil {
			return nil, err
		}
		if item == nil || item.UserID != userID {
			return nil, errInvalidInput("Invalid clothing item: " + itemID)
		}
	}

	outfit := &model.Outfit{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            in.Name,
		Description:     in.Description,
		ClothingItemIDs: in.ClothingItemIDs,
		Tags:            in.Tags,
	}
	if err := s.outfits.Create(ctx, outfit); err != nil {
		return nil, fmt.Errorf("create outfit: %w", err)
	}
	return outfit, nil
}

func (s *OutfitService) Get(ctx context.Context, userID, outfitID string) (*model.Outfit, error) {
	outfit, err := s.outfits.FindByID(ctx, outfitID)
	if err != nil {
		return nil, err
	}
	if outfit == nil || outfit.UserID != userID {
		return nil, errNotFound("Outfit not found")
	}
	return outfit, nil
}

// UpdateOutfitInput — частичное обновление образа.
type UpdateOutfitInput struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	ClothingItemIDs []string `json:"clothing_item_ids"`
	Tags            []string `json:"tags"`
}

func (s *OutfitService) Update(ctx context.Context, userID, outfitID string, in UpdateOutfitInput) (*model.Outfit, error) {
	if _, err := s.Get(ctx, userID, outfitID); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, errInvalidInput("Name cannot be empty")
		}
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.ClothingItemIDs != nil {
		for _, itemID := range in.ClothingItemIDs {
			item, err := s.items.FindByID(ctx, itemID)
			if err != nil {
				return nil, err
			}
			if item == nil || item.UserID != userID {
				return nil, errInvalidInput("Invalid clothing item: " + itemID)
			}
		}
		fields["clothing_item_ids"] = model.StringList(in.ClothingItemIDs)
	}
	if in.Tags != nil {
		fields["tags"] = model.StringList(in.Tags)
	}

	return s.outfits.Update(ctx, outfitID, fields)
}

func (s *OutfitService) Delete(ctx context.Context, userID, outfitID string) error {
	outfit, err := s.Get(ctx, userID, outfitID)
	if err != nil {
		return err
	}

	if outfit.GeneratedImageURL != "" {
		if err := s.storage.Delete(ctx, outfit.GeneratedImageURL); err != nil {
			s.logger.Warnw("Delete: failed to delete generated image", "outfit_id", outfitID, "error", err)
		}
	}

	deleted, err := s.outfits.Delete(ctx, outfitID)
	if err != nil {
		return err
	}
	if !deleted {
		return errNotFound("Outfit not found")
	}
	return nil
}

func (s *OutfitService) Favorites(ctx context.Context, userID string) ([]model.Outfit, error) {
	outfits, err := s.outfits.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	favorites := outfits[:0:0]
	for _, o := range outfits {
		if o.IsFavorite {
			favorites = append(favorites, o)
		}
	}
	return favorites, nil
}

// ToggleFavorite переключает флаг избранного и возвращает обновлённый образ.
func (s *OutfitService) ToggleFavorite(ctx context.Context, userID, outfitID string) (*model.Outfit, error) {
	outfit, err := s.Get(ctx, userID, outfitID)
	if err != nil {
		return nil, err
	}
	return s.outfits.Update(ctx, outfitID, map[string]any{"is_favorite": !outfit.IsFavorite})
}

// ShareLink — сгенерированная ссылка на образ.
type ShareLink struct {
	ShareID   string    `json:"shareId"`
	ShareURL  string    `json:"shareUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Share генерирует ссылку шаринга. Публичная запись шаринга пока не
// создаётся, просмотр по ссылке отвечает 501.
func (s *OutfitService) Share(ctx context.Context, userID, outfitID, baseURL string) (ShareLink, error) {
	if _, err := s.Get(ctx, userID, outfitID); err != nil {
		return ShareLink{}, err
	}

	shareID := fmt.Sprintf("outfit_%s_%d", outfitID, time.Now().UnixMilli())
	return ShareLink{
		ShareID:   shareID,
		ShareURL:  baseURL + "/api/outfits/shared/" + shareID,
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}, nil
}

// OutfitStats — агрегаты по образам пользователя.
type OutfitStats struct {
	TotalOutfits    int            `json:"totalOutfits"`
	Favorites       int            `json:"favorites"`
	RecentlyCreated []model.Outfit `json:"recentlyCreated"`
}

func (s *OutfitService) Stats(ctx context.Context, userID string) (OutfitStats, error) {
	outfits, err := s.outfits.FindByUserID(ctx, userID)
	if err != nil {
		return OutfitStats{}, err
	}

	stats := OutfitStats{TotalOutfits: len(outfits)}
	for _, o := range outfits {
		if o.IsFavorite {
			stats.Favorites++
		}
	}

	sorted := make([]model.Outfit, len(outfits))
	copy(sorted, outfits)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}
	stats.RecentlyCreated = sorted
	return stats, nil
}

// GenerateInput — параметры генерации изображения образа.
type GenerateInput struct {
	OutfitID string `json:"outfitId"`
	ModelID  string `json:"modelId"`
	Style    string `json:"style"`
	Occasion string `json:"occasion"`
	Lighting string `json:"lighting"`
}

// itemSummary — краткое описание предмета в ответе генерации.
type itemSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type modelSummary struct {
	ID        string `json:"id"`
	ModelType string `json:"modelType"`
}

type generationMetadata struct {
	Style       string `json:"style"`
	Occasion    string `json:"occasion"`
	Lighting    string `json:"lighting"`
	IsPreview   bool   `json:"isPreview,omitempty"`
	GeneratedAt string `json:"generatedAt"`
}

// GenerateResult — ответ генерации с сохранением URL на образе.
type GenerateResult struct {
	OutfitID          string             `json:"outfitId"`
	GeneratedImageURL string             `json:"generatedImageUrl"`
	Outfit            *model.Outfit      `json:"outfit"`
	UserModel         modelSummary       `json:"userModel"`
	ClothingItems     []itemSummary      `json:"clothingItems"`
	Metadata          generationMetadata `json:"generationMetadata"`
}

// Generate выполняет полный цикл: модель → предметы → внешняя генерация →
// перекладка результата в своё хранилище → сохранение URL на образе.
// Шаги строго последовательны, компенсаций при частичном сбое нет.
func (s *OutfitService) Generate(ctx context.Context, userID string, in GenerateInput) (*GenerateResult, error) {
	if in.OutfitID == "" {
		return nil, errInvalidInput("Outfit ID is required")
	}
	applyGenerationDefaults(&in)

	outfit, err := s.Get(ctx, userID, in.OutfitID)
	if err != nil {
		return nil, err
	}

	userModel, err := s.resolveModel(ctx, userID, in.ModelID)
	if err != nil {
		return nil, err
	}
	if userModel.ProcessingStatus != model.StatusCompleted {
		return nil, errInvalidState("User model is still processing. Please wait for completion.")
	}

	// В отличие от превью, неразрешимые id здесь молча пропускаются.
	var items []model.ClothingItem
	for _, itemID := range outfit.ClothingItemIDs {
		item, err := s.items.FindByID(ctx, itemID)
		if err != nil {
			return nil, err
		}
		if item != nil {
			items = append(items, *item)
		}
	}
	if len(items) == 0 {
		return nil, errInvalidInput("No valid clothing items found in outfit")
	}

	modelImageURL, err := s.checkGenerationPreconditions(userModel)
	if err != nil {
		return nil, err
	}

	result := s.gen.GenerateOutfitVisualization(ctx, imagegen.OutfitRequest{
		ModelImageURL: modelImageURL,
		ClothingItems: toGenItems(items),
		Style:         in.Style,
		Occasion:      in.Occasion,
		Lighting:      in.Lighting,
	})
	s.recordGeneration(result.Status)
	if result.Status == imagegen.StatusFailed {
		detail, _ := result.Metadata["error"].(string)
		return nil, errServiceUnavailable("Failed to generate outfit image", detail)
	}

	// Best effort: перекладываем картинку в своё хранилище; при ошибке
	// остаёмся на исходном URL.
	finalURL := result.ImageURL
	if finalURL != "" && s.storage.IsConfigured() {
		key := fmt.Sprintf("generated-outfits/%s/%s_%d.jpg", userID, outfit.ID, time.Now().UnixMilli())
		if stored, err := s.reupload(ctx, finalURL, key); err != nil {
			s.logger.Warnw("Generate: failed to save generated image", "outfit_id", outfit.ID, "error", err)
		} else {
			finalURL = stored
		}
	}

	updated, err := s.outfits.Update(ctx, outfit.ID, map[string]any{"generated_image_url": finalURL})
	if err != nil {
		return nil, err
	}

	return &GenerateResult{
		OutfitID:          outfit.ID,
		GeneratedImageURL: finalURL,
		Outfit:            updated,
		UserModel:         modelSummary{ID: userModel.ID, ModelType: userModel.ModelType},
		ClothingItems:     toSummaries(items),
		Metadata: generationMetadata{
			Style:       in.Style,
			Occasion:    in.Occasion,
			Lighting:    in.Lighting,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// PreviewInput — параметры превью без сохранения.
type PreviewInput struct {
	ClothingItemIDs []string `json:"clothingItemIds"`
	ModelID         string   `json:"modelId"`
	Style           string   `json:"style"`
	Occasion        string   `json:"occasion"`
	Lighting        string   `json:"lighting"`
}

// PreviewResult — ответ превью; состояние образов не меняется.
type PreviewResult struct {
	PreviewImageURL string             `json:"previewImageUrl"`
	UserModel       modelSummary       `json:"userModel"`
	ClothingItems   []itemSummary      `json:"clothingItems"`
	Metadata        generationMetadata `json:"generationMetadata"`
}

// Preview генерирует изображение по сырому списку предметов, ничего не
// сохраняя. Любой неразрешимый или чужой id отклоняет весь запрос.
func (s *OutfitService) Preview(ctx context.Context, userID string, in PreviewInput) (*PreviewResult, error) {
	if len(in.ClothingItemIDs) == 0 {
		return nil, errInvalidInput("Clothing item IDs are required")
	}
	gi := GenerateInput{ModelID: in.ModelID, Style: in.Style, Occasion: in.Occasion, Lighting: in.Lighting}
	applyGenerationDefaults(&gi)

	userModel, err := s.resolveModel(ctx, userID, in.ModelID)
	if err != nil {
		return nil, err
	}
	if userModel.ProcessingStatus != model.StatusCompleted {
		return nil, errInvalidState("User model is still processing")
	}

	var items []model.ClothingItem
	for _, itemID := range in.ClothingItemIDs {
		item, err := s.items.FindByID(ctx, itemID)
		if err != nil {
			return nil, err
		}
		if item == nil || item.UserID != userID {
			return nil, errInvalidInput("Invalid clothing item: " + itemID)
		}
		items = append(items, *item)
	}

	modelImageURL, err := s.checkGenerationPreconditions(userModel)
	if err != nil {
		return nil, err
	}

	result := s.gen.GenerateOutfitVisualization(ctx, imagegen.OutfitRequest{
		ModelImageURL: modelImageURL,
		ClothingItems: toGenItems(items),
		Style:         gi.Style,
		Occasion:      gi.Occasion,
		Lighting:      gi.Lighting,
	})
	s.recordGeneration(result.Status)
	if result.Status == imagegen.StatusFailed {
		detail, _ := result.Metadata["error"].(string)
		return nil, errServiceUnavailable("Failed to generate outfit preview", detail)
	}

	return &PreviewResult{
		PreviewImageURL: result.ImageURL,
		UserModel:       modelSummary{ID: userModel.ID, ModelType: userModel.ModelType},
		ClothingItems:   toSummaries(items),
		Metadata: generationMetadata{
			Style:       gi.Style,
			Occasion:    gi.Occasion,
			Lighting:    gi.Lighting,
			IsPreview:   true,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// resolveModel находит модель генерации: явную по id с проверкой владельца
// либо главную модель пользователя.
func (s *OutfitService) resolveModel(ctx context.Context, userID, modelID string) (*model.UserModel, error) {
	if modelID != "" {
		m, err := s.models.FindByID(ctx, modelID)
		if err != nil {
			return nil, err
		}
		if m == nil || m.UserID != userID {
			return nil, errNotFound("Model not found")
		}
		return m, nil
	}

	models, err := s.models.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range models {
		if models[i].IsPrimary {
			return &models[i], nil
		}
	}
	return nil, errNotFound("No user model found. Please upload a model first.")
}

func (s *OutfitService) checkGenerationPreconditions(userModel *model.UserModel) (string, error) {
	if !s.gen.IsConfigured() {
		return "", errServiceUnavailable("AI image generation service not configured", "")
	}

	modelImageURL := userModel.ProcessedImageURL
	if modelImageURL == "" {
		modelImageURL = userModel.OriginalImageURL
	}
	if modelImageURL == "" {
		return "", errInvalidState("User model has no valid image URL")
	}
	return modelImageURL, nil
}

func (s *OutfitService) reupload(ctx context.Context, srcURL, key string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download generated image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return s.storage.Put(ctx, data, key, "image/jpeg")
}

func (s *OutfitService) recordGeneration(status string) {
	if s.collector != nil {
		s.collector.RecordGeneration(status)
	}
}

func applyGenerationDefaults(in *GenerateInput) {
	if in.Style == "" {
		in.Style = "realistic"
	}
	if in.Occasion == "" {
		in.Occasion = "casual"
	}
	if in.Lighting == "" {
		in.Lighting = "natural"
	}
}

func toGenItems(items []model.ClothingItem) []imagegen.OutfitItem {
	out := make([]imagegen.OutfitItem, 0, len(items))
	for _, item := range items {
		color := item.Color
		if color == "" {
			color = "default"
		}
		out = append(out, imagegen.OutfitItem{
			ID:       item.ID,
			ImageURL: item.ImageURL,
			Category: item.Category,
			Color:    color,
		})
	}
	return out
}

func toSummaries(items []model.ClothingItem) []itemSummary {
	out := make([]itemSummary, 0, len(items))
	for _, item := range items {
		out = append(out, itemSummary{ID: item.ID, Name: item.Name, Category: item.Category})
	}
	return out
}
