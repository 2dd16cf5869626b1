package service

import (
	"WardrobeAI/internal/imagegen"
	"WardrobeAI/internal/imageutil"
	"WardrobeAI/internal/model"
	"WardrobeAI/internal/repo"
	"WardrobeAI/internal/storage"
	"WardrobeAI/internal/tasks"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ModelService — жизненный цикл фотографий-моделей пользователя.
type ModelService struct {
	models  repo.UserModelRepository
	outfits repo.OutfitRepository
	items   repo.ClothingItemRepository
	storage storage.ObjectStorage
	gen     imagegen.Generator
	tracker *tasks.Tracker
	httpc   *http.Client
	logger  *zap.SugaredLogger
}

func NewModelService(
	models repo.UserModelRepository,
	outfits repo.OutfitRepository,
	items repo.ClothingItemRepository,
	store storage.ObjectStorage,
	gen imagegen.Generator,
	tracker *tasks.Tracker,
	logger *zap.SugaredLogger,
) *ModelService {
	return &ModelService{
		models:  models,
		outfits: outfits,
		items:   items,
		storage: store,
		gen:     gen,
		tracker: tracker,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// Upload принимает фото модели, обрабатывает его локально и создаёт запись
// со статусом completed. Первая модель пользователя становится главной.
func (s *ModelService) Upload(ctx context.Context, userID string, image []byte, modelType string) (*model.UserModel, error) {
	if modelType == "" {
		modelType = "full_body"
	}

	img, _, err := imageutil.Decode(image)
	if err != nil {
		return nil, errInvalidInput("Uploaded file is not a valid image")
	}

	original, err := imageutil.EncodeJPEG(img, imageutil.ModelQuality)
	if err != nil {
		return nil, fmt.Errorf("encode original: %w", err)
	}
	processed, err := imageutil.EncodeJPEG(
		imageutil.Enhance(imageutil.Resize(img, imageutil.ModelMaxWidth, imageutil.ModelMaxHeight)),
		imageutil.ModelQuality,
	)
	if err != nil {
		return nil, fmt.Errorf("encode processed: %w", err)
	}
	thumb, err := imageutil.EncodeJPEG(
		imageutil.Thumbnail(img, imageutil.ThumbnailWidth, imageutil.ThumbnailHeight),
		imageutil.WardrobeQuality,
	)
	if err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	id := uuid.NewString()
	ts := time.Now().UnixMilli()

	originalURL, err := s.storage.Put(ctx, original, fmt.Sprintf("models/%s/original_%d.jpg", userID, ts), "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("store original image: %w", err)
	}
	processedURL, err := s.storage.Put(ctx, processed, fmt.Sprintf("models/%s/processed_%d.jpg", userID, ts), "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("store processed image: %w", err)
	}
	thumbURL, err := s.storage.Put(ctx, thumb, fmt.Sprintf("models/%s/thumb_%d.jpg", userID, ts), "image/jpeg")
	if err != nil {
		s.logger.Warnw("Upload: failed to store thumbnail", "user_id", userID, "error", err)
		thumbURL = ""
	}

	existing, err := s.models.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	m := &model.UserModel{
		ID:                 id,
		UserID:             userID,
		ModelType:          modelType,
		OriginalImageURL:   originalURL,
		ProcessedImageURL:  processedURL,
		ProcessingStatus:   model.StatusCompleted,
		ProcessingProgress: 100,
		IsPrimary:          len(existing) == 0,
		Metadata:           model.JSONMap{"thumbnail_url": thumbURL},
	}
	if err := s.models.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create user model: %w", err)
	}
	return m, nil
}

func (s *ModelService) ListByUser(ctx context.Context, userID string) ([]model.UserModel, error) {
	return s.models.FindByUserID(ctx, userID)
}

// GetPrimary возвращает главную модель пользователя.
func (s *ModelService) GetPrimary(ctx context.Context, userID string) (*model.UserModel, error) {
	models, err := s.models.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range models {
		if models[i].IsPrimary {
			return &models[i], nil
		}
	}
	return nil, errNotFound("No primary model found")
}

// SetPrimary делает указанную модель главной (транзакционно в репозитории).
func (s *ModelService) SetPrimary(ctx context.Context, userID, modelID string) (*model.UserModel, error) {
	if err := s.models.SetPrimary(ctx, userID, modelID); err != nil {
		if m, ferr := s.models.FindByID(ctx, modelID); ferr == nil && (m == nil || m.UserID != userID) {
			return nil, errNotFound("Model not found")
		}
		return nil, err
	}
	return s.models.FindByID(ctx, modelID)
}

func (s *ModelService) Get(ctx context.Context, userID, modelID string) (*model.UserModel, error) {
	m, err := s.models.FindByID(ctx, modelID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.UserID != userID {
		return nil, errNotFound("Model not found")
	}
	return m, nil
}

// Delete удаляет модель; блобы из хранилища удаляются best effort.
func (s *ModelService) Delete(ctx context.Context, userID, modelID string) error {
	m, err := s.Get(ctx, userID, modelID)
	if err != nil {
		return err
	}

	for _, url := range []string{m.OriginalImageURL, m.ProcessedImageURL} {
		if url == "" {
			continue
		}
		if err := s.storage.Delete(ctx, url); err != nil {
			s.logger.Warnw("Delete: failed to delete model image", "model_id", modelID, "error", err)
		}
	}

	deleted, err := s.models.Delete(ctx, modelID)
	if err != nil {
		return err
	}
	if !deleted {
		return errNotFound("Model not found")
	}
	return nil
}

// Regenerate перезапускает обработку модели как отслеживаемую фоновую
// задачу и возвращает её идентификатор. Прогресс виден через Get/Progress.
func (s *ModelService) Regenerate(ctx context.Context, userID, modelID string) (string, error) {
	m, err := s.Get(ctx, userID, modelID)
	if err != nil {
		return "", err
	}
	if m.ProcessingStatus == model.StatusProcessing {
		return "", errInvalidState("Model is already being processed")
	}

	if err := s.models.UpdateStatus(ctx, modelID, model.StatusProcessing, 0, ""); err != nil {
		return "", err
	}

	originalURL := m.OriginalImageURL
	taskID := s.tracker.Run(func(taskCtx context.Context) error {
		return s.reprocess(taskCtx, modelID, originalURL)
	})
	return taskID, nil
}

// reprocess скачивает оригинал, повторяет локальную обработку и обновляет
// запись модели. Выполняется в фоне под tracker.
func (s *ModelService) reprocess(ctx context.Context, modelID, originalURL string) error {
	fail := func(err error) error {
		if uerr := s.models.UpdateStatus(ctx, modelID, model.StatusFailed, 0, err.Error()); uerr != nil {
			s.logger.Errorw("reprocess: failed to record failure", "model_id", modelID, "error", uerr)
		}
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, originalURL, nil)
	if err != nil {
		return fail(err)
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fail(fmt.Errorf("download original image: status %d", resp.StatusCode))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(err)
	}

	if err := s.models.UpdateStatus(ctx, modelID, model.StatusProcessing, 50, ""); err != nil {
		return err
	}

	img, _, err := imageutil.Decode(data)
	if err != nil {
		return fail(err)
	}
	processed, err := imageutil.EncodeJPEG(
		imageutil.Enhance(imageutil.Resize(img, imageutil.ModelMaxWidth, imageutil.ModelMaxHeight)),
		imageutil.ModelQuality,
	)
	if err != nil {
		return fail(err)
	}

	m, err := s.models.FindByID(ctx, modelID)
	if err != nil || m == nil {
		return fail(fmt.Errorf("model disappeared during reprocessing"))
	}

	processedURL, err := s.storage.Put(ctx, processed,
		fmt.Sprintf("models/%s/processed_%d.jpg", m.UserID, time.Now().UnixMilli()), "image/jpeg")
	if err != nil {
		return fail(err)
	}

	if _, err := s.models.Update(ctx, modelID, map[string]any{
		"processed_image_url": processedURL,
		"processing_status":   model.StatusCompleted,
		"processing_progress": 100,
		"error_message":       "",
	}); err != nil {
		return fail(err)
	}
	return nil
}

// Task возвращает состояние фоновой задачи регенерации.
func (s *ModelService) Task(id string) (tasks.Task, bool) {
	return s.tracker.Get(id)
}

// ApplyOutfitResult — итог примерки образа на модель.
type ApplyOutfitResult struct {
	Outfit            *model.Outfit `json:"outfit"`
	GeneratedImageURL string        `json:"generatedImageUrl,omitempty"`
	AIGenerated       bool          `json:"aiGenerated"`
}

// ApplyOutfit примеряет набор предметов на модель. При успехе AI создаётся
// образ с сгенерированной картинкой; при сбое AI — обычный образ без неё
// (деградация вместо ошибки).
func (s *ModelService) ApplyOutfit(ctx context.Context, userID, modelID string, clothingItemIDs []string) (*ApplyOutfitResult, error) {
	if len(clothingItemIDs) == 0 {
		return nil, errInvalidInput("Clothing item IDs are required")
	}

	m, err := s.Get(ctx, userID, modelID)
	if err != nil {
		return nil, err
	}
	if m.ProcessingStatus != model.StatusCompleted {
		return nil, errInvalidState("User model is still processing")
	}

	var items []model.ClothingItem
	for _, itemID := range clothingItemIDs {
		item, err := s.items.FindByID(ctx, itemID)
		if err != nil {
			return nil, err
		}
		if item == nil || item.UserID != userID {
			return nil, errInvalidInput("Invalid clothing item: " + itemID)
		}
		items = append(items, *item)
	}

	modelImageURL := m.ProcessedImageURL
	if modelImageURL == "" {
		modelImageURL = m.OriginalImageURL
	}

	generatedURL := ""
	aiGenerated := false
	if s.gen.IsConfigured() {
		result := s.gen.GenerateOutfitVisualization(ctx, imagegen.OutfitRequest{
			ModelImageURL: modelImageURL,
			ClothingItems: toGenItems(items),
		})
		if result.Status == imagegen.StatusFailed {
			detail, _ := result.Metadata["error"].(string)
			s.logger.Warnw("ApplyOutfit: AI generation failed, creating plain outfit",
				"model_id", modelID, "error", detail)
		} else {
			generatedURL = result.ImageURL
			aiGenerated = true
		}
	}

	outfit := &model.Outfit{
		ID:                uuid.NewString(),
		UserID:            userID,
		Name:              "AI Generated Outfit",
		ClothingItemIDs:   clothingItemIDs,
		GeneratedImageURL: generatedURL,
	}
	if err := s.outfits.Create(ctx, outfit); err != nil {
		return nil, fmt.Errorf("create outfit: %w", err)
	}

	return &ApplyOutfitResult{
		Outfit:            outfit,
		GeneratedImageURL: generatedURL,
		AIGenerated:       aiGenerated,
	}, nil
}
