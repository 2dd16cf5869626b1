// Package imagegen — клиент внешнего сервиса генерации изображений.
// Клиент никогда не возвращает ошибку наружу: любой сбой превращается в
// Result со статусом failed, и вызывающий код ветвится по Status.
package imagegen

import (
	"WardrobeAI/internal/storage"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Статусы результата генерации.
const (
	StatusCompleted  = "completed"
	StatusProcessing = "processing"
	StatusFailed     = "failed"
)

const requestTimeout = 30 * time.Second

var projectRe = regexp.MustCompile(`projects/([^/]+)/`)

// Request — запрос генерации одного изображения.
type Request struct {
	Prompt         string
	NegativePrompt string
	AspectRatio    string // "1:1" | "9:16" | "16:9" | "4:3" | "3:4"
	Seed           int
	GuidanceScale  float64
	Style          string // photorealistic | artistic | illustration | sketch
}

// Result — итог генерации. При Status == failed ImageURL пуст, а причина
// лежит в Metadata["error"].
type Result struct {
	ImageURL string         `json:"imageUrl"`
	JobID    string         `json:"jobId"`
	Status   string         `json:"status"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// OutfitItem — краткое описание предмета одежды для промпта визуализации.
type OutfitItem struct {
	ID       string
	ImageURL string
	Category string
	Color    string
}

// OutfitRequest — запрос визуализации образа на модели пользователя.
type OutfitRequest struct {
	ModelImageURL string
	ClothingItems []OutfitItem
	Style         string
	Occasion      string
	Lighting      string // natural | studio | outdoor | indoor
}

// StylePreferences — предпочтения пользователя для генерации рекомендаций.
type StylePreferences struct {
	Styles    []string
	Colors    []string
	Occasions []string
}

// Generator — контракт клиента генерации; его реализуют Client и тестовые стабы.
type Generator interface {
	Generate(ctx context.Context, req Request) Result
	GenerateOutfitVisualization(ctx context.Context, req OutfitRequest) Result
	IsConfigured() bool
}

// Client ходит в prediction-эндпоинт и складывает готовые картинки в хранилище.
type Client struct {
	httpc     *http.Client
	storage   storage.ObjectStorage
	logger    *zap.SugaredLogger
	apiKey    string
	endpoint  string
	projectID string
}

// NewClient создаёт клиент генерации. projectID извлекается из endpoint.
func NewClient(apiKey, endpoint string, store storage.ObjectStorage, logger *zap.SugaredLogger) *Client {
	projectID := ""
	if m := projectRe.FindStringSubmatch(endpoint); m != nil {
		projectID = m[1]
	}
	return &Client{
		httpc:     &http.Client{Timeout: requestTimeout},
		storage:   store,
		logger:    logger,
		apiKey:    apiKey,
		endpoint:  endpoint,
		projectID: projectID,
	}
}

func (c *Client) IsConfigured() bool {
	return c.apiKey != "" && c.endpoint != "" && c.projectID != ""
}

// ServiceStatus описывает состояние конфигурации клиента.
type ServiceStatus struct {
	Configured bool   `json:"configured"`
	ProjectID  string `json:"projectId"`
	HasAPIKey  bool   `json:"hasApiKey"`
}

func (c *Client) Status() ServiceStatus {
	return ServiceStatus{
		Configured: c.IsConfigured(),
		ProjectID:  c.projectID,
		HasAPIKey:  c.apiKey != "",
	}
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	AspectRatio    string  `json:"aspect_ratio"`
	Seed           int     `json:"seed"`
	GuidanceScale  float64 `json:"guidance_scale"`
}

type predictParameters struct {
	SampleCount int    `json:"sample_count"`
	Style       string `json:"style"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytes_base64_encoded"`
	} `json:"predictions"`
}

// Generate выполняет один запрос к эндпоинту генерации, декодирует base64
// и загружает изображение в объектное хранилище.
func (c *Client) Generate(ctx context.Context, req Request) Result {
	if !c.IsConfigured() {
		return c.failed("Generate", fmt.Errorf("image generation API key not configured"))
	}

	if req.AspectRatio == "" {
		req.AspectRatio = "1:1"
	}
	if req.GuidanceScale == 0 {
		req.GuidanceScale = 7.5
	}
	if req.Style == "" {
		req.Style = "photorealistic"
	}
	if req.Seed == 0 {
		req.Seed = rand.Intn(1000000)
	}

	payload := predictRequest{
		Instances: []predictInstance{{
			Prompt:         req.Prompt,
			NegativePrompt: req.NegativePrompt,
			AspectRatio:    req.AspectRatio,
			Seed:           req.Seed,
			GuidanceScale:  req.GuidanceScale,
		}},
		Parameters: predictParameters{SampleCount: 1, Style: req.Style},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return c.failed("Generate", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return c.failed("Generate", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return c.failed("Generate", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.failed("Generate", fmt.Errorf("prediction endpoint returned status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.failed("Generate", err)
	}

	var pr predictResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		return c.failed("Generate", err)
	}
	if len(pr.Predictions) == 0 || pr.Predictions[0].BytesBase64Encoded == "" {
		return c.failed("Generate", fmt.Errorf("invalid response from prediction endpoint"))
	}

	imageData, err := base64.StdEncoding.DecodeString(pr.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return c.failed("Generate", fmt.Errorf("decode image payload: %w", err))
	}

	jobID := uuid.NewString()
	imageURL, err := c.storage.Put(ctx, imageData, "generated-images/"+jobID+".png", "image/png")
	if err != nil {
		return c.failed("Generate", fmt.Errorf("store generated image: %w", err))
	}

	return Result{
		ImageURL: imageURL,
		JobID:    jobID,
		Status:   StatusCompleted,
		Metadata: map[string]any{
			"prompt":      req.Prompt,
			"aspectRatio": req.AspectRatio,
			"style":       req.Style,
		},
	}
}

// GenerateOutfitVisualization собирает промпт из цвета и категории каждого
// предмета и генерирует портретное изображение модели в этом образе.
func (c *Client) GenerateOutfitVisualization(ctx context.Context, req OutfitRequest) Result {
	descriptions := make([]string, 0, len(req.ClothingItems))
	for _, item := range req.ClothingItems {
		descriptions = append(descriptions, item.Color+" "+item.Category)
	}

	style := req.Style
	if style == "" {
		style = "stylish"
	}
	occasion := req.Occasion
	if occasion == "" {
		occasion = "casual wear"
	}
	lighting := req.Lighting
	if lighting == "" {
		lighting = "natural"
	}

	prompt := fmt.Sprintf(
		"A %s person wearing %s for %s. The image should show a full-body view with %s lighting. "+
			"Professional fashion photography style, high quality, detailed clothing textures, realistic fabric rendering.",
		style, strings.Join(descriptions, ", "), occasion, lighting,
	)

	return c.Generate(ctx, Request{
		Prompt: prompt,
		NegativePrompt: "blurry, low quality, distorted, deformed, extra limbs, missing limbs, " +
			"bad anatomy, poorly fitted clothes, unrealistic proportions",
		AspectRatio:   "9:16",
		Style:         "photorealistic",
		GuidanceScale: 8.0,
	})
}

// GenerateClothingVariations генерирует варианты предмета одежды, по одному
// запросу на вариацию.
func (c *Client) GenerateClothingVariations(ctx context.Context, variations []string) []Result {
	results := make([]Result, 0, len(variations))
	for _, variation := range variations {
		prompt := fmt.Sprintf(
			"A piece of clothing similar to the reference image but with %s. "+
				"Professional product photography, white background, high quality, detailed fabric texture.",
			variation,
		)
		results = append(results, c.Generate(ctx, Request{
			Prompt:        prompt,
			AspectRatio:   "1:1",
			Style:         "photorealistic",
			GuidanceScale: 7.0,
		}))
	}
	return results
}

// GenerateStyleRecommendations генерирует count образов по предпочтениям
// пользователя.
func (c *Client) GenerateStyleRecommendations(ctx context.Context, prefs StylePreferences, count int) []Result {
	results := make([]Result, 0, count)
	for i := 0; i < count; i++ {
		prompt := fmt.Sprintf(
			"A %s outfit in %s colors suitable for %s. "+
				"Professional fashion photography, full body view, modern styling, high quality.",
			pick(prefs.Styles), pick(prefs.Colors), pick(prefs.Occasions),
		)
		results = append(results, c.Generate(ctx, Request{
			Prompt:        prompt,
			AspectRatio:   "9:16",
			Style:         "photorealistic",
			GuidanceScale: 7.5,
		}))
	}
	return results
}

func (c *Client) failed(op string, err error) Result {
	if c.logger != nil {
		c.logger.Warnw(op+": image generation failed", "error", err)
	}
	return Result{
		JobID:    uuid.NewString(),
		Status:   StatusFailed,
		Metadata: map[string]any{"error": err.Error()},
	}
}

func pick(values []string) string {
	if len(values) == 0 {
		return "modern"
	}
	return values[rand.Intn(len(values))]
}
