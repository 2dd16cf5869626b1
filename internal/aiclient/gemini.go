// Package aiclient — обёртка над внешним text/vision AI для задач
// «понимания»: категоризация одежды, анализ фото модели, текстовые советы.
package aiclient

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const modelName = "gemini-2.5-flash"

// Gemini — клиент генеративной текстовой модели. При отсутствии API-ключа
// создаётся ненастроенным: методы возвращают ошибку, а не падают.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.SugaredLogger
}

// NewGemini создаёт клиент. Пустой apiKey — допустимое состояние,
// IsConfigured() тогда возвращает false.
func NewGemini(ctx context.Context, apiKey string, logger *zap.SugaredLogger) (*Gemini, error) {
	g := &Gemini{logger: logger}
	if apiKey == "" {
		return g, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	g.client = client
	g.model = client.GenerativeModel(modelName)
	return g, nil
}

func (g *Gemini) IsConfigured() bool { return g.model != nil }

// Close освобождает ресурсы клиента.
func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Status описывает состояние клиента для сервисного эндпоинта.
func (g *Gemini) Status() map[string]any {
	return map[string]any{
		"configured": g.IsConfigured(),
		"model":      modelName,
	}
}

func (g *Gemini) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	if !g.IsConfigured() {
		return "", fmt.Errorf("gemini API key not configured")
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text += string(t)
		}
	}
	return text, nil
}

// ProcessModelPhoto анализирует фотографию модели: поза, кадрирование,
// пригодность для визуализации образов.
func (g *Gemini) ProcessModelPhoto(ctx context.Context, imageData []byte, imageFormat string) (DecodeResult, error) {
	prompt := "Process this user model photo for wardrobe management and outfit visualization. " +
		"Assess pose, framing, background and image quality. " +
		"Respond with a single JSON object: " +
		`{"suitable": bool, "pose": string, "background": string, "quality": string, "suggestions": [string]}`

	text, err := g.generate(ctx, genai.Text(prompt), genai.ImageData(imageFormat, imageData))
	if err != nil {
		g.logger.Warnw("ProcessModelPhoto: generation failed", "error", err)
		return DecodeResult{}, err
	}
	return Decode(text), nil
}

// ProcessClothingItem категоризирует предмет одежды и извлекает цвета.
func (g *Gemini) ProcessClothingItem(ctx context.Context, imageData []byte, imageFormat string) (DecodeResult, error) {
	prompt := "Process this clothing item image for wardrobe catalog management. " +
		"Categorize the item and extract its color palette. " +
		"Respond with a single JSON object: " +
		`{"category": string, "colors": [string], "brand_guess": string, "season": [string], "tags": [string]}`

	text, err := g.generate(ctx, genai.Text(prompt), genai.ImageData(imageFormat, imageData))
	if err != nil {
		g.logger.Warnw("ProcessClothingItem: generation failed", "error", err)
		return DecodeResult{}, err
	}
	return Decode(text), nil
}

// OutfitAdvice генерирует текстовые рекомендации по образу.
func (g *Gemini) OutfitAdvice(ctx context.Context, prompt string) (DecodeResult, error) {
	text, err := g.generate(ctx, genai.Text(prompt))
	if err != nil {
		g.logger.Warnw("OutfitAdvice: generation failed", "error", err)
		return DecodeResult{}, err
	}
	return Decode(text), nil
}
