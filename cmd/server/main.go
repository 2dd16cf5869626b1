package main

import (
	"WardrobeAI/internal/aiclient"
	"WardrobeAI/internal/config"
	"WardrobeAI/internal/handlers"
	"WardrobeAI/internal/imagegen"
	"WardrobeAI/internal/metrics"
	"WardrobeAI/internal/middleware"
	"WardrobeAI/internal/repo"
	"WardrobeAI/internal/service"
	"WardrobeAI/internal/storage"
	"WardrobeAI/internal/tasks"
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	store, err := storage.NewS3Storage(ctx, cfg.AWSRegion, cfg.S3Bucket)
	if err != nil {
		sugar.Fatalw("failed to initialize object storage", "error", err)
	}
	if !store.IsConfigured() {
		sugar.Warnw("S3 storage is not configured, uploads will fail")
	}

	gemini, err := aiclient.NewGemini(ctx, cfg.GeminiAPIKey, sugar)
	if err != nil {
		sugar.Fatalw("failed to initialize gemini client", "error", err)
	}
	defer func() {
		if err := gemini.Close(); err != nil {
			sugar.Errorw("Failed to close gemini client", "error", err)
		}
	}()

	gen := imagegen.NewClient(cfg.ImagenAPIKey, cfg.ImagenEndpoint, store, sugar)
	mailer := service.NewMailer(cfg.SendgridAPIKey, cfg.EmailFrom, sugar)

	tracker := tasks.NewTracker(sugar)
	defer tracker.Stop()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	userRepo := repo.NewUserRepository(gormDB)
	itemRepo := repo.NewClothingItemRepository(gormDB)
	outfitRepo := repo.NewOutfitRepository(gormDB)
	modelRepo := repo.NewUserModelRepository(gormDB)

	svc := handlers.Services{
		Auth:     service.NewAuthService(userRepo, mailer, cfg.AuthSecret, sugar),
		Users:    service.NewUserService(userRepo, store, sugar),
		Wardrobe: service.NewWardrobeService(itemRepo, store, gen, sugar),
		Outfits:  service.NewOutfitService(outfitRepo, itemRepo, modelRepo, gen, store, collector, sugar),
		Models:   service.NewModelService(modelRepo, outfitRepo, itemRepo, store, gen, tracker, sugar),
		Stylist:  service.NewStylistService(itemRepo, userRepo, sugar),
		Gemini:   gemini,
		Gen:      gen,
	}

	h := handlers.NewHandler(svc, collector, registry, sugar, cfg)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"DatabaseDSN", cfg.DatabaseDSN,
		"S3Bucket", cfg.S3Bucket,
	)

	if err := http.ListenAndServe(addr, h.Router); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
}
