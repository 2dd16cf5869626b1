package handlers

import (
	"WardrobeAI/internal/aiclient"
	"WardrobeAI/internal/config"
	"WardrobeAI/internal/imagegen"
	"WardrobeAI/internal/metrics"
	"WardrobeAI/internal/middleware"
	"WardrobeAI/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Version проставляется при сборке через ldflags.
var Version = "dev"

// Handler объединяет роутер приложения.
type Handler struct {
	Router chi.Router
}

// Services — зависимости хендлеров.
type Services struct {
	Auth     *service.AuthService
	Users    *service.UserService
	Wardrobe *service.WardrobeService
	Outfits  *service.OutfitService
	Models   *service.ModelService
	Stylist  *service.StylistService
	Gemini   *aiclient.Gemini
	Gen      *imagegen.Client
}

// NewHandler разводящий для хендлеров
func NewHandler(
	svc Services,
	collector *metrics.Collector,
	gatherer prometheus.Gatherer,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithMetrics(collector))
	r.Use(middleware.WithCORS)
	r.Use(middleware.WithSecurityHeaders)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// генерация изображений дорогая, на неё отдельный лимит
	genLimiter := middleware.NewRateLimiter(rate.Limit(0.5), 3)

	// Handlers
	authHandler := NewAuthHandler(svc.Auth, svc.Users, logger, config)
	userHandler := NewUserHandler(svc.Users, logger, config)
	wardrobeHandler := NewWardrobeHandler(svc.Wardrobe, logger, config)
	outfitHandler := NewOutfitHandler(svc.Outfits, logger, config)
	modelHandler := NewModelHandler(svc.Models, logger, config)
	stylistHandler := NewStylistHandler(svc.Stylist, logger)
	aiHandler := NewAIHandler(svc.Gemini, svc.Gen, logger, config)

	// Service routes
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondData(w, http.StatusOK, map[string]any{"status": "ok"}, "")
	})
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		respondData(w, http.StatusOK, map[string]any{"version": Version}, "")
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))

	// Auth routes
	r.Post("/api/auth/register", authHandler.Register)
	r.Post("/api/auth/login", authHandler.Login)
	r.Post("/api/auth/logout", authHandler.Logout)
	r.Post("/api/auth/refresh", authHandler.Refresh)
	r.Get("/api/auth/me", authHandler.Me)
	r.Put("/api/auth/change-password", authHandler.ChangePassword)
	r.Post("/api/auth/forgot-password", authHandler.ForgotPassword)
	r.Post("/api/auth/reset-password", authHandler.ResetPassword)
	r.Post("/api/auth/verify-email", authHandler.VerifyEmail)
	r.Post("/api/auth/resend-verification", authHandler.ResendVerification)

	// User routes
	r.Get("/api/users/{userId}", userHandler.Get)
	r.Put("/api/users/{userId}", userHandler.Update)
	r.Delete("/api/users/{userId}", userHandler.Delete)
	r.Get("/api/users/{userId}/preferences", userHandler.GetPreferences)
	r.Put("/api/users/{userId}/preferences", userHandler.UpdatePreferences)
	r.Post("/api/users/{userId}/onboarding/complete", userHandler.CompleteOnboarding)
	r.Post("/api/users/{userId}/profile-image", userHandler.UploadProfileImage)

	// Wardrobe routes
	r.Get("/api/wardrobe/{userId}/items", wardrobeHandler.List)
	r.Post("/api/wardrobe/{userId}/items", wardrobeHandler.Create)
	r.Get("/api/wardrobe/{userId}/items/{itemId}", wardrobeHandler.Get)
	r.Put("/api/wardrobe/{userId}/items/{itemId}", wardrobeHandler.Update)
	r.Delete("/api/wardrobe/{userId}/items/{itemId}", wardrobeHandler.Delete)
	r.Post("/api/wardrobe/{userId}/items/{itemId}/enhance", wardrobeHandler.Enhance)
	r.Get("/api/wardrobe/{userId}/categories", wardrobeHandler.Categories)
	r.Get("/api/wardrobe/{userId}/search", wardrobeHandler.Search)
	r.Get("/api/wardrobe/{userId}/stats", wardrobeHandler.Stats)

	// Outfit routes
	r.Get("/api/outfits/{userId}", outfitHandler.List)
	r.Post("/api/outfits/{userId}", outfitHandler.Create)
	r.Get("/api/outfits/{userId}/favorites", outfitHandler.Favorites)
	r.Get("/api/outfits/{userId}/stats", outfitHandler.Stats)
	r.Get("/api/outfits/{userId}/{outfitId}", outfitHandler.Get)
	r.Put("/api/outfits/{userId}/{outfitId}", outfitHandler.Update)
	r.Delete("/api/outfits/{userId}/{outfitId}", outfitHandler.Delete)
	r.Post("/api/outfits/{userId}/{outfitId}/favorite", outfitHandler.ToggleFavorite)
	r.Post("/api/outfits/{userId}/{outfitId}/share", outfitHandler.Share)
	r.Get("/api/outfits/shared/{shareId}", outfitHandler.GetShared)
	r.With(genLimiter.Middleware()).Post("/api/outfits/{userId}/generate", outfitHandler.Generate)
	r.With(genLimiter.Middleware()).Post("/api/outfits/{userId}/preview", outfitHandler.Preview)

	// Model routes
	r.Post("/api/model/upload", modelHandler.Upload)
	r.Get("/api/model/user/{userId}", modelHandler.List)
	r.Get("/api/model/primary/{userId}", modelHandler.GetPrimary)
	r.Post("/api/model/primary/{userId}/{modelId}", modelHandler.SetPrimary)
	r.Get("/api/model/tasks/{taskId}", modelHandler.Task)
	r.Get("/api/model/{modelId}/status", modelHandler.Status)
	r.Get("/api/model/{modelId}/progress", modelHandler.Status)
	r.With(genLimiter.Middleware()).Post("/api/model/{modelId}/apply-outfit", modelHandler.ApplyOutfit)
	r.With(genLimiter.Middleware()).Post("/api/model/{modelId}/regenerate", modelHandler.Regenerate)
	r.Delete("/api/model/{modelId}", modelHandler.Delete)

	// Stylist routes
	r.Post("/api/ai-stylist/{userId}/recommendations", stylistHandler.Recommendations)
	r.Post("/api/ai-stylist/{userId}/style-analysis", stylistHandler.StyleAnalysis)
	r.Post("/api/ai-stylist/{userId}/outfit-suggestions", stylistHandler.OutfitSuggestions)
	r.Get("/api/ai-stylist/{userId}/seasonal/{season}", stylistHandler.Seasonal)
	r.Post("/api/ai-stylist/{userId}/occasion/{occasion}", stylistHandler.Occasion)
	r.Get("/api/ai-stylist/{userId}/style-profile", stylistHandler.StyleProfile)
	r.Put("/api/ai-stylist/{userId}/style-profile", stylistHandler.UpdateStyleProfile)
	r.Post("/api/ai-stylist/{userId}/feedback", stylistHandler.Feedback)
	r.Get("/api/ai-stylist/trends/current", stylistHandler.CurrentTrends)
	r.Post("/api/ai-stylist/{userId}/trends/personalized", stylistHandler.PersonalizedTrends)
	r.Post("/api/ai-stylist/{userId}/color-analysis", stylistHandler.ColorAnalysis)
	r.Post("/api/ai-stylist/{userId}/color-match", stylistHandler.ColorMatch)

	// AI routes
	r.Post("/api/ai/process-model", aiHandler.ProcessModel)
	r.Post("/api/ai/process-clothing", aiHandler.ProcessClothing)
	r.Post("/api/ai/outfit-advice", aiHandler.OutfitAdvice)
	r.Get("/api/ai/status", aiHandler.Status)

	return &Handler{Router: r}
}
