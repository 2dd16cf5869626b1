package handlers_test

import (
	"WardrobeAI/internal/config"
	"WardrobeAI/internal/handlers"
	"WardrobeAI/internal/imageutil"
	"WardrobeAI/internal/metrics"
	"WardrobeAI/internal/model"
	"WardrobeAI/internal/repo"
	"WardrobeAI/internal/service"
	"WardrobeAI/internal/storage"
	"WardrobeAI/internal/tasks"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"WardrobeAI/internal/aiclient"
	"WardrobeAI/internal/imagegen"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// testEnv — полный стек приложения против in-memory SQLite и хранилища в
// памяти. Эндпоинт генерации поднимается как httptest-сервер.
type testEnv struct {
	router  http.Handler
	store   *storage.MemoryStorage
	users   repo.UserRepository
	items   repo.ClothingItemRepository
	outfits repo.OutfitRepository
	models  repo.UserModelRepository
	tracker *tasks.Tracker
}

func newPredictOK(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"predictions": []map[string]any{
				{"bytes_base64_encoded": base64.StdEncoding.EncodeToString([]byte("generated-image"))},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newPredictFail(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestEnv(t *testing.T, predict *httptest.Server) *testEnv {
	t.Helper()

	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: "file::memory:?cache=shared"}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.ClothingItem{}, &model.Outfit{}, &model.UserModel{}); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}

	logger := zap.NewNop().Sugar()
	cfg := &config.Config{AuthSecret: "test-secret", UploadMaxSizeMB: 10, BaseURL: "localhost:8080"}

	store := storage.NewMemoryStorage()

	endpoint := ""
	apiKey := ""
	if predict != nil {
		endpoint = predict.URL + "/v1/projects/test-project/locations/us/predict"
		apiKey = "test-key"
	}
	gen := imagegen.NewClient(apiKey, endpoint, store, logger)

	gemini, err := aiclient.NewGemini(context.Background(), "", logger)
	if err != nil {
		t.Fatalf("failed to create gemini client: %v", err)
	}

	mailer := service.NewMailer("", "no-reply@test", logger)
	tracker := tasks.NewTracker(logger)
	t.Cleanup(tracker.Stop)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	users := repo.NewUserRepository(db)
	items := repo.NewClothingItemRepository(db)
	outfits := repo.NewOutfitRepository(db)
	userModels := repo.NewUserModelRepository(db)

	svc := handlers.Services{
		Auth:     service.NewAuthService(users, mailer, cfg.AuthSecret, logger),
		Users:    service.NewUserService(users, store, logger),
		Wardrobe: service.NewWardrobeService(items, store, gen, logger),
		Outfits:  service.NewOutfitService(outfits, items, userModels, gen, store, collector, logger),
		Models:   service.NewModelService(userModels, outfits, items, store, gen, tracker, logger),
		Stylist:  service.NewStylistService(items, users, logger),
		Gemini:   gemini,
		Gen:      gen,
	}

	h := handlers.NewHandler(svc, collector, registry, logger, cfg)
	return &testEnv{
		router:  h.Router,
		store:   store,
		users:   users,
		items:   items,
		outfits: outfits,
		models:  userModels,
		tracker: tracker,
	}
}

// do выполняет JSON-запрос и декодирует конверт ответа.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	var env map[string]any
	if len(rr.Body.Bytes()) > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
		}
	}
	return rr.Code, env
}

// register создаёт пользователя через API и возвращает его id и access-токен.
func (e *testEnv) register(t *testing.T, email string) (userID, token string) {
	t.Helper()

	code, env := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    email,
		"password": "password123",
	})
	if code != http.StatusCreated {
		t.Fatalf("register: want 201, got %d (%v)", code, env)
	}
	data := env["data"].(map[string]any)
	userID = data["user"].(map[string]any)["id"].(string)
	token = data["tokens"].(map[string]any)["access_token"].(string)
	return userID, token
}

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	data, err := imageutil.EncodeJPEG(img, 90)
	if err != nil {
		t.Fatalf("failed to encode test jpeg: %v", err)
	}
	return data
}

// doMultipart отправляет multipart-форму с файлом image и полями fields.
func (e *testEnv) doMultipart(t *testing.T, method, path, token string, fields map[string]string, imageData []byte) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write form field: %v", err)
		}
	}
	if imageData != nil {
		fw, err := mw.CreateFormFile("image", "photo.jpg")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := fw.Write(imageData); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	_ = mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	var env map[string]any
	if len(rr.Body.Bytes()) > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
		}
	}
	return rr.Code, env
}
