package service

import (
	"WardrobeAI/internal/imageutil"
	"WardrobeAI/internal/model"
	"WardrobeAI/internal/repo"
	"WardrobeAI/internal/storage"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// UserService — профиль, предпочтения и онбординг пользователя.
type UserService struct {
	users   repo.UserRepository
	storage storage.ObjectStorage
	logger  *zap.SugaredLogger
}

func NewUserService(users repo.UserRepository, store storage.ObjectStorage, logger *zap.SugaredLogger) *UserService {
	return &UserService{users: users, storage: store, logger: logger}
}

func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errNotFound("User not found")
	}
	return user, nil
}

// UpdateInput — частичное обновление профиля. Обновляются только
// переданные поля.
type UpdateInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (s *UserService) Update(ctx context.Context, userID string, in UpdateInput) (*model.User, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.FirstName != nil {
		fields["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		fields["last_name"] = *in.LastName
	}
	return s.users.Update(ctx, userID, fields)
}

func (s *UserService) Delete(ctx context.Context, userID string) error {
	deleted, err := s.users.Delete(ctx, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return errNotFound("User not found")
	}
	return nil
}

func (s *UserService) GetPreferences(ctx context.Context, userID string) (model.JSONMap, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Preferences == nil {
		return model.JSONMap{}, nil
	}
	return user.Preferences, nil
}

// UpdatePreferences сливает переданные ключи в существующие предпочтения.
func (s *UserService) UpdatePreferences(ctx context.Context, userID string, prefs model.JSONMap) (model.JSONMap, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := model.JSONMap{}
	for k, v := range user.Preferences {
		merged[k] = v
	}
	for k, v := range prefs {
		merged[k] = v
	}

	if _, err := s.users.Update(ctx, userID, map[string]any{"preferences": merged}); err != nil {
		return nil, err
	}
	return merged, nil
}

func (s *UserService) CompleteOnboarding(ctx context.Context, userID string) error {
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}
	_, err := s.users.Update(ctx, userID, map[string]any{"onboarding_completed": true})
	return err
}

// UploadProfileImage сохраняет аватар профиля: ресайз, загрузка в хранилище,
// удаление старого файла по возможности.
func (s *UserService) UploadProfileImage(ctx context.Context, userID string, data []byte) (*model.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	processed, err := imageutil.ProcessUpload(data, imageutil.ThumbnailWidth, imageutil.ThumbnailHeight, imageutil.WardrobeQuality)
	if err != nil {
		return nil, errInvalidInput("Uploaded file is not a valid image")
	}

	key := fmt.Sprintf("profiles/%s/%d.jpg", userID, time.Now().UnixMilli())
	url, err := s.storage.Put(ctx, processed, key, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("store profile image: %w", err)
	}

	if user.ProfileImageURL != "" {
		if err := s.storage.Delete(ctx, user.ProfileImageURL); err != nil {
			s.logger.Warnw("UploadProfileImage: failed to delete old image", "user_id", userID, "error", err)
		}
	}

	return s.users.Update(ctx, userID, map[string]any{"profile_image_url": url})
}
