package service

import (
	"WardrobeAI/internal/model"
	"WardrobeAI/internal/repo"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
	resetTokenTTL   = time.Hour
)

// tokenClaims — полезная нагрузка JWT. Тип токена различает access,
// refresh и одноразовые токены сброса/подтверждения.
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
}

// TokenPair — пара access/refresh токенов, выдаваемая клиенту.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthService реализует жизненный цикл учётной записи: регистрацию, вход,
// обновление токенов, смену и сброс пароля.
type AuthService struct {
	users  repo.UserRepository
	mailer *Mailer
	logger *zap.SugaredLogger
	secret string
}

func NewAuthService(users repo.UserRepository, mailer *Mailer, secret string, logger *zap.SugaredLogger) *AuthService {
	return &AuthService{users: users, mailer: mailer, secret: secret, logger: logger}
}

// Register создаёт пользователя и возвращает его вместе с парой токенов.
func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*model.User, TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, TokenPair{}, errInvalidInput("Valid email is required")
	}
	if len(password) < 8 {
		return nil, TokenPair{}, errInvalidInput("Password must be at least 8 characters")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if existing != nil {
		return nil, TokenPair{}, errConflict("User with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		Preferences:  model.JSONMap{},
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, TokenPair{}, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}

	// письмо с подтверждением не критично для регистрации
	if verifyToken, err := s.signToken(user.ID, "verify", resetTokenTTL); err == nil {
		if err := s.mailer.Send(firstName, email,
			"Welcome to WardrobeAI",
			"Welcome! Verify your email with token: "+verifyToken,
			"<p>Welcome! Verify your email with token: <b>"+verifyToken+"</b></p>",
		); err != nil {
			s.logger.Warnw("Register: failed to send verification email", "email", email, "error", err)
		}
	}

	return user, pair, nil
}

// Login проверяет пароль и выдаёт пару токенов.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if user == nil || !user.IsActive {
		return nil, TokenPair{}, errUnauthorized("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, TokenPair{}, errUnauthorized("Invalid email or password")
	}

	pair, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh обменивает refresh-токен на новую пару токенов.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.parseToken(refreshToken, "refresh")
	if err != nil {
		return TokenPair{}, errUnauthorized("Invalid refresh token")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, err
	}
	if user == nil || !user.IsActive {
		return TokenPair{}, errUnauthorized("Invalid refresh token")
	}

	return s.issueTokens(user.ID)
}

// ChangePassword меняет пароль авторизованного пользователя.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < 8 {
		return errInvalidInput("Password must be at least 8 characters")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return errNotFound("User not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return errUnauthorized("Current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.users.Update(ctx, userID, map[string]any{"password_hash": string(hash)})
	return err
}

// ForgotPassword отправляет письмо с токеном сброса. Чтобы не раскрывать
// существование адреса, для неизвестного email отвечает так же, как для
// известного.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	token, err := s.signToken(user.ID, "reset", resetTokenTTL)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(user.FirstName, email,
		"WardrobeAI password reset",
		"Reset your password with token: "+token,
		"<p>Reset your password with token: <b>"+token+"</b></p>",
	); err != nil {
		s.logger.Warnw("ForgotPassword: failed to send reset email", "email", email, "error", err)
	}
	return nil
}

// ResetPassword устанавливает новый пароль по токену сброса.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < 8 {
		return errInvalidInput("Password must be at least 8 characters")
	}

	claims, err := s.parseToken(token, "reset")
	if err != nil {
		return errUnauthorized("Invalid or expired reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.users.Update(ctx, claims.UserID, map[string]any{"password_hash": string(hash)})
	return err
}

// VerifyEmail помечает email подтверждённым по одноразовому токену.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.parseToken(token, "verify")
	if err != nil {
		return errUnauthorized("Invalid or expired verification token")
	}
	_, err = s.users.Update(ctx, claims.UserID, map[string]any{"email_verified": true})
	return err
}

// ResendVerification повторно отправляет письмо с токеном подтверждения.
func (s *AuthService) ResendVerification(ctx context.Context, userID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return errNotFound("User not found")
	}
	if user.EmailVerified {
		return errInvalidState("Email is already verified")
	}

	token, err := s.signToken(user.ID, "verify", resetTokenTTL)
	if err != nil {
		return err
	}
	return s.mailer.Send(user.FirstName, user.Email,
		"Verify your WardrobeAI email",
		"Verify your email with token: "+token,
		"<p>Verify your email with token: <b>"+token+"</b></p>",
	)
}

func (s *AuthService) issueTokens(userID string) (TokenPair, error) {
	access, err := s.signToken(userID, "access", accessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.signToken(userID, "refresh", refreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

func (s *AuthService) signToken(userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		TokenType: tokenType,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) parseToken(tokenStr, wantType string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.TokenType != wantType || claims.UserID == "" {
		return nil, fmt.Errorf("invalid %s token", wantType)
	}
	return claims, nil
}
