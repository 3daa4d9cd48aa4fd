package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/models"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/pkg/log"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/pkg/redact"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/storage"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/token"
)

// RegisterUser регистрирует нового пользователя и сразу выдаёт ему пару токенов.
func (s *Service) RegisterUser(ctx context.Context, email, password string) (*models.TokenPair, int64, error) {
	const op = "service.auth.RegisterUser"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if err := validatePassword(password); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.storage.UserByEmail(ctx, normEmail)
	if err == nil {
		return nil, 0, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		Email:        normEmail,
		PasswordHash: hashedPassword,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, 0, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	pair, err := s.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_registered",
		slog.Int64("user_id", user.ID),
		slog.String("email", redact.Email(user.Email)),
	)

	return pair, user.ID, nil
}

// LoginUser выполняет вход по email+пароль.
//
// Порядок проверок фиксирован: сначала блокировка (без неё заблокированный
// аккаунт продолжал бы накапливать неудачи и никогда не разблокировался бы),
// затем пароль, затем статус учётной записи. Каждая неудача пароля учитывается
// гардом; успешный вход сбрасывает и счётчик, и маркер блокировки.
func (s *Service) LoginUser(ctx context.Context, email, password string) (*models.TokenPair, int64, error) {
	const op = "service.auth.LoginUser"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if len(password) == 0 {
		return nil, 0, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if remaining := s.guard.IsLocked(ctx, normEmail); remaining > 0 {
		return nil, 0, fmt.Errorf("%s: %w", op, ErrAccountLocked)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Неизвестный e-mail учитывается так же, как неверный пароль:
			// снаружи оба случая неразличимы.
			s.guard.RecordFailure(ctx, normEmail)
			return nil, 0, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(user.PasswordHash, password) {
		s.guard.RecordFailure(ctx, normEmail)
		return nil, 0, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if user.Disabled() {
		return nil, 0, fmt.Errorf("%s: %w", op, ErrUserDisabled)
	}

	s.guard.Clear(ctx, normEmail)

	pair, err := s.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_logged_in",
		slog.Int64("user_id", user.ID),
		slog.String("email", redact.Email(user.Email)),
	)

	return pair, user.ID, nil
}

// RefreshToken выпускает новый access-токен по живому refresh-токену.
// Сам refresh-токен не меняется и не перевыпускается.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (string, time.Duration, error) {
	const op = "service.auth.RefreshToken"

	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", op, s.mapTokenError(err))
	}

	if claims.Kind != models.KindRefresh {
		return "", 0, fmt.Errorf("%s: %w", op, ErrWrongTokenType)
	}

	live, err := s.sessions.IsLive(ctx, claims.UserID, claims.TokenID, models.KindRefresh)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}
	if !live {
		return "", 0, fmt.Errorf("%s: %w", op, ErrSessionRevoked)
	}

	user, err := s.storage.UserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", 0, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return "", 0, fmt.Errorf("%s: %w", op, err)
	}

	if user.Disabled() {
		if rerr := s.sessions.RevokeAll(ctx, user.ID); rerr != nil {
			log.From(ctx).Error("revoke_all_failed",
				slog.String("op", op),
				slog.Int64("user_id", user.ID),
				slog.String("err", rerr.Error()),
			)
		}
		return "", 0, fmt.Errorf("%s: %w", op, ErrUserDisabled)
	}

	accessToken, tokenID, err := s.codec.IssueAccess(user.ID)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sessions.Register(ctx, user.ID, tokenID, models.KindAccess, s.codec.AccessTTL()); err != nil {
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}

	return accessToken, s.codec.AccessTTL(), nil
}

// Logout отзывает сессию предъявленного токена. Тип определяется из самого
// токена; legacy-токены не имеют сессии, отзывать нечего.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	const op = "service.auth.Logout"

	claims, err := s.codec.Decode(rawToken)
	if err != nil {
		return fmt.Errorf("%s: %w", op, s.mapTokenError(err))
	}

	if claims.Legacy() {
		return nil
	}

	if err := s.sessions.Revoke(ctx, claims.UserID, claims.TokenID, claims.Kind); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_logged_out",
		slog.Int64("user_id", claims.UserID),
		slog.String("token_kind", string(claims.Kind)),
	)

	return nil
}

// RevokeAllSessions снимает все живые сессии пользователя (access и refresh).
func (s *Service) RevokeAllSessions(ctx context.Context, userID int64) error {
	const op = "service.auth.RevokeAllSessions"

	if err := s.sessions.RevokeAll(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SetUserStatus меняет статус учётной записи. Отключение каскадно отзывает
// все живые сессии пользователя, так что уже выданные токены перестают
// действовать немедленно.
func (s *Service) SetUserStatus(ctx context.Context, userID int64, status int16) error {
	const op = "service.auth.SetUserStatus"

	if err := s.storage.UpdateUserStatus(ctx, userID, status); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if status == models.StatusDisabled {
		if err := s.sessions.RevokeAll(ctx, userID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		log.From(ctx).Info("user_disabled_sessions_revoked",
			slog.Int64("user_id", userID),
		)
	}

	return nil
}

// UserByID возвращает пользователя по ID.
func (s *Service) UserByID(ctx context.Context, userID int64) (*models.User, error) {
	const op = "service.auth.UserByID"

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// RemainingLoginAttempts возвращает остаток попыток входа для идентификатора.
func (s *Service) RemainingLoginAttempts(ctx context.Context, email string) int64 {
	normEmail, err := validateEmail(email)
	if err != nil {
		return 0
	}

	return s.guard.RemainingAttempts(ctx, normEmail)
}

// LockRemaining возвращает остаток блокировки входа (0 — не заблокирован).
func (s *Service) LockRemaining(ctx context.Context, email string) time.Duration {
	normEmail, err := validateEmail(email)
	if err != nil {
		return 0
	}

	return s.guard.IsLocked(ctx, normEmail)
}

// OnlineUsers возвращает число пользователей с хотя бы одной живой access-сессией.
func (s *Service) OnlineUsers(ctx context.Context) (int64, error) {
	const op = "service.auth.OnlineUsers"

	count, err := s.sessions.CountOnlineUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

// issueTokenPair выпускает пару access+refresh и регистрирует обе сессии.
func (s *Service) issueTokenPair(ctx context.Context, userID int64) (*models.TokenPair, error) {
	const op = "service.auth.issueTokenPair"

	accessToken, accessID, err := s.codec.IssueAccess(userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, refreshID, err := s.codec.IssueRefresh(userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sessions.Register(ctx, userID, accessID, models.KindAccess, s.codec.AccessTTL()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sessions.Register(ctx, userID, refreshID, models.KindRefresh, s.codec.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: time.Now().UTC().Add(s.codec.AccessTTL()),
	}, nil
}

// mapTokenError переводит ошибки кодека в сервисные.
func (s *Service) mapTokenError(err error) error {
	switch {
	case errors.Is(err, token.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, token.ErrInvalidToken):
		return ErrInvalidToken
	default:
		return err
	}
}

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string) (string, error) {
	const op = "service.auth.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validateEmail проверяет базовый формат email и обрезает пробелы снаружи.
func validateEmail(raw string) (string, error) {
	const op = "service.auth.validateEmail"

	email := strings.TrimSpace(raw)
	if email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	return strings.ToLower(email), nil
}

// validatePassword проверяет минимальные требования к паролю.
// Политика по умолчанию: длина >= 8, хотя бы одна строчная, заглавная, цифра и спецсимвол.
func validatePassword(pw string) error {
	const op = "service.auth.validatePassword"

	if len(pw) == 0 {
		return fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}

	if len([]rune(pw)) < 8 {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if !(hasLower && hasUpper && hasDigit && hasSpecial) {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	return nil
}
