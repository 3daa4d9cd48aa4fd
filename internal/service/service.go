// service содержит бизнес-логику auth-сервиса:
// регистрацию/аутентификацию пользователей, выпуск/проверку токенов,
// управление сессиями и защиту от перебора паролей.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданные зависимости (storage.Storage, sessions.Store,
//     lockout.Guard) потокобезопасны.
//   - Ошибки возвращаются и далее маппятся транспортом на HTTP-статусы
//     (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"
	"time"

	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/config"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/lockout"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/sessions"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/storage"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/token"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь не найден.
	// Транспорт: HTTP 401, kind INVALID_CREDENTIALS.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — токен некорректен по формату/подписи.
	// Транспорт: HTTP 401, kind INVALID_TOKEN.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк.
	// Транспорт: HTTP 401, kind INVALID_TOKEN.
	ErrTokenExpired = errors.New("token expired")

	// ErrWrongTokenType — тип токена не подходит эндпоинту
	// (refresh вне /auth/refresh и наоборот).
	// Транспорт: HTTP 401, kind WRONG_TOKEN_TYPE.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrSessionRevoked — подпись верна, но сессия отозвана или истекла
	// на стороне хранилища. Транспорт: HTTP 401, kind SESSION_REVOKED.
	ErrSessionRevoked = errors.New("session revoked")

	// ErrUserDisabled — учётная запись отключена администратором.
	// Транспорт: HTTP 401, kind USER_DISABLED.
	ErrUserDisabled = errors.New("user disabled")

	// ErrUserNotFound — пользователь не найден.
	// Транспорт: HTTP 401 в пайплайне аутентификации, HTTP 404 в админке.
	ErrUserNotFound = errors.New("user not found")

	// ErrAccountLocked — вход временно заблокирован после серии неудач.
	// Транспорт: HTTP 401, kind ACCOUNT_LOCKED.
	ErrAccountLocked = errors.New("account locked")

	// ErrEmailTaken — e-mail уже занят другим пользователем.
	// Транспорт: HTTP 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrInvalidEmail — e-mail имеет некорректный формат.
	// Транспорт: HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль не удовлетворяет политикам сложности.
	// Транспорт: HTTP 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой.
	// Транспорт: HTTP 400.
	ErrEmptyPassword = errors.New("password is empty")
)

// Service описывает бизнес-логику auth-сервиса.
type Service struct {
	storage  storage.Storage
	sessions sessions.Store
	guard    lockout.Guard
	codec    *token.Codec
	cfg      config.AuthConfig
}

// New создаёт новый экземпляр Service.
func New(st storage.Storage, sess sessions.Store, guard lockout.Guard, codec *token.Codec, cfg config.AuthConfig) *Service {
	return &Service{
		storage:  st,
		sessions: sess,
		guard:    guard,
		codec:    codec,
		cfg:      cfg,
	}
}

// AccessTTL возвращает срок жизни access-токена.
func (s *Service) AccessTTL() time.Duration { return s.codec.AccessTTL() }
