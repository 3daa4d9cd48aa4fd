// token реализует выпуск и криптографическую проверку компактных подписанных
// токенов (JWT, HS256). Пакет не обращается к внешнему состоянию: проверка
// подписи и срока действия — чистая функция над общим секретом. Жив ли токен
// на самом деле, решает хранилище сессий (internal/sessions).
package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/config"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/models"
)

var (
	// ErrInvalidToken — токен некорректен: битый формат, неверная подпись
	// или структурно невалидные claims.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк (подвид ошибки проверки,
	// выделен отдельно ради диагностики).
	ErrTokenExpired = errors.New("token expired")
)

// tokenClaims — формат claims на проводе. Claim'ы tokenId/type отсутствуют
// у токенов старого формата, поэтому помечены omitempty и читаются терпимо.
type tokenClaims struct {
	TokenID string `json:"tokenId,omitempty"`
	Kind    string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// Codec выпускает и проверяет токены. Безопасен для конкурентного использования.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// New создаёт кодек из конфигурации аутентификации.
func New(cfg config.AuthConfig) *Codec {
	return &Codec{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}
}

// AccessTTL возвращает срок жизни access-токена.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL возвращает срок жизни refresh-токена.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccess выпускает access-токен для пользователя.
// Возвращает подписанный токен и его свежесгенерированный tokenId.
func (c *Codec) IssueAccess(userID int64) (string, string, error) {
	return c.issue(userID, models.KindAccess, c.accessTTL)
}

// IssueRefresh выпускает refresh-токен для пользователя.
func (c *Codec) IssueRefresh(userID int64) (string, string, error) {
	return c.issue(userID, models.KindRefresh, c.refreshTTL)
}

func (c *Codec) issue(userID int64, kind models.TokenKind, ttl time.Duration) (string, string, error) {
	const op = "token.Codec.issue"

	tokenID := newTokenID()
	now := time.Now().UTC()

	claims := tokenClaims{
		TokenID: tokenID,
		Kind:    string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, tokenID, nil
}

// IssueLegacy выпускает токен старого формата: только subject (e-mail),
// без tokenId и типа. Сохранён для совместимости со старыми клиентами;
// новые выпуски должны использовать IssueAccess/IssueRefresh.
func (c *Codec) IssueLegacy(subject string) (string, error) {
	const op = "token.Codec.IssueLegacy"

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// Verify проверяет только подпись, структуру и срок действия токена.
// Внешнее состояние (хранилище сессий) не затрагивается. Любой дефект —
// закрытый отказ: ErrTokenExpired либо ErrInvalidToken.
func (c *Codec) Verify(raw string) error {
	const op = "token.Codec.Verify"

	if _, err := c.parse(raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Decode проверяет токен и извлекает claims в размеченный вид.
// Извлечение терпимо к токенам старого формата: отсутствие tokenId означает
// KindLegacy, и subject остаётся сырой строкой (e-mail).
func (c *Codec) Decode(raw string) (*models.Claims, error) {
	const op = "token.Codec.Decode"

	parsed, err := c.parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := &models.Claims{
		Subject: parsed.Subject,
	}
	if parsed.IssuedAt != nil {
		out.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	if parsed.ExpiresAt != nil {
		out.ExpiresAt = parsed.ExpiresAt.Time.UTC()
	}

	// Вариант разрешается ровно один раз, здесь.
	if parsed.TokenID == "" {
		out.Kind = models.KindLegacy
		return out, nil
	}

	uid, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	switch models.TokenKind(parsed.Kind) {
	case models.KindAccess, models.KindRefresh:
		out.Kind = models.TokenKind(parsed.Kind)
	default:
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	out.UserID = uid
	out.TokenID = parsed.TokenID

	return out, nil
}

func (c *Codec) parse(raw string) (*tokenClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &tokenClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, ErrInvalidToken
			}

			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}

		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// newTokenID генерирует уникальный идентификатор выпуска токена —
// UUIDv4 без дефисов, как его хранит и индексирует хранилище сессий.
func newTokenID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
