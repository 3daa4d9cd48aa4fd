package models

import "time"

// TokenKind — тип токена. Хранится в claim "type" и в ключах хранилища сессий.
type TokenKind string

const (
	// KindAccess — короткоживущий токен для обращения к API.
	KindAccess TokenKind = "access"
	// KindRefresh — долгоживущий токен; принимается только эндпойнтом /auth/refresh.
	KindRefresh TokenKind = "refresh"
	// KindLegacy — токен старого формата: только subject (e-mail), без tokenId
	// и типа. Проверяется по подписи, хранилище сессий не затрагивает.
	KindLegacy TokenKind = "legacy"
)

// Claims — размеченный результат декодирования токена.
// Вариант определяется один раз при декодировании: если claim "tokenId"
// отсутствует — это KindLegacy, и UserID/TokenID не заполнены.
type Claims struct {
	// UserID — идентификатор пользователя (subject современного токена).
	// Для KindLegacy равен 0.
	UserID int64
	// Subject — сырой subject токена. Для KindLegacy содержит e-mail.
	Subject string
	// TokenID — уникальный идентификатор выпуска; ключ записи сессии.
	// Пустой для KindLegacy.
	TokenID string
	// Kind — вариант токена.
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Legacy сообщает, является ли токен токеном старого формата.
func (c *Claims) Legacy() bool {
	return c.Kind == KindLegacy
}
