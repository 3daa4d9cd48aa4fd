package models

// Principal — разрешённая личность запроса после успешной аутентификации.
// Передаётся явным значением через контекст запроса; никакого скрытого
// глобального состояния «текущего пользователя» в сервисе нет.
type Principal struct {
	UserID  int64
	Email   string
	IsAdmin bool
	// TokenID — идентификатор предъявленного токена (пустой для legacy).
	TokenID string
	// Kind — вариант предъявленного токена.
	Kind TokenKind
}
