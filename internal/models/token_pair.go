package models

import "time"

// TokenPair — пара токенов, выдаваемая при регистрации/входе.
//
// Описание:
//   - AccessToken — короткоживущий JWT для доступа к API;
//   - RefreshToken — долгоживущий JWT для выпуска новых access-токенов;
//   - AccessExpiresAt — момент истечения access-токена (UTC).
//
// Оба токена к моменту выдачи уже зарегистрированы в хранилище сессий.
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}
