package models

import "time"

// Статусы аккаунта. Отключённый аккаунт (StatusDisabled) отвергается
// аутентификацией, а все его сессии отзываются при первом же обращении.
const (
	StatusDisabled int16 = 0
	StatusActive   int16 = 1
)

// User - модель пользователя в системе.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Status       int16
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Disabled сообщает, отключён ли аккаунт.
func (u *User) Disabled() bool {
	return u.Status == StatusDisabled
}
