package storage

import (
	"context"
	"errors"

	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/настройка).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создает нового пользователя в БД и проставляет ему ID.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id int64) (*models.User, error)
	// UpdateUserStatus меняет статус учётной записи (активна/отключена).
	UpdateUserStatus(ctx context.Context, id int64, status int16) error
}

// SettingsStorage отдаёт runtime-настройки системы.
type SettingsStorage interface {
	// SettingValue возвращает строковое значение настройки по ключу.
	SettingValue(ctx context.Context, key string) (string, error)
}

// Storage задает контракт работы с БД.
type Storage interface {
	UserStorage
	SettingsStorage
	Close()
}
