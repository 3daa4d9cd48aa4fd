package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/storage"
)

// SettingValue возвращает строковое значение runtime-настройки по ключу.
func (s *Storage) SettingValue(ctx context.Context, key string) (string, error) {
	const op = "storage.postgres.SettingValue"

	query := `
		SELECT setting_value
		FROM system_settings
		WHERE setting_key = $1
	`

	var value string
	err := s.db.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return value, nil
}
