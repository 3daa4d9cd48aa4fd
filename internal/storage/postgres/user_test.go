package postgres

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/models"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/storage"
)

// Файл интеграционных тестов для пакета postgres (репозиторий user.go):
// - поднимает реальный PostgreSQL через testcontainers-go (образ postgres:16-alpine);
// - применяет миграции из ./migrations;
// - проверяет happy-path (создание и поиск по email/ID), уникальность email (CITEXT),
//   смену статуса и сценарии отсутствия записей (storage.ErrNotFound).
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/postgres -v -race -count=1

// repoRootFromThisFile — определяет корень репозитория относительно текущего файла тестов.
// Используется для поиска SQL-миграций в каталоге ./migrations независимо от текущего рабочего каталога.
func repoRootFromThisFile() string {
	// internal/storage/postgres/... -> подняться на 3 уровня до корня.
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "..", ".."))
}

// readMigration — читает содержимое SQL-миграции из подкаталога ./migrations.
func readMigration(t *testing.T, name string) string {
	t.Helper()
	root := repoRootFromThisFile()
	path := filepath.Join(root, "migrations", name)
	b, err := os.ReadFile(path)
	require.NoError(t, err, "read migration %s", path)
	return string(b)
}

// startPostgres — поднимает временный экземпляр PostgreSQL через testcontainers-go,
// применяет миграции и возвращает инициализированное хранилище и функцию очистки.
// Если переменная окружения GO_TEST_INTEGRATION не установлена — тест пропускается.
func startPostgres(t *testing.T) (*Storage, func()) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "5432/tcp")
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	// применяем миграции.
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, readMigration(t, "1_init_users.up.sql"))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, readMigration(t, "2_init_system_settings.up.sql"))
	require.NoError(t, err)

	st, err := New(ctx, dsn)
	require.NoError(t, err)

	cleanup := func() {
		st.Close()
		_ = c.Terminate(context.Background())
	}
	return st, cleanup
}

// TestIntegration_SaveUser_And_GetByEmail_And_ByID_OK — happy-path:
// сохранение пользователя и последующий поиск по email и ID; проверка CITEXT и таймстемпов.
func TestIntegration_SaveUser_And_GetByEmail_And_ByID_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	now := time.Now().UTC()
	u := &models.User{
		Email:        "User@Example.Com",
		PasswordHash: "hash",
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	require.NoError(t, st.SaveUser(context.Background(), u))
	require.NotZero(t, u.ID)

	gotByEmail, err := st.UserByEmail(context.Background(), strings.ToLower(u.Email))
	require.NoError(t, err)
	require.Equal(t, strings.ToLower(u.Email), strings.ToLower(gotByEmail.Email))
	require.EqualValues(t, models.StatusActive, gotByEmail.Status)
	require.False(t, gotByEmail.IsAdmin)
	require.WithinDuration(t, u.CreatedAt, gotByEmail.CreatedAt, time.Second)
	require.WithinDuration(t, u.UpdatedAt, gotByEmail.UpdatedAt, time.Second)

	gotByID, err := st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, gotByID.ID)
}

// TestIntegration_SaveUser_UniqueEmail_CaseInsensitive_Violation — конфликт уникальности
// по email с разным регистром; ожидаем storage.ErrAlreadyExists.
func TestIntegration_SaveUser_UniqueEmail_CaseInsensitive_Violation(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	now := time.Now().UTC()
	first := &models.User{
		Email:        "dup@example.com",
		PasswordHash: "hash",
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.SaveUser(context.Background(), first))

	second := &models.User{
		Email:        "DUP@Example.Com",
		PasswordHash: "hash",
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := st.SaveUser(context.Background(), second)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

// TestIntegration_UserByEmail_NotFound — поиск несуществующего пользователя.
func TestIntegration_UserByEmail_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.UserByEmail(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.UserByID(context.Background(), 424242)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// TestIntegration_UpdateUserStatus — смена статуса и ErrNotFound для чужого ID.
func TestIntegration_UpdateUserStatus(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	now := time.Now().UTC()
	u := &models.User{
		Email:        "status@example.com",
		PasswordHash: "hash",
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.SaveUser(context.Background(), u))

	require.NoError(t, st.UpdateUserStatus(context.Background(), u.ID, models.StatusDisabled))

	got, err := st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.EqualValues(t, models.StatusDisabled, got.Status)
	require.True(t, got.Disabled())

	err = st.UpdateUserStatus(context.Background(), 424242, models.StatusActive)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// TestIntegration_ContextCanceled — отменённый контекст приводит к ошибке, не к паникам.
func TestIntegration_ContextCanceled(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := st.UserByEmail(ctx, "any@example.com")
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}
