// sessions реализует серверную часть жизненного цикла токенов поверх Redis.
//
// Модель данных:
//   - token:access:{uid}:{tokenId} / token:refresh:{uid}:{tokenId} — маркер
//     «сессия жива» со своим TTL, равным остатку срока токена. Существование
//     ключа — единственный источник истины о валидности конкретного выпуска:
//     отозванный или истёкший токен просто отсутствует.
//   - token:user:{uid} — множество членов вида "access:{tokenId}" /
//     "refresh:{tokenId}". Обратный индекс для массового отзыва и подсчёта
//     онлайна; на горячем пути проверки не участвует и источником истины
//     не является.
package sessions

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/models"
)

// Префиксы ключей. Совпадают с раскладкой, заведённой старым бэкендом,
// чтобы живые инсталляции могли мигрировать без ре-логина пользователей.
const (
	keyPrefix       = "token:"
	userIndexPrefix = keyPrefix + "user:"
)

// Store — контракт хранилища сессий.
type Store interface {
	// Register записывает маркер сессии с TTL и добавляет выпуск в индекс
	// пользователя, продлевая TTL индекса как минимум до ttl.
	Register(ctx context.Context, userID int64, tokenID string, kind models.TokenKind, ttl time.Duration) error
	// IsLive проверяет существование маркера сессии. Индекс не читается.
	IsLive(ctx context.Context, userID int64, tokenID string, kind models.TokenKind) (bool, error)
	// RemainingTTL возвращает остаток TTL маркера (0 — если маркера нет).
	RemainingTTL(ctx context.Context, userID int64, tokenID string, kind models.TokenKind) (time.Duration, error)
	// Renew продлевает TTL существующего маркера. Идемпотентен: TTL никогда
	// не уменьшается, отсутствующий маркер остаётся отсутствующим.
	Renew(ctx context.Context, userID int64, tokenID string, kind models.TokenKind, ttl time.Duration) error
	// Revoke удаляет маркер и членство в индексе.
	Revoke(ctx context.Context, userID int64, tokenID string, kind models.TokenKind) error
	// RevokeAll снимает снапшот индекса, удаляет каждый названный в нём маркер
	// и затем сам индекс. Выпуск, зарегистрированный конкурентно со снапшотом,
	// этим вызовом не гарантированно отзывается — он умрёт по собственному TTL
	// (принятая eventual-семантика, не барьер).
	RevokeAll(ctx context.Context, userID int64) error
	// CountOnlineUsers сканирует живые access-маркеры и считает различных
	// пользователей. Оценка приблизительная: ключи могут истекать во время скана.
	CountOnlineUsers(ctx context.Context) (int64, error)
	// Close закрывает клиент Redis.
	Close() error
}

type redisStore struct {
	rdb *redis.Client
}

// NewRedisStore создаёт хранилище из URL (например, redis://:pass@host:6379/0).
// Соединение проверяется сразу — fail-fast на старте.
func NewRedisStore(ctx context.Context, redisURL string) (Store, error) {
	const op = "sessions.NewRedisStore"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &redisStore{rdb: rdb}, nil
}

func entryKey(userID int64, tokenID string, kind models.TokenKind) string {
	return keyPrefix + string(kind) + ":" + strconv.FormatInt(userID, 10) + ":" + tokenID
}

func indexKey(userID int64) string {
	return userIndexPrefix + strconv.FormatInt(userID, 10)
}

func indexMember(tokenID string, kind models.TokenKind) string {
	return string(kind) + ":" + tokenID
}

func (s *redisStore) Register(ctx context.Context, userID int64, tokenID string, kind models.TokenKind, ttl time.Duration) error {
	const op = "sessions.redisStore.Register"

	idx := indexKey(userID)

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, entryKey(userID, tokenID, kind), "1", ttl)
	pipe.SAdd(ctx, idx, indexMember(tokenID, kind))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Индекс живёт не меньше самого долгоживущего члена. Свежесозданное
	// множество не имеет TTL (TTL = -1), поэтому EXPIRE GT здесь не подходит.
	cur, err := s.rdb.TTL(ctx, idx).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if cur < ttl {
		if err := s.rdb.Expire(ctx, idx, ttl).Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

func (s *redisStore) IsLive(ctx context.Context, userID int64, tokenID string, kind models.TokenKind) (bool, error) {
	const op = "sessions.redisStore.IsLive"

	n, err := s.rdb.Exists(ctx, entryKey(userID, tokenID, kind)).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n == 1, nil
}

func (s *redisStore) RemainingTTL(ctx context.Context, userID int64, tokenID string, kind models.TokenKind) (time.Duration, error) {
	const op = "sessions.redisStore.RemainingTTL"

	ttl, err := s.rdb.TTL(ctx, entryKey(userID, tokenID, kind)).Result()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	// -1 (без TTL) и -2 (нет ключа) схлопываются в 0: решение о продлении
	// принимает вызывающая сторона, и «нечего продлевать» для неё равно нулю.
	if ttl < 0 {
		return 0, nil
	}

	return ttl, nil
}

func (s *redisStore) Renew(ctx context.Context, userID int64, tokenID string, kind models.TokenKind, ttl time.Duration) error {
	const op = "sessions.redisStore.Renew"

	// EXPIRE GT: срабатывает только если новый TTL больше текущего и ключ
	// существует. Это даёт обе гарантии Renew — «не уменьшает» и «no-op при
	// отсутствии» — одной командой.
	if err := s.rdb.ExpireGT(ctx, entryKey(userID, tokenID, kind), ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *redisStore) Revoke(ctx context.Context, userID int64, tokenID string, kind models.TokenKind) error {
	const op = "sessions.redisStore.Revoke"

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, entryKey(userID, tokenID, kind))
	pipe.SRem(ctx, indexKey(userID), indexMember(tokenID, kind))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *redisStore) RevokeAll(ctx context.Context, userID int64) error {
	const op = "sessions.redisStore.RevokeAll"

	idx := indexKey(userID)

	members, err := s.rdb.SMembers(ctx, idx).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	pipe := s.rdb.TxPipeline()
	for _, m := range members {
		kind, tokenID, ok := splitMember(m)
		if !ok {
			continue
		}
		pipe.Del(ctx, entryKey(userID, tokenID, kind))
	}
	pipe.Del(ctx, idx)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *redisStore) CountOnlineUsers(ctx context.Context) (int64, error) {
	const op = "sessions.redisStore.CountOnlineUsers"

	prefix := keyPrefix + string(models.KindAccess) + ":"
	seen := make(map[string]struct{})

	iter := s.rdb.Scan(ctx, 0, prefix+"*", 512).Iterator()
	for iter.Next(ctx) {
		// Формат ключа: token:access:{uid}:{tokenId}.
		rest := strings.TrimPrefix(iter.Val(), prefix)
		uid, _, ok := strings.Cut(rest, ":")
		if !ok {
			continue
		}
		seen[uid] = struct{}{}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return int64(len(seen)), nil
}

func (s *redisStore) Close() error { return s.rdb.Close() }

// splitMember разбирает член индекса "kind:tokenId".
func splitMember(m string) (models.TokenKind, string, bool) {
	kind, tokenID, ok := strings.Cut(m, ":")
	if !ok || tokenID == "" {
		return "", "", false
	}

	switch models.TokenKind(kind) {
	case models.KindAccess, models.KindRefresh:
		return models.TokenKind(kind), tokenID, true
	default:
		return "", "", false
	}
}

// Проверка соответствия интерфейсу.
var _ Store = (*redisStore)(nil)
