// lockout отслеживает подряд идущие неудачи входа по идентификатору (e-mail)
// и после настраиваемого порога включает временную блокировку.
//
// Модель данных в Redis:
//   - login:fail:{id} — счётчик неудач с TTL, равным длительности блокировки;
//   - login:lock:{id} — маркер блокировки со своим TTL; его присутствие
//     доминирует над счётчиком.
//
// Гард — советчик для логин-флоу, токены он не отвергает. При недоступности
// Redis он деградирует в «не заблокирован»/«счётчик 0»: доступность входа
// важнее строгости блокировки (поведение фиксируется тестами).
package lockout

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/config"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/pkg/log"
)

const (
	failPrefix = "login:fail:"
	lockPrefix = "login:lock:"

	// Ключи runtime-настроек (хранятся в system_settings, см. internal/storage).
	settingMaxAttempts  = "login_fail_lock_count"
	settingLockDuration = "lock_duration_minutes"
)

// SettingsSource отдаёт строковое значение runtime-настройки.
// Отсутствие ключа или ошибка чтения означают откат к значениям из конфигурации.
type SettingsSource interface {
	SettingValue(ctx context.Context, key string) (string, error)
}

// Guard — контракт гарда блокировки входа.
type Guard interface {
	// IsLocked возвращает остаток блокировки (0 — не заблокирован).
	IsLocked(ctx context.Context, id string) time.Duration
	// RecordFailure инкрементирует счётчик неудач и возвращает его текущее
	// значение; при достижении порога ставит маркер блокировки и сбрасывает
	// счётчик. «Прочитали счётчик — может быть, поставили блокировку» — это
	// две операции, не транзакция: при конкурентном шквале неудач блокировка
	// может встать на итерацию позже. Принятое окно гонки.
	RecordFailure(ctx context.Context, id string) int64
	// Clear удаляет и счётчик, и маркер (вызывается при успешном входе).
	Clear(ctx context.Context, id string)
	// FailCount возвращает текущее значение счётчика неудач.
	FailCount(ctx context.Context, id string) int64
	// RemainingAttempts возвращает max(0, maxAttempts - счётчик).
	RemainingAttempts(ctx context.Context, id string) int64
	// Close закрывает клиент Redis.
	Close() error
}

type redisGuard struct {
	rdb      *redis.Client
	settings SettingsSource
	defaults config.LockoutConfig
}

// NewRedisGuard создаёт гард поверх Redis. settings может быть nil —
// тогда лимиты всегда берутся из defaults.
func NewRedisGuard(ctx context.Context, redisURL string, settings SettingsSource, defaults config.LockoutConfig) (Guard, error) {
	const op = "lockout.NewRedisGuard"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &redisGuard{rdb: rdb, settings: settings, defaults: defaults}, nil
}

func (g *redisGuard) IsLocked(ctx context.Context, id string) time.Duration {
	const op = "lockout.redisGuard.IsLocked"

	ttl, err := g.rdb.TTL(ctx, lockPrefix+id).Result()
	if err != nil {
		log.From(ctx).Warn("lockout_check_degraded",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return 0
	}

	if ttl > 0 {
		return ttl
	}

	return 0
}

func (g *redisGuard) RecordFailure(ctx context.Context, id string) int64 {
	const op = "lockout.redisGuard.RecordFailure"

	lg := log.From(ctx)

	count, err := g.rdb.Incr(ctx, failPrefix+id).Result()
	if err != nil {
		lg.Warn("lockout_record_degraded",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return 0
	}

	lockDur := g.lockDuration(ctx)
	if err := g.rdb.Expire(ctx, failPrefix+id, lockDur).Err(); err != nil {
		lg.Warn("lockout_expire_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}

	if count >= g.maxAttempts(ctx) {
		if err := g.rdb.Set(ctx, lockPrefix+id, "locked", lockDur).Err(); err != nil {
			lg.Warn("lockout_lock_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
			return count
		}
		// Счётчик сбрасывается: после снятия блокировки отсчёт начинается заново.
		if err := g.rdb.Del(ctx, failPrefix+id).Err(); err != nil {
			lg.Warn("lockout_counter_reset_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}
		lg.Info("login_locked",
			slog.String("op", op),
			slog.Int64("attempts", count),
			slog.Duration("lock_duration", lockDur),
		)
	}

	return count
}

func (g *redisGuard) Clear(ctx context.Context, id string) {
	const op = "lockout.redisGuard.Clear"

	if err := g.rdb.Del(ctx, failPrefix+id, lockPrefix+id).Err(); err != nil {
		log.From(ctx).Warn("lockout_clear_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}
}

func (g *redisGuard) FailCount(ctx context.Context, id string) int64 {
	const op = "lockout.redisGuard.FailCount"

	val, err := g.rdb.Get(ctx, failPrefix+id).Result()
	if err != nil {
		if err != redis.Nil {
			log.From(ctx).Warn("lockout_count_degraded",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}
		return 0
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return count
}

func (g *redisGuard) RemainingAttempts(ctx context.Context, id string) int64 {
	remaining := g.maxAttempts(ctx) - g.FailCount(ctx, id)
	if remaining < 0 {
		return 0
	}

	return remaining
}

func (g *redisGuard) Close() error { return g.rdb.Close() }

// maxAttempts читает порог из runtime-настроек с откатом к конфигурации.
func (g *redisGuard) maxAttempts(ctx context.Context) int64 {
	if g.settings != nil {
		if raw, err := g.settings.SettingValue(ctx, settingMaxAttempts); err == nil {
			if v, perr := strconv.ParseInt(raw, 10, 64); perr == nil && v > 0 {
				return v
			}
		}
	}

	return g.defaults.MaxAttempts
}

// lockDuration читает длительность блокировки (в минутах) из runtime-настроек
// с откатом к конфигурации.
func (g *redisGuard) lockDuration(ctx context.Context) time.Duration {
	if g.settings != nil {
		if raw, err := g.settings.SettingValue(ctx, settingLockDuration); err == nil {
			if v, perr := strconv.ParseInt(raw, 10, 64); perr == nil && v > 0 {
				return time.Duration(v) * time.Minute
			}
		}
	}

	return g.defaults.LockDuration
}

// Проверка соответствия интерфейсу.
var _ Guard = (*redisGuard)(nil)
