package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/models"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/pkg/log"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/storage"
)

// Authenticate — конвейер проверки предъявленного токена, выполняется на
// каждый запрос. allowRefresh == true только для эндпоинта обновления токена:
// это единственный маршрут, которому разрешён refresh-токен.
//
// Последовательность проверок:
//  1. пустой токен — анонимный запрос, (nil, nil);
//  2. подпись/срок действия — ErrInvalidToken / ErrTokenExpired;
//  3. legacy-токен (без tokenId) — субъект резолвится по e-mail, проверки
//     сессий пропускаются;
//  4. тип токена против эндпоинта — ErrWrongTokenType;
//  5. живость сессии — ErrSessionRevoked;
//  6. статус учётной записи — ErrUserDisabled, с каскадным отзывом всех
//     сессий пользователя (отключённый аккаунт вычищается при первом же
//     отклонённом обращении, а не просто получает отказ);
//  7. скользящее продление: если access-сессии осталось жить меньше порога,
//     её TTL тихо продлевается до полного срока access-токена. tokenId и
//     сам токен при этом не меняются.
//
// Каждая неудача терминальна: ни ретраев, ни тихого даунгрейда до анонима.
func (s *Service) Authenticate(ctx context.Context, rawToken string, allowRefresh bool) (*models.Principal, error) {
	const op = "service.auth.Authenticate"

	if rawToken == "" {
		return nil, nil
	}

	claims, err := s.codec.Decode(rawToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.mapTokenError(err))
	}

	if claims.Legacy() {
		return s.authenticateLegacy(ctx, claims)
	}

	if claims.Kind == models.KindRefresh && !allowRefresh {
		return nil, fmt.Errorf("%s: %w", op, ErrWrongTokenType)
	}

	live, err := s.sessions.IsLive(ctx, claims.UserID, claims.TokenID, claims.Kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !live {
		return nil, fmt.Errorf("%s: %w", op, ErrSessionRevoked)
	}

	user, err := s.storage.UserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user.Disabled() {
		if rerr := s.sessions.RevokeAll(ctx, user.ID); rerr != nil {
			log.From(ctx).Error("revoke_all_failed",
				slog.String("op", op),
				slog.Int64("user_id", user.ID),
				slog.String("err", rerr.Error()),
			)
		}
		return nil, fmt.Errorf("%s: %w", op, ErrUserDisabled)
	}

	if claims.Kind == models.KindAccess {
		s.slideAccessSession(ctx, claims)
	}

	return &models.Principal{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		TokenID: claims.TokenID,
		Kind:    claims.Kind,
	}, nil
}

// authenticateLegacy резолвит субъект legacy-токена (e-mail) напрямую, минуя
// хранилище сессий: такие токены выпускались до появления tokenId и не имеют
// серверных сессий, отзывать и продлевать нечего.
func (s *Service) authenticateLegacy(ctx context.Context, claims *models.Claims) (*models.Principal, error) {
	const op = "service.auth.authenticateLegacy"

	user, err := s.storage.UserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user.Disabled() {
		return nil, fmt.Errorf("%s: %w", op, ErrUserDisabled)
	}

	return &models.Principal{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		Kind:    models.KindLegacy,
	}, nil
}

// slideAccessSession продлевает TTL access-сессии, когда ей осталось жить
// меньше порога. Ошибки продления не фатальны для запроса: сессия уже
// подтверждена живой, неудавшееся продление лишь приблизит естественное
// истечение.
func (s *Service) slideAccessSession(ctx context.Context, claims *models.Claims) {
	const op = "service.auth.slideAccessSession"

	remaining, err := s.sessions.RemainingTTL(ctx, claims.UserID, claims.TokenID, models.KindAccess)
	if err != nil {
		log.From(ctx).Warn("sliding_renewal_skipped",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return
	}

	if remaining <= 0 || remaining >= s.cfg.RefreshThreshold {
		return
	}

	if err := s.sessions.Renew(ctx, claims.UserID, claims.TokenID, models.KindAccess, s.codec.AccessTTL()); err != nil {
		log.From(ctx).Warn("sliding_renewal_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}
}
