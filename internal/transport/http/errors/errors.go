// errors стандартизирует ответы об ошибках HTTP-слоя auth-сервиса.
// На вход он принимает сервисную ошибку, а на выход даёт:
//   - корректный HTTP-статус;
//   - стабильный машиночитаемый kind для фронта;
//   - краткое безопасное message без утечки деталей.
//
// Формат тела намеренно совместим со старым API бэкенда закладок:
// {"code": <HTTP-статус>, "error": "<KIND>", "message": "<text>"}.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// Машиночитаемые kind'ы отклонений. По одному на причину отказа.
const (
	KindInvalidToken       = "INVALID_TOKEN"
	KindWrongTokenType     = "WRONG_TOKEN_TYPE"
	KindSessionRevoked     = "SESSION_REVOKED"
	KindUserDisabled       = "USER_DISABLED"
	KindUserNotFound       = "USER_NOT_FOUND"
	KindAccountLocked      = "ACCOUNT_LOCKED"
	KindInvalidCredentials = "INVALID_CREDENTIALS"
	KindInvalidArgument    = "INVALID_ARGUMENT"
	KindEmailTaken         = "EMAIL_TAKEN"
	KindForbidden          = "FORBIDDEN"
	KindInternal           = "INTERNAL"
)

// ErrorResponse — единый формат ошибки для фронта.
// Code дублирует HTTP-статус в теле, Kind — стабильный код причины,
// Message — безопасное человекочитаемое описание.
// RequestID прокидывается из X-Request-Id, если есть (для трассировки).
type ErrorResponse struct {
	Code      int    `json:"code"`
	Kind      string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ToHTTP конвертирует сервисную ошибку в HTTP-статус и унифицированный ответ.
//
// err == nil — это программная ошибка вызова: возвращаем 500/INTERNAL,
// чтобы не послать "200 OK" с телом ошибки и не маскировать баг.
func ToHTTP(err error) (int, ErrorResponse) {
	status, kind, msg := classify(err)
	return status, ErrorResponse{
		Code:    status,
		Kind:    kind,
		Message: msg,
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	// Прокидываем request_id для фронта, чтобы он мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteKind пишет ответ с заранее выбранным статусом/kind/сообщением.
// Используется хендлерами, которым нужно дополнить message контекстом
// (например, остатком попыток входа).
func WriteKind(w http.ResponseWriter, r *http.Request, status int, kind, msg string) {
	resp := ErrorResponse{
		Code:    status,
		Kind:    kind,
		Message: msg,
	}
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// classify — маппинг сервисных ошибок на HTTP-статус/kind/сообщение.
func classify(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, KindInternal, "internal error"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, KindInvalidToken, "invalid token"
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, KindInvalidToken, "token expired"
	case errors.Is(err, service.ErrWrongTokenType):
		return http.StatusUnauthorized, KindWrongTokenType, "use access token"
	case errors.Is(err, service.ErrSessionRevoked):
		return http.StatusUnauthorized, KindSessionRevoked, "session revoked"
	case errors.Is(err, service.ErrUserDisabled):
		return http.StatusUnauthorized, KindUserDisabled, "user disabled"
	case errors.Is(err, service.ErrAccountLocked):
		return http.StatusUnauthorized, KindAccountLocked, "account temporarily locked"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, KindInvalidCredentials, "invalid credentials"
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, KindUserNotFound, "user not found"
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, KindEmailTaken, "email already taken"
	case errors.Is(err, service.ErrInvalidEmail):
		return http.StatusBadRequest, KindInvalidArgument, "invalid email format"
	case errors.Is(err, service.ErrWeakPassword):
		return http.StatusBadRequest, KindInvalidArgument, "password is too weak"
	case errors.Is(err, service.ErrEmptyPassword):
		return http.StatusBadRequest, KindInvalidArgument, "password is empty"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, KindInternal, "deadline exceeded"
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, KindInternal, "canceled"
	default:
		return http.StatusInternalServerError, KindInternal, "internal error"
	}
}
