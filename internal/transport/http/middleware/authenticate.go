package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/models"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/service"
	apierrors "github.com/Fordbeing/go-bookmark-manager/auth-service/internal/transport/http/errors"
)

// Authenticate извлекает Bearer-токен из Authorization и прогоняет его через
// конвейер проверки сервиса. Запрос без токена проходит дальше анонимным;
// запрос с токеном либо получает принципала в контекст, либо терминально
// отклоняется — тихого даунгрейда до анонима нет.
//
// refreshPath — единственный маршрут, которому разрешён refresh-токен
// в заголовке Authorization.
func Authenticate(svc *service.Service, refreshPath string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := BearerToken(r)

			principal, err := svc.Authenticate(r.Context(), raw, r.URL.Path == refreshPath)
			if err != nil {
				// Несуществующий пользователь по валидному токену — это
				// всё равно отказ в аутентификации, а не 404.
				if errors.Is(err, service.ErrUserNotFound) {
					apierrors.WriteKind(w, r, http.StatusUnauthorized, apierrors.KindUserNotFound, "user not found")
					return
				}
				apierrors.WriteError(w, r, err)
				return
			}

			if principal != nil {
				ctx := context.WithValue(r.Context(), ctxPrincipal, principal)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser пропускает только аутентифицированные запросы.
func RequireUser() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if PrincipalFrom(r.Context()) == nil {
				apierrors.WriteKind(w, r, http.StatusUnauthorized, apierrors.KindInvalidToken, "authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin пропускает только администраторов.
func RequireAdmin() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFrom(r.Context())
			if principal == nil {
				apierrors.WriteKind(w, r, http.StatusUnauthorized, apierrors.KindInvalidToken, "authentication required")
				return
			}
			if !principal.IsAdmin {
				apierrors.WriteKind(w, r, http.StatusForbidden, apierrors.KindForbidden, "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFrom возвращает принципала запроса (nil — аноним).
func PrincipalFrom(ctx context.Context) *models.Principal {
	principal, _ := ctx.Value(ctxPrincipal).(*models.Principal)
	return principal
}

// BearerToken достаёт «сырой» токен из Authorization: Bearer <token>.
// Единственное место, где разбирается заголовок: хендлеры используют его же.
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) || len(auth) <= len(prefix) {
		return ""
	}

	return strings.TrimSpace(auth[len(prefix):])
}
