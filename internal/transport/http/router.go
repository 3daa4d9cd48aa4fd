package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/service"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/transport/http/handlers"
	"github.com/Fordbeing/go-bookmark-manager/auth-service/internal/transport/http/middleware"
)

// refreshPath — единственный маршрут, которому разрешён refresh-токен
// в заголовке Authorization.
const refreshPath = "/auth/refresh"

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),                      // безопасно ловим паники
		middleware.RequestID(),                    // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger),           // кладём request-scoped логгер в контекст и логируем
		middleware.Authenticate(svc, refreshPath), // прогоняем Bearer-токен через конвейер проверки
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc)

	// Публичные маршруты: токен не обязателен.
	root.Post("/auth/register", h.RegisterUser)
	root.Post("/auth/login", h.LoginUser)
	root.Post(refreshPath, h.RefreshToken)

	// Маршруты, требующие аутентификации.
	root.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser())
		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/me", h.Me)
	})

	// Админка.
	root.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin())
		r.Post("/admin/users/{id}/disable", h.DisableUser)
		r.Post("/admin/users/{id}/enable", h.EnableUser)
		r.Get("/admin/stats/online", h.OnlineStats)
	})

	return root
}
