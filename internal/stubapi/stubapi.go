// stubapi — локальный stub rental-API для разработки и тестов клиента.
//
// Реализует внешний контракт, который потребляет storefront-клиент:
// /auth/* c JWT и ротацией refresh-токенов, публичный каталог,
// бронирования и /me за bearer-авторизацией. Данные живут в памяти
// и сеются при старте; это инструмент, а не продакшен-бэкенд.
package stubapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Config — параметры выпуска токенов.
type Config struct {
	// JWTSecret подписывает access-токены (HS256).
	JWTSecret string
	// AccessTTL — срок жизни access-токена. Короткий TTL удобен
	// в тестах упреждающего refresh.
	AccessTTL time.Duration
	// RefreshTTL — срок жизни refresh-токена.
	RefreshTTL time.Duration
}

// API — состояние stub-сервера.
type API struct {
	cfg Config
	log *slog.Logger
	db  *store
}

// New создаёт stub с засеянными пользователями и объявлениями.
func New(cfg Config, log *slog.Logger) *API {
	if log == nil {
		log = slog.Default()
	}

	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}

	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}

	return &API{
		cfg: cfg,
		log: log,
		db:  newStore(),
	}
}

// Router собирает http.Handler с chi и подключёнными middleware/роутами.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	r.Use(
		Recover(),      // безопасно ловим паники
		RequestID(),    // формируем/прокидываем X-Request-Id (до логирования!)
		Logging(a.log), // кладём request-scoped логгер в контекст и логируем
	)

	// auth
	r.Post("/auth/register", a.handleRegister)
	r.Post("/auth/login", a.handleLogin)
	r.Post("/auth/refresh", a.handleRefresh)
	r.Post("/auth/logout", a.handleLogout)

	// публичный каталог (токен опционален).
	r.Group(func(r chi.Router) {
		r.Use(a.authOptional)
		r.Get("/cities", a.handleCities)
		r.Get("/properties", a.handleListProperties)
		r.Get("/properties/{id}", a.handlePropertyByID)
	})

	// приватные ресурсы.
	r.Group(func(r chi.Router) {
		r.Use(a.authRequired)
		r.Get("/me", a.handleMe)
		r.Post("/bookings", a.handleCreateBooking)
		r.Get("/bookings", a.handleMyBookings)
	})

	return r
}
