// session владеет парой токенов и кэшем профиля поверх двух key-value портов.
//
// Раскладка (см. storage):
//   - session-scoped: access_token (строка), user_info (JSON-профиль);
//   - durable:        refresh_token (строка).
//
// Все мутации (Apply/Clear) пишут связанные ключи под одним мьютексом,
// чтобы ни один конкурентный читатель не увидел «полуобновлённые» креды.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/pribylovaa/go-rental-storefront/internal/models"
	"github.com/pribylovaa/go-rental-storefront/internal/storage"
)

// Ключи в хранилищах.
const (
	KeyAccessToken  = "access_token"
	KeyUserInfo     = "user_info"
	KeyRefreshToken = "refresh_token"
)

// Session — явный объект сессии с инжектируемыми хранилищами.
type Session struct {
	mu      sync.Mutex
	session storage.Store // access-токен и снимок профиля
	durable storage.Store // refresh-токен
}

// New создаёт сессию поверх session-scoped и durable хранилищ.
func New(sessionStore, durableStore storage.Store) *Session {
	return &Session{
		session: sessionStore,
		durable: durableStore,
	}
}

// AccessToken возвращает access-токен и признак его наличия.
func (s *Session) AccessToken(ctx context.Context) (string, bool, error) {
	const op = "session.AccessToken"

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.get(ctx, op, s.session, KeyAccessToken)
}

// RefreshToken возвращает refresh-токен и признак его наличия.
func (s *Session) RefreshToken(ctx context.Context) (string, bool, error) {
	const op = "session.RefreshToken"

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.get(ctx, op, s.durable, KeyRefreshToken)
}

// User возвращает кэшированный снимок профиля, если он сохранён.
func (s *Session) User(ctx context.Context) (*models.User, bool, error) {
	const op = "session.User"

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.get(ctx, op, s.session, KeyUserInfo)
	if err != nil || !ok {
		return nil, false, err
	}

	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	return &u, true, nil
}

// Apply сохраняет результат login/refresh.
//
// Семантика:
//   - access-токен обязателен и перезаписывается всегда;
//   - refresh-токен пишется, только если сервер его вернул (ротация опциональна);
//   - профиль заменяется целиком, только если сервер его прислал.
func (s *Session) Apply(ctx context.Context, res *models.AuthResult) error {
	const op = "session.Apply"

	if res == nil || res.AccessToken == "" {
		return fmt.Errorf("%s: empty access token", op)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.Set(ctx, KeyAccessToken, res.AccessToken); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.RefreshToken != "" {
		if err := s.durable.Set(ctx, KeyRefreshToken, res.RefreshToken); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if res.User != nil {
		raw, err := json.Marshal(res.User)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := s.session.Set(ctx, KeyUserInfo, string(raw)); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// Clear удаляет все три значения. Удаление best-effort: все ключи
// зачищаются независимо, возвращается первая ошибка — частично
// сохранённых кред после Clear не остаётся.
func (s *Session) Clear(ctx context.Context) error {
	const op = "session.Clear"

	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error

	if err := s.session.Delete(ctx, KeyAccessToken); err != nil {
		firstErr = err
	}

	if err := s.session.Delete(ctx, KeyUserInfo); err != nil && firstErr == nil {
		firstErr = err
	}

	if err := s.durable.Delete(ctx, KeyRefreshToken); err != nil && firstErr == nil {
		firstErr = err
	}

	if firstErr != nil {
		return fmt.Errorf("%s: %w", op, firstErr)
	}

	return nil
}

func (s *Session) get(ctx context.Context, op string, st storage.Store, key string) (string, bool, error) {
	v, err := st.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	return v, v != "", nil
}
