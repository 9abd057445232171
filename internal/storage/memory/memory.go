// memory — session-scoped реализация storage.Store.
//
// Значения живут в памяти процесса и теряются при его завершении —
// сюда кладётся access-токен и кэш профиля (сознательный компромисс
// безопасность/удобство: короткоживущий токен не переживает перезапуск).
package memory

import (
	"context"
	"sync"

	"github.com/pribylovaa/go-rental-storefront/internal/storage"
)

type Store struct {
	mu sync.RWMutex
	m  map[string]string
}

// New создаёт пустое in-memory хранилище.
func New() *Store {
	return &Store{m: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.m[key]
	if !ok {
		return "", storage.ErrNotFound
	}

	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m[key] = value
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.m, key)
	return nil
}
