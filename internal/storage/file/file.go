// file — durable реализация storage.Store поверх одного JSON-файла.
//
// Формат: плоский объект {"key": "value"}. Файл создаётся с правами 0600
// (в нём лежит refresh-токен), запись атомарная: tmp-файл + rename.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pribylovaa/go-rental-storefront/internal/storage"
)

type Store struct {
	mu   sync.Mutex
	path string
}

// New создаёт хранилище по пути path; каталог должен существовать.
func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	const op = "storage.file.Get"

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	v, ok := m[key]
	if !ok {
		return "", storage.ErrNotFound
	}

	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	const op = "storage.file.Set"

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m[key] = value

	if err := s.save(m); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	const op = "storage.file.Delete"

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, ok := m[key]; !ok {
		return nil
	}

	delete(m, key)

	if err := s.save(m); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// load читает файл целиком; отсутствующий файл — пустая карта.
func (s *Store) load() (map[string]string, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}

		return nil, err
	}

	if len(b) == 0 {
		return make(map[string]string), nil
	}

	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}

	if m == nil {
		m = make(map[string]string)
	}

	return m, nil
}

// save пишет атомарно: tmp-файл в том же каталоге + rename.
func (s *Store) save(m map[string]string) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, s.path)
}
