// storage определяет порты key-value хранилищ учётных данных.
//
// Клиент конструируется с двумя такими хранилищами:
//   - session-scoped — живёт в пределах процесса (аналог sessionStorage);
//   - durable — переживает перезапуски (файл или Redis, аналог localStorage).
//
// Отсутствие ключа эквивалентно «значения нет» и сигналится ErrNotFound.
package storage

import (
	"context"
	"errors"
)

//go:generate mockgen -source=storage.go -destination=../../mocks/mock_storage.go -package=mocks

var (
	// ErrNotFound — ключ отсутствует в хранилище.
	ErrNotFound = errors.New("key not found")
)

// Store — минимальный контракт key-value хранилища строк.
type Store interface {
	// Get возвращает значение по ключу или ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set сохраняет значение по ключу, перезаписывая существующее.
	Set(ctx context.Context, key, value string) error
	// Delete удаляет ключ; отсутствие ключа ошибкой не считается.
	Delete(ctx context.Context, key string) error
}
