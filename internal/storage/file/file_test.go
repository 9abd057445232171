package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pribylovaa/go-rental-storefront/internal/storage"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "credentials.json"))
}

func TestStore_GetSetDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newStore(t)

	// Файла ещё нет — пустое хранилище, а не ошибка.
	_, err := st.Get(ctx, "refresh_token")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, st.Set(ctx, "refresh_token", "r1"))

	v, err := st.Get(ctx, "refresh_token")
	require.NoError(t, err)
	require.Equal(t, "r1", v)

	require.NoError(t, st.Delete(ctx, "refresh_token"))
	require.NoError(t, st.Delete(ctx, "refresh_token"))

	_, err = st.Get(ctx, "refresh_token")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_SurvivesReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")

	st := New(path)
	require.NoError(t, st.Set(ctx, "refresh_token", "r1"))

	// Новый экземпляр поверх того же файла видит значение.
	st2 := New(path)
	v, err := st2.Get(ctx, "refresh_token")
	require.NoError(t, err)
	require.Equal(t, "r1", v)
}

func TestStore_FileMode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")

	st := New(path)
	require.NoError(t, st.Set(ctx, "refresh_token", "r1"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_CorruptedFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	st := New(path)
	_, err := st.Get(ctx, "refresh_token")
	require.Error(t, err)
	require.NotErrorIs(t, err, storage.ErrNotFound)
}
