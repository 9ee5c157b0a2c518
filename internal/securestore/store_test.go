package securestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/inovacc/labctl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
	"go.etcd.io/bbolt"
)

func newFileStore(t *testing.T) (*File, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "labctl.bolt")
	f, err := NewFile(path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = f.Close() })

	return f, path
}

func backends(t *testing.T) map[string]Store {
	t.Helper()

	keyring.MockInit()

	f, _ := newFileStore(t)

	return map[string]Store{
		"memory":  NewMemory(),
		"keyring": NewKeyring("labctl-test"),
		"file":    f,
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, KeyAuthToken)
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, KeyAuthToken, "first"))
			require.NoError(t, s.Set(ctx, KeyAuthToken, "second"))

			v, err := s.Get(ctx, KeyAuthToken)
			require.NoError(t, err)
			assert.Equal(t, "second", v)

			require.NoError(t, s.Delete(ctx, KeyAuthToken))
			require.NoError(t, s.Delete(ctx, KeyAuthToken), "deleting an absent key succeeds")

			_, err = s.Get(ctx, KeyAuthToken)
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestFileValuesAreEncrypted(t *testing.T) {
	ctx := context.Background()
	f, path := newFileStore(t)

	const secret = "eyJhbGciOiJIUzI1NiJ9.payload.signature"
	require.NoError(t, f.Set(ctx, KeyAuthToken, secret))
	require.NoError(t, f.Close())

	db, err := bbolt.Open(path, 0o600, nil)
	require.NoError(t, err)

	var raw []byte
	require.NoError(t, db.View(func(tx *bbolt.Tx) error {
		raw = append(raw, tx.Bucket([]byte(fileBucket)).Get([]byte(KeyAuthToken))...)
		return nil
	}))
	require.NoError(t, db.Close())

	assert.NotEmpty(t, raw)
	assert.NotContains(t, string(raw), secret)
}

func TestFileReopenKeepsValues(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "labctl.bolt")

	f, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, KeyCachedBackendURL, "http://10.0.0.5:5000/api"))
	require.NoError(t, f.Close())

	f, err = NewFile(path)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.Get(ctx, KeyCachedBackendURL)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:5000/api", v)

	info, err := os.Stat(filepath.Join(filepath.Dir(path), fileKeyName))
	require.NoError(t, err)
	assert.Equal(t, int64(keySize), info.Size())
}

func TestFileRejectsSwappedValues(t *testing.T) {
	ctx := context.Background()
	f, _ := newFileStore(t)

	require.NoError(t, f.Set(ctx, KeyAuthToken, "token"))

	require.NoError(t, f.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(fileBucket))
		return b.Put([]byte(KeyCachedBackendURL), b.Get([]byte(KeyAuthToken)))
	}))

	_, err := f.Get(ctx, KeyCachedBackendURL)
	require.Error(t, err)
}

func TestOpen(t *testing.T) {
	cfg := config.Default()
	cfg.Storage = config.StorageFile
	cfg.StoragePath = filepath.Join(t.TempDir(), "store.bolt")

	s, err := Open(cfg)
	require.NoError(t, err)
	defer s.Close()

	assert.IsType(t, &File{}, s)

	cfg.Storage = config.StorageKeyring
	s2, err := Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Keyring{}, s2)

	cfg.Storage = "cloud"
	_, err = Open(cfg)
	require.Error(t, err)
}

func TestKeyringAvailableWithMock(t *testing.T) {
	keyring.MockInit()

	assert.True(t, NewKeyring("labctl-test").Available(context.Background()))
}
