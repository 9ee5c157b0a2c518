package securestore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"golang.org/x/crypto/hkdf"
)

const (
	fileBucket   = "secure" // key: storage key -> nonce + ciphertext
	fileKeyName  = "storage.key"
	fileHKDFInfo = "labctl-secure-storage"

	keySize   = 32
	nonceSize = 12
)

// File stores encrypted values in a bbolt database. The master key lives
// next to the database in a 0600 file.
type File struct {
	db        *bbolt.DB
	masterKey []byte
}

// NewFile opens (or creates) the database at path.
func NewFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	masterKey, err := loadOrCreateKey(filepath.Join(filepath.Dir(path), fileKeyName))
	if err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage %s: %w", path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(fileBucket))
		return err
	}); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &File{db: db, masterKey: masterKey}, nil
}

func (f *File) Get(_ context.Context, key string) (string, error) {
	var sealed []byte

	err := f.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(fileBucket)).Get([]byte(key)); v != nil {
			sealed = append([]byte(nil), v...)
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	if sealed == nil {
		return "", ErrNotFound
	}

	plaintext, err := f.open(key, sealed)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	sealed, err := f.seal(key, []byte(value))
	if err != nil {
		return err
	}

	return f.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(fileBucket)).Put([]byte(key), sealed)
	})
}

func (f *File) Delete(_ context.Context, key string) error {
	return f.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(fileBucket)).Delete([]byte(key))
	})
}

func (f *File) Close() error {
	return f.db.Close()
}

func (f *File) seal(key string, plaintext []byte) ([]byte, error) {
	gcm, err := f.gcmFor(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// key name is bound as additional data so values cannot be swapped between keys
	ciphertext := gcm.Seal(nil, nonce, plaintext, []byte(key))

	result := make([]byte, 0, nonceSize+len(ciphertext))
	result = append(result, nonce...)
	result = append(result, ciphertext...)

	return result, nil
}

func (f *File) open(key string, sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+16 {
		return nil, errors.New("stored value too short")
	}

	gcm, err := f.gcmFor(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, sealed[:nonceSize], sealed[nonceSize:], []byte(key))
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}

	return plaintext, nil
}

func (f *File) gcmFor(key string) (cipher.AEAD, error) {
	subkey := make([]byte, keySize)
	if _, err := hkdf.New(sha256.New, f.masterKey, []byte(key), []byte(fileHKDFInfo)).Read(subkey); err != nil {
		return nil, fmt.Errorf("HKDF key derivation failed: %w", err)
	}

	block, err := aes.NewCipher(subkey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return gcm, nil
}

func loadOrCreateKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != keySize {
			return nil, fmt.Errorf("storage key %s is corrupt", path)
		}

		return data, nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read storage key: %w", err)
	}

	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate storage key: %w", err)
	}

	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write storage key: %w", err)
	}

	return key, nil
}
