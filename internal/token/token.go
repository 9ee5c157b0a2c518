// Package token persists the API bearer token in secure storage.
package token

import (
	"context"
	"errors"
	"strings"

	"github.com/inovacc/labctl/internal/log"
	"github.com/inovacc/labctl/internal/securestore"
)

// ErrInvalidToken is returned by Set for an empty token.
var ErrInvalidToken = errors.New("token must be a non-empty string")

// Store reads and writes the single auth token.
type Store struct {
	storage securestore.Store
	log     log.Logger
}

// NewStore returns a Store over storage. A nil logger disables logging.
func NewStore(storage securestore.Store, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}

	return &Store{storage: storage, log: logger.WithName("token")}
}

// Get returns the stored token. Storage errors are logged and reported as
// absent.
func (s *Store) Get(ctx context.Context) (string, bool) {
	tok, err := s.storage.Get(ctx, securestore.KeyAuthToken)
	if err != nil {
		if !errors.Is(err, securestore.ErrNotFound) {
			s.log.Warn("failed to read token, treating as absent", "error", err)
		}

		return "", false
	}

	if tok == "" {
		return "", false
	}

	return tok, true
}

// Set stores tok, replacing any previous token.
func (s *Store) Set(ctx context.Context, tok string) error {
	if strings.TrimSpace(tok) == "" {
		return ErrInvalidToken
	}

	if err := s.storage.Set(ctx, securestore.KeyAuthToken, tok); err != nil {
		s.log.Error(err, "failed to save token")
		return err
	}

	s.log.Debug("token saved")

	return nil
}

// Clear removes the token. An absent token is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, securestore.KeyAuthToken); err != nil {
		s.log.Error(err, "failed to remove token")
		return err
	}

	return nil
}
