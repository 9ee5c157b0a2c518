package securestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zalando/go-keyring"
)

// keyringTimeout bounds each keyring call; some Secret Service
// implementations block indefinitely when no agent is running.
const keyringTimeout = 5 * time.Second

// KeyringError represents an error during keyring operations
type KeyringError struct {
	Operation string
	Key       string
	Err       error
}

func (e *KeyringError) Error() string {
	return fmt.Sprintf("keyring %s %q failed: %v", e.Operation, e.Key, e.Err)
}

func (e *KeyringError) Unwrap() error {
	return e.Err
}

// Keyring stores values in the system keyring under a single service name.
type Keyring struct {
	service string
	timeout time.Duration
}

// NewKeyring returns a Keyring for service.
func NewKeyring(service string) *Keyring {
	return &Keyring{service: service, timeout: keyringTimeout}
}

func (k *Keyring) Get(ctx context.Context, key string) (string, error) {
	type result struct {
		value string
		err   error
	}

	resultCh := make(chan result, 1)

	go func() {
		value, err := keyring.Get(k.service, key)
		resultCh <- result{value: value, err: err}
	}()

	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	select {
	case r := <-resultCh:
		if errors.Is(r.err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}

		if r.err != nil {
			return "", &KeyringError{Operation: "get", Key: key, Err: r.err}
		}

		return r.value, nil
	case <-ctx.Done():
		return "", &KeyringError{Operation: "get", Key: key, Err: ctx.Err()}
	}
}

func (k *Keyring) Set(ctx context.Context, key, value string) error {
	return k.run(ctx, "set", key, func() error {
		return keyring.Set(k.service, key, value)
	})
}

func (k *Keyring) Delete(ctx context.Context, key string) error {
	err := k.run(ctx, "delete", key, func() error {
		return keyring.Delete(k.service, key)
	})
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}

	return err
}

func (k *Keyring) Close() error {
	return nil
}

func (k *Keyring) run(ctx context.Context, op, key string, fn func() error) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- fn()
	}()

	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	select {
	case err := <-errCh:
		if err != nil {
			return &KeyringError{Operation: op, Key: key, Err: err}
		}

		return nil
	case <-ctx.Done():
		return &KeyringError{Operation: op, Key: key, Err: ctx.Err()}
	}
}

// Available reports whether the system keyring accepts writes.
func (k *Keyring) Available(ctx context.Context) bool {
	const probeKey = "__labctl_keyring_test__"

	if err := k.Set(ctx, probeKey, "test"); err != nil {
		return false
	}

	_ = k.Delete(ctx, probeKey)

	return true
}
