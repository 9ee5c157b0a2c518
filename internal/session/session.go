// Package session signs users in and out and keeps the bearer token in
// step with the backend's view of the session.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inovacc/labctl/internal/labapi"
	"github.com/inovacc/labctl/internal/log"
)

var (
	// ErrNoToken is returned when an operation needs a stored token.
	ErrNoToken = errors.New("not signed in")

	// ErrInvalidToken is returned when the backend answers a login or
	// register without a usable token.
	ErrInvalidToken = errors.New("invalid token received from server")
)

// Role values reported by the backend.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the account returned by login, register and verify.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Phone        string `json:"phone,omitempty"`
	Department   string `json:"department,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Authenticator is the subset of the auth endpoints a Manager drives.
// *labapi.AuthAPI satisfies it.
type Authenticator interface {
	Login(ctx context.Context, req labapi.LoginRequest) (json.RawMessage, error)
	Register(ctx context.Context, req labapi.RegisterRequest) (json.RawMessage, error)
	Logout(ctx context.Context) (json.RawMessage, error)
	Verify(ctx context.Context) (json.RawMessage, error)
}

// Tokens is where the bearer token lives. *token.Store satisfies it.
type Tokens interface {
	Get(ctx context.Context) (string, bool)
	Set(ctx context.Context, tok string) error
	Clear(ctx context.Context) error
}

type Manager struct {
	auth   Authenticator
	tokens Tokens
	log    log.Logger
}

// New returns a Manager. A nil logger disables logging.
func New(auth Authenticator, tokens Tokens, logger log.Logger) *Manager {
	if logger == nil {
		logger = log.NewNop()
	}

	return &Manager{auth: auth, tokens: tokens, log: logger.WithName("session")}
}

// Login authenticates with email and password and stores the returned token.
func (m *Manager) Login(ctx context.Context, email, password string) (*User, error) {
	m.log.Debug("logging in", "email", email)

	body, err := m.auth.Login(ctx, labapi.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	return m.establish(ctx, body)
}

// Register creates an account and signs it in.
func (m *Manager) Register(ctx context.Context, req labapi.RegisterRequest) (*User, error) {
	m.log.Debug("registering", "email", req.Email)

	body, err := m.auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	return m.establish(ctx, body)
}

func (m *Manager) establish(ctx context.Context, body json.RawMessage) (*User, error) {
	res, err := labapi.ParseAuthResult(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}

	if res.Token == "" {
		return nil, ErrInvalidToken
	}

	if err := m.tokens.Set(ctx, res.Token); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}

	user, err := decodeUser(res.User)
	if err != nil {
		return nil, err
	}

	m.log.Info("signed in", "email", user.Email, "role", user.Role)

	return user, nil
}

// Logout tells the backend and clears the local token. The server call is
// best effort; only a failure to clear the token is returned.
func (m *Manager) Logout(ctx context.Context) error {
	if _, err := m.auth.Logout(ctx); err != nil {
		m.log.Warn("logout request failed", "error", err)
	}

	return m.tokens.Clear(ctx)
}

// Check verifies the stored token with the backend and returns the signed-in
// user. Any verification failure clears the token.
func (m *Manager) Check(ctx context.Context) (*User, error) {
	if _, ok := m.tokens.Get(ctx); !ok {
		return nil, ErrNoToken
	}

	user, err := m.verify(ctx)
	if err != nil {
		m.log.Info("authentication check failed", "error", err)

		if clearErr := m.tokens.Clear(ctx); clearErr != nil {
			return nil, errors.Join(err, clearErr)
		}

		return nil, err
	}

	return user, nil
}

func (m *Manager) verify(ctx context.Context) (*User, error) {
	body, err := m.auth.Verify(ctx)
	if err != nil {
		return nil, err
	}

	var resp struct {
		User json.RawMessage `json:"user"`
		Data struct {
			User json.RawMessage `json:"user"`
		} `json:"data"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode verify response: %w", err)
	}

	raw := resp.User
	if len(raw) == 0 {
		raw = resp.Data.User
	}

	if len(raw) == 0 || string(raw) == "null" {
		return nil, errors.New("verify response carries no user")
	}

	return decodeUser(raw)
}

func decodeUser(raw json.RawMessage) (*User, error) {
	user := &User{}
	if len(raw) == 0 || string(raw) == "null" {
		return user, nil
	}

	if err := json.Unmarshal(raw, user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	return user, nil
}
