package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields the backend signs into its tokens. They are read
// without verification and only serve display purposes.
type Claims struct {
	UserID int64  `json:"id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Expired reports whether the token's exp lies at or before now. Tokens
// without exp never expire.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// ParseClaims decodes tok without checking its signature.
func ParseClaims(tok string) (*Claims, error) {
	claims := &Claims{}

	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	return claims, nil
}

// Status describes the local session without contacting the backend.
type Status struct {
	SignedIn bool
	// Claims is nil when the token is not a decodable JWT.
	Claims *Claims
}

// Status inspects the stored token.
func (m *Manager) Status(ctx context.Context) *Status {
	tok, ok := m.tokens.Get(ctx)
	if !ok {
		return &Status{}
	}

	st := &Status{SignedIn: true}

	claims, err := ParseClaims(tok)
	if err != nil {
		m.log.Debug("stored token is not a readable JWT", "error", err)
		return st
	}

	st.Claims = claims

	return st
}
