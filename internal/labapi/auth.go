package labapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/inovacc/labctl/internal/apiclient"
)

// Client types accepted by the forgot-password endpoint.
const (
	ClientMobile = "mobile"
	ClientWeb    = "web"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
}

// AuthResult is the data of a successful login or register response.
type AuthResult struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user,omitempty"`
}

// AuthAPI covers /auth.
type AuthAPI struct{ c caller }

func (a *AuthAPI) Login(ctx context.Context, req LoginRequest) (json.RawMessage, error) {
	return a.c.post(ctx, "/auth/login", req)
}

func (a *AuthAPI) Register(ctx context.Context, req RegisterRequest) (json.RawMessage, error) {
	return a.c.post(ctx, "/auth/register", req)
}

func (a *AuthAPI) Logout(ctx context.Context) (json.RawMessage, error) {
	return a.c.post(ctx, "/auth/logout", nil)
}

func (a *AuthAPI) Verify(ctx context.Context) (json.RawMessage, error) {
	return a.c.get(ctx, "/auth/verify", nil)
}

// ForgotPassword requests a reset mail. The backend tailors the reset link
// to clientType; an empty value means ClientMobile.
func (a *AuthAPI) ForgotPassword(ctx context.Context, email, clientType string) (json.RawMessage, error) {
	if clientType == "" {
		clientType = ClientMobile
	}

	return a.c.do(ctx, &apiclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/forgot-password",
		Header: http.Header{"X-Client-Type": []string{clientType}},
		Body:   map[string]string{"email": email},
	})
}

func (a *AuthAPI) ResetPassword(ctx context.Context, resetToken, newPassword string) (json.RawMessage, error) {
	return a.c.post(ctx, "/auth/reset-password", map[string]string{
		"token":       resetToken,
		"newPassword": newPassword,
	})
}

// ParseAuthResult extracts the token and user from a login or register
// response. Both the enveloped ({"data":{"token":...}}) and the flat
// ({"token":...}) shapes are accepted.
func ParseAuthResult(body json.RawMessage) (*AuthResult, error) {
	var env struct {
		Envelope
		AuthResult
	}

	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}

	if len(env.Data) > 0 && string(env.Data) != "null" {
		var res AuthResult
		if err := json.Unmarshal(env.Data, &res); err == nil && res.Token != "" {
			return &res, nil
		}
	}

	return &env.AuthResult, nil
}
