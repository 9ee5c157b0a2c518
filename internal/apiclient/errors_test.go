package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsConnectionLevel(t *testing.T) {
	wrap := func(err error) error {
		return &url.Error{Op: "Get", URL: "http://10.0.0.5:5000/api", Err: err}
	}

	tests := []struct {
		name      string
		err       error
		connected bool
		want      bool
	}{
		{"refused", wrap(&net.OpError{Op: "dial", Net: "tcp", Err: &os.SyscallError{Syscall: "connect", Err: syscall.ECONNREFUSED}}), false, true},
		{"dns", wrap(&net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{Err: "no such host", Name: "lab.invalid", IsNotFound: true}}), false, true},
		{"unreachable", wrap(&os.SyscallError{Syscall: "connect", Err: syscall.EHOSTUNREACH}), false, true},
		{"deadline", wrap(context.DeadlineExceeded), false, true},
		{"net timeout", wrap(timeoutErr{}), false, true},
		{"read reset", wrap(&net.OpError{Op: "read", Net: "tcp", Err: errors.New("tls: bad record MAC")}), false, false},
		{"canceled", wrap(context.Canceled), false, false},
		{"plain", errors.New("boom"), false, false},
		{"deadline after connect", wrap(context.DeadlineExceeded), true, false},
		{"timeout after connect", wrap(timeoutErr{}), true, false},
		{"dial after connect", wrap(&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isConnectionLevel(tt.err, tt.connected))
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	httpErr := &HTTPError{Method: "GET", URL: "http://x/api/auth/verify", StatusCode: http.StatusUnauthorized, Status: "401 Unauthorized", Message: "Invalid token"}
	wrapped := fmt.Errorf("verify: %w", httpErr)

	assert.True(t, IsUnauthorized(wrapped))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(wrapped))
	assert.Equal(t, "Invalid token", Message(wrapped))
	assert.Equal(t, "GET http://x/api/auth/verify: 401 Unauthorized: Invalid token", httpErr.Error())

	connErr := &ConnectionError{Method: "GET", URL: "http://x", Err: syscall.ECONNREFUSED}
	assert.True(t, IsConnectionError(fmt.Errorf("wrapped: %w", connErr)))
	assert.ErrorIs(t, connErr, syscall.ECONNREFUSED)
	assert.False(t, IsUnauthorized(connErr))
	assert.Zero(t, StatusCode(connErr))

	assert.Empty(t, Message(nil))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}

func TestNewHTTPErrorParsesMessage(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusBadRequest, Status: "400 Bad Request"}

	e := newHTTPError("POST", "u", resp, []byte(`{"error":"missing equipment_id"}`))
	assert.Equal(t, "missing equipment_id", e.Message)

	e = newHTTPError("POST", "u", resp, []byte(`<html>oops</html>`))
	assert.Empty(t, e.Message)
	assert.Equal(t, "POST u: 400 Bad Request", e.Error())
}
