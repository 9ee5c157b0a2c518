package log

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestToFields(t *testing.T) {
	tests := []struct {
		name     string
		input    []any
		wantKeys []string
	}{
		{"empty", nil, nil},
		{"pairs", []any{"a", "x", "b", 1, "c", true}, []string{"a", "b", "c"}},
		{"duration", []any{"took", time.Second}, []string{"took"}},
		{"bare error", []any{errors.New("boom")}, []string{"error"}},
		{"zap field", []any{zap.String("x", "y")}, []string{"x"}},
		{"odd count", []any{"k", "v", "dangling"}, []string{"k", "arg#2"}},
		{"non-string key", []any{42, "v"}, []string{"invalid_key_1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := toFields(tt.input...)
			require.Len(t, fields, len(tt.wantKeys))

			for i, f := range fields {
				assert.Equal(t, tt.wantKeys[i], f.Key)
			}
		})
	}
}

func TestLoggerWithValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).WithName("resolver").WithValues("mode", "development")

	l.Info("cached URL is valid", "url", "http://10.0.0.5:5000/api")
	l.Error(errors.New("denied"), "cache write failed")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "resolver", entries[0].LoggerName)
	assert.Equal(t, "development", entries[0].ContextMap()["mode"])
	assert.Equal(t, "http://10.0.0.5:5000/api", entries[0].ContextMap()["url"])
	assert.Equal(t, "denied", entries[1].ContextMap()["error"])
}

func TestNewRejectsBadLevel(t *testing.T) {
	opts := NewOptions()
	opts.Level = "loud"

	_, err := New(opts)
	require.Error(t, err)
}

func TestOptionsValidate(t *testing.T) {
	opts := NewOptions()
	require.NoError(t, opts.Validate())

	opts.Format = "xml"
	require.Error(t, opts.Validate())
}
