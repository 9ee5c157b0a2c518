package application

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateHonorsHomeOverride(t *testing.T) {
	home := filepath.Join(t.TempDir(), "lab", "..", "lab")

	got, err := locate(func(k string) string {
		if k == EnvHome {
			return home
		}

		return ""
	}, "linux")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(home), got)
}

func TestLocateDefaultsUnderUserDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	got, err := locate(func(string) string { return "" }, "linux")
	require.NoError(t, err)
	assert.Equal(t, AppName, filepath.Base(got))
}
