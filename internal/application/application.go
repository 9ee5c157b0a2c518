// Package application holds process-wide names and the per-user directory
// labctl keeps its config and file storage in.
package application

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

const (
	AppName         = "labctl"
	ConfigFileName  = "config.ini"
	StorageFileName = "labctl.bolt"

	// EnvHome overrides the application directory.
	EnvHome = "LABCTL_HOME"
)

// BuildMode is the endpoint mode compiled into the binary. Release builds set
//
//	-ldflags "-X github.com/inovacc/labctl/internal/application.BuildMode=production"
var BuildMode = "development"

var (
	dirOnce sync.Once
	dir     string
	dirErr  error
)

// GetApplicationDirectory returns $LABCTL_HOME when set, otherwise
// <user config dir>/labctl (<cache dir>\labctl on Windows). It does not
// create the directory.
func GetApplicationDirectory() (string, error) {
	dirOnce.Do(func() {
		dir, dirErr = locate(os.Getenv, runtime.GOOS)
	})

	return dir, dirErr
}

// EnsureApplicationDirectory is GetApplicationDirectory plus MkdirAll with
// owner-only permissions.
func EnsureApplicationDirectory() (string, error) {
	d, err := GetApplicationDirectory()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(d, 0o700); err != nil {
		return "", fmt.Errorf("failed to create application directory: %w", err)
	}

	return d, nil
}

func locate(getenv func(string) string, goos string) (string, error) {
	if home := getenv(EnvHome); home != "" {
		return filepath.Clean(home), nil
	}

	base, err := os.UserConfigDir()
	if goos == "windows" {
		base, err = os.UserCacheDir()
	}

	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}

	return filepath.Join(base, AppName), nil
}
