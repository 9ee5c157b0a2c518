// Package config loads labctl settings from defaults, an INI file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/inovacc/labctl/internal/application"
	"github.com/spf13/pflag"
	"gopkg.in/ini.v1"
)

// Mode selects how the backend endpoint is resolved.
type Mode string

const (
	ModeProduction  Mode = "production"
	ModeDevelopment Mode = "development"
)

// Storage selects the secure-storage backend.
type Storage string

const (
	StorageKeyring Storage = "keyring"
	StorageFile    Storage = "file"
)

const (
	DefaultProductionURL  = "https://backend-production-cbbc.up.railway.app/api"
	DefaultPort           = 5000
	DefaultProbeTimeout   = 5 * time.Second
	DefaultRequestTimeout = 30 * time.Second
)

// Environment variables read by Load.
const (
	EnvMode    = "LABCTL_MODE"
	EnvAPIURL  = "LABCTL_API_URL"
	EnvPort    = "LABCTL_PORT"
	EnvHostURI = "LABCTL_HOST_URI"
	EnvStorage = "LABCTL_STORAGE"
)

// Config holds everything the resolver, client and storage need.
type Config struct {
	Mode           Mode          `ini:"mode"`
	ProductionURL  string        `ini:"production_url"`
	DefaultPort    int           `ini:"port"`
	HostURI        string        `ini:"host_uri"`
	ProbeTimeout   time.Duration `ini:"probe_timeout"`
	RequestTimeout time.Duration `ini:"request_timeout"`
	Storage        Storage       `ini:"storage"`
	StoragePath    string        `ini:"storage_path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Mode:           Mode(application.BuildMode),
		ProductionURL:  DefaultProductionURL,
		DefaultPort:    DefaultPort,
		ProbeTimeout:   DefaultProbeTimeout,
		RequestTimeout: DefaultRequestTimeout,
		Storage:        StorageKeyring,
	}
}

// IsDevelopment reports whether endpoint discovery is enabled.
func (c *Config) IsDevelopment() bool {
	return c.Mode == ModeDevelopment
}

// Validate checks the combined configuration.
func (c *Config) Validate() error {
	var errs []error

	switch c.Mode {
	case ModeProduction, ModeDevelopment:
	default:
		errs = append(errs, fmt.Errorf("invalid mode %q: must be %q or %q", c.Mode, ModeProduction, ModeDevelopment))
	}

	switch c.Storage {
	case StorageKeyring, StorageFile:
	default:
		errs = append(errs, fmt.Errorf("invalid storage %q: must be %q or %q", c.Storage, StorageKeyring, StorageFile))
	}

	if c.ProductionURL == "" {
		errs = append(errs, errors.New("production URL must not be empty"))
	}

	if c.DefaultPort <= 0 || c.DefaultPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.DefaultPort))
	}

	if c.ProbeTimeout <= 0 {
		errs = append(errs, errors.New("probe timeout must be positive"))
	}

	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	return errors.Join(errs...)
}

// DefaultFilePath returns the INI path inside the application directory.
func DefaultFilePath() (string, error) {
	dir, err := application.GetApplicationDirectory()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, application.ConfigFileName), nil
}

// Load builds the configuration from defaults, the INI file at path (a
// missing file is not an error) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := file.Section("backend").MapTo(c); err != nil {
		return fmt.Errorf("failed to parse [backend] in %s: %w", path, err)
	}

	return nil
}

func (c *Config) loadEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvMode); ok && v != "" {
		c.Mode = Mode(strings.ToLower(strings.TrimSpace(v)))
	}

	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		c.ProductionURL = strings.TrimSpace(v)
	}

	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}

		c.DefaultPort = port
	}

	if v, ok := lookup(EnvHostURI); ok {
		c.HostURI = strings.TrimSpace(v)
	}

	if v, ok := lookup(EnvStorage); ok && v != "" {
		c.Storage = Storage(strings.ToLower(strings.TrimSpace(v)))
	}

	return nil
}

// Save writes the configuration to path as INI.
func (c *Config) Save(path string) error {
	file := ini.Empty()
	if err := file.Section("backend").ReflectFrom(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return file.SaveTo(path)
}

// AddFlags binds flags that override file and environment values.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar((*string)(&c.Mode), "mode", string(c.Mode), "Endpoint mode (production or development).")
	fs.StringVar(&c.ProductionURL, "api-url", c.ProductionURL, "Backend URL used in production mode.")
	fs.IntVar(&c.DefaultPort, "port", c.DefaultPort, "Backend port probed in development mode.")
	fs.StringVar(&c.HostURI, "host-uri", c.HostURI, "Dev server address (host:port) used to infer the local IP.")
	fs.DurationVar(&c.ProbeTimeout, "probe-timeout", c.ProbeTimeout, "Timeout for each health probe.")
	fs.DurationVar(&c.RequestTimeout, "request-timeout", c.RequestTimeout, "Timeout for each API request.")
	fs.StringVar((*string)(&c.Storage), "storage", string(c.Storage), "Secure storage backend (keyring or file).")
	fs.StringVar(&c.StoragePath, "storage-path", c.StoragePath, "Path of the file storage backend.")
}

// ApplyFlags copies the config flags explicitly set in fs onto c, so they
// win over file and environment values. Other flags are ignored.
//
// Changed is read off each flag rather than through fs.Visit: cobra shares
// persistent flags between command flag sets, and a flag already marked
// changed is never recorded in a second set.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var errs []error

	fs.VisitAll(func(f *pflag.Flag) {
		if !f.Changed {
			return
		}

		if err := c.set(f.Name, f.Value.String()); err != nil {
			errs = append(errs, fmt.Errorf("--%s: %w", f.Name, err))
		}
	})

	return errors.Join(errs...)
}

func (c *Config) set(name, value string) error {
	switch name {
	case "mode":
		c.Mode = Mode(strings.ToLower(value))
	case "api-url":
		c.ProductionURL = value
	case "port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return err
		}

		c.DefaultPort = port
	case "host-uri":
		c.HostURI = value
	case "probe-timeout", "request-timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}

		if name == "probe-timeout" {
			c.ProbeTimeout = d
		} else {
			c.RequestTimeout = d
		}
	case "storage":
		c.Storage = Storage(strings.ToLower(value))
	case "storage-path":
		c.StoragePath = value
	}

	return nil
}
