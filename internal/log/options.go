package log

import (
	"fmt"

	"github.com/spf13/pflag"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options configures the logger.
type Options struct {
	Name          string
	Level         string
	Format        string
	EnableColor   bool
	DisableCaller bool
	CallerSkip    int
	OutputPaths   []string
}

// NewOptions returns the CLI defaults: warnings and errors to stderr, so
// command output on stdout stays machine readable.
func NewOptions() *Options {
	return &Options{
		Level:         "warn",
		Format:        FormatConsole,
		EnableColor:   false,
		DisableCaller: true,
		CallerSkip:    1,
		OutputPaths:   []string{"stderr"},
	}
}

// Validate checks the format value.
func (o *Options) Validate() error {
	switch o.Format {
	case FormatConsole, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid log format %q: must be %q or %q", o.Format, FormatConsole, FormatJSON)
	}
}

// AddFlags binds the options to fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Level, "log.level", o.Level, "Minimum log level (debug, info, warn, error).")
	fs.StringVar(&o.Format, "log.format", o.Format, "Log output format (console or json).")
	fs.BoolVar(&o.EnableColor, "log.enable-color", o.EnableColor, "Colorize console log levels.")
	fs.BoolVar(&o.DisableCaller, "log.disable-caller", o.DisableCaller, "Omit the caller field from log entries.")
	fs.StringSliceVar(&o.OutputPaths, "log.output-paths", o.OutputPaths, "Log destinations (stdout, stderr or file paths).")
}
