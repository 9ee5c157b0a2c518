package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/inovacc/labctl/internal/apiclient"
	"github.com/inovacc/labctl/internal/application"
	"github.com/inovacc/labctl/internal/config"
	"github.com/inovacc/labctl/internal/log"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	flagConfig = config.Default()
	logOpts    = log.NewOptions()

	// cfg is the effective configuration, loaded before any command runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   application.AppName,
	Short: "Command-line client for the lab booking backend",
	Long: `labctl talks to the laboratory equipment booking and inventory backend.

In development mode it discovers a backend on the local network, caches the
address and re-discovers it when the connection drops. In production mode it
uses the fixed production URL.

Examples:
  labctl auth login --email me@lab.org
  labctl equipment list
  labctl booking create --equipment 4 --date 2026-03-02 --start 09:00 --end 10:00
  labctl endpoint show --mode development`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	fs := rootCmd.PersistentFlags()
	fs.StringVar(&cfgFile, "config", "", "Config file (default <user config dir>/labctl/config.ini)")
	flagConfig.AddFlags(fs)
	logOpts.AddFlags(fs)
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := logOpts.Validate(); err != nil {
		return err
	}

	if err := log.Init(logOpts); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	path := cfgFile
	if path == "" {
		p, err := config.DefaultFilePath()
		if err != nil {
			log.Warn("no config directory, using defaults", "error", err)
		}

		path = p
	}

	loaded, err := config.Load(path)
	if err != nil {
		return err
	}

	if err := loaded.ApplyFlags(cmd.Flags()); err != nil {
		return err
	}

	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = loaded

	log.Debug("configuration loaded", "mode", string(cfg.Mode), "storage", string(cfg.Storage), "file", path)

	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	closeBackend()
	stop()

	_ = log.Std().Sync()

	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", describeError(err))

		if apiclient.IsUnauthorized(err) {
			_, _ = fmt.Fprintf(os.Stderr, "Sign in again with: %s auth login\n", application.AppName)
		}

		os.Exit(1)
	}
}

// GetRootCmd returns the root command for introspection purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func describeError(err error) string {
	var httpErr *apiclient.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return fmt.Sprintf("%s (HTTP %d)", httpErr.Message, httpErr.StatusCode)
	}

	if apiclient.IsConnectionError(err) {
		return fmt.Sprintf("backend unreachable: %v", errors.Unwrap(err))
	}

	return err.Error()
}
