package cmd

import (
	"fmt"

	"github.com/inovacc/labctl/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage labctl configuration",
	Long: `Commands for managing labctl configuration.

Settings are read from defaults, the config file, LABCTL_* environment
variables and command-line flags, later sources winning.

Available Commands:
  show    Print the effective configuration
  path    Print the config file location
  save    Write the effective configuration to the config file`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		printField(out, "Mode", string(cfg.Mode))
		printField(out, "API URL", cfg.ProductionURL)
		printField(out, "Port", fmt.Sprint(cfg.DefaultPort))
		printField(out, "Host URI", cfg.HostURI)
		printField(out, "Probe timeout", cfg.ProbeTimeout.String())
		printField(out, "Req. timeout", cfg.RequestTimeout.String())
		printField(out, "Storage", string(cfg.Storage))

		if cfg.StoragePath != "" {
			printField(out, "Storage path", cfg.StoragePath)
		}

		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)

		return nil
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Write the effective configuration to the config file",
	Long: `Write the effective configuration, including any flags given on this
command line, to the config file.

Example:
  labctl config save --mode development --host-uri 192.168.1.5:19000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}

		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okStyle.Render("Saved"), path)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configPathCmd, configSaveCmd)
}

func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}

	return config.DefaultFilePath()
}
