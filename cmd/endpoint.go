package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/labctl/internal/resolver"
	"github.com/inovacc/labctl/internal/securestore"
	"github.com/spf13/cobra"
)

var endpointCmd = &cobra.Command{
	Use:   "endpoint",
	Short: "Inspect and refresh the backend endpoint",
	Long: `Inspect which backend URL labctl talks to.

Available Commands:
  show      Show the mode, current and cached URL
  refresh   Drop the cached URL and discover the backend again
  test      Probe the backend health endpoint

Examples:
  labctl endpoint show
  labctl endpoint refresh --mode development --host-uri 192.168.1.5:19000
  labctl endpoint test`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var endpointShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved backend URL",
	Args:  cobra.NoArgs,
	RunE:  runEndpointShow,
}

var endpointRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Forget the cached URL and discover the backend again",
	Args:  cobra.NoArgs,
	RunE:  runEndpointRefresh,
}

var endpointTestCmd = &cobra.Command{
	Use:   "test [url]",
	Short: "Probe the health endpoint of the current (or given) backend",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEndpointTest,
}

func init() {
	rootCmd.AddCommand(endpointCmd)
	endpointCmd.AddCommand(endpointShowCmd)
	endpointCmd.AddCommand(endpointRefreshCmd)
	endpointCmd.AddCommand(endpointTestCmd)
}

func runEndpointShow(cmd *cobra.Command, _ []string) error {
	b, err := connect(cmd.Context())
	if err != nil {
		return err
	}

	cached, err := b.storage.Get(cmd.Context(), securestore.KeyCachedBackendURL)

	switch {
	case errors.Is(err, securestore.ErrNotFound):
		cached = dimStyle.Render("(none)")
	case err != nil:
		cached = errStyle.Render("unreadable: " + err.Error())
	}

	out := cmd.OutOrStdout()

	_, _ = fmt.Fprintln(out, headerStyle.Render("Backend endpoint"))
	printField(out, "Mode", string(cfg.Mode))
	printField(out, "Current URL", okStyle.Render(b.client.BaseURL()))

	if cfg.IsDevelopment() {
		printField(out, "Cached URL", cached)
		printField(out, "Local IP", b.resolver.LocalIP())
		printField(out, "Port", fmt.Sprint(cfg.DefaultPort))
	} else {
		printField(out, "Production", cfg.ProductionURL)
	}

	printField(out, "Storage", string(cfg.Storage))

	return nil
}

func runEndpointRefresh(cmd *cobra.Command, _ []string) error {
	b, err := openStorage()
	if err != nil {
		return err
	}

	before := b.resolver.Current()
	after := b.resolver.ForceRefresh(cmd.Context())

	out := cmd.OutOrStdout()
	printField(out, "Previous", dimStyle.Render(before))
	printField(out, "Resolved", okStyle.Render(after))

	return nil
}

func runEndpointTest(cmd *cobra.Command, args []string) error {
	var (
		target string
		r      *resolver.Resolver
	)

	if len(args) == 1 {
		b, err := openStorage()
		if err != nil {
			return err
		}

		target, r = args[0], b.resolver
	} else {
		b, err := connect(cmd.Context())
		if err != nil {
			return err
		}

		target, r = b.client.BaseURL(), b.resolver
	}

	out := cmd.OutOrStdout()
	printField(out, "Probing", resolver.HealthURL(target))

	health, err := r.Check(cmd.Context(), target)
	if err != nil {
		printField(out, "Status", errStyle.Render("unreachable"))
		return err
	}

	printField(out, "Status", okStyle.Render(health.Status))

	if ifaces := health.Interfaces(); len(ifaces) > 0 {
		rows := make([]string, 0, len(ifaces))
		for _, iface := range ifaces {
			rows = append(rows, fmt.Sprintf("%-8s %s", iface.Name, iface.Address))
		}

		printField(out, "Interfaces", "")
		_, _ = fmt.Fprintln(out, lipgloss.NewStyle().PaddingLeft(2).Render(strings.Join(rows, "\n")))
	}

	return nil
}
