package cmd

import (
	"context"
	"encoding/json"

	"github.com/inovacc/labctl/internal/labapi"
	"github.com/spf13/cobra"
)

var (
	usageParams []string
	usageNotes  string
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Start and end equipment usage sessions",
	Long: `Track the time equipment is actually in use. A session starts from an
approved booking and ends with optional notes.

Examples:
  labctl usage start 12
  labctl usage end 31 --notes "rotor cleaned"
  labctl usage equipment 4 -p from=2026-03-01`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var usageStartCmd = &cobra.Command{
	Use:   "start <booking-id>",
	Short: "Start a session for an approved booking",
	Args:  cobra.ExactArgs(1),
	RunE: runAPI(func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}

		return api.Usage.Start(ctx, id)
	}),
}

var usageEndCmd = &cobra.Command{
	Use:   "end <session-id>",
	Short: "End a running session",
	Args:  cobra.ExactArgs(1),
	RunE: runAPI(func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}

		return api.Usage.End(ctx, id, usageNotes)
	}),
}

var usageMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List your sessions",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		params, err := parseParams(usageParams)
		if err != nil {
			return nil, err
		}

		return api.Usage.Mine(ctx, params)
	}),
}

var usageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions (admin)",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		params, err := parseParams(usageParams)
		if err != nil {
			return nil, err
		}

		return api.Usage.List(ctx, params)
	}),
}

var usageEquipmentCmd = &cobra.Command{
	Use:   "equipment <equipment-id>",
	Short: "List the sessions of one piece of equipment",
	Args:  cobra.ExactArgs(1),
	RunE: runAPI(func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}

		params, err := parseParams(usageParams)
		if err != nil {
			return nil, err
		}

		return api.Usage.ByEquipment(ctx, id, params)
	}),
}

func init() {
	rootCmd.AddCommand(usageCmd)
	usageCmd.AddCommand(usageStartCmd, usageEndCmd, usageMineCmd, usageListCmd, usageEquipmentCmd)

	for _, c := range []*cobra.Command{usageMineCmd, usageListCmd, usageEquipmentCmd} {
		c.Flags().StringArrayVarP(&usageParams, "param", "p", nil, "Query parameter as key=value (repeatable)")
	}

	usageEndCmd.Flags().StringVar(&usageNotes, "notes", "", "Notes about the session")
}
