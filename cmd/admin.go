package cmd

import (
	"context"
	"encoding/json"

	"github.com/inovacc/labctl/internal/labapi"
	"github.com/spf13/cobra"
)

var adminParams []string

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrator dashboards, analytics and user management",
	Long: `Administrator commands. The stored token must belong to an admin account.

Examples:
  labctl admin dashboard
  labctl admin users -p role=user
  labctl admin toggle-user 8
  labctl admin daily-patterns -p days=30`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// adminGet builds a no-argument admin command.
func adminGet(use, short string, fetch func(*labapi.AdminAPI, context.Context) (json.RawMessage, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
			return fetch(api.Admin, ctx)
		}),
	}
}

// adminQuery builds an admin command that forwards --param values.
func adminQuery(use, short string, fetch func(*labapi.AdminAPI, context.Context, labapi.Params) (json.RawMessage, error)) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
			params, err := parseParams(adminParams)
			if err != nil {
				return nil, err
			}

			return fetch(api.Admin, ctx, params)
		}),
	}

	c.Flags().StringArrayVarP(&adminParams, "param", "p", nil, "Query parameter as key=value (repeatable)")

	return c
}

// adminByID builds an admin command acting on one user id.
func adminByID(use, short string, fetch func(*labapi.AdminAPI, context.Context, int64) (json.RawMessage, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: runAPI(func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error) {
			id, err := parseID(args[0])
			if err != nil {
				return nil, err
			}

			return fetch(api.Admin, ctx, id)
		}),
	}
}

func init() {
	rootCmd.AddCommand(adminCmd)

	adminCmd.AddCommand(
		adminGet("dashboard", "Show the admin dashboard", (*labapi.AdminAPI).Dashboard),
		adminGet("utilization", "Show equipment utilization", (*labapi.AdminAPI).EquipmentUtilization),
		adminGet("productivity", "Show user productivity", (*labapi.AdminAPI).UserProductivity),
		adminGet("booking-analytics", "Show booking analytics", (*labapi.AdminAPI).BookingAnalytics),
		adminGet("peak-hours", "Show peak usage hours", (*labapi.AdminAPI).PeakHours),
		adminQuery("users", "List users", (*labapi.AdminAPI).Users),
		adminQuery("machine-analytics", "Show machine utilization analytics", (*labapi.AdminAPI).MachineAnalytics),
		adminQuery("daily-patterns", "Show daily usage patterns", (*labapi.AdminAPI).DailyPatterns),
		adminQuery("logbook", "Show the lab logbook", (*labapi.AdminAPI).LabLogbook),
		adminByID("user <id>", "Show one user's details", (*labapi.AdminAPI).UserDetails),
		adminByID("toggle-user <id>", "Activate or deactivate a user", (*labapi.AdminAPI).ToggleUserStatus),
	)
}
