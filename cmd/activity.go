package cmd

import (
	"context"
	"encoding/json"

	"github.com/inovacc/labctl/internal/labapi"
	"github.com/spf13/cobra"
)

var (
	activityParams []string
	activityData   string
	activitySet    []string
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Activity feed, notifications, print logs and the lab logbook",
	Long: `Read your activity and notifications, record print jobs and sign in or
out of the lab.

Examples:
  labctl activity notifications
  labctl activity read 17
  labctl activity print-log --set pages=12 --set printer=3D-1
  labctl activity sign-in`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func activityList(fetch func(ctx context.Context, api *labapi.API, params labapi.Params) (json.RawMessage, error)) func(*cobra.Command, []string) error {
	return runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		params, err := parseParams(activityParams)
		if err != nil {
			return nil, err
		}

		return fetch(ctx, api, params)
	})
}

var activityMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Show your activity",
	Args:  cobra.NoArgs,
	RunE: activityList(func(ctx context.Context, api *labapi.API, p labapi.Params) (json.RawMessage, error) {
		return api.Activity.Mine(ctx, p)
	}),
}

var activityListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show everyone's activity (admin)",
	Args:  cobra.NoArgs,
	RunE: activityList(func(ctx context.Context, api *labapi.API, p labapi.Params) (json.RawMessage, error) {
		return api.Activity.List(ctx, p)
	}),
}

var activityNotificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "List your notifications",
	Args:  cobra.NoArgs,
	RunE: activityList(func(ctx context.Context, api *labapi.API, p labapi.Params) (json.RawMessage, error) {
		return api.Activity.Notifications(ctx, p)
	}),
}

var activityReadCmd = &cobra.Command{
	Use:   "read <notification-id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: runAPI(func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}

		return api.Activity.MarkNotificationRead(ctx, id)
	}),
}

var activityPrintLogCmd = &cobra.Command{
	Use:   "print-log",
	Short: "Record a print job",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		entry, err := parseFields(activityData, activitySet)
		if err != nil {
			return nil, err
		}

		return api.Activity.AddPrintLog(ctx, entry)
	}),
}

var activityPrintLogsCmd = &cobra.Command{
	Use:   "print-logs",
	Short: "List your print jobs",
	Args:  cobra.NoArgs,
	RunE: activityList(func(ctx context.Context, api *labapi.API, p labapi.Params) (json.RawMessage, error) {
		return api.Activity.MyPrintLogs(ctx, p)
	}),
}

var activityLogbookCmd = &cobra.Command{
	Use:   "logbook",
	Short: "Show the lab sign-in logbook",
	Args:  cobra.NoArgs,
	RunE: activityList(func(ctx context.Context, api *labapi.API, p labapi.Params) (json.RawMessage, error) {
		return api.Activity.Logbook(ctx, p)
	}),
}

var activitySignInCmd = &cobra.Command{
	Use:   "sign-in",
	Short: "Sign in to the lab",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		return api.Activity.SignIn(ctx)
	}),
}

var activitySignOutCmd = &cobra.Command{
	Use:   "sign-out",
	Short: "Sign out of the lab",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		return api.Activity.SignOut(ctx)
	}),
}

func init() {
	rootCmd.AddCommand(activityCmd)
	activityCmd.AddCommand(activityMineCmd, activityListCmd, activityNotificationsCmd, activityReadCmd,
		activityPrintLogCmd, activityPrintLogsCmd, activityLogbookCmd, activitySignInCmd, activitySignOutCmd)

	for _, c := range []*cobra.Command{activityMineCmd, activityListCmd, activityNotificationsCmd, activityPrintLogsCmd, activityLogbookCmd} {
		c.Flags().StringArrayVarP(&activityParams, "param", "p", nil, "Query parameter as key=value (repeatable)")
	}

	activityPrintLogCmd.Flags().StringVar(&activityData, "data", "", "Print job as a JSON object")
	activityPrintLogCmd.Flags().StringArrayVar(&activitySet, "set", nil, "Field as key=value (repeatable)")
}
