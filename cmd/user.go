package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/inovacc/labctl/internal/labapi"
	"github.com/spf13/cobra"
)

var (
	profileData   string
	profileSet    []string
	profileParams []string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and edit your own profile",
	Long: `View and edit the signed-in user's profile.

Examples:
  labctl profile show
  labctl profile update --set phone=555-0100 --set department=Genomics
  labctl profile image ./me.jpg
  labctl profile report -p from=2026-01-01 -p to=2026-01-31`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		return api.User.Profile(ctx)
	}),
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		fields, err := parseFields(profileData, profileSet)
		if err != nil {
			return nil, err
		}

		return api.User.UpdateProfile(ctx, fields)
	}),
}

var profilePasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		current, err := readSecret("Current password: ")
		if err != nil {
			return nil, err
		}

		next, err := readSecret("New password: ")
		if err != nil {
			return nil, err
		}

		return api.User.ChangePassword(ctx, current, next)
	}),
}

var profileImageCmd = &cobra.Command{
	Use:   "image <file>",
	Short: "Upload a profile image",
	Args:  cobra.ExactArgs(1),
	RunE: runAPI(func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error) {
		form, closeFile, err := imageForm(args[0], nil)
		if err != nil {
			return nil, err
		}
		defer closeFile()

		return api.User.UploadImage(ctx, form)
	}),
}

var profileDeleteImageCmd = &cobra.Command{
	Use:   "delete-image",
	Short: "Remove your profile image",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		return api.User.DeleteImage(ctx)
	}),
}

var profileDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show your dashboard summary",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		return api.User.Dashboard(ctx)
	}),
}

var profileReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show your productivity report",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		params, err := parseParams(profileParams)
		if err != nil {
			return nil, err
		}

		return api.User.ProductivityReport(ctx, params)
	}),
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd, profilePasswordCmd, profileImageCmd,
		profileDeleteImageCmd, profileDashboardCmd, profileReportCmd)

	profileUpdateCmd.Flags().StringVar(&profileData, "data", "", "Fields as a JSON object")
	profileUpdateCmd.Flags().StringArrayVar(&profileSet, "set", nil, "Field as key=value (repeatable)")
	profileReportCmd.Flags().StringArrayVarP(&profileParams, "param", "p", nil, "Query parameter as key=value (repeatable)")
}

// imageForm opens path and returns a multipart form carrying it in the
// "image" field next to fields. The returned func closes the file.
func imageForm(path string, fields map[string]string) (*labapi.Form, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open image: %w", err)
	}

	form := &labapi.Form{
		Fields: fields,
		Files:  []labapi.FormFile{{Field: "image", FileName: filepath.Base(path), Content: f}},
	}

	return form, func() { _ = f.Close() }, nil
}
