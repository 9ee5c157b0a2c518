package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/inovacc/labctl/internal/labapi"
	"github.com/spf13/cobra"
)

var (
	equipmentParams []string
	equipmentFields []string
	equipmentImage  string
	equipmentForce  bool
)

var equipmentCmd = &cobra.Command{
	Use:     "equipment",
	Aliases: []string{"eq"},
	Short:   "Browse and manage lab equipment",
	Long: `Browse lab equipment. Creating, editing and deleting equipment requires
an administrator account.

Examples:
  labctl equipment list -p status=available
  labctl equipment get 4
  labctl equipment create --field name=Centrifuge --field location=B2 --image c.jpg
  labctl equipment image-url 4`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var equipmentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List equipment",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		params, err := parseParams(equipmentParams)
		if err != nil {
			return nil, err
		}

		return api.Equipment.List(ctx, params)
	}),
}

var equipmentGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one piece of equipment",
	Args:  cobra.ExactArgs(1),
	RunE: runAPI(func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}

		return api.Equipment.Get(ctx, id)
	}),
}

var equipmentCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create equipment",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		form, done, err := equipmentForm()
		if err != nil {
			return nil, err
		}
		defer done()

		return api.Equipment.Create(ctx, form)
	}),
}

var equipmentUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update equipment",
	Args:  cobra.ExactArgs(1),
	RunE: runAPI(func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}

		form, done, err := equipmentForm()
		if err != nil {
			return nil, err
		}
		defer done()

		return api.Equipment.Update(ctx, id, form)
	}),
}

var equipmentDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete equipment",
	Args:  cobra.ExactArgs(1),
	RunE: runDelete(&equipmentForce, "equipment", func(ctx context.Context, api *labapi.API, id int64) (json.RawMessage, error) {
		return api.Equipment.Delete(ctx, id)
	}),
}

var equipmentImageCmd = &cobra.Command{
	Use:   "image <id> <file>",
	Short: "Upload an equipment image",
	Args:  cobra.ExactArgs(2),
	RunE: runAPI(func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}

		form, done, err := imageForm(args[1], nil)
		if err != nil {
			return nil, err
		}
		defer done()

		return api.Equipment.UploadImage(ctx, id, form)
	}),
}

var equipmentDeleteImageCmd = &cobra.Command{
	Use:   "delete-image <id>",
	Short: "Remove an equipment image",
	Args:  cobra.ExactArgs(1),
	RunE: runAPI(func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}

		return api.Equipment.DeleteImage(ctx, id)
	}),
}

var equipmentAnalyticsCmd = &cobra.Command{
	Use:   "analytics <id>",
	Short: "Show usage analytics for one piece of equipment",
	Args:  cobra.ExactArgs(1),
	RunE: runAPI(func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}

		params, err := parseParams(equipmentParams)
		if err != nil {
			return nil, err
		}

		return api.Equipment.Analytics(ctx, id, params)
	}),
}

var equipmentImageURLCmd = &cobra.Command{
	Use:   "image-url <id>",
	Short: "Print the public URL of an equipment image",
	Args:  cobra.ExactArgs(1),
	RunE:  runEquipmentImageURL,
}

func init() {
	rootCmd.AddCommand(equipmentCmd)
	equipmentCmd.AddCommand(equipmentListCmd, equipmentGetCmd, equipmentCreateCmd, equipmentUpdateCmd,
		equipmentDeleteCmd, equipmentImageCmd, equipmentDeleteImageCmd, equipmentAnalyticsCmd, equipmentImageURLCmd)

	for _, c := range []*cobra.Command{equipmentListCmd, equipmentAnalyticsCmd} {
		c.Flags().StringArrayVarP(&equipmentParams, "param", "p", nil, "Query parameter as key=value (repeatable)")
	}

	for _, c := range []*cobra.Command{equipmentCreateCmd, equipmentUpdateCmd} {
		c.Flags().StringArrayVar(&equipmentFields, "field", nil, "Form field as key=value (repeatable)")
		c.Flags().StringVar(&equipmentImage, "image", "", "Image file to upload with the record")
	}

	equipmentDeleteCmd.Flags().BoolVarP(&equipmentForce, "force", "f", false, "Skip confirmation")
}

func equipmentForm() (*labapi.Form, func(), error) {
	fields := make(map[string]string, len(equipmentFields))

	for _, f := range equipmentFields {
		params, err := parseParams([]string{f})
		if err != nil {
			return nil, nil, err
		}

		for k := range params {
			fields[k] = params.Get(k)
		}
	}

	if equipmentImage == "" {
		return &labapi.Form{Fields: fields}, func() {}, nil
	}

	return imageForm(equipmentImage, fields)
}

func runEquipmentImageURL(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	b, err := connect(cmd.Context())
	if err != nil {
		return err
	}

	body, err := b.api.Equipment.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	var resp struct {
		Equipment struct {
			Image string `json:"equipment_image"`
		} `json:"equipment"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to decode equipment: %w", err)
	}

	path := resp.Equipment.Image
	if path == "" {
		return fmt.Errorf("equipment %d has no image", id)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), labapi.ImageURL(b.client.BaseURL(), path))

	return nil
}
