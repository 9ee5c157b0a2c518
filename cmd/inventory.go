package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/inovacc/labctl/internal/labapi"
	"github.com/spf13/cobra"
)

var (
	inventoryParams []string
	inventoryData   string
	inventorySet    []string
	inventoryForce  bool
)

var inventoryCmd = &cobra.Command{
	Use:     "inventory",
	Aliases: []string{"inv"},
	Short:   "Manage lab stock, NGS kits, projects and sequencing runs",
	Long: `Manage the inventory collections and record consumption.

Collections: lab, ngs, projects, runs. Each supports list, get, create,
update and delete.

Examples:
  labctl inventory lab list
  labctl inventory ngs create --set name="NextSeq kit" --set quantity=4
  labctl inventory runs update 3 --data '{"status":"done"}'
  labctl inventory consume --set item_id=7 --set quantity=2
  labctl inventory alerts`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var collectionShort = map[string]string{
	labapi.CollectionLab:      "General lab inventory",
	labapi.CollectionNGS:      "NGS reagents and kits",
	labapi.CollectionProjects: "Projects",
	labapi.CollectionRuns:     "Sequencing run plans",
}

func itemFields() (map[string]any, error) {
	fields, err := parseFields(inventoryData, inventorySet)
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields given: use --data or --set")
	}

	return fields, nil
}

func collectionCmd(name string) *cobra.Command {
	col := func(api *labapi.API) *labapi.Collection {
		return api.Inventory.Collection(name)
	}

	parent := &cobra.Command{
		Use:   name,
		Short: collectionShort[name],
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List items",
		Args:  cobra.NoArgs,
		RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
			return col(api).List(ctx)
		}),
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: runAPI(func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error) {
			id, err := parseID(args[0])
			if err != nil {
				return nil, err
			}

			return col(api).Get(ctx, id)
		}),
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create an item",
		Args:  cobra.NoArgs,
		RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
			fields, err := itemFields()
			if err != nil {
				return nil, err
			}

			return col(api).Create(ctx, fields)
		}),
	}

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an item",
		Args:  cobra.ExactArgs(1),
		RunE: runAPI(func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error) {
			id, err := parseID(args[0])
			if err != nil {
				return nil, err
			}

			fields, err := itemFields()
			if err != nil {
				return nil, err
			}

			return col(api).Update(ctx, id, fields)
		}),
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: runDelete(&inventoryForce, name+" item", func(ctx context.Context, api *labapi.API, id int64) (json.RawMessage, error) {
			return col(api).Delete(ctx, id)
		}),
	}

	for _, c := range []*cobra.Command{create, update} {
		c.Flags().StringVar(&inventoryData, "data", "", "Item as a JSON object")
		c.Flags().StringArrayVar(&inventorySet, "set", nil, "Field as key=value (repeatable)")
	}

	del.Flags().BoolVarP(&inventoryForce, "force", "f", false, "Skip confirmation")

	parent.AddCommand(list, get, create, update, del)

	return parent
}

var inventoryTransactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "List stock transactions",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		params, err := parseParams(inventoryParams)
		if err != nil {
			return nil, err
		}

		return api.Inventory.Transactions(ctx, params)
	}),
}

var inventoryConsumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Record consumption of stock",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		fields, err := itemFields()
		if err != nil {
			return nil, err
		}

		return api.Inventory.Consume(ctx, fields)
	}),
}

var inventoryAlertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List low-stock and expiry alerts",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		return api.Inventory.Alerts(ctx)
	}),
}

var inventoryResolveAlertCmd = &cobra.Command{
	Use:   "resolve-alert <id>",
	Short: "Mark an alert as resolved",
	Args:  cobra.ExactArgs(1),
	RunE: runAPI(func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}

		return api.Inventory.ResolveAlert(ctx, id)
	}),
}

func init() {
	rootCmd.AddCommand(inventoryCmd)

	for _, name := range labapi.Collections {
		inventoryCmd.AddCommand(collectionCmd(name))
	}

	inventoryCmd.AddCommand(inventoryTransactionsCmd, inventoryConsumeCmd, inventoryAlertsCmd, inventoryResolveAlertCmd)

	inventoryTransactionsCmd.Flags().StringArrayVarP(&inventoryParams, "param", "p", nil, "Query parameter as key=value (repeatable)")
	inventoryConsumeCmd.Flags().StringVar(&inventoryData, "data", "", "Consumption as a JSON object")
	inventoryConsumeCmd.Flags().StringArrayVar(&inventorySet, "set", nil, "Field as key=value (repeatable)")
}
