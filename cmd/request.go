package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inovacc/labctl/internal/apiclient"
	"github.com/spf13/cobra"
)

var (
	requestData   string
	requestParams []string
)

var requestCmd = &cobra.Command{
	Use:   "request <method> <path>",
	Short: "Send a raw request to the backend API",
	Long: `Send an arbitrary request through the client, with the stored token and
the same endpoint recovery as every other command.

Examples:
  labctl request GET /equipment -p status=available
  labctl request POST /bookings --data '{"equipment_id":4,"booking_date":"2026-03-02","start_time":"09:00","end_time":"10:00"}'`,
	Args: cobra.ExactArgs(2),
	RunE: runRequest,
}

func init() {
	rootCmd.AddCommand(requestCmd)
	requestCmd.Flags().StringVarP(&requestData, "data", "d", "", "JSON request body")
	requestCmd.Flags().StringArrayVarP(&requestParams, "param", "p", nil, "Query parameter as key=value (repeatable)")
}

func runRequest(cmd *cobra.Command, args []string) error {
	method := strings.ToUpper(args[0])

	params, err := parseParams(requestParams)
	if err != nil {
		return err
	}

	req := &apiclient.Request{Method: method, Path: args[1], Query: params}

	if requestData != "" {
		if !json.Valid([]byte(requestData)) {
			return fmt.Errorf("--data is not valid JSON")
		}

		req.RawBody = []byte(requestData)
		req.ContentType = "application/json"
	}

	b, err := connect(cmd.Context())
	if err != nil {
		return err
	}

	resp, err := b.client.Do(cmd.Context(), req)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), resp.Body)
}
