package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/inovacc/labctl/internal/labapi"
	"github.com/spf13/cobra"
)

var (
	bookingParams    []string
	bookingRemarks   string
	bookingEquipment int64
	bookingDate      string
	bookingStart     string
	bookingEnd       string
	bookingPurpose   string
)

var bookingCmd = &cobra.Command{
	Use:     "booking",
	Aliases: []string{"bookings"},
	Short:   "Create and manage equipment bookings",
	Long: `Create equipment bookings and follow their approval.

Examples:
  labctl booking slots 4 --date 2026-03-02
  labctl booking create --equipment 4 --date 2026-03-02 --start 09:00 --end 10:30 --purpose "PCR run"
  labctl booking mine -p status=pending
  labctl booking approve 12 --remarks "ok"`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var bookingCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Book a time slot",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		req, err := bookingRequest()
		if err != nil {
			return nil, err
		}

		return api.Bookings.Create(ctx, req)
	}),
}

var bookingMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List your bookings",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		params, err := parseParams(bookingParams)
		if err != nil {
			return nil, err
		}

		return api.Bookings.Mine(ctx, params)
	}),
}

var bookingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all bookings (admin)",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		params, err := parseParams(bookingParams)
		if err != nil {
			return nil, err
		}

		return api.Bookings.List(ctx, params)
	}),
}

var bookingApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a booking (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: runAPI(func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}

		return api.Bookings.Approve(ctx, id, bookingRemarks)
	}),
}

var bookingRejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a booking (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: runAPI(func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}

		return api.Bookings.Reject(ctx, id, bookingRemarks)
	}),
}

var bookingCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel one of your bookings",
	Args:  cobra.ExactArgs(1),
	RunE: runAPI(func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}

		return api.Bookings.Cancel(ctx, id)
	}),
}

var bookingSlotsCmd = &cobra.Command{
	Use:   "slots <equipment-id>",
	Short: "Show the booked slots of one equipment on a day",
	Args:  cobra.ExactArgs(1),
	RunE: runAPI(func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}

		date, err := normalizeDate(bookingDate)
		if err != nil {
			return nil, err
		}

		return api.Bookings.AvailableSlots(ctx, id, date)
	}),
}

func init() {
	rootCmd.AddCommand(bookingCmd)
	bookingCmd.AddCommand(bookingCreateCmd, bookingMineCmd, bookingListCmd, bookingApproveCmd,
		bookingRejectCmd, bookingCancelCmd, bookingSlotsCmd)

	for _, c := range []*cobra.Command{bookingMineCmd, bookingListCmd} {
		c.Flags().StringArrayVarP(&bookingParams, "param", "p", nil, "Query parameter as key=value (repeatable)")
	}

	for _, c := range []*cobra.Command{bookingApproveCmd, bookingRejectCmd} {
		c.Flags().StringVar(&bookingRemarks, "remarks", "", "Remarks sent to the requester")
	}

	for _, c := range []*cobra.Command{bookingCreateCmd, bookingSlotsCmd} {
		c.Flags().StringVar(&bookingDate, "date", "", "Day as YYYY-MM-DD (default today)")
	}

	f := bookingCreateCmd.Flags()
	f.Int64Var(&bookingEquipment, "equipment", 0, "Equipment id (required)")
	f.StringVar(&bookingStart, "start", "", "Start time as HH:MM (required)")
	f.StringVar(&bookingEnd, "end", "", "End time as HH:MM (required)")
	f.StringVar(&bookingPurpose, "purpose", "", "Purpose of the booking")

	_ = bookingCreateCmd.MarkFlagRequired("equipment")
	_ = bookingCreateCmd.MarkFlagRequired("start")
	_ = bookingCreateCmd.MarkFlagRequired("end")
}

// normalizeDate validates a YYYY-MM-DD date; empty means today.
func normalizeDate(s string) (string, error) {
	if s == "" {
		return time.Now().Format(time.DateOnly), nil
	}

	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}

	return d.Format(time.DateOnly), nil
}

func bookingRequest() (labapi.BookingRequest, error) {
	date, err := normalizeDate(bookingDate)
	if err != nil {
		return labapi.BookingRequest{}, err
	}

	if bookingEquipment <= 0 {
		return labapi.BookingRequest{}, fmt.Errorf("invalid equipment id %d", bookingEquipment)
	}

	start, err := time.Parse("15:04", bookingStart)
	if err != nil {
		return labapi.BookingRequest{}, fmt.Errorf("invalid start time %q: expected HH:MM", bookingStart)
	}

	end, err := time.Parse("15:04", bookingEnd)
	if err != nil {
		return labapi.BookingRequest{}, fmt.Errorf("invalid end time %q: expected HH:MM", bookingEnd)
	}

	if !end.After(start) {
		return labapi.BookingRequest{}, fmt.Errorf("end time %s must be after start time %s", bookingEnd, bookingStart)
	}

	return labapi.BookingRequest{
		EquipmentID: bookingEquipment,
		BookingDate: date,
		StartTime:   start.Format("15:04"),
		EndTime:     end.Format("15:04"),
		Purpose:     bookingPurpose,
	}, nil
}
