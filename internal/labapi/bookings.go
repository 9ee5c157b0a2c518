package labapi

import (
	"context"
	"encoding/json"
	"net/url"
)

// BookingRequest reserves a time slot. Dates are YYYY-MM-DD, times HH:MM.
type BookingRequest struct {
	EquipmentID int64  `json:"equipment_id"`
	BookingDate string `json:"booking_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Purpose     string `json:"purpose,omitempty"`
}

type remarks struct {
	Remarks string `json:"remarks,omitempty"`
}

// BookingAPI covers /bookings.
type BookingAPI struct{ c caller }

func (b *BookingAPI) Create(ctx context.Context, req BookingRequest) (json.RawMessage, error) {
	return b.c.post(ctx, "/bookings", req)
}

func (b *BookingAPI) Mine(ctx context.Context, params Params) (json.RawMessage, error) {
	return b.c.get(ctx, "/bookings/my-bookings", params)
}

func (b *BookingAPI) List(ctx context.Context, params Params) (json.RawMessage, error) {
	return b.c.get(ctx, "/bookings", params)
}

func (b *BookingAPI) Approve(ctx context.Context, bookingID int64, note string) (json.RawMessage, error) {
	return b.c.put(ctx, "/bookings/"+id(bookingID)+"/approve", remarks{note})
}

func (b *BookingAPI) Reject(ctx context.Context, bookingID int64, note string) (json.RawMessage, error) {
	return b.c.put(ctx, "/bookings/"+id(bookingID)+"/reject", remarks{note})
}

func (b *BookingAPI) Cancel(ctx context.Context, bookingID int64) (json.RawMessage, error) {
	return b.c.put(ctx, "/bookings/"+id(bookingID)+"/cancel", nil)
}

// AvailableSlots lists the free slots of one equipment on date (YYYY-MM-DD).
func (b *BookingAPI) AvailableSlots(ctx context.Context, equipmentID int64, date string) (json.RawMessage, error) {
	return b.c.get(ctx, "/bookings/available-slots", url.Values{
		"equipment_id": []string{id(equipmentID)},
		"date":         []string{date},
	})
}
