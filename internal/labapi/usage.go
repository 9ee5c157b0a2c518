package labapi

import (
	"context"
	"encoding/json"
)

// UsageAPI covers /usage, the sessions during which equipment is in use.
type UsageAPI struct{ c caller }

func (u *UsageAPI) Start(ctx context.Context, bookingID int64) (json.RawMessage, error) {
	return u.c.post(ctx, "/usage/start", map[string]int64{"booking_id": bookingID})
}

func (u *UsageAPI) End(ctx context.Context, sessionID int64, notes string) (json.RawMessage, error) {
	body := struct {
		SessionID int64  `json:"session_id"`
		Notes     string `json:"notes,omitempty"`
	}{sessionID, notes}

	return u.c.post(ctx, "/usage/end", body)
}

func (u *UsageAPI) Mine(ctx context.Context, params Params) (json.RawMessage, error) {
	return u.c.get(ctx, "/usage/my-sessions", params)
}

func (u *UsageAPI) List(ctx context.Context, params Params) (json.RawMessage, error) {
	return u.c.get(ctx, "/usage", params)
}

func (u *UsageAPI) ByEquipment(ctx context.Context, equipmentID int64, params Params) (json.RawMessage, error) {
	return u.c.get(ctx, "/usage/equipment/"+id(equipmentID), params)
}
