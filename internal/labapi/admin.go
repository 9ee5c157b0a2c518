package labapi

import (
	"context"
	"encoding/json"
)

// AdminAPI covers /admin. Every call needs an administrator token.
type AdminAPI struct{ c caller }

func (a *AdminAPI) Dashboard(ctx context.Context) (json.RawMessage, error) {
	return a.c.get(ctx, "/admin/dashboard", nil)
}

func (a *AdminAPI) EquipmentUtilization(ctx context.Context) (json.RawMessage, error) {
	return a.c.get(ctx, "/admin/equipment-utilization", nil)
}

func (a *AdminAPI) UserProductivity(ctx context.Context) (json.RawMessage, error) {
	return a.c.get(ctx, "/admin/user-productivity", nil)
}

func (a *AdminAPI) BookingAnalytics(ctx context.Context) (json.RawMessage, error) {
	return a.c.get(ctx, "/admin/booking-analytics", nil)
}

func (a *AdminAPI) Users(ctx context.Context, params Params) (json.RawMessage, error) {
	return a.c.get(ctx, "/admin/users", params)
}

func (a *AdminAPI) ToggleUserStatus(ctx context.Context, userID int64) (json.RawMessage, error) {
	return a.c.put(ctx, "/admin/users/"+id(userID)+"/toggle-status", nil)
}

func (a *AdminAPI) UserDetails(ctx context.Context, userID int64) (json.RawMessage, error) {
	return a.c.get(ctx, "/admin/users/"+id(userID)+"/details", nil)
}

func (a *AdminAPI) MachineAnalytics(ctx context.Context, params Params) (json.RawMessage, error) {
	return a.c.get(ctx, "/admin/machine-analytics", params)
}

func (a *AdminAPI) PeakHours(ctx context.Context) (json.RawMessage, error) {
	return a.c.get(ctx, "/admin/peak-hours", nil)
}

func (a *AdminAPI) DailyPatterns(ctx context.Context, params Params) (json.RawMessage, error) {
	return a.c.get(ctx, "/admin/daily-patterns", params)
}

// LabLogbook is the lab-wide sign-in logbook; it shares the activity route.
func (a *AdminAPI) LabLogbook(ctx context.Context, params Params) (json.RawMessage, error) {
	return a.c.get(ctx, "/activity/logbook", params)
}
