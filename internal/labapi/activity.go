package labapi

import (
	"context"
	"encoding/json"
)

// ActivityAPI covers /activity: the activity feed, notifications, print logs
// and the lab sign-in logbook.
type ActivityAPI struct{ c caller }

func (a *ActivityAPI) Mine(ctx context.Context, params Params) (json.RawMessage, error) {
	return a.c.get(ctx, "/activity/my-activity", params)
}

func (a *ActivityAPI) List(ctx context.Context, params Params) (json.RawMessage, error) {
	return a.c.get(ctx, "/activity/all", params)
}

func (a *ActivityAPI) Notifications(ctx context.Context, params Params) (json.RawMessage, error) {
	return a.c.get(ctx, "/activity/notifications", params)
}

func (a *ActivityAPI) MarkNotificationRead(ctx context.Context, notificationID int64) (json.RawMessage, error) {
	return a.c.put(ctx, "/activity/notifications/"+id(notificationID)+"/read", nil)
}

func (a *ActivityAPI) AddPrintLog(ctx context.Context, entry map[string]any) (json.RawMessage, error) {
	return a.c.post(ctx, "/activity/print-logs", entry)
}

func (a *ActivityAPI) MyPrintLogs(ctx context.Context, params Params) (json.RawMessage, error) {
	return a.c.get(ctx, "/activity/my-print-logs", params)
}

func (a *ActivityAPI) Logbook(ctx context.Context, params Params) (json.RawMessage, error) {
	return a.c.get(ctx, "/activity/logbook", params)
}

func (a *ActivityAPI) SignIn(ctx context.Context) (json.RawMessage, error) {
	return a.c.post(ctx, "/activity/sign-in", nil)
}

func (a *ActivityAPI) SignOut(ctx context.Context) (json.RawMessage, error) {
	return a.c.post(ctx, "/activity/sign-out", nil)
}
