package labapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/inovacc/labctl/internal/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	reqs []*apiclient.Request
	body []byte
	err  error
}

func (r *recorder) Do(_ context.Context, req *apiclient.Request) (*apiclient.Response, error) {
	r.reqs = append(r.reqs, req)
	if r.err != nil {
		return nil, r.err
	}

	body := r.body
	if body == nil {
		body = []byte(`{"success":true}`)
	}

	return &apiclient.Response{StatusCode: http.StatusOK, Body: body}, nil
}

func (r *recorder) last(t *testing.T) *apiclient.Request {
	t.Helper()
	require.NotEmpty(t, r.reqs)

	return r.reqs[len(r.reqs)-1]
}

func bodyJSON(t *testing.T, req *apiclient.Request) map[string]any {
	t.Helper()

	raw, err := json.Marshal(req.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))

	return out
}

func TestRoutes(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func(a *API) error
		method string
		path   string
	}{
		{"login", func(a *API) error { _, err := a.Auth.Login(ctx, LoginRequest{}); return err }, http.MethodPost, "/auth/login"},
		{"register", func(a *API) error { _, err := a.Auth.Register(ctx, RegisterRequest{}); return err }, http.MethodPost, "/auth/register"},
		{"logout", func(a *API) error { _, err := a.Auth.Logout(ctx); return err }, http.MethodPost, "/auth/logout"},
		{"verify", func(a *API) error { _, err := a.Auth.Verify(ctx); return err }, http.MethodGet, "/auth/verify"},
		{"reset password", func(a *API) error { _, err := a.Auth.ResetPassword(ctx, "t", "p"); return err }, http.MethodPost, "/auth/reset-password"},
		{"profile", func(a *API) error { _, err := a.User.Profile(ctx); return err }, http.MethodGet, "/user/profile"},
		{"update profile", func(a *API) error { _, err := a.User.UpdateProfile(ctx, nil); return err }, http.MethodPut, "/user/profile"},
		{"change password", func(a *API) error { _, err := a.User.ChangePassword(ctx, "a", "b"); return err }, http.MethodPut, "/user/change-password"},
		{"user delete image", func(a *API) error { _, err := a.User.DeleteImage(ctx); return err }, http.MethodDelete, "/user/delete-image"},
		{"user dashboard", func(a *API) error { _, err := a.User.Dashboard(ctx); return err }, http.MethodGet, "/user/dashboard"},
		{"productivity report", func(a *API) error { _, err := a.User.ProductivityReport(ctx, nil); return err }, http.MethodGet, "/user/productivity-report"},
		{"equipment list", func(a *API) error { _, err := a.Equipment.List(ctx, nil); return err }, http.MethodGet, "/equipment"},
		{"equipment get", func(a *API) error { _, err := a.Equipment.Get(ctx, 7); return err }, http.MethodGet, "/equipment/7"},
		{"equipment delete", func(a *API) error { _, err := a.Equipment.Delete(ctx, 7); return err }, http.MethodDelete, "/equipment/7"},
		{"equipment delete image", func(a *API) error { _, err := a.Equipment.DeleteImage(ctx, 7); return err }, http.MethodDelete, "/equipment/7/delete-image"},
		{"equipment analytics", func(a *API) error { _, err := a.Equipment.Analytics(ctx, 7, nil); return err }, http.MethodGet, "/equipment/7/analytics"},
		{"booking create", func(a *API) error { _, err := a.Bookings.Create(ctx, BookingRequest{}); return err }, http.MethodPost, "/bookings"},
		{"my bookings", func(a *API) error { _, err := a.Bookings.Mine(ctx, nil); return err }, http.MethodGet, "/bookings/my-bookings"},
		{"all bookings", func(a *API) error { _, err := a.Bookings.List(ctx, nil); return err }, http.MethodGet, "/bookings"},
		{"approve", func(a *API) error { _, err := a.Bookings.Approve(ctx, 3, ""); return err }, http.MethodPut, "/bookings/3/approve"},
		{"reject", func(a *API) error { _, err := a.Bookings.Reject(ctx, 3, ""); return err }, http.MethodPut, "/bookings/3/reject"},
		{"cancel", func(a *API) error { _, err := a.Bookings.Cancel(ctx, 3); return err }, http.MethodPut, "/bookings/3/cancel"},
		{"usage start", func(a *API) error { _, err := a.Usage.Start(ctx, 3); return err }, http.MethodPost, "/usage/start"},
		{"usage end", func(a *API) error { _, err := a.Usage.End(ctx, 4, ""); return err }, http.MethodPost, "/usage/end"},
		{"my sessions", func(a *API) error { _, err := a.Usage.Mine(ctx, nil); return err }, http.MethodGet, "/usage/my-sessions"},
		{"all sessions", func(a *API) error { _, err := a.Usage.List(ctx, nil); return err }, http.MethodGet, "/usage"},
		{"usage by equipment", func(a *API) error { _, err := a.Usage.ByEquipment(ctx, 7, nil); return err }, http.MethodGet, "/usage/equipment/7"},
		{"my activity", func(a *API) error { _, err := a.Activity.Mine(ctx, nil); return err }, http.MethodGet, "/activity/my-activity"},
		{"all activity", func(a *API) error { _, err := a.Activity.List(ctx, nil); return err }, http.MethodGet, "/activity/all"},
		{"notifications", func(a *API) error { _, err := a.Activity.Notifications(ctx, nil); return err }, http.MethodGet, "/activity/notifications"},
		{"mark read", func(a *API) error { _, err := a.Activity.MarkNotificationRead(ctx, 9); return err }, http.MethodPut, "/activity/notifications/9/read"},
		{"add print log", func(a *API) error { _, err := a.Activity.AddPrintLog(ctx, nil); return err }, http.MethodPost, "/activity/print-logs"},
		{"my print logs", func(a *API) error { _, err := a.Activity.MyPrintLogs(ctx, nil); return err }, http.MethodGet, "/activity/my-print-logs"},
		{"logbook", func(a *API) error { _, err := a.Activity.Logbook(ctx, nil); return err }, http.MethodGet, "/activity/logbook"},
		{"sign in", func(a *API) error { _, err := a.Activity.SignIn(ctx); return err }, http.MethodPost, "/activity/sign-in"},
		{"sign out", func(a *API) error { _, err := a.Activity.SignOut(ctx); return err }, http.MethodPost, "/activity/sign-out"},
		{"admin dashboard", func(a *API) error { _, err := a.Admin.Dashboard(ctx); return err }, http.MethodGet, "/admin/dashboard"},
		{"utilization", func(a *API) error { _, err := a.Admin.EquipmentUtilization(ctx); return err }, http.MethodGet, "/admin/equipment-utilization"},
		{"user productivity", func(a *API) error { _, err := a.Admin.UserProductivity(ctx); return err }, http.MethodGet, "/admin/user-productivity"},
		{"booking analytics", func(a *API) error { _, err := a.Admin.BookingAnalytics(ctx); return err }, http.MethodGet, "/admin/booking-analytics"},
		{"users", func(a *API) error { _, err := a.Admin.Users(ctx, nil); return err }, http.MethodGet, "/admin/users"},
		{"toggle status", func(a *API) error { _, err := a.Admin.ToggleUserStatus(ctx, 5); return err }, http.MethodPut, "/admin/users/5/toggle-status"},
		{"user details", func(a *API) error { _, err := a.Admin.UserDetails(ctx, 5); return err }, http.MethodGet, "/admin/users/5/details"},
		{"machine analytics", func(a *API) error { _, err := a.Admin.MachineAnalytics(ctx, nil); return err }, http.MethodGet, "/admin/machine-analytics"},
		{"peak hours", func(a *API) error { _, err := a.Admin.PeakHours(ctx); return err }, http.MethodGet, "/admin/peak-hours"},
		{"daily patterns", func(a *API) error { _, err := a.Admin.DailyPatterns(ctx, nil); return err }, http.MethodGet, "/admin/daily-patterns"},
		{"lab logbook", func(a *API) error { _, err := a.Admin.LabLogbook(ctx, nil); return err }, http.MethodGet, "/activity/logbook"},
		{"lab list", func(a *API) error { _, err := a.Inventory.Lab.List(ctx); return err }, http.MethodGet, "/inventory/lab"},
		{"ngs get", func(a *API) error { _, err := a.Inventory.NGS.Get(ctx, 2); return err }, http.MethodGet, "/inventory/ngs/2"},
		{"project create", func(a *API) error { _, err := a.Inventory.Projects.Create(ctx, nil); return err }, http.MethodPost, "/inventory/projects"},
		{"run update", func(a *API) error { _, err := a.Inventory.Runs.Update(ctx, 2, nil); return err }, http.MethodPut, "/inventory/runs/2"},
		{"lab delete", func(a *API) error { _, err := a.Inventory.Lab.Delete(ctx, 2); return err }, http.MethodDelete, "/inventory/lab/2"},
		{"transactions", func(a *API) error { _, err := a.Inventory.Transactions(ctx, nil); return err }, http.MethodGet, "/inventory/transactions"},
		{"consume", func(a *API) error { _, err := a.Inventory.Consume(ctx, nil); return err }, http.MethodPost, "/inventory/consume"},
		{"alerts", func(a *API) error { _, err := a.Inventory.Alerts(ctx); return err }, http.MethodGet, "/inventory/alerts"},
		{"resolve alert", func(a *API) error { _, err := a.Inventory.ResolveAlert(ctx, 8); return err }, http.MethodPut, "/inventory/alerts/8/resolve"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			require.NoError(t, tt.call(New(rec)))

			req := rec.last(t)
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, tt.path, req.Path)
		})
	}
}

func TestBodies(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	api := New(rec)

	_, err := api.Bookings.Create(ctx, BookingRequest{
		EquipmentID: 7,
		BookingDate: "2026-03-02",
		StartTime:   "09:00",
		EndTime:     "10:30",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"equipment_id": float64(7),
		"booking_date": "2026-03-02",
		"start_time":   "09:00",
		"end_time":     "10:30",
	}, bodyJSON(t, rec.last(t)))

	_, err = api.Usage.Start(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"booking_id": float64(3)}, bodyJSON(t, rec.last(t)))

	_, err = api.Usage.End(ctx, 4, "clean")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"session_id": float64(4), "notes": "clean"}, bodyJSON(t, rec.last(t)))

	_, err = api.Bookings.Reject(ctx, 3, "overlap")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"remarks": "overlap"}, bodyJSON(t, rec.last(t)))

	_, err = api.Bookings.Approve(ctx, 3, "")
	require.NoError(t, err)
	assert.Empty(t, bodyJSON(t, rec.last(t)))

	_, err = api.User.ChangePassword(ctx, "old", "new")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"currentPassword": "old", "newPassword": "new"}, bodyJSON(t, rec.last(t)))

	_, err = api.Auth.ResetPassword(ctx, "tok", "pw")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"token": "tok", "newPassword": "pw"}, bodyJSON(t, rec.last(t)))
}

func TestAvailableSlotsQuery(t *testing.T) {
	rec := &recorder{}

	_, err := New(rec).Bookings.AvailableSlots(context.Background(), 12, "2026-03-02")
	require.NoError(t, err)

	req := rec.last(t)
	assert.Equal(t, "/bookings/available-slots", req.Path)
	assert.Equal(t, url.Values{"equipment_id": {"12"}, "date": {"2026-03-02"}}, req.Query)
}

func TestForgotPasswordClientType(t *testing.T) {
	rec := &recorder{}
	api := New(rec)

	_, err := api.Auth.ForgotPassword(context.Background(), "a@b.c", "")
	require.NoError(t, err)

	req := rec.last(t)
	assert.Equal(t, ClientMobile, req.Header.Get("X-Client-Type"))
	assert.Equal(t, map[string]any{"email": "a@b.c"}, bodyJSON(t, req))

	_, err = api.Auth.ForgotPassword(context.Background(), "a@b.c", ClientWeb)
	require.NoError(t, err)
	assert.Equal(t, ClientWeb, rec.last(t).Header.Get("X-Client-Type"))
}

func TestEquipmentCreateMultipart(t *testing.T) {
	rec := &recorder{}

	form := &Form{
		Fields: map[string]string{"name": "Centrifuge", "location": "B2"},
		Files:  []FormFile{{Field: "image", FileName: "c.jpg", Content: strings.NewReader("jpeg-bytes")}},
	}

	_, err := New(rec).Equipment.Create(context.Background(), form)
	require.NoError(t, err)

	req := rec.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Nil(t, req.Body)

	mediaType, params, err := mime.ParseMediaType(req.ContentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	mr := multipart.NewReader(strings.NewReader(string(req.RawBody)), params["boundary"])

	parts := map[string]string{}
	files := map[string]string{}

	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}

		require.NoError(t, err)

		data, err := io.ReadAll(p)
		require.NoError(t, err)

		if p.FileName() != "" {
			files[p.FileName()] = string(data)
			continue
		}

		parts[p.FormName()] = string(data)
	}

	assert.Equal(t, map[string]string{"name": "Centrifuge", "location": "B2"}, parts)
	assert.Equal(t, map[string]string{"c.jpg": "jpeg-bytes"}, files)
}

func TestErrorPassThrough(t *testing.T) {
	want := &apiclient.HTTPError{StatusCode: http.StatusConflict, Message: "Slot taken"}
	rec := &recorder{err: want}

	body, err := New(rec).Bookings.Create(context.Background(), BookingRequest{})
	assert.Nil(t, body)
	assert.ErrorIs(t, err, want)
	assert.Equal(t, http.StatusConflict, apiclient.StatusCode(err))
}

func TestInventoryCollection(t *testing.T) {
	inv := New(&recorder{}).Inventory

	for _, name := range Collections {
		assert.NotNil(t, inv.Collection(name), name)
	}

	assert.Same(t, inv.Lab, inv.Collection(CollectionLab))
	assert.Nil(t, inv.Collection("reagents"))
}

func TestParseAuthResult(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		token string
	}{
		{"flat", `{"success":true,"token":"abc","user":{"id":1}}`, "abc"},
		{"enveloped", `{"success":true,"data":{"token":"def","user":{"id":1}}}`, "def"},
		{"missing", `{"success":true}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseAuthResult(json.RawMessage(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.token, res.Token)
		})
	}

	_, err := ParseAuthResult(json.RawMessage(`not json`))
	assert.Error(t, err)
}

func TestImageURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"http://10.0.0.5:5000/api", "uploads/a.jpg", "http://10.0.0.5:5000/uploads/a.jpg"},
		{"http://10.0.0.5:5000/api/", "/uploads/a.jpg", "http://10.0.0.5:5000/uploads/a.jpg"},
		{"https://example.com", "uploads/a.jpg", "https://example.com/uploads/a.jpg"},
		{"http://10.0.0.5:5000/api", "", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ImageURL(tt.base, tt.path), tt.base+" "+tt.path)
	}
}
