package labapi

import (
	"context"
	"encoding/json"
	"net/http"
)

// UserAPI covers /user, the signed-in user's own resources.
type UserAPI struct{ c caller }

func (u *UserAPI) Profile(ctx context.Context) (json.RawMessage, error) {
	return u.c.get(ctx, "/user/profile", nil)
}

func (u *UserAPI) UpdateProfile(ctx context.Context, fields map[string]any) (json.RawMessage, error) {
	return u.c.put(ctx, "/user/profile", fields)
}

func (u *UserAPI) ChangePassword(ctx context.Context, current, next string) (json.RawMessage, error) {
	return u.c.put(ctx, "/user/change-password", map[string]string{
		"currentPassword": current,
		"newPassword":     next,
	})
}

func (u *UserAPI) UploadImage(ctx context.Context, f *Form) (json.RawMessage, error) {
	return u.c.form(ctx, http.MethodPost, "/user/upload-image", f)
}

func (u *UserAPI) DeleteImage(ctx context.Context) (json.RawMessage, error) {
	return u.c.delete(ctx, "/user/delete-image")
}

func (u *UserAPI) Dashboard(ctx context.Context) (json.RawMessage, error) {
	return u.c.get(ctx, "/user/dashboard", nil)
}

func (u *UserAPI) ProductivityReport(ctx context.Context, params Params) (json.RawMessage, error) {
	return u.c.get(ctx, "/user/productivity-report", params)
}
