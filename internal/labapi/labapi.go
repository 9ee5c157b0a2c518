// Package labapi exposes the backend REST endpoints as typed calls over
// apiclient. Response payloads are owned by the backend and returned as
// raw JSON.
package labapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/inovacc/labctl/internal/apiclient"
)

// Doer sends API requests. *apiclient.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req *apiclient.Request) (*apiclient.Response, error)
}

// API groups every endpoint family.
type API struct {
	Auth      *AuthAPI
	User      *UserAPI
	Equipment *EquipmentAPI
	Bookings  *BookingAPI
	Usage     *UsageAPI
	Activity  *ActivityAPI
	Admin     *AdminAPI
	Inventory *InventoryAPI
}

// New returns the endpoint groups bound to d.
func New(d Doer) *API {
	c := caller{d: d}

	return &API{
		Auth:      &AuthAPI{c},
		User:      &UserAPI{c},
		Equipment: &EquipmentAPI{c},
		Bookings:  &BookingAPI{c},
		Usage:     &UsageAPI{c},
		Activity:  &ActivityAPI{c},
		Admin:     &AdminAPI{c},
		Inventory: newInventoryAPI(c),
	}
}

// Params are optional query parameters (filters, date ranges, paging).
type Params = url.Values

// Envelope is the common backend response wrapper.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type caller struct {
	d Doer
}

func (c caller) do(ctx context.Context, req *apiclient.Request) (json.RawMessage, error) {
	resp, err := c.d.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	return json.RawMessage(resp.Body), nil
}

func (c caller) get(ctx context.Context, path string, params Params) (json.RawMessage, error) {
	return c.do(ctx, &apiclient.Request{Method: http.MethodGet, Path: path, Query: params})
}

func (c caller) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, &apiclient.Request{Method: http.MethodPost, Path: path, Body: body})
}

func (c caller) put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, &apiclient.Request{Method: http.MethodPut, Path: path, Body: body})
}

func (c caller) delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, &apiclient.Request{Method: http.MethodDelete, Path: path})
}

func (c caller) form(ctx context.Context, method, path string, f *Form) (json.RawMessage, error) {
	body, contentType, err := f.Encode()
	if err != nil {
		return nil, err
	}

	return c.do(ctx, &apiclient.Request{Method: method, Path: path, RawBody: body, ContentType: contentType})
}

func id(n int64) string {
	return strconv.FormatInt(n, 10)
}
