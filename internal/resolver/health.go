package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// StatusHealthy is the status value of a healthy backend.
const StatusHealthy = "healthy"

// maxHealthBody caps how much of a health response is read.
const maxHealthBody = 1 << 20

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string      `json:"status"`
	Server *ServerInfo `json:"server,omitempty"`

	// Body is the undecoded response, kept for display.
	Body json.RawMessage `json:"-"`
}

// ServerInfo carries the backend's self-reported network details.
type ServerInfo struct {
	NetworkInterfaces []NetworkInterface `json:"networkInterfaces"`
}

// NetworkInterface is one address the backend listens on.
type NetworkInterface struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Healthy reports whether the backend declared itself healthy.
func (h *HealthResponse) Healthy() bool {
	return h != nil && h.Status == StatusHealthy
}

// Interfaces returns the reported interfaces, or nil.
func (h *HealthResponse) Interfaces() []NetworkInterface {
	if h == nil || h.Server == nil {
		return nil
	}

	return h.Server.NetworkInterfaces
}

// HealthURL maps an API base URL to its health endpoint:
// "http://10.0.0.5:5000/api" -> "http://10.0.0.5:5000/health".
func HealthURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	base = strings.TrimSuffix(base, "/api")

	return base + "/health"
}

var errNotOK = errors.New("health endpoint did not return 200")

// fetchHealth GETs healthURL within the probe timeout. Any transport
// error, non-200 status or undecodable body is an error.
func (r *Resolver) fetchHealth(ctx context.Context, healthURL string) (*HealthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", errNotOK, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxHealthBody))
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		return nil, fmt.Errorf("malformed health response: %w", err)
	}

	health.Body = body

	return &health, nil
}

// Check probes the health endpoint behind baseURL and returns the decoded
// response. A reachable but unhealthy backend is reported as an error.
func (r *Resolver) Check(ctx context.Context, baseURL string) (*HealthResponse, error) {
	health, err := r.fetchHealth(ctx, HealthURL(baseURL))
	if err != nil {
		return nil, err
	}

	if !health.Healthy() {
		return health, fmt.Errorf("backend reported status %q", health.Status)
	}

	return health, nil
}

// reachable reports whether baseURL answers its health probe as healthy.
func (r *Resolver) reachable(ctx context.Context, baseURL string) bool {
	_, err := r.Check(ctx, baseURL)
	if err != nil {
		r.log.Debug("health probe failed", "url", baseURL, "error", err)
		return false
	}

	return true
}
