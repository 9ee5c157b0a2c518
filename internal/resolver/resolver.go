package resolver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/inovacc/labctl/internal/config"
	"github.com/inovacc/labctl/internal/log"
	"github.com/inovacc/labctl/internal/securestore"
)

const defaultLocalHost = "localhost"

// Resolver owns the current backend URL.
type Resolver struct {
	mode          config.Mode
	productionURL string
	port          int
	hostURI       string
	probeTimeout  time.Duration

	storage    securestore.Store
	httpClient *http.Client
	log        log.Logger

	mu      sync.RWMutex
	current string
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the client used for health probes.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		r.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(r *Resolver) {
		r.log = l
	}
}

// New returns a Resolver whose current URL is the production URL until
// Resolve or ForceRefresh runs.
func New(cfg *config.Config, storage securestore.Store, opts ...Option) *Resolver {
	r := &Resolver{
		mode:          cfg.Mode,
		productionURL: cfg.ProductionURL,
		port:          cfg.DefaultPort,
		hostURI:       cfg.HostURI,
		probeTimeout:  cfg.ProbeTimeout,
		storage:       storage,
		httpClient:    http.DefaultClient,
		log:           log.NewNop(),
		current:       cfg.ProductionURL,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.probeTimeout <= 0 {
		r.probeTimeout = config.DefaultProbeTimeout
	}

	r.log = r.log.WithName("resolver").WithValues("mode", string(r.mode))

	return r
}

// Current returns the URL most recently produced by Resolve or ForceRefresh.
func (r *Resolver) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.current
}

func (r *Resolver) setCurrent(u string) {
	r.mu.Lock()
	r.current = u
	r.mu.Unlock()
}

// Resolve returns the backend URL, trusting a cached URL only if it passes
// a health probe.
func (r *Resolver) Resolve(ctx context.Context) string {
	u := r.resolve(ctx, true)
	r.setCurrent(u)

	return u
}

// ForceRefresh clears the cached URL and re-runs discovery.
func (r *Resolver) ForceRefresh(ctx context.Context) string {
	r.log.Info("refreshing backend URL")
	r.deleteCache(ctx)

	u := r.resolve(ctx, false)
	r.setCurrent(u)

	r.log.Info("backend URL refreshed", "url", u)

	return u
}

func (r *Resolver) resolve(ctx context.Context, trustCache bool) string {
	if r.mode != config.ModeDevelopment {
		r.log.Debug("using production backend", "url", r.productionURL)
		return r.productionURL
	}

	if trustCache {
		if cached, ok := r.validCache(ctx); ok {
			return cached
		}
	}

	localIP := r.LocalIP()
	r.log.Debug("inferred local address", "ip", localIP)

	if u, ok := r.discover(ctx, localIP); ok {
		if err := r.storage.Set(ctx, securestore.KeyCachedBackendURL, u); err != nil {
			r.log.Error(err, "failed to cache backend URL", "url", u)
		} else {
			r.log.Info("cached backend URL", "url", u)
		}

		return u
	}

	u := r.apiURL(localIP)
	r.log.Info("using final fallback", "url", u)

	return u
}

// validCache returns the cached URL if it is present and healthy. A stale
// entry is deleted.
func (r *Resolver) validCache(ctx context.Context) (string, bool) {
	cached, err := r.storage.Get(ctx, securestore.KeyCachedBackendURL)
	if err != nil {
		if !errors.Is(err, securestore.ErrNotFound) {
			r.log.Error(err, "failed to read cached URL")
		}

		return "", false
	}

	if cached == "" {
		return "", false
	}

	if r.reachable(ctx, cached) {
		r.log.Debug("cached URL is valid", "url", cached)
		return cached, true
	}

	r.log.Info("cached URL is no longer valid, re-detecting", "url", cached)
	r.deleteCache(ctx)

	return "", false
}

// discover asks the backend at localIP for its interfaces and returns the
// first healthy candidate, or the untested local URL when none answers.
// It reports false when the backend health endpoint itself is unreachable.
func (r *Resolver) discover(ctx context.Context, localIP string) (string, bool) {
	healthURL := r.hostURL(localIP) + "/health"
	r.log.Debug("fetching backend network info", "url", healthURL)

	health, err := r.fetchHealth(ctx, healthURL)
	if err != nil {
		r.log.Warn("failed to fetch backend network info", "url", healthURL, "error", err)
		return "", false
	}

	for _, iface := range health.Interfaces() {
		addr := strings.TrimSpace(iface.Address)
		if addr == "" {
			continue
		}

		candidate := r.apiURL(addr)
		r.log.Debug("testing candidate", "url", candidate, "interface", iface.Name)

		if r.reachable(ctx, candidate) {
			r.log.Info("connected to backend", "url", candidate)
			return candidate, true
		}
	}

	fallback := r.apiURL(localIP)
	r.log.Info("no reported interface answered, using fallback", "url", fallback)

	return fallback, true
}

func (r *Resolver) deleteCache(ctx context.Context) {
	if err := r.storage.Delete(ctx, securestore.KeyCachedBackendURL); err != nil {
		r.log.Error(err, "failed to clear cached URL")
	}
}

// LocalIP returns the host portion of the dev-server host URI,
// e.g. "192.168.1.5:19000" -> "192.168.1.5", or "localhost".
func (r *Resolver) LocalIP() string {
	return localIPFromHostURI(r.hostURI)
}

func localIPFromHostURI(hostURI string) string {
	hostURI = strings.TrimSpace(hostURI)
	if i := strings.Index(hostURI, "://"); i >= 0 {
		hostURI = hostURI[i+3:]
	}

	hostURI, _, _ = strings.Cut(hostURI, "/")
	if hostURI == "" {
		return defaultLocalHost
	}

	if host, _, err := net.SplitHostPort(hostURI); err == nil {
		if host == "" {
			return defaultLocalHost
		}

		return host
	}

	// no port
	return strings.Trim(hostURI, "[]")
}

func (r *Resolver) hostURL(host string) string {
	return "http://" + net.JoinHostPort(host, strconv.Itoa(r.port))
}

func (r *Resolver) apiURL(host string) string {
	return r.hostURL(host) + "/api"
}
