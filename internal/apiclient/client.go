package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"net/http/httptrace"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/inovacc/labctl/internal/application"
	"github.com/inovacc/labctl/internal/config"
	"github.com/inovacc/labctl/internal/log"
)

// HeaderRequestID correlates every attempt of one logical request.
const HeaderRequestID = "X-Request-ID"

// Resolver supplies the base URL.
type Resolver interface {
	Current() string
	Resolve(ctx context.Context) string
	ForceRefresh(ctx context.Context) string
}

// TokenSource supplies and invalidates the bearer token.
type TokenSource interface {
	Get(ctx context.Context) (string, bool)
	Clear(ctx context.Context) error
}

// Client issues API requests.
type Client struct {
	httpClient     *http.Client
	resolver       Resolver
	tokens         TokenSource
	development    bool
	requestTimeout time.Duration
	userAgent      string
	log            log.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(cl *Client) {
		cl.log = l
	}
}

// New resolves the backend URL and returns a ready client.
func New(ctx context.Context, cfg *config.Config, resolver Resolver, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		httpClient:     http.DefaultClient,
		resolver:       resolver,
		tokens:         tokens,
		development:    cfg.IsDevelopment(),
		requestTimeout: cfg.RequestTimeout,
		userAgent:      application.AppName,
		log:            log.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.requestTimeout <= 0 {
		c.requestTimeout = config.DefaultRequestTimeout
	}

	c.log = c.log.WithName("apiclient")

	base := resolver.Resolve(ctx)
	c.log.Info("API base URL initialized", "url", base, "development", c.development)

	return c
}

// BaseURL returns the URL the next request will target.
func (c *Client) BaseURL() string {
	return c.resolver.Current()
}

// Request describes one API call. Paths are relative to the base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header

	// Body is JSON-encoded when set.
	Body any

	// RawBody is sent as is with ContentType; it takes precedence over Body.
	RawBody     []byte
	ContentType string
}

// Response is a successful (2xx) response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if v == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// Do sends req, retrying once after an endpoint refresh on a
// connection-level failure in development mode.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	payload, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	logger := c.log.WithValues("method", req.Method, "path", req.Path, "request_id", requestID)
	machine := newRequestMachine(logger)

	for {
		resp, err := c.send(ctx, req, payload, contentType, requestID)
		if err == nil {
			machine.settle(ctx, eventSucceed)
			return resp, nil
		}

		if c.development && IsConnectionError(err) && ctx.Err() == nil && machine.canRetry() {
			if fireErr := machine.fire(ctx, eventRetry); fireErr != nil {
				return nil, fireErr
			}

			logger.Info("connection failed, refreshing backend URL", "error", err)

			newURL := c.resolver.ForceRefresh(ctx)
			logger.Info("retrying request with new URL", "url", newURL)

			continue
		}

		if IsUnauthorized(err) && !machine.retried() {
			if clearErr := c.tokens.Clear(ctx); clearErr != nil {
				logger.Error(clearErr, "failed to clear token after 401")
			}
		}

		machine.settle(ctx, eventFail)
		logger.Debug("request failed", "state", machine.state(), "error", err)

		return nil, err
	}
}

func (c *Client) send(ctx context.Context, req *Request, payload []byte, contentType, requestID string) (*Response, error) {
	target, err := joinURL(c.resolver.Current(), req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var connected atomic.Bool

	attemptCtx = httptrace.WithClientTrace(attemptCtx, &httptrace.ClientTrace{
		GotConn: func(httptrace.GotConnInfo) { connected.Store(true) },
	})

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(HeaderRequestID, requestID)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if tok, ok := c.tokens.Get(ctx); ok {
		httpReq.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() == nil && isConnectionLevel(err, connected.Load()) {
			return nil, &ConnectionError{Method: method, URL: target, Err: err}
		}

		return nil, err
	}

	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(method, target, resp, respBody)
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: respBody}, nil
}

func encodeBody(req *Request) ([]byte, string, error) {
	if req.RawBody != nil {
		return req.RawBody, req.ContentType, nil
	}

	if req.Body == nil {
		return nil, "", nil
	}

	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode request body: %w", err)
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/json"
	}

	return data, contentType, nil
}

func joinURL(base, path string, query url.Values) (string, error) {
	if base == "" {
		return "", fmt.Errorf("no backend URL resolved")
	}

	u, err := url.Parse(strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid request URL: %w", err)
	}

	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}

		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// Get issues a GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.call(ctx, &Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, &Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, &Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.call(ctx, &Request{Method: http.MethodDelete, Path: path}, out)
}

func (c *Client) call(ctx context.Context, req *Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}

	return resp.Decode(out)
}
