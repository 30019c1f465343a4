// Package integration is the HTTP plumbing shared by the downstream action
// handlers: JSON requests with bearer auth, client-side rate limiting and
// failures classified into the causes recorded on action outcomes.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/CerealNotFound/function-calling-server/core/protocol"
)

const maxDetail = 512

// HTTPClient performs HTTP requests. *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks JSON to one downstream service.
type Client struct {
	service string
	baseURL string
	token   string
	http    HTTPClient
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) { c.http = h }
}

// New creates a Client for the named service.
func New(service string, cfg *Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingBaseURL, service)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		service: service,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Service returns the name used in errors.
func (c *Client) Service() string {
	return c.service
}

// Post sends body as JSON to path.
func (c *Client) Post(ctx context.Context, path string, query url.Values, body any) (gjson.Result, error) {
	return c.Do(ctx, http.MethodPost, path, query, body)
}

// Put sends body as JSON to path.
func (c *Client) Put(ctx context.Context, path string, query url.Values, body any) (gjson.Result, error) {
	return c.Do(ctx, http.MethodPut, path, query, body)
}

// Do performs one request and returns the parsed JSON response. A nil body
// sends no payload. Failures are returned as *Error.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (gjson.Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return gjson.Result{}, c.fail(transportCause(ctx, err), 0, "rate limiter wait", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return gjson.Result{}, c.fail(protocol.CauseInvalidArguments, 0, "encode request", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return gjson.Result{}, c.fail(protocol.CauseInvalidArguments, 0, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, c.fail(transportCause(ctx, err), 0, "request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, c.fail(protocol.CauseNetwork, resp.StatusCode, "read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gjson.Result{}, &Error{
			Service: c.service,
			Cause:   protocol.CauseRejected,
			Status:  resp.StatusCode,
			Detail:  rejection(data),
		}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return gjson.Result{}, nil
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, &Error{
			Service: c.service,
			Cause:   protocol.CauseMalformedResponse,
			Status:  resp.StatusCode,
			Detail:  "response is not valid JSON: " + truncate(string(data)),
		}
	}
	return gjson.ParseBytes(data), nil
}

func (c *Client) fail(cause string, status int, what string, err error) *Error {
	return &Error{
		Service: c.service,
		Cause:   cause,
		Status:  status,
		Detail:  fmt.Sprintf("%s: %v", what, err),
		Err:     err,
	}
}

func transportCause(ctx context.Context, err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return protocol.CauseTimeout
	}
	return protocol.CauseNetwork
}

// rejection extracts the most specific message a downstream error body
// offers. HubSpot uses "message"; Google APIs use "error.message".
func rejection(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"error.message", "message", "error_description", "error"} {
			if r := gjson.GetBytes(body, path); r.Exists() && r.Type == gjson.String && r.String() != "" {
				return r.String()
			}
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return truncate(s)
	}
	return "no response body"
}

func truncate(s string) string {
	if len(s) <= maxDetail {
		return s
	}
	cut := maxDetail
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
