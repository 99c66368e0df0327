package connector

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

// maxResponseSize caps upstream response bodies (10MB).
const maxResponseSize = 10 * 1024 * 1024

// defaultTimeoutSeconds applies when a connector config leaves the timeout
// unset.
const defaultTimeoutSeconds = 30

// ErrInvalidConfig indicates a connector configuration that cannot produce a
// working client.
var ErrInvalidConfig = errors.New("connector: invalid configuration")

// Config holds the HTTP settings every Source and Target connector shares.
// The wire-protocol specifics live in the adapter built on top of it.
type Config struct {
	BaseURL        string
	AccessToken    string
	TimeoutSeconds int
	UserAgent      string
}

// Validate checks the config for a usable base URL and credential.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	parsed, err := url.Parse(c.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%w: base URL %q is not absolute", ErrInvalidConfig, c.BaseURL)
	}
	if c.AccessToken == "" {
		return fmt.Errorf("%w: access token is required", ErrInvalidConfig)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: timeout cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// NewHTTPClient builds the shared http.Client for a connector: request
// timeout plus a transport that injects the bearer token and user agent on
// every request.
func NewHTTPClient(cfg *Config) (*http.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timeout := cfg.TimeoutSeconds
	if timeout == 0 {
		timeout = defaultTimeoutSeconds
	}
	return &http.Client{
		Timeout: time.Duration(timeout) * time.Second,
		Transport: &authTransport{
			base:      http.DefaultTransport,
			token:     cfg.AccessToken,
			userAgent: cfg.UserAgent,
		},
	}, nil
}

// authTransport decorates every outgoing request with the connector's
// credentials. The request is cloned: RoundTrippers must not mutate their
// input.
type authTransport struct {
	base      http.RoundTripper
	token     string
	userAgent string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)
	if t.userAgent != "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(clone)
}

// CheckResponse maps an upstream HTTP status onto the sync error taxonomy.
// unavailable names the backend the caller talked to, ErrSourceUnavailable
// or ErrTargetUnavailable. A 429 becomes ErrTargetRateLimited so the batch
// executor's throttle classification sees it.
func CheckResponse(resp *http.Response, unavailable error) error {
	switch {
	case resp.StatusCode < http.StatusBadRequest:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		if wait := RetryAfter(resp); wait > 0 {
			return fmt.Errorf("%w: retry after %s", syncdomain.ErrTargetRateLimited, wait)
		}
		return syncdomain.ErrTargetRateLimited
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: upstream returned %d", unavailable, resp.StatusCode)
	default:
		return fmt.Errorf("upstream returned %d: %s", resp.StatusCode, errorBody(resp))
	}
}

// RetryAfter parses the Retry-After header, accepting both delta-seconds and
// HTTP-date forms. Returns zero when absent or unparseable.
func RetryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
	}
	return 0
}

// DecodeJSON reads a capped response body into out.
func DecodeJSON(resp *http.Response, out any) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorBody extracts a short diagnostic from an error response.
func errorBody(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 512))
	if err != nil || len(body) == 0 {
		return resp.Status
	}
	return strings.TrimSpace(string(body))
}
