// Package fetch is the shared outbound HTTP client for evidence, social and AI adapters.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ppiankov/claimwatch/internal/model"
	"github.com/ppiankov/claimwatch/internal/util"
	"github.com/ppiankov/claimwatch/internal/worker"
)

const (
	defaultBackoff = 500 * time.Millisecond
	maxBackoff     = 30 * time.Second
)

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
	}
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Retryable reports whether the status is worth retrying (429 or 5xx)
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Response is a fully-read HTTP response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	FinalURL   string
}

// Client performs rate-limited GET/POST requests with retries and a body size cap
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	maxRetries int
	backoff    time.Duration
	limiter    *worker.Limiter
	sleep      worker.SleepFunc
}

// NewClient creates a client from the http config section. limiter may be nil.
func NewClient(cfg model.HTTPConfig, limiter *worker.Limiter) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)

	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:  cfg.UserAgent,
		maxBytes:   maxBytes,
		maxRetries: max(cfg.MaxRetries, 0),
		backoff:    defaultBackoff,
		limiter:    limiter,
		sleep:      sleepWithContext,
	}
}

// WithBackoff sets the initial retry backoff and the function used to wait (tests pass a no-op)
func (c *Client) WithBackoff(initial time.Duration, sleep worker.SleepFunc) *Client {
	if initial > 0 {
		c.backoff = initial
	}
	if sleep != nil {
		c.sleep = sleep
	}
	return c
}

// UserAgent returns the configured User-Agent
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Get fetches rawURL with the given extra headers
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodGet, rawURL, headers, nil)
}

// Post sends body to rawURL with the given extra headers
func (c *Client) Post(ctx context.Context, rawURL string, headers map[string]string, body []byte) (*Response, error) {
	return c.do(ctx, http.MethodPost, rawURL, headers, body)
}

// GetJSON fetches rawURL and decodes the JSON body into v
func (c *Client) GetJSON(ctx context.Context, rawURL string, headers map[string]string, v any) error {
	h := map[string]string{"Accept": "application/json"}
	for k, val := range headers {
		h[k] = val
	}

	resp, err := c.Get(ctx, rawURL, h)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, headers map[string]string, body []byte) (*Response, error) {
	delay := c.backoff
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			delay = min(delay*2, maxBackoff)
		}

		resp, err := c.once(ctx, method, rawURL, headers, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			if !statusErr.Retryable() {
				return nil, err
			}
			if wait := retryAfter(resp); wait > delay {
				delay = min(wait, maxBackoff)
			}
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", c.maxRetries+1, lastErr)
}

// once performs a single request. On a non-2xx status it returns the response alongside a StatusError.
func (c *Client) once(ctx context.Context, method, rawURL string, headers map[string]string, body []byte) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
		FinalURL:   httpResp.Request.URL.String(),
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return resp, &StatusError{
			StatusCode: httpResp.StatusCode,
			URL:        rawURL,
			Body:       snippet(data),
		}
	}
	return resp, nil
}

func retryAfter(resp *Response) time.Duration {
	if resp == nil {
		return 0
	}
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func snippet(body []byte) string {
	const n = 200
	if len(body) > n {
		return string(body[:n]) + "..."
	}
	return string(body)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
