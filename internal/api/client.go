// Package api is the HTTP client for the engagement-letter backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"thgletter/internal/logging"

	"github.com/google/uuid"
)

// Default per-call timeouts.
const (
	DefaultTimeout = 45 * time.Second
	ParcelTimeout  = 60 * time.Second
	ReportTimeout  = 120 * time.Second
)

// maxErrorBody caps how much of a failure body is read for the message.
const maxErrorBody = 64 << 10

// TokenSource returns the current bearer token, or "" when there is none.
type TokenSource func() string

// RequestOptions tune a single request.
type RequestOptions struct {
	// Timeout overrides the client default when > 0.
	Timeout time.Duration
	Header  http.Header
}

// Client calls the backend. It is safe for concurrent use.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	token          TokenSource
	defaultTimeout time.Duration
	parcelTimeout  time.Duration
	reportTimeout  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource sets where the bearer token comes from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.token = ts }
}

// WithDefaultTimeout sets the timeout used when a request does not specify one.
func WithDefaultTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

// WithTimeouts sets the generic, parcel-lookup and report-generation timeouts.
// Zero values keep the defaults.
func WithTimeouts(generic, parcel, report time.Duration) Option {
	return func(c *Client) {
		if generic > 0 {
			c.defaultTimeout = generic
		}
		if parcel > 0 {
			c.parcelTimeout = parcel
		}
		if report > 0 {
			c.reportTimeout = report
		}
	}
}

// NewClient creates a client for baseURL. A trailing slash is stripped.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient:     &http.Client{},
		defaultTimeout: DefaultTimeout,
		parcelTimeout:  ParcelTimeout,
		reportTimeout:  ReportTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Post sends body as JSON. On 2xx the response is returned with its body
// unread; the caller must close it.
func (c *Client) Post(ctx context.Context, path string, body any, opts RequestOptions) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, path, body, opts)
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, opts RequestOptions) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, opts)
}

func (c *Client) do(ctx context.Context, method, path string, body any, opts RequestOptions) (*http.Response, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}

	// The caller's context and our deadline are merged: either aborts the request.
	ctx, cancel := context.WithTimeout(ctx, timeout)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("marshal request failed: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	requestID := uuid.NewString()
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	req.Header.Set("X-Request-Id", requestID)
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	log := logging.Get(logging.CategoryAPI).With("request_id", requestID)
	start := time.Now()
	log.Debug("%s %s (timeout %v)", method, path, timeout)

	res, err := c.httpClient.Do(req)
	if err != nil {
		// classify before cancel, or every failure would read as a cancellation
		err = classify(ctx, err)
		cancel()
		log.Warn("%s %s failed after %v: %v", method, path, time.Since(start), err)
		return nil, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		defer cancel()
		defer res.Body.Close()
		apiErr := errorFromResponse(res)
		log.Warn("%s %s -> %d: %s", method, path, res.StatusCode, apiErr.Message)
		return nil, apiErr
	}

	log.Debug("%s %s -> %d in %v", method, path, res.StatusCode, time.Since(start))
	// The deadline must outlive this call so the caller can read the body.
	res.Body = &cancelOnClose{ReadCloser: res.Body, cancel: cancel}
	return res, nil
}

// classify maps a transport failure to ErrCanceled or ErrTimeout where the
// context explains it.
func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &Error{Message: "Request timed out.", cause: fmt.Errorf("%w: %w", ErrTimeout, err)}
	case errors.Is(ctx.Err(), context.Canceled):
		return fmt.Errorf("%w: %w", ErrCanceled, context.Canceled)
	default:
		return &Error{Message: fmt.Sprintf("Network error: %v", unwrapURLError(err)), cause: err}
	}
}

// bodyError classifies a failure while reading a response body. The request
// deadline lives inside do, so its expiry shows only in err itself.
func bodyError(ctx context.Context, err error, what string) error {
	var ne net.Error
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return fmt.Errorf("%w: %w", ErrCanceled, context.Canceled)
	case errors.Is(ctx.Err(), context.DeadlineExceeded),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &ne) && ne.Timeout():
		return &Error{Message: "Request timed out.", cause: fmt.Errorf("%w: %w", ErrTimeout, err)}
	}
	return fmt.Errorf("%s: %w", what, err)
}

func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}
	return err
}

// cancelOnClose releases the request context when the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// errorFromResponse builds an *Error from a non-2xx response.
func errorFromResponse(res *http.Response) *Error {
	e := &Error{
		Status:  res.StatusCode,
		Message: fmt.Sprintf("Request failed (%d)", res.StatusCode),
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	if err != nil {
		return e
	}
	e.body = data

	if strings.Contains(res.Header.Get("Content-Type"), "application/json") {
		var body any
		if err := json.Unmarshal(data, &body); err != nil {
			return e
		}
		switch v := body.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				e.Message = v
			}
		case map[string]any:
			if msg, _ := v["message"].(string); msg != "" {
				e.Message = msg
			} else if msg, _ := v["error"].(string); msg != "" {
				e.Message = msg
			}
		}
		return e
	}

	if text := strings.TrimSpace(string(data)); text != "" {
		e.Message = text
	}
	return e
}
