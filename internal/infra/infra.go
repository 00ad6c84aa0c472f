// Package infra provides shared infrastructure components used across
// the application: the HTTP client used by remote sources and logger setup.
package infra

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "donutreport/1.0 (+https://github.com/seenimoa/donutreport)"

// ErrHTTP wraps a non-2xx response.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// HTTPOptions configures an HTTPClient.
type HTTPOptions struct {
	Timeout      time.Duration // per attempt (default: 30s)
	Retries      int           // extra attempts on transport errors, 429 and 5xx
	RetryWait    time.Duration // initial backoff (default: 500ms)
	RetryMaxWait time.Duration // backoff cap (default: 5s)
}

// HTTPClient is a thin wrapper over resty with retry and error mapping.
type HTTPClient struct {
	client *resty.Client
}

// NewHTTPClient creates a client with the given options.
func NewHTTPClient(opts HTTPOptions) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 500 * time.Millisecond
	}
	if opts.RetryMaxWait <= 0 {
		opts.RetryMaxWait = 5 * time.Second
	}

	c := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", DefaultUserAgent).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.RetryMaxWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			code := r.StatusCode()
			return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
		})
	return &HTTPClient{client: c}
}

// Get fetches url and returns the response body. Non-2xx responses are
// returned as *ErrHTTP with the body truncated for diagnostics.
func (h *HTTPClient) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	res, err := h.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if res.IsError() {
		return nil, &ErrHTTP{
			StatusCode: res.StatusCode(),
			Status:     http.StatusText(res.StatusCode()),
			Body:       truncate(res.String(), 200),
		}
	}
	return res.Body(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
