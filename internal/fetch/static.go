package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

// Fetcher retrieves the HTML of a single page.
type Fetcher interface {
	// Fetch returns the page HTML for the given URL.
	// Failures to retrieve the page are reported as *FetchError.
	Fetch(ctx context.Context, url string) (string, error)
}

// Static fetcher defaults. These match the CLI defaults in the config
// package; they are duplicated here so the fetcher is usable standalone.
const (
	defaultTimeout     = 15 * time.Second
	defaultUserAgent   = "SiteScribe/1.0 (+https://github.com/nao1215/sitescribe)"
	defaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// StaticFetcher retrieves pages with a plain HTTP GET.
// It does not execute scripts; the markup is captured exactly as served.
type StaticFetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
}

// StaticOption configures a StaticFetcher.
type StaticOption func(*StaticFetcher)

// WithHTTPClient sets a custom HTTP client. Useful for tests and for
// callers that need proxy or transport settings.
func WithHTTPClient(client *http.Client) StaticOption {
	return func(f *StaticFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) StaticOption {
	return func(f *StaticFetcher) {
		if timeout > 0 {
			f.client.Timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) StaticOption {
	return func(f *StaticFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize limits how many bytes of the response body are read.
func WithMaxBodySize(n int64) StaticOption {
	return func(f *StaticFetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// NewStaticFetcher creates a StaticFetcher with the given options.
func NewStaticFetcher(opts ...StaticOption) *StaticFetcher {
	f := &StaticFetcher{
		client:      &http.Client{Timeout: defaultTimeout},
		userAgent:   defaultUserAgent,
		maxBodySize: defaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs the HTTP GET and returns the decoded body.
// Redirects are followed by the underlying client; any final status outside
// 200-399 is reported as a *FetchError carrying the status code. The body
// is decoded to UTF-8 based on the Content-Type charset when one is
// declared.
func (f *StaticFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Strategy: StrategyStatic, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusBadRequest {
		return "", &FetchError{URL: url, Strategy: StrategyStatic, StatusCode: resp.StatusCode}
	}

	limited := io.LimitReader(resp.Body, f.maxBodySize)
	decoded, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", &FetchError{URL: url, Strategy: StrategyStatic, Err: err}
	}

	body, err := io.ReadAll(decoded)
	if err != nil {
		return "", &FetchError{URL: url, Strategy: StrategyStatic, Err: err}
	}
	return string(body), nil
}
