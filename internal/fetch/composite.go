package fetch

import (
	"context"
	"errors"
	"log/slog"
)

// Client composes the rendered and static strategies into one Fetcher.
//
// When a rendered fetcher is configured it is tried first; if it fails
// with a *FetchError the same URL is retried once with the static
// strategy. The fallback is silent apart from a diagnostic log line: a
// statically served page usually carries the same content, and degrading
// one page beats aborting the whole crawl.
type Client struct {
	static   Fetcher
	rendered Fetcher
	logger   *slog.Logger
}

// NewClient creates a composite fetch client. rendered may be nil, in
// which case every fetch goes straight to the static strategy.
func NewClient(static, rendered Fetcher, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		static:   static,
		rendered: rendered,
		logger:   logger,
	}
}

// Fetch retrieves the page HTML using the configured strategies.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	if c.rendered == nil {
		return c.static.Fetch(ctx, url)
	}

	html, err := c.rendered.Fetch(ctx, url)
	if err == nil {
		return html, nil
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		// Not a page failure (e.g. cancellation); don't mask it with
		// a second attempt.
		return "", err
	}

	c.logger.Warn("rendered fetch failed, falling back to static",
		"url", url,
		"error", err)
	return c.static.Fetch(ctx, url)
}
