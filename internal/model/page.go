package model

import "time"

// Page represents one successfully fetched page of a crawl.
// A Page is created exactly once per fetched URL and is immutable after
// creation; the crawler appends pages in fetch-completion order.
type Page struct {
	// URL is the absolute URL the page was fetched from.
	URL string `json:"url"`

	// Title is the page title from the <title> tag, trimmed.
	// When a page has no title, the crawler substitutes the URL so that
	// every section of the combined document has a usable heading.
	Title string `json:"title"`

	// ContentHTML is the HTML fragment judged to be the page's primary
	// content region. It is the raw extracted markup, not yet converted
	// to Markdown; conversion happens in the report package.
	ContentHTML string `json:"content_html"`
}

// CrawlResult holds everything produced by a single crawl invocation.
//
// Design decision: The crawler returns one value object rather than
// exposing its internal frontier/visited state because:
//  1. All crawl state is scoped to one invocation; nothing leaks out
//  2. Report writers and the history database consume the same shape
//  3. Multiple crawls can run in the same process without shared state
type CrawlResult struct {
	// Seed is the URL the crawl started from.
	Seed string `json:"seed"`

	// Pages are the successfully fetched pages in fetch-completion order,
	// which is breadth-first discovery order.
	Pages []Page `json:"pages"`

	// URLsVisited is the number of distinct URLs that were dequeued and
	// processed, including ones that failed to fetch. Always >= len(Pages).
	URLsVisited int `json:"urls_visited"`

	// FailedURLs are URLs whose fetch failed. They are recorded for
	// diagnostics only; a fetch failure never aborts the crawl.
	FailedURLs []string `json:"failed_urls,omitempty"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total wall-clock time of the crawl.
	Duration time.Duration `json:"duration"`

	// Error holds a crawl-level error message, if any. Per-URL fetch
	// failures do not set this; it is reserved for problems such as an
	// unparsable seed URL or cancellation.
	Error string `json:"error,omitempty"`
}

// PageCount returns the number of pages collected.
func (r *CrawlResult) PageCount() int {
	return len(r.Pages)
}

// Empty reports whether the crawl produced no pages.
// A crawl whose seed fails to fetch ends empty but without error.
func (r *CrawlResult) Empty() bool {
	return len(r.Pages) == 0
}
