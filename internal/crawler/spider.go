package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/sitescribe/internal/content"
	"github.com/nao1215/sitescribe/internal/fetch"
	"github.com/nao1215/sitescribe/internal/model"
)

// Spider crawls a site breadth-first from a seed URL and collects the
// primary content of each in-scope page.
//
// Design decision: We call it "Spider" rather than "Crawler" because:
//  1. "Spider" is the traditional term for web crawlers
//  2. Distinguishes the component from the package name
//  3. Clearer in code: crawler.NewSpider() vs crawler.NewCrawler()
type Spider struct {
	// fetcher retrieves page HTML. Usually a fetch.Client so rendered
	// crawls degrade to static fetches per page instead of failing.
	fetcher fetch.Fetcher

	// maxPages limits the total number of pages collected per crawl.
	// This prevents runaway crawling on large sites.
	maxPages int

	// delay is the time to wait between requests.
	// This is a politeness setting to avoid overwhelming servers.
	delay time.Duration

	// pathPrefix restricts the crawl scope. Empty means "the seed's own
	// path".
	pathPrefix string

	// logger receives crawl diagnostics.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxPages sets the maximum number of pages to collect.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		if maxPages > 0 {
			s.maxPages = maxPages
		}
	}
}

// WithDelay sets the delay between requests.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithPathPrefix restricts the crawl to URLs whose path starts with the
// given prefix.
func WithPathPrefix(prefix string) SpiderOption {
	return func(s *Spider) {
		s.pathPrefix = prefix
	}
}

// WithLogger sets the logger for crawl diagnostics.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSpider creates a new Spider using the given fetcher.
//
// Design decision: We require an external fetcher because:
//  1. Strategy selection (static vs rendered) is the fetch package's job
//  2. One browser session can be shared across a whole crawl
//  3. Tests can substitute an httptest-backed or stub fetcher
func NewSpider(fetcher fetch.Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:  fetcher,
		maxPages: 200,
		delay:    500 * time.Millisecond,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Crawl walks the site breadth-first from the seed URL and returns the
// collected pages.
//
// The crawl is strictly sequential: one URL is fetched at a time and the
// politeness delay separates consecutive fetches. A URL that fails to
// fetch is logged and recorded but never aborts the crawl; in particular,
// a seed that fails to fetch yields an empty result without error. The
// returned error is reserved for an unusable seed URL or context
// cancellation.
//
// All crawl state (frontier, visited set) is local to one invocation, so
// a single Spider can serve many crawls, concurrently if needed.
func (s *Spider) Crawl(ctx context.Context, seedURL string) (*model.CrawlResult, error) {
	started := time.Now()
	result := &model.CrawlResult{
		Seed:      seedURL,
		Pages:     make([]model.Page, 0),
		StartedAt: started,
	}

	scope, err := NewScope(seedURL, s.pathPrefix)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL %q: %w", seedURL, err)
	}

	// frontier is the FIFO work queue; queued mirrors its membership so
	// a URL discovered twice before being processed is enqueued once.
	frontier := []string{seedURL}
	queued := map[string]bool{seedURL: true}
	visited := make(map[string]bool)

	for len(frontier) > 0 && len(result.Pages) < s.maxPages {
		select {
		case <-ctx.Done():
			result.Duration = time.Since(started)
			return result, ctx.Err()
		default:
		}

		current := frontier[0]
		frontier = frontier[1:]
		delete(queued, current)

		if visited[current] {
			continue
		}
		// Out-of-scope URLs are discarded without being marked visited;
		// only fetch attempts count as visits.
		if !scope.Contains(current) {
			continue
		}

		s.logger.Debug("fetching page", "url", current)
		pageHTML, err := s.fetcher.Fetch(ctx, current)
		visited[current] = true
		result.URLsVisited++

		if err != nil {
			result.FailedURLs = append(result.FailedURLs, current)
			s.logger.Warn("fetch failed, skipping page", "url", current, "error", err)
		} else {
			title := content.Title(pageHTML)
			if title == "" {
				title = current
			}
			result.Pages = append(result.Pages, model.Page{
				URL:         current,
				Title:       title,
				ContentHTML: content.Extract(pageHTML),
			})

			for _, link := range ExtractLinks(current, pageHTML) {
				if !visited[link] && !queued[link] && scope.Contains(link) {
					frontier = append(frontier, link)
					queued[link] = true
				}
			}
		}

		// Politeness delay before the next request.
		if s.delay > 0 && len(frontier) > 0 && len(result.Pages) < s.maxPages {
			select {
			case <-ctx.Done():
				result.Duration = time.Since(started)
				return result, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}

	result.Duration = time.Since(started)
	return result, nil
}
