package fetch

import "fmt"

// Strategy identifies which fetch strategy produced a result or error.
type Strategy string

// Fetch strategies.
const (
	// StrategyStatic is a plain HTTP GET without script execution.
	StrategyStatic Strategy = "static"

	// StrategyRendered loads the page in a headless browser and captures
	// the markup after scripts have run.
	StrategyRendered Strategy = "rendered"
)

// FetchError represents a failure to retrieve a page.
//
// Design decision: We use a typed error rather than opaque wrapped errors
// because the crawl engine treats fetch failures specially (log and
// continue) while the composite fetcher needs to distinguish "the rendered
// strategy failed on this URL" (fall back to static) from programming or
// context errors (propagate).
type FetchError struct {
	// URL is the URL whose fetch failed.
	URL string

	// Strategy is the fetch strategy that failed.
	Strategy Strategy

	// StatusCode is the HTTP status code, when the failure was an
	// unacceptable response status. Zero otherwise.
	StatusCode int

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s fetch %s: unexpected status %d", e.Strategy, e.URL, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s fetch %s: %v", e.Strategy, e.URL, e.Err)
	}
	return fmt.Sprintf("%s fetch %s failed", e.Strategy, e.URL)
}

// Unwrap returns the underlying error for errors.Is/errors.As chains.
func (e *FetchError) Unwrap() error {
	return e.Err
}
