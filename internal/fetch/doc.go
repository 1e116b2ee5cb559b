// Package fetch retrieves page HTML for the crawler.
//
// Two strategies are provided. StaticFetcher performs a plain HTTP GET and
// is the default. Renderer drives a headless Chrome instance so pages that
// build their content with JavaScript can be captured after rendering; it
// can reuse one browser session across a whole crawl and seed it with a
// cookie jar for authenticated access.
//
// Client composes the two: when rendering is enabled it tries the rendered
// strategy first and silently falls back to a static fetch if rendering
// fails, so a crashed or missing browser degrades a crawl instead of
// aborting it.
package fetch
