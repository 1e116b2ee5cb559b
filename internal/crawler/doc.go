// Package crawler implements the breadth-first site crawl.
//
// The Spider walks pages from a seed URL through a FIFO frontier, keeping
// the crawl inside a Scope (same authority, path prefix) and collecting
// each page's primary content. Fetching is delegated to the fetch package
// and content extraction to the content package; this package owns only
// the traversal semantics: visit ordering, deduplication, the page cap,
// and the politeness delay.
package crawler
