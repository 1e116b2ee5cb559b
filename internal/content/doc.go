// Package content locates the primary content region of a fetched page.
//
// Documentation pages wrap their substance in navigation, sidebars, and
// footers. This package applies a cascade of selectors that match the
// content containers used by common documentation generators and returns
// the first hit, so the combined document carries prose rather than chrome.
package content
