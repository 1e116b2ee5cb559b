// Package main provides the entry point for the SiteScribe CLI.
//
// SiteScribe crawls a documentation site from a seed URL and concatenates
// the main content of every in-scope page into one Markdown document.
//
// Usage:
//
//	sitescribe crawl https://docs.example.com/guide/
//	sitescribe crawl --render --cookies session.json https://docs.example.com/
//
// See --help for all available options.
package main

// main is the entry point for SiteScribe.
func main() {
	Execute()
}
