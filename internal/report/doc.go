// Package report turns crawl results into output documents.
//
// This package contains writers for different output formats:
//   - CombinedWriter: the combined Markdown document, one section per page
//   - SummaryWriter: a Markdown crawl report with counts and a page table
//   - JSONWriter: structured JSON output for tool integration
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) to follow the single responsibility
// principle. This allows adding new output formats without modifying
// the core data structures.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
