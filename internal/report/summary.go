package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/nao1215/sitescribe/internal/model"
)

// SummaryWriter outputs a Markdown crawl report: counts, timing, and a
// table of the collected pages. This format is designed for sharing crawl
// provenance next to the combined document.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
//  1. Type-safe markdown generation
//  2. Support for tables, lists, and code blocks
//  3. GitHub-flavored markdown alerts
type SummaryWriter struct {
	baseWriter
}

// NewSummaryWriter creates a SummaryWriter that outputs to the given writer.
func NewSummaryWriter(output io.Writer) *SummaryWriter {
	return &SummaryWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the crawl summary in Markdown format.
func (w *SummaryWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writePages(md, result)
	w.writeFailures(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the summary header with crawl information.
func (w *SummaryWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("Crawl Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed", "`" + result.Seed + "`"},
			{"Started", result.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", result.Duration.Round(time.Millisecond).String()},
			{"Pages Collected", strconv.Itoa(result.PageCount())},
			{"URLs Visited", strconv.Itoa(result.URLsVisited)},
			{"Failed Fetches", strconv.Itoa(len(result.FailedURLs))},
			{"Status", w.statusText(result)},
		},
	})
	md.PlainText("")
}

// statusText returns the status text based on the crawl outcome.
func (w *SummaryWriter) statusText(result *model.CrawlResult) string {
	if result.Error != "" {
		return "❌ Error - " + result.Error
	}
	if result.Empty() {
		return "⚠️ No pages collected"
	}
	return "✅ Complete"
}

// writePages writes the table of collected pages in crawl order.
func (w *SummaryWriter) writePages(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Pages")
	md.PlainText("")

	if result.Empty() {
		md.PlainText("No pages were collected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(result.Pages))
	for i, page := range result.Pages {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			truncateString(page.Title, 60),
			"`" + truncateString(page.URL, 80) + "`",
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "Title", "URL"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFailures lists URLs whose fetch failed, if any.
func (w *SummaryWriter) writeFailures(md *markdown.Markdown, result *model.CrawlResult) {
	if len(result.FailedURLs) == 0 {
		return
	}

	md.H2("Failed Fetches")
	md.PlainText("")
	md.BulletList(result.FailedURLs...)
	md.PlainText("")
}

// writeFooter writes the summary footer.
func (w *SummaryWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [SiteScribe](https://github.com/nao1215/sitescribe)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
