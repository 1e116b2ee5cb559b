package report

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/nao1215/sitescribe/internal/model"
)

// sectionSeparator divides page sections in the combined document. The
// horizontal rule keeps page boundaries visible in rendered Markdown.
const sectionSeparator = "\n\n---\n\n"

// CombinedWriter outputs the combined Markdown document: every collected
// page converted to Markdown and concatenated in crawl order.
//
// Each page becomes a section of the form
//
//	# <title>
//
//	Source: <url>
//
//	<markdown body>
//
// so readers can always trace a passage back to its origin page.
type CombinedWriter struct {
	baseWriter

	logger *slog.Logger
}

// NewCombinedWriter creates a CombinedWriter that outputs to the given
// writer. A nil logger falls back to slog.Default().
func NewCombinedWriter(output io.Writer, logger *slog.Logger) *CombinedWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CombinedWriter{
		baseWriter: newBaseWriter(output),
		logger:     logger,
	}
}

// Write renders the combined document for the crawl result.
//
// A page whose HTML cannot be converted keeps its section with an empty
// body rather than dropping out: the heading and source line preserve the
// record that the page was crawled.
func (w *CombinedWriter) Write(result *model.CrawlResult) (int, error) {
	sections := make([]string, 0, len(result.Pages))
	for _, page := range result.Pages {
		body, err := htmltomarkdown.ConvertString(page.ContentHTML)
		if err != nil {
			w.logger.Warn("markdown conversion failed, emitting empty section",
				"url", page.URL,
				"error", err)
			body = ""
		}
		sections = append(sections, fmt.Sprintf("# %s\n\nSource: %s\n\n%s", page.Title, page.URL, body))
	}

	return w.output.Write([]byte(strings.Join(sections, sectionSeparator)))
}
