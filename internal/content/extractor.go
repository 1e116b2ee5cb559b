package content

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentSelectors identify likely primary-content containers, in priority
// order. Semantic HTML5 elements come first; the div selectors cover the
// class and id conventions of popular documentation themes.
var contentSelectors = []string{
	"main",
	"article",
	"div.doc-content",
	"div.content",
	"div#content",
	"div.article-body",
}

// Extract returns the HTML of the page's primary content region.
//
// The first selector in the cascade that matches wins; when several
// elements match one selector, the first in document order is used. Pages
// with no recognized container fall back to the body element, and markup
// so broken that not even a body can be found is returned whole. Extraction
// is deterministic: identical input yields identical output.
func Extract(htmlContent string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if out, err := goquery.OuterHtml(sel); err == nil {
			return out
		}
	}

	if body := doc.Find("body").First(); body.Length() > 0 {
		if out, err := goquery.OuterHtml(body); err == nil {
			return out
		}
	}

	if out, err := doc.Html(); err == nil {
		return out
	}
	return htmlContent
}

// Title returns the page title from the <title> element, trimmed of
// surrounding whitespace. It returns an empty string when the page has no
// title; choosing a substitute is the caller's concern since only the
// caller knows the page URL.
func Title(htmlContent string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
