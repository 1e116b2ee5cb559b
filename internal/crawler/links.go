package crawler

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// skipLinkSubstrings are href fragments that mark links not worth
// crawling. Authentication pages carry no documentation content and
// frequently redirect or set cookies, and anything carrying a "#" is an
// in-page anchor whose target document is reachable through its plain
// form.
var skipLinkSubstrings = []string{
	"sign_in",
	"login",
	"logout",
	"recover",
	"reset",
	"register",
	"#",
}

// ExtractLinks returns the absolute URLs of the crawlable links on a page.
//
// Only <a href> links are considered. Hrefs matching skipLinkSubstrings
// (case-insensitive) and non-HTTP schemes are dropped, the rest are
// resolved against the page URL with fragments stripped. The result is
// deduplicated, preserving document order.
//
// Design decision: We use golang.org/x/net/html rather than regex because
// it correctly handles the malformed HTML common on real sites and gives a
// proper DOM-like structure to walk.
func ExtractLinks(pageURL, htmlContent string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	links := make([]string, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if resolved := resolveLink(base, getAttr(n, "href")); resolved != "" && !seen[resolved] {
				seen[resolved] = true
				links = append(links, resolved)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links
}

// resolveLink turns one href into an absolute crawl candidate, or returns
// an empty string when the link should be skipped.
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	lower := strings.ToLower(href)
	for _, substr := range skipLinkSubstrings {
		if strings.Contains(lower, substr) {
			return ""
		}
	}

	if strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "data:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(u)
	resolved.Fragment = ""
	return resolved.String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
