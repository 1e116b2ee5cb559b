package crawler

import (
	"net/url"
	"strings"
)

// Scope decides which URLs a crawl is allowed to visit.
//
// A URL is in scope when it has the same authority (host and port) as the
// seed and its path starts with the configured prefix. Scope never changes
// during a crawl, and its checks are pure: they neither fetch nor record
// anything.
type Scope struct {
	// host is the seed's authority, compared case-insensitively.
	host string

	// prefix is the path prefix in-scope URLs must start with.
	prefix string
}

// NewScope builds the scope for a crawl. When pathPrefix is empty, the
// seed URL's own path becomes the prefix, so a crawl started at
// /guide/intro stays under /guide/intro by default. A full URL may be
// given as the prefix; only its path component is used.
func NewScope(seedURL, pathPrefix string) (*Scope, error) {
	seed, err := url.Parse(seedURL)
	if err != nil {
		return nil, err
	}

	prefix := pathPrefix
	if prefix == "" {
		prefix = seed.Path
	} else if p, err := url.Parse(prefix); err == nil && p.Host != "" {
		prefix = p.Path
	}

	return &Scope{
		host:   seed.Host,
		prefix: prefix,
	}, nil
}

// PathPrefix returns the effective path prefix of the scope.
func (s *Scope) PathPrefix() string {
	return s.prefix
}

// Contains reports whether the URL is within the crawl scope.
// Unparsable URLs are out of scope.
//
// The prefix check is a plain string prefix, not a path-segment match:
// a prefix of /docs also admits /docs2/page. Sites that need a strict
// segment boundary can pass a prefix ending in "/".
func (s *Scope) Contains(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	if !strings.EqualFold(u.Host, s.host) {
		return false
	}
	return strings.HasPrefix(u.Path, s.prefix)
}
