package cookie

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
)

// Cookie is one entry of a cookie-jar file.
//
// The on-disk format is a JSON array of these records. The field set is the
// common denominator of browser session exports: unknown fields in a jar are
// ignored, and Expires tolerates fractional epoch seconds so jars exported
// by other tooling load unchanged.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	SameSite string  `json:"sameSite,omitempty"`
}

// Jar is a set of cookies captured from one browser session.
type Jar []Cookie

// LoadJar reads a JSON cookie-jar file from disk.
func LoadJar(path string) (Jar, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided jar path is intentional
	if err != nil {
		return nil, fmt.Errorf("read cookie jar: %w", err)
	}

	var jar Jar
	if err := json.Unmarshal(data, &jar); err != nil {
		return nil, fmt.Errorf("parse cookie jar %s: %w", path, err)
	}
	return jar, nil
}

// WriteJar writes the jar to path as indented JSON.
// The file is created with owner-only permissions since session cookies
// grant access to the account they were captured from.
func WriteJar(path string, jar Jar) error {
	data, err := json.MarshalIndent(jar, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cookie jar: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write cookie jar: %w", err)
	}
	return nil
}

// Params converts the jar to Chrome DevTools Protocol cookie parameters,
// the shape network.SetCookies expects when seeding a browser session.
// Entries with a non-positive expiry are treated as session cookies.
func (j Jar) Params() []*network.CookieParam {
	params := make([]*network.CookieParam, 0, len(j))
	for _, c := range j {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires > 0 {
			sec := int64(c.Expires)
			nsec := int64((c.Expires - float64(sec)) * float64(time.Second))
			expires := cdp.TimeSinceEpoch(time.Unix(sec, nsec))
			p.Expires = &expires
		}
		if c.SameSite != "" {
			p.SameSite = network.CookieSameSite(c.SameSite)
		}
		params = append(params, p)
	}
	return params
}

// FromNetworkCookies converts cookies reported by the DevTools protocol
// into a jar. Used by the interactive cookie-capture command after the
// user has logged in.
func FromNetworkCookies(cookies []*network.Cookie) Jar {
	jar := make(Jar, 0, len(cookies))
	for _, c := range cookies {
		jar = append(jar, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}
	return jar
}
