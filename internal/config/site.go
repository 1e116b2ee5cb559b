package config

// SiteConfig holds site-specific configuration for a single host.
// This allows customizing crawl behavior per documentation site without
// repeating CLI flags, e.g. always rendering a JavaScript-heavy site or
// always attaching its cookie jar.
type SiteConfig struct {
	// CookieJar is the path to a JSON cookie-jar file to use when
	// crawling this site. See the "sitescribe cookies" command.
	CookieJar string `yaml:"cookieJar,omitempty"`

	// Render enables the headless-browser fetch strategy for this site.
	Render bool `yaml:"render,omitempty"`

	// PathPrefix overrides the path-prefix scope for this site.
	PathPrefix string `yaml:"pathPrefix,omitempty"`

	// MaxPages overrides the global page cap for this site.
	// If zero, the global value is used.
	MaxPages int `yaml:"maxPages,omitempty"`

	// DelayMs overrides the inter-request delay, in milliseconds.
	// If zero, the global value is used.
	DelayMs int `yaml:"delayMs,omitempty"`
}

// File represents the structure of the .sitescribe configuration file.
type File struct {
	// Sites maps hostnames to their site-specific configurations.
	// Keys are bare hostnames (e.g., "docs.example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific hostname.
// It merges the site-specific configuration with the defaults; non-zero
// site values win.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	siteConfig, ok := cf.Sites[host]
	if !ok {
		return result
	}

	if siteConfig.CookieJar != "" {
		result.CookieJar = siteConfig.CookieJar
	}
	if siteConfig.Render {
		result.Render = true
	}
	if siteConfig.PathPrefix != "" {
		result.PathPrefix = siteConfig.PathPrefix
	}
	if siteConfig.MaxPages > 0 {
		result.MaxPages = siteConfig.MaxPages
	}
	if siteConfig.DelayMs > 0 {
		result.DelayMs = siteConfig.DelayMs
	}
	return result
}
