package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These mirror the defaults advertised in the CLI help text; keeping them
// here makes them available to both the flag definitions and tests.
const (
	// DefaultOutputFile is the default path for the combined Markdown document.
	DefaultOutputFile = "combined.md"

	// DefaultMaxPages limits how many pages a single crawl may collect.
	// 200 pages covers most documentation sites while preventing runaway
	// crawls on large or infinitely-generating sites.
	DefaultMaxPages = 200

	// DefaultDelay is the pause between requests during crawling.
	// This is a politeness setting toward the remote server, not a
	// correctness requirement. 500ms keeps the crawl well under typical
	// rate limits without making small crawls feel slow.
	DefaultDelay = 500 * time.Millisecond

	// DefaultFetchTimeout bounds a single static HTTP fetch.
	DefaultFetchTimeout = 15 * time.Second

	// DefaultRenderTimeout bounds a single rendered (headless browser)
	// fetch. Rendering waits for scripts to settle, so it gets twice the
	// static budget.
	DefaultRenderTimeout = 30 * time.Second

	// DefaultUserAgent identifies SiteScribe in HTTP requests.
	// A descriptive User-Agent lets site operators identify crawler
	// traffic in their logs.
	DefaultUserAgent = "SiteScribe/1.0 (+https://github.com/nao1215/sitescribe)"

	// DefaultBatchSize is the number of seeds crawled concurrently when
	// multiple seed URLs are given. Each individual crawl is still strictly
	// sequential; only independent crawls overlap.
	DefaultBatchSize = 4

	// DefaultMaxBodySize limits the response body size read per page.
	// 5MB is generous for HTML while preventing memory exhaustion from
	// unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "sitescribe"
)

// Config holds all configuration options for a SiteScribe run.
// It is populated from CLI flags (and optionally a .sitescribe file) and
// passed through the application via dependency injection rather than
// global state. The configuration is immutable once a crawl starts.
type Config struct {
	// Seeds are the URLs to start crawling from. Each seed produces its
	// own independent crawl and its own output document.
	Seeds []string

	// OutputFile is the path for the combined Markdown document.
	// When multiple seeds are given, a per-seed name is derived from it.
	OutputFile string

	// MaxPages is the maximum number of pages to collect per crawl.
	MaxPages int

	// Delay is the pause between requests within one crawl.
	Delay time.Duration

	// PathPrefix restricts the crawl to URLs whose path starts with this
	// prefix. When empty, the seed URL's own path is used, so by default
	// a crawl never leaves the seed's path subtree.
	PathPrefix string

	// Render enables the headless-browser fetch strategy. Pages are
	// rendered with their scripts executed before the markup is captured;
	// on rendering failure the crawl transparently falls back to a plain
	// HTTP fetch for that URL.
	Render bool

	// CookieJarPath is the path to a JSON cookie-jar file, typically
	// produced by "sitescribe cookies". The jar is forwarded opaquely to
	// the rendered fetch strategy for authenticated access.
	CookieJarPath string

	// UserAgent is the User-Agent header sent with static HTTP requests.
	UserAgent string

	// FetchTimeout bounds each static HTTP fetch.
	FetchTimeout time.Duration

	// RenderTimeout bounds each rendered fetch.
	RenderTimeout time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// BatchSize is the number of concurrent crawls when multiple seeds
	// are given. A value of 1 forces fully sequential operation.
	BatchSize int

	// Summary enables writing a Markdown crawl-summary report next to
	// each combined document.
	Summary bool

	// JSONResult enables writing the raw crawl result as JSON next to
	// each combined document, for tool integration.
	JSONResult bool

	// NoHistory disables recording completed crawls in the local
	// history database.
	NoHistory bool

	// HistoryDir is the directory holding the history database.
	// Defaults to the XDG data directory.
	HistoryDir string

	// ConfigFilePath is the path to the .sitescribe configuration file.
	// If empty, the tool searches the current directory and then the
	// user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File

	// Verbose enables debug-level log output.
	Verbose bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults; callers override
// specific values from CLI flags after creation.
func NewConfig() *Config {
	return &Config{
		OutputFile:    DefaultOutputFile,
		MaxPages:      DefaultMaxPages,
		Delay:         DefaultDelay,
		UserAgent:     DefaultUserAgent,
		FetchTimeout:  DefaultFetchTimeout,
		RenderTimeout: DefaultRenderTimeout,
		MaxBodySize:   DefaultMaxBodySize,
		BatchSize:     DefaultBatchSize,
		HistoryDir:    XDGDataDir(),
	}
}

// Validate checks the configuration for invalid values.
// It returns one of the package-level sentinel errors so callers can use
// errors.Is for programmatic handling.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	if c.FetchTimeout <= 0 || c.RenderTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}

// XDGDataDir returns the XDG data directory for SiteScribe.
// On Linux: ~/.local/share/sitescribe
// On macOS: ~/Library/Application Support/sitescribe
// On Windows: %LOCALAPPDATA%\sitescribe
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}
