package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescribe/internal/config"
	"github.com/nao1215/sitescribe/internal/cookie"
	"github.com/nao1215/sitescribe/internal/crawler"
	"github.com/nao1215/sitescribe/internal/database"
	"github.com/nao1215/sitescribe/internal/fetch"
	"github.com/nao1215/sitescribe/internal/log"
	"github.com/nao1215/sitescribe/internal/model"
	"github.com/nao1215/sitescribe/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url]",
		Short: "Crawl a site and combine its pages into one Markdown document",
		Long: `Crawl walks a website breadth-first from the seed URL, extracts the main
content of every page, and writes one combined Markdown document.

The crawl stays on the seed's host and only follows links under the path
prefix (the seed's own path by default). Pages are fetched one at a time
with a politeness delay between requests.

Examples:
  # Crawl a documentation section into combined.md
  sitescribe crawl https://docs.example.com/guide/

  # Render JavaScript-built pages with a headless browser
  sitescribe crawl --render https://docs.example.com/guide/

  # Crawl an authenticated site with a captured cookie jar
  sitescribe crawl --render --cookies session.json https://docs.example.com/

  # Widen the scope beyond the seed's path
  sitescribe crawl --path-prefix / https://docs.example.com/guide/intro

  # Crawl multiple sites concurrently
  sitescribe crawl https://docs.a.example/ https://docs.b.example/

Configuration file (.sitescribe) example:
  defaults:
    delayMs: 500
  sites:
    docs.example.com:
      render: true
      cookieJar: session.json
      maxPages: 500`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile,
		"Path for the combined Markdown document")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to collect per crawl")
	cmd.Flags().DurationP("delay", "d", config.DefaultDelay,
		"Delay between requests within one crawl")
	cmd.Flags().String("path-prefix", "",
		"Restrict the crawl to URLs under this path prefix (default: the seed's path)")

	// Fetch strategy flags
	cmd.Flags().BoolP("render", "r", false,
		"Render pages with a headless browser before extraction")
	cmd.Flags().String("cookies", "",
		"Cookie jar file for authenticated crawling (see 'sitescribe cookies')")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Timeout for each static HTTP fetch")
	cmd.Flags().Duration("render-timeout", config.DefaultRenderTimeout,
		"Timeout for each rendered fetch")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")

	// Batch crawling flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent crawls when multiple seeds are given")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitescribe in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("summary", "s", false,
		"Write a Markdown crawl summary next to the combined document")
	cmd.Flags().BoolP("json", "j", false,
		"Also write the raw crawl result as JSON next to the combined document")
	cmd.Flags().Bool("no-history", false,
		"Do not record this crawl in the local history database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with cookie/credential redaction
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.OutputFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Delay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.PathPrefix, err = cmd.Flags().GetString("path-prefix")
	if err != nil {
		return nil, err
	}

	cfg.Render, err = cmd.Flags().GetBool("render")
	if err != nil {
		return nil, err
	}

	cfg.CookieJarPath, err = cmd.Flags().GetString("cookies")
	if err != nil {
		return nil, err
	}

	cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.RenderTimeout, err = cmd.Flags().GetDuration("render-timeout")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.Summary, err = cmd.Flags().GetBool("summary")
	if err != nil {
		return nil, err
	}

	cfg.JSONResult, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.NoHistory, err = cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	// Get positional arguments (seed URLs)
	cfg.Seeds = args

	return cfg, nil
}

// runCrawl executes the crawl for every configured seed.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"seeds", cfg.Seeds,
		"render", cfg.Render,
		"maxPages", cfg.MaxPages,
		"batchSize", cfg.BatchSize,
	)

	// Open the history database unless recording is disabled
	var db *database.CrawlDB
	if !cfg.NoHistory {
		var err error
		db, err = database.Open(cfg.HistoryDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		logger.Info("history database opened", "dir", cfg.HistoryDir)
	}

	// Use the batch processor for parallel crawling if multiple seeds
	if len(cfg.Seeds) > 1 && cfg.BatchSize > 1 {
		return runBatchCrawl(ctx, cfg, db, logger)
	}

	// Single seed or sequential crawling
	return runSequentialCrawl(ctx, cfg, db, logger)
}

// runSequentialCrawl crawls seeds one at a time.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, db *database.CrawlDB, logger *slog.Logger) error {
	for _, seed := range cfg.Seeds {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Printf("Crawling %s...\n", seed)
		startTime := time.Now()

		result, err := crawlSeed(ctx, cfg, seed, logger)
		if err != nil {
			logger.Error("crawl failed", "seed", seed, "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", seed, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Crawl completed in %s: %d pages collected, %d URLs visited\n\n",
			elapsed.Round(time.Millisecond), result.PageCount(), result.URLsVisited)

		outputFile := outputFileForSeed(cfg, seed)
		if err := writeOutputs(cfg, result, outputFile); err != nil {
			logger.Error("output failed", "seed", seed, "error", err)
		}

		if err := saveCrawlResult(ctx, db, result, outputFile, logger); err != nil {
			logger.Error("failed to save crawl history", "seed", seed, "error", err)
		}
	}

	return nil
}

// runBatchCrawl crawls multiple seeds concurrently using BatchProcessor.
// Each seed still gets its own strictly sequential crawl (and its own
// browser session when rendering); only crawls of different seeds overlap.
func runBatchCrawl(ctx context.Context, cfg *config.Config, db *database.CrawlDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d seeds (concurrency: %d)...\n\n",
		len(cfg.Seeds), cfg.BatchSize)

	startTime := time.Now()

	bp := crawler.NewBatchProcessor(
		func(ctx context.Context, seed string) (*model.CrawlResult, error) {
			return crawlSeed(ctx, cfg, seed, logger)
		},
		cfg.BatchSize,
	)

	results := bp.Run(ctx, cfg.Seeds)

	for i, result := range results {
		seed := cfg.Seeds[i]
		if result == nil {
			continue
		}
		if result.Error != "" {
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %s\n", seed, result.Error)
			continue
		}

		fmt.Printf("[%d/%d] Crawl completed: %s (%d pages)\n",
			i+1, len(results), seed, result.PageCount())

		outputFile := outputFileForSeed(cfg, seed)
		if err := writeOutputs(cfg, result, outputFile); err != nil {
			logger.Error("output failed", "seed", seed, "error", err)
		}

		if err := saveCrawlResult(ctx, db, result, outputFile, logger); err != nil {
			logger.Error("failed to save crawl history", "seed", seed, "error", err)
		}
	}

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch crawl completed in %s\n", elapsed.Round(time.Millisecond))

	return nil
}

// crawlSeed performs the crawl for one seed URL with its effective
// (flag plus site-config) settings. When rendering is enabled a browser
// session is launched for the duration of this one crawl.
func crawlSeed(ctx context.Context, cfg *config.Config, seed string, logger *slog.Logger) (*model.CrawlResult, error) {
	site := siteConfigFor(cfg, seed)

	maxPages := cfg.MaxPages
	if site.MaxPages > 0 {
		maxPages = site.MaxPages
	}
	delay := cfg.Delay
	if site.DelayMs > 0 {
		delay = time.Duration(site.DelayMs) * time.Millisecond
	}
	pathPrefix := cfg.PathPrefix
	if pathPrefix == "" && site.PathPrefix != "" {
		pathPrefix = site.PathPrefix
	}

	fetcher, cleanup, err := newFetcher(ctx, cfg, site, logger)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	spider := crawler.NewSpider(fetcher,
		crawler.WithMaxPages(maxPages),
		crawler.WithDelay(delay),
		crawler.WithPathPrefix(pathPrefix),
		crawler.WithLogger(logger),
	)

	return spider.Crawl(ctx, seed)
}

// newFetcher builds the fetch strategy for one crawl: a static HTTP
// fetcher, optionally fronted by a headless-browser renderer that shares
// one session (and its cookies) across the whole crawl.
func newFetcher(ctx context.Context, cfg *config.Config, site config.SiteConfig, logger *slog.Logger) (fetch.Fetcher, func(), error) {
	static := fetch.NewStaticFetcher(
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
	)

	render := cfg.Render || site.Render
	if !render {
		return fetch.NewClient(static, nil, logger), func() {}, nil
	}

	sessionOpts := []fetch.SessionOption{
		fetch.WithSessionUserAgent(cfg.UserAgent),
	}

	jarPath := cfg.CookieJarPath
	if jarPath == "" {
		jarPath = site.CookieJar
	}
	if jarPath != "" {
		jar, err := cookie.LoadJar(jarPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load cookie jar: %w", err)
		}
		sessionOpts = append(sessionOpts, fetch.WithCookies(jar.Params()))
		logger.Info("cookie jar loaded", "path", jarPath, "cookies", len(jar))
	}

	session, err := fetch.NewSession(ctx, sessionOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start browser session: %w", err)
	}

	renderer := fetch.NewRenderer(
		fetch.WithSession(session),
		fetch.WithRenderTimeout(cfg.RenderTimeout),
	)

	return fetch.NewClient(static, renderer, logger), session.Close, nil
}

// siteConfigFor returns the site-specific configuration for a seed URL,
// keyed by the seed's hostname.
func siteConfigFor(cfg *config.Config, seed string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}

	u, err := url.Parse(seed)
	if err != nil {
		return cfg.SiteConfigs.Defaults
	}
	return cfg.SiteConfigs.GetSiteConfig(u.Hostname())
}

// outputFileForSeed returns the output path for one seed's combined
// document. With a single seed the configured path is used as-is; with
// multiple seeds a per-seed name is derived by inserting the seed's host
// before the extension (combined.md -> combined-docs.example.com.md).
func outputFileForSeed(cfg *config.Config, seed string) string {
	if len(cfg.Seeds) <= 1 {
		return cfg.OutputFile
	}

	host := "seed"
	if u, err := url.Parse(seed); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}

	ext := filepath.Ext(cfg.OutputFile)
	base := strings.TrimSuffix(cfg.OutputFile, ext)
	return base + "-" + host + ext
}

// writeOutputs writes the combined document and, if requested, the
// Markdown crawl summary and JSON result next to it.
func writeOutputs(cfg *config.Config, result *model.CrawlResult, outputFile string) error {
	if err := writeCombined(result, outputFile); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", outputFile)

	if cfg.Summary {
		summaryFile := summaryFileFor(outputFile)
		if err := writeSummary(result, summaryFile); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", summaryFile)
	}

	if cfg.JSONResult {
		jsonFile := jsonFileFor(outputFile)
		if err := writeJSONResult(result, jsonFile); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", jsonFile)
	}
	return nil
}

// writeCombined writes the combined Markdown document to path.
func writeCombined(result *model.CrawlResult, path string) error {
	f, err := createOutputFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := report.NewCombinedWriter(f, slog.Default())
	if _, err := w.Write(result); err != nil {
		return fmt.Errorf("failed to write combined document: %w", err)
	}
	return nil
}

// writeSummary writes the Markdown crawl summary to path.
func writeSummary(result *model.CrawlResult, path string) error {
	f, err := createOutputFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := report.NewSummaryWriter(f)
	if _, err := w.Write(result); err != nil {
		return fmt.Errorf("failed to write crawl summary: %w", err)
	}
	return nil
}

// createOutputFile creates (or truncates) an output file, creating parent
// directories as needed.
func createOutputFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644) //nolint:gosec // combined docs are not secrets
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// writeJSONResult writes the raw crawl result as pretty-printed JSON.
func writeJSONResult(result *model.CrawlResult, path string) error {
	f, err := createOutputFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := report.NewJSONWriter(f, report.WithPrettyPrint())
	if _, err := w.Write(result); err != nil {
		return fmt.Errorf("failed to write JSON result: %w", err)
	}
	return nil
}

// summaryFileFor derives the summary path from the combined document path
// (combined.md -> combined.summary.md).
func summaryFileFor(outputFile string) string {
	ext := filepath.Ext(outputFile)
	return strings.TrimSuffix(outputFile, ext) + ".summary" + ext
}

// jsonFileFor derives the JSON result path from the combined document path
// (combined.md -> combined.json).
func jsonFileFor(outputFile string) string {
	ext := filepath.Ext(outputFile)
	return strings.TrimSuffix(outputFile, ext) + ".json"
}

// saveCrawlResult records the crawl in the history database.
// If db is nil, this function is a no-op.
func saveCrawlResult(ctx context.Context, db *database.CrawlDB, result *model.CrawlResult, outputFile string, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	runID, err := db.SaveCrawlResult(ctx, result, outputFile)
	if err != nil {
		return fmt.Errorf("failed to save crawl history: %w", err)
	}

	logger.Info("crawl recorded in history", "seed", result.Seed, "runID", runID)
	return nil
}
