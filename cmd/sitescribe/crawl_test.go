package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sitescribe/internal/config"
	"github.com/nao1215/sitescribe/internal/database"
	"github.com/nao1215/sitescribe/internal/model"
)

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawl [seed-url]" {
			t.Errorf("expected use 'crawl [seed-url]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
		if flag.DefValue != config.DefaultOutputFile {
			t.Errorf("expected default %q, got %q", config.DefaultOutputFile, flag.DefValue)
		}
	})

	t.Run("has max-pages flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("max-pages")
		if flag == nil {
			t.Fatal("expected max-pages flag")
		}
		if flag.Shorthand != "p" {
			t.Errorf("expected shorthand 'p', got %q", flag.Shorthand)
		}
	})

	t.Run("has delay flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("delay")
		if flag == nil {
			t.Fatal("expected delay flag")
		}
		if flag.Shorthand != "d" {
			t.Errorf("expected shorthand 'd', got %q", flag.Shorthand)
		}
	})

	t.Run("has render flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("render")
		if flag == nil {
			t.Fatal("expected render flag")
		}
		if flag.Shorthand != "r" {
			t.Errorf("expected shorthand 'r', got %q", flag.Shorthand)
		}
	})

	t.Run("has cookies flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("cookies") == nil {
			t.Fatal("expected cookies flag")
		}
	})

	t.Run("has batch flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("batch")
		if flag == nil {
			t.Fatal("expected batch flag")
		}
		if flag.Shorthand != "b" {
			t.Errorf("expected shorthand 'b', got %q", flag.Shorthand)
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has summary flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("summary")
		if flag == nil {
			t.Fatal("expected summary flag")
		}
		if flag.Shorthand != "s" {
			t.Errorf("expected shorthand 's', got %q", flag.Shorthand)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})

	t.Run("has no-history flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("no-history") == nil {
			t.Fatal("expected no-history flag")
		}
	})

	t.Run("does not have db-dir flag (uses XDG)", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("db-dir") != nil {
			t.Error("db-dir flag should not exist (always uses XDG data directory)")
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewCrawlCmd()
		result := getVerboseFlag(cmd)
		if result {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		// Set verbose flag to true
		_ = root.PersistentFlags().Set("verbose", "true")

		// Get crawl subcommand
		crawlCmd, _, err := root.Find([]string{"crawl"})
		if err != nil {
			t.Fatalf("failed to find crawl command: %v", err)
		}

		result := getVerboseFlag(crawlCmd)
		if !result {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestBuildConfig tests configuration building from flags.
func TestBuildConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewCrawlCmd()
		cfg, err := buildConfig(cmd, []string{"https://docs.example.com/guide/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if len(cfg.Seeds) != 1 || cfg.Seeds[0] != "https://docs.example.com/guide/" {
			t.Errorf("expected seeds [https://docs.example.com/guide/], got %v", cfg.Seeds)
		}
		if cfg.OutputFile != config.DefaultOutputFile {
			t.Errorf("expected output file %q, got %q", config.DefaultOutputFile, cfg.OutputFile)
		}
		if cfg.Render {
			t.Error("expected Render to be false by default")
		}
	})

	t.Run("builds config with custom max-pages", func(t *testing.T) {
		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("max-pages", "50")
		cfg, err := buildConfig(cmd, []string{"https://docs.example.com/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.MaxPages != 50 {
			t.Errorf("expected MaxPages 50, got %d", cfg.MaxPages)
		}
	})

	t.Run("builds config with custom delay", func(t *testing.T) {
		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("delay", "2s")
		cfg, err := buildConfig(cmd, []string{"https://docs.example.com/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Delay != 2*time.Second {
			t.Errorf("expected Delay 2s, got %v", cfg.Delay)
		}
	})

	t.Run("builds config with render flag", func(t *testing.T) {
		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("render", "true")
		cfg, err := buildConfig(cmd, []string{"https://docs.example.com/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.Render {
			t.Error("expected Render to be true")
		}
	})

	t.Run("builds config with multiple seeds", func(t *testing.T) {
		cmd := NewCrawlCmd()
		cfg, err := buildConfig(cmd, []string{
			"https://docs.a.example/",
			"https://docs.b.example/",
			"https://docs.c.example/",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Seeds) != 3 {
			t.Errorf("expected 3 seeds, got %d", len(cfg.Seeds))
		}
	})

	t.Run("builds config with valid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "sitescribe.yaml")

		// Create a valid config file
		content := []byte(`
defaults:
  delayMs: 1000
sites:
  docs.example.com:
    render: true
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("config", configPath)
		cfg, err := buildConfig(cmd, []string{"https://docs.example.com/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.SiteConfigs == nil {
			t.Fatal("expected SiteConfigs to be loaded")
		}
		if cfg.SiteConfigs.Defaults.DelayMs != 1000 {
			t.Errorf("expected default delayMs 1000, got %d", cfg.SiteConfigs.Defaults.DelayMs)
		}
		if !cfg.SiteConfigs.Sites["docs.example.com"].Render {
			t.Error("expected render to be enabled for docs.example.com")
		}
	})

	t.Run("returns error for invalid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "invalid.yaml")

		// Create an invalid config file
		content := []byte(`{invalid yaml`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("config", configPath)
		_, err := buildConfig(cmd, []string{"https://docs.example.com/"})
		if err == nil {
			t.Fatal("expected error for invalid config file")
		}
	})

	t.Run("returns error for missing explicit config file", func(t *testing.T) {
		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := buildConfig(cmd, []string{"https://docs.example.com/"})
		if err == nil {
			t.Fatal("expected error for missing config file")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected 'not found' error, got %v", err)
		}
	})
}

// TestSiteConfigFor tests site configuration lookup by seed hostname.
func TestSiteConfigFor(t *testing.T) {
	t.Parallel()

	t.Run("returns empty config for nil SiteConfigs", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{SiteConfigs: nil}
		result := siteConfigFor(cfg, "https://docs.example.com/guide/")
		if result.Render || result.CookieJar != "" {
			t.Errorf("expected zero config, got %+v", result)
		}
	})

	t.Run("matches seed hostname", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			SiteConfigs: &config.File{
				Sites: map[string]config.SiteConfig{
					"docs.example.com": {Render: true, MaxPages: 500},
				},
			},
		}
		result := siteConfigFor(cfg, "https://docs.example.com/guide/intro")
		if !result.Render {
			t.Error("expected render to be enabled for matching host")
		}
		if result.MaxPages != 500 {
			t.Errorf("expected maxPages 500, got %d", result.MaxPages)
		}
	})

	t.Run("returns defaults when no site match", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			SiteConfigs: &config.File{
				Defaults: config.SiteConfig{DelayMs: 1000},
				Sites:    map[string]config.SiteConfig{},
			},
		}
		result := siteConfigFor(cfg, "https://other.example.com/")
		if result.DelayMs != 1000 {
			t.Errorf("expected default delayMs 1000, got %d", result.DelayMs)
		}
	})
}

// TestOutputFileForSeed tests per-seed output file derivation.
func TestOutputFileForSeed(t *testing.T) {
	t.Parallel()

	t.Run("single seed uses configured path", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			Seeds:      []string{"https://docs.example.com/"},
			OutputFile: "out/combined.md",
		}
		if got := outputFileForSeed(cfg, cfg.Seeds[0]); got != "out/combined.md" {
			t.Errorf("outputFileForSeed() = %q, want the configured path", got)
		}
	})

	t.Run("multiple seeds derive per-host names", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			Seeds:      []string{"https://docs.a.example/", "https://docs.b.example/"},
			OutputFile: "combined.md",
		}
		if got := outputFileForSeed(cfg, "https://docs.a.example/"); got != "combined-docs.a.example.md" {
			t.Errorf("outputFileForSeed() = %q, want combined-docs.a.example.md", got)
		}
		if got := outputFileForSeed(cfg, "https://docs.b.example/"); got != "combined-docs.b.example.md" {
			t.Errorf("outputFileForSeed() = %q, want combined-docs.b.example.md", got)
		}
	})
}

// TestSummaryFileFor tests summary path derivation.
func TestSummaryFileFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"combined.md", "combined.summary.md"},
		{"out/guide.md", "out/guide.summary.md"},
		{"noext", "noext.summary"},
	}

	for _, tt := range tests {
		if got := summaryFileFor(tt.in); got != tt.want {
			t.Errorf("summaryFileFor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestJSONFileFor tests JSON result path derivation.
func TestJSONFileFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"combined.md", "combined.json"},
		{"out/guide.md", "out/guide.json"},
		{"noext", "noext.json"},
	}

	for _, tt := range tests {
		if got := jsonFileFor(tt.in); got != tt.want {
			t.Errorf("jsonFileFor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// sampleCrawlResult returns a small crawl result for output tests.
func sampleCrawlResult() *model.CrawlResult {
	return &model.CrawlResult{
		Seed: "https://docs.example.com/guide/",
		Pages: []model.Page{
			{
				URL:         "https://docs.example.com/guide/",
				Title:       "Guide",
				ContentHTML: "<main><p>Welcome to the <strong>guide</strong>.</p></main>",
			},
		},
		URLsVisited: 1,
		StartedAt:   time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC),
		Duration:    1200 * time.Millisecond,
	}
}

// TestWriteOutputs tests writing the combined document and summary.
func TestWriteOutputs(t *testing.T) {
	t.Run("writes combined document", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputFile := filepath.Join(tmpDir, "combined.md")

		cfg := &config.Config{}
		if err := writeOutputs(cfg, sampleCrawlResult(), outputFile); err != nil {
			t.Fatalf("writeOutputs() error = %v", err)
		}

		content, err := os.ReadFile(outputFile)
		if err != nil {
			t.Fatalf("failed to read combined document: %v", err)
		}
		if !strings.Contains(string(content), "# Guide") {
			t.Errorf("combined document missing page heading:\n%s", content)
		}
		if !strings.Contains(string(content), "Source: https://docs.example.com/guide/") {
			t.Errorf("combined document missing source line:\n%s", content)
		}
	})

	t.Run("writes summary when enabled", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputFile := filepath.Join(tmpDir, "combined.md")

		cfg := &config.Config{Summary: true}
		if err := writeOutputs(cfg, sampleCrawlResult(), outputFile); err != nil {
			t.Fatalf("writeOutputs() error = %v", err)
		}

		summaryFile := filepath.Join(tmpDir, "combined.summary.md")
		content, err := os.ReadFile(summaryFile)
		if err != nil {
			t.Fatalf("failed to read summary: %v", err)
		}
		if !strings.Contains(string(content), "# Crawl Summary") {
			t.Errorf("summary missing header:\n%s", content)
		}
	})

	t.Run("writes JSON result when enabled", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputFile := filepath.Join(tmpDir, "combined.md")

		cfg := &config.Config{JSONResult: true}
		if err := writeOutputs(cfg, sampleCrawlResult(), outputFile); err != nil {
			t.Fatalf("writeOutputs() error = %v", err)
		}

		jsonFile := filepath.Join(tmpDir, "combined.json")
		content, err := os.ReadFile(jsonFile)
		if err != nil {
			t.Fatalf("failed to read JSON result: %v", err)
		}

		var decoded model.CrawlResult
		if err := json.Unmarshal(content, &decoded); err != nil {
			t.Fatalf("JSON result is not valid JSON: %v", err)
		}
		if decoded.Seed != "https://docs.example.com/guide/" {
			t.Errorf("Seed = %q, want the crawled seed", decoded.Seed)
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputFile := filepath.Join(tmpDir, "subdir", "nested", "combined.md")

		cfg := &config.Config{}
		if err := writeOutputs(cfg, sampleCrawlResult(), outputFile); err != nil {
			t.Fatalf("writeOutputs() error = %v", err)
		}

		if _, err := os.Stat(outputFile); os.IsNotExist(err) {
			t.Error("expected combined document in nested directory")
		}
	})
}

// TestSaveCrawlResult tests recording crawls in the history database.
func TestSaveCrawlResult(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx := context.Background()

	t.Run("returns nil when db is nil", func(t *testing.T) {
		t.Parallel()

		if err := saveCrawlResult(ctx, nil, sampleCrawlResult(), "combined.md", logger); err != nil {
			t.Errorf("expected nil error when db is nil, got %v", err)
		}
	})

	t.Run("records the crawl", func(t *testing.T) {
		t.Parallel()

		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := saveCrawlResult(ctx, db, sampleCrawlResult(), "combined.md", logger); err != nil {
			t.Fatalf("saveCrawlResult() error = %v", err)
		}

		runs, err := db.ListRuns(ctx, 0)
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("len(runs) = %d, want 1", len(runs))
		}
		if runs[0].Seed != "https://docs.example.com/guide/" {
			t.Errorf("Seed = %q, want the crawled seed", runs[0].Seed)
		}
		if runs[0].OutputFile != "combined.md" {
			t.Errorf("OutputFile = %q, want combined.md", runs[0].OutputFile)
		}
	})
}
