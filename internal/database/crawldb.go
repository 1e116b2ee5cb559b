package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sitescribe/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl history.
// Every completed crawl is recorded with its pages, so earlier crawls of a
// site can be listed and compared without re-crawling.
//
// Design decision: We use a single database file for all crawl history
// rather than one file per site. This simplifies listing across sites and
// backup/restore operations.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "sitescribe.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY without a retry loop.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Crawl runs store one row per completed crawl
	CREATE TABLE IF NOT EXISTS crawl_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed TEXT NOT NULL,
		output_file TEXT,
		page_count INTEGER NOT NULL,
		urls_visited INTEGER NOT NULL,
		failed_count INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_seed ON crawl_runs(seed);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON crawl_runs(started_at);

	-- Crawl pages store the pages of each run in crawl order
	CREATE TABLE IF NOT EXISTS crawl_pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES crawl_runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		title TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON crawl_pages(run_id);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord summarizes one stored crawl run.
type RunRecord struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Seed is the URL the crawl started from.
	Seed string

	// OutputFile is where the combined document was written.
	OutputFile string

	// PageCount is the number of pages collected.
	PageCount int

	// URLsVisited is the number of URLs processed, including failures.
	URLsVisited int

	// FailedCount is the number of failed fetches.
	FailedCount int

	// Duration is the wall-clock time of the crawl.
	Duration time.Duration

	// StartedAt is when the crawl began.
	StartedAt time.Time
}

// PageRecord is one stored page of a crawl run.
type PageRecord struct {
	// Position is the page's 1-based place in crawl order.
	Position int

	// URL is the page URL.
	URL string

	// Title is the page title recorded at crawl time.
	Title string
}

// SaveCrawlResult stores a completed crawl and its pages.
// The run row and page rows are written in one transaction so a crash
// never leaves a run without its pages. Returns the new run ID.
func (cdb *CrawlDB) SaveCrawlResult(ctx context.Context, result *model.CrawlResult, outputFile string) (int64, error) {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
	INSERT INTO crawl_runs (seed, output_file, page_count, urls_visited, failed_count, duration_ms, started_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		result.Seed,
		outputFile,
		result.PageCount(),
		result.URLsVisited,
		len(result.FailedURLs),
		result.Duration.Milliseconds(),
		result.StartedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert crawl run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	for i, page := range result.Pages {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO crawl_pages (run_id, position, url, title)
		VALUES (?, ?, ?, ?)
		`, runID, i+1, page.URL, page.Title); err != nil {
			return 0, fmt.Errorf("failed to insert crawl page: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit crawl run: %w", err)
	}
	return runID, nil
}

// ListRuns returns stored crawl runs, most recent first.
// A limit of 0 or below returns all runs.
func (cdb *CrawlDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, seed, output_file, page_count, urls_visited, failed_count, duration_ms, started_at
	FROM crawl_runs
	ORDER BY started_at DESC, id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawl runs: %w", err)
	}
	defer rows.Close()

	var results []RunRecord
	for rows.Next() {
		var run RunRecord
		var outputFile sql.NullString
		var durationMs int64
		var startedAt string

		if err := rows.Scan(
			&run.ID,
			&run.Seed,
			&outputFile,
			&run.PageCount,
			&run.URLsVisited,
			&run.FailedCount,
			&durationMs,
			&startedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan crawl run: %w", err)
		}

		run.OutputFile = outputFile.String
		run.Duration = time.Duration(durationMs) * time.Millisecond
		run.StartedAt = parseTimestamp(startedAt)
		results = append(results, run)
	}

	return results, rows.Err()
}

// GetRunPages returns the pages of a stored run in crawl order.
func (cdb *CrawlDB) GetRunPages(ctx context.Context, runID int64) ([]PageRecord, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT position, url, title
	FROM crawl_pages
	WHERE run_id = ?
	ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run pages: %w", err)
	}
	defer rows.Close()

	var results []PageRecord
	for rows.Next() {
		var page PageRecord
		var title sql.NullString
		if err := rows.Scan(&page.Position, &page.URL, &title); err != nil {
			return nil, fmt.Errorf("failed to scan run page: %w", err)
		}
		page.Title = title.String
		results = append(results, page)
	}

	return results, rows.Err()
}

// GetRun returns one stored run by ID, or nil when it does not exist.
func (cdb *CrawlDB) GetRun(ctx context.Context, runID int64) (*RunRecord, error) {
	var run RunRecord
	var outputFile sql.NullString
	var durationMs int64
	var startedAt string

	err := cdb.db.QueryRowContext(ctx, `
	SELECT id, seed, output_file, page_count, urls_visited, failed_count, duration_ms, started_at
	FROM crawl_runs
	WHERE id = ?
	`, runID).Scan(
		&run.ID,
		&run.Seed,
		&outputFile,
		&run.PageCount,
		&run.URLsVisited,
		&run.FailedCount,
		&durationMs,
		&startedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl run: %w", err)
	}

	run.OutputFile = outputFile.String
	run.Duration = time.Duration(durationMs) * time.Millisecond
	run.StartedAt = parseTimestamp(startedAt)
	return &run, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
