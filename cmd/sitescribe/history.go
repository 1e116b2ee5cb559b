package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescribe/internal/config"
	"github.com/nao1215/sitescribe/internal/database"
)

// NewHistoryCmd creates the history command.
// This command lists crawls recorded in the local history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past crawls recorded in the local database",
		Long: `History lists the crawls recorded in the local history database.

Every completed crawl is recorded automatically (unless --no-history was
given), so you can see when a site was last crawled and where its combined
document was written.

Examples:
  # List the most recent crawls
  sitescribe history

  # Show the last 5 crawls
  sitescribe history --limit 5

  # Show the pages collected by a specific crawl
  sitescribe history --pages 3`,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", 20,
		"Maximum number of crawls to list (0 lists all)")
	cmd.Flags().Int64("pages", 0,
		"Show the pages of the crawl with this ID instead of the run list")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	runID, err := cmd.Flags().GetInt64("pages")
	if err != nil {
		return err
	}

	// Open read-only: listing history should never create an empty database.
	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		fmt.Println("No crawl history found.")
		fmt.Println("\nUse 'sitescribe crawl <seed-url>' to crawl a site.")
		return nil
	}
	defer db.Close()

	ctx := context.Background()

	if runID > 0 {
		return listRunPages(ctx, db, runID)
	}
	return listRuns(ctx, db, limit)
}

// listRuns prints the stored crawl runs, most recent first.
func listRuns(ctx context.Context, db *database.CrawlDB, limit int) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list crawl history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No crawl history found.")
		fmt.Println("\nUse 'sitescribe crawl <seed-url>' to crawl a site.")
		return nil
	}

	fmt.Printf("Crawl history (%d runs):\n\n", len(runs))
	fmt.Printf("  %-4s  %-19s  %-6s  %-8s  %-10s  %s\n",
		"ID", "Started", "Pages", "Failed", "Duration", "Seed")
	fmt.Println("  " + strings.Repeat("-", 80))

	for _, run := range runs {
		fmt.Printf("  %-4d  %-19s  %-6d  %-8d  %-10s  %s\n",
			run.ID,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.PageCount,
			run.FailedCount,
			run.Duration.Round(time.Millisecond),
			run.Seed,
		)
	}

	fmt.Println("\nUse 'sitescribe history --pages <id>' to see the pages of a crawl.")

	return nil
}

// listRunPages prints the pages collected by one stored crawl.
func listRunPages(ctx context.Context, db *database.CrawlDB, runID int64) error {
	run, err := db.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get crawl run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("no crawl with ID %d (use 'sitescribe history' to list runs)", runID)
	}

	pages, err := db.GetRunPages(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get crawl pages: %w", err)
	}

	fmt.Printf("Crawl %d: %s\n", run.ID, run.Seed)
	fmt.Printf("Started %s, %d pages collected, output %s\n\n",
		run.StartedAt.Format("2006-01-02 15:04:05"), run.PageCount, run.OutputFile)

	if len(pages) == 0 {
		fmt.Println("No pages were collected by this crawl.")
		return nil
	}

	for _, page := range pages {
		title := page.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("  %3d. %s\n       %s\n", page.Position, title, page.URL)
	}

	return nil
}
