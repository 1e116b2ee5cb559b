// Package database provides SQLite-based storage for crawl history.
//
// This package implements the CrawlDB, which stores:
//   - One run record per completed crawl (seed, counts, timing, output file)
//   - The pages of each run in crawl order
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
//  1. No external dependencies - the database is a single file
//  2. CGO-free implementation allows easy cross-compilation
//  3. Sufficient performance for our use case
//  4. WAL mode provides good concurrent read performance
//
// The database lives under the XDG data directory by default, so history
// accumulates across invocations without any setup.
package database
