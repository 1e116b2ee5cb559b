package crawler

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sitescribe/internal/model"
)

// CrawlFunc produces the crawl result for one seed URL.
// The CLI binds this to a fully configured Spider (with its own fetch
// session) per seed.
type CrawlFunc func(ctx context.Context, seed string) (*model.CrawlResult, error)

// BatchProcessor runs independent crawls for multiple seeds with bounded
// concurrency. Each crawl stays strictly sequential internally; only
// crawls of different seeds overlap.
type BatchProcessor struct {
	crawl       CrawlFunc
	concurrency int
}

// NewBatchProcessor creates a BatchProcessor. Concurrency values below 1
// are raised to 1.
func NewBatchProcessor(crawl CrawlFunc, concurrency int) *BatchProcessor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchProcessor{
		crawl:       crawl,
		concurrency: concurrency,
	}
}

// Run crawls every seed and returns one result per seed, in input order.
//
// A failed crawl is recorded in its result's Error field rather than
// returned, so one bad seed never hides the results of the others.
func (b *BatchProcessor) Run(ctx context.Context, seeds []string) []*model.CrawlResult {
	results := make([]*model.CrawlResult, len(seeds))

	var g errgroup.Group
	g.SetLimit(b.concurrency)

	for i, seed := range seeds {
		g.Go(func() error {
			result, err := b.crawl(ctx, seed)
			if err != nil {
				if result == nil {
					result = &model.CrawlResult{Seed: seed}
				}
				result.Error = err.Error()
			}
			results[i] = result
			return nil
		})
	}

	// Errors are carried in the results; the group never fails.
	_ = g.Wait()
	return results
}
