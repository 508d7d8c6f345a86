/*
Package pipeline runs the batch stages: paced serial scraping, serial or
worker-pool parsing, and flattening of parse results into output rows.
*/
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/warta-labs/quotewire/internal/types"
)

// ArticleScraper turns one input record into an article. The multi-page
// scraper satisfies it.
type ArticleScraper interface {
	ScrapeArticle(ctx context.Context, rec types.InputRecord, ingestionTime string) (*types.Article, error)
}

// CheckpointFunc persists a full snapshot of everything completed so far.
// n is the 1-based checkpoint number.
type CheckpointFunc[T any] func(n int, done []T)

// ScrapeStats summarizes a scrape batch for the run report.
type ScrapeStats struct {
	Total      int
	Success    int
	Failed     int
	TotalPages int
	TotalWords int
	ByMethod   map[types.Method]int
	Elapsed    time.Duration
}

// ScrapeOptions tune the scrape batch. The defaults are the pacing the
// upstream extraction API tolerates without throttling.
type ScrapeOptions struct {
	Pace            time.Duration // minimum gap between articles (default 13s)
	CheckpointEvery int           // completed items per checkpoint (default 100)
	Checkpoint      CheckpointFunc[types.Article]
}

// ScrapeBatch scrapes every record in input order, strictly serially. A
// failed article is counted and skipped, never fatal; the limiter spaces
// article starts so the pacing includes whatever time the scrape itself took.
func ScrapeBatch(ctx context.Context, s ArticleScraper, records []types.InputRecord, opts ScrapeOptions) ([]types.Article, ScrapeStats) {
	if opts.Pace <= 0 {
		opts.Pace = 13 * time.Second
	}
	if opts.CheckpointEvery <= 0 {
		opts.CheckpointEvery = 100
	}

	start := time.Now()
	ingestionTime := start.Format("2006-01-02 15:04:05")
	limiter := rate.NewLimiter(rate.Every(opts.Pace), 1)

	stats := ScrapeStats{
		Total:    len(records),
		ByMethod: map[types.Method]int{},
	}
	var articles []types.Article

	fmt.Printf("\n📊 Scraping %d articles (start %s)\n", len(records), ingestionTime)
	fmt.Println(strings.Repeat("─", 60))

	for i, rec := range records {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		fmt.Printf("\n[%d/%d] ID: %s | %s\n", i+1, len(records), rec.ID, rec.URL)

		art, err := s.ScrapeArticle(ctx, rec, ingestionTime)
		if err != nil {
			stats.Failed++
			fmt.Printf("   ❌ %v\n", err)
		} else {
			articles = append(articles, *art)
			stats.Success++
			stats.TotalPages += art.PagesScraped
			stats.TotalWords += len(strings.Fields(art.Text))
			stats.ByMethod[art.Method]++
		}

		// Cadence counts completed items, not successes, so checkpoints keep
		// firing through failure-heavy stretches.
		if opts.Checkpoint != nil && (i+1)%opts.CheckpointEvery == 0 {
			n := (i + 1) / opts.CheckpointEvery
			fmt.Printf("\n📦 Saving checkpoint %d (%d/%d items, %d articles)...\n", n, i+1, len(records), len(articles))
			opts.Checkpoint(n, articles)
		}
	}

	stats.Elapsed = time.Since(start)
	return articles, stats
}

// Report prints the post-run scrape summary.
func (s ScrapeStats) Report() {
	fmt.Println("\n📈 SCRAPING STATISTICS")
	fmt.Println(strings.Repeat("═", 60))
	fmt.Printf("Total URLs:      %d\n", s.Total)
	fmt.Printf("Success:         %d\n", s.Success)
	fmt.Printf("Failed:          %d\n", s.Failed)
	fmt.Printf("Pages scraped:   %d\n", s.TotalPages)
	fmt.Printf("Words collected: %d\n", s.TotalWords)
	for method, n := range s.ByMethod {
		fmt.Printf("Via %-12s %d\n", string(method)+":", n)
	}
	fmt.Printf("Elapsed:         %s\n", s.Elapsed.Round(time.Second))
	fmt.Println(strings.Repeat("═", 60))
}
