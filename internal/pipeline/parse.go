package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/warta-labs/quotewire/internal/types"
)

// ExtractFunc is the extraction entry point the parse batch calls per
// article. Both the plain and the wall-clock-bounded extractor paths satisfy
// it.
type ExtractFunc func(ctx context.Context, content string) types.Extraction

// ParseOptions tune the parse batch.
type ParseOptions struct {
	Workers         int           // 1 = serial in input order (default)
	Pace            time.Duration // serial-mode gap between API calls (default 1s)
	CheckpointEvery int           // completed items per checkpoint (default 100)
	Checkpoint      CheckpointFunc[types.ParseResult]
}

// ParseBatch extracts quotes from every article. With Workers == 1 results
// come back in input order with paced API calls; with more workers they come
// back in completion order. Either way the results slice is owned by exactly
// one goroutine, and checkpoints fire on every CheckpointEvery-th completion.
func ParseBatch(ctx context.Context, extract ExtractFunc, articles []types.Article, opts ParseOptions) []types.ParseResult {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Pace <= 0 {
		opts.Pace = time.Second
	}
	if opts.CheckpointEvery <= 0 {
		opts.CheckpointEvery = 100
	}

	fmt.Printf("\n📊 Processing %d articles...\n", len(articles))
	fmt.Printf("🧵 Threads: %d parallel workers\n", opts.Workers)
	fmt.Println(strings.Repeat("─", 60))

	if opts.Workers == 1 {
		return parseSerial(ctx, extract, articles, opts)
	}
	return parsePooled(ctx, extract, articles, opts)
}

func parseSerial(ctx context.Context, extract ExtractFunc, articles []types.Article, opts ParseOptions) []types.ParseResult {
	limiter := rate.NewLimiter(rate.Every(opts.Pace), 1)
	results := make([]types.ParseResult, 0, len(articles))

	for i, art := range articles {
		// Waiting up front drains the limiter's initial token on item 1, so
		// the gap between items 1 and 2 is paced like every later gap.
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		results = append(results, parseOne(ctx, extract, art, i+1, len(articles)))
		maybeCheckpoint(opts, results)
	}
	return results
}

// parsePooled fans articles out to a bounded worker pool. Results flow back
// over a channel to this goroutine, the sole owner of the results slice, so
// no lock guards it and checkpoints see a consistent snapshot.
func parsePooled(ctx context.Context, extract ExtractFunc, articles []types.Article, opts ParseOptions) []types.ParseResult {
	type job struct {
		index int
		art   types.Article
	}

	jobs := make(chan job)
	out := make(chan types.ParseResult)

	for w := 0; w < opts.Workers; w++ {
		go func() {
			for j := range jobs {
				out <- parseOne(ctx, extract, j.art, j.index, len(articles))
			}
		}()
	}

	go func() {
		for i, art := range articles {
			jobs <- job{index: i + 1, art: art}
		}
		close(jobs)
	}()

	results := make([]types.ParseResult, 0, len(articles))
	for range articles {
		results = append(results, <-out)
		maybeCheckpoint(opts, results)
	}
	return results
}

func maybeCheckpoint(opts ParseOptions, results []types.ParseResult) {
	if opts.Checkpoint == nil || len(results)%opts.CheckpointEvery != 0 {
		return
	}
	n := len(results) / opts.CheckpointEvery
	fmt.Printf("\n📦 Saving checkpoint %d (items 1-%d)...\n", n, len(results))
	opts.Checkpoint(n, results)
}

// parseOne handles a single article, skipping the API entirely when there is
// no content to analyze.
func parseOne(ctx context.Context, extract ExtractFunc, art types.Article, index, total int) types.ParseResult {
	result := types.ParseResult{
		ID:     art.ID,
		Date:   art.Date,
		Source: art.URL,
	}

	fmt.Printf("\n[%d/%d] ID: %s | Source: %s\n", index, total, art.ID, art.URL)

	if strings.TrimSpace(art.Text) == "" {
		fmt.Println("   ⏭️  Skipped (no content)")
		result.Extraction = types.EmptyExtraction()
		return result
	}

	fmt.Println("   🔍 Extracting...")
	result.Extraction = extract(ctx, art.Text)

	fmt.Printf("   ✅ Found: %d quotes, %d speakers, Province: %s, City: %s\n",
		len(result.Extraction.Quotes), len(result.Extraction.Speakers),
		orNA(result.Extraction.Province), orNA(result.Extraction.City))
	return result
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// ParseStats summarizes a parse batch for the run report.
type ParseStats struct {
	Total         int
	WithQuotes    int
	WithSpeakers  int
	WithProvince  int
	WithCity      int
	TotalQuotes   int
	TotalSpeakers int
}

func Summarize(results []types.ParseResult) ParseStats {
	stats := ParseStats{Total: len(results)}
	for _, r := range results {
		if len(r.Extraction.Quotes) > 0 {
			stats.WithQuotes++
		}
		if len(r.Extraction.Speakers) > 0 {
			stats.WithSpeakers++
		}
		if r.Extraction.Province != "" {
			stats.WithProvince++
		}
		if r.Extraction.City != "" {
			stats.WithCity++
		}
		stats.TotalQuotes += len(r.Extraction.Quotes)
		stats.TotalSpeakers += len(r.Extraction.Speakers)
	}
	return stats
}

// Report prints the post-run parse summary.
func (s ParseStats) Report() {
	if s.Total == 0 {
		return
	}
	pct := func(n int) float64 { return float64(n) / float64(s.Total) * 100 }

	fmt.Println("\n📈 PARSING STATISTICS")
	fmt.Println(strings.Repeat("═", 60))
	fmt.Printf("Total articles:      %d\n", s.Total)
	fmt.Printf("With quotes:         %d (%.1f%%)\n", s.WithQuotes, pct(s.WithQuotes))
	fmt.Printf("With speakers:       %d (%.1f%%)\n", s.WithSpeakers, pct(s.WithSpeakers))
	fmt.Printf("With province:       %d (%.1f%%)\n", s.WithProvince, pct(s.WithProvince))
	fmt.Printf("With city:           %d (%.1f%%)\n", s.WithCity, pct(s.WithCity))
	fmt.Println(strings.Repeat("─", 60))
	fmt.Printf("Total quotes found:  %d\n", s.TotalQuotes)
	fmt.Printf("Total speakers found: %d\n", s.TotalSpeakers)
	fmt.Printf("Avg quotes/article:  %.1f\n", float64(s.TotalQuotes)/float64(s.Total))
	fmt.Println(strings.Repeat("═", 60))
}
