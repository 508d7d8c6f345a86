/*
Package scraper drives page-by-page article fetches through the providers,
applying retry, fallback and stop conditions, and merges accepted pages into
one article record.
*/
package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/warta-labs/quotewire/internal/provider"
	"github.com/warta-labs/quotewire/internal/types"
)

// Scraper is the multi-page scrape state machine. Sleeps go through the sleep
// field so tests can pin retry and pacing behavior without wall time.
type Scraper struct {
	primary    provider.Provider
	fallback   provider.Provider
	maxRetries int
	retryDelay time.Duration
	pageDelay  time.Duration
	maxPages   int
	sleep      func(time.Duration)
}

// Options tune the state machine; zero values fall back to the defaults the
// upstream services are known to tolerate.
type Options struct {
	MaxRetries int           // bounded retry for transient 403s (default 3)
	RetryDelay time.Duration // delay between retries of the same page (default 5s)
	PageDelay  time.Duration // delay between consecutive pages (default 8s)
	MaxPages   int           // pagination cap (default 5)
}

func New(primary, fallback provider.Provider, opts Options) *Scraper {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 5 * time.Second
	}
	if opts.PageDelay <= 0 {
		opts.PageDelay = 8 * time.Second
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = MaxPages
	}
	return &Scraper{
		primary:    primary,
		fallback:   fallback,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		pageDelay:  opts.PageDelay,
		maxPages:   opts.MaxPages,
		sleep:      time.Sleep,
	}
}

// ScrapeArticle walks the planned pages for rec.URL. A later-page failure is
// not fatal to the article, only to further pagination; a page-1 failure gets
// one fallback attempt before the whole scrape fails. Returns an error only
// when zero pages were accepted.
func (s *Scraper) ScrapeArticle(ctx context.Context, rec types.InputRecord, ingestionTime string) (*types.Article, error) {
	pageURLs := Plan(rec.URL, s.maxPages)

	art := &types.Article{
		ID:            rec.ID,
		Date:          rec.Date,
		URL:           rec.URL,
		Method:        types.MethodPrimary,
		IngestionTime: ingestionTime,
	}
	var bodies []string

pages:
	for i, pageURL := range pageURLs {
		pageNum := i + 1
		fmt.Printf("      page %d: ", pageNum)

		page, fetchErr := s.fetchWithRetry(ctx, pageURL)

		switch {
		case fetchErr != nil:
			kind := errorKind(fetchErr)
			fmt.Printf("❌ %s\n", kind)

			if pageNum > 1 {
				// Pages already accepted stand as the complete article.
				break pages
			}
			if !s.tryFallback(ctx, pageURL, art, &bodies) {
				return nil, fmt.Errorf("scraping %s: primary failed (%s) and fallback recovered nothing", rec.URL, kind)
			}

		case len(strings.TrimSpace(page.Text)) <= provider.MinContentLength:
			fmt.Println("❌ EMPTY")
			break pages

		default:
			// A page byte-identical to the previous one means the site is
			// serving page 1 for out-of-range page numbers; pagination has
			// looped.
			if len(bodies) > 0 && page.Text == bodies[len(bodies)-1] {
				fmt.Println("❌ DUPLICATE - stopping")
				break pages
			}
			bodies = append(bodies, page.Text)
			if pageNum == 1 {
				art.Title = page.Title
				art.Author = page.Author
			}
			fmt.Printf("✅ (%d words)\n", len(strings.Fields(page.Text)))
		}

		if i < len(pageURLs)-1 {
			s.sleep(s.pageDelay)
		}
	}

	if len(bodies) == 0 {
		return nil, fmt.Errorf("scraping %s: no pages accepted", rec.URL)
	}

	art.Text = strings.Join(bodies, types.PageBreakMarker)
	art.PagesScraped = len(bodies)
	return art, nil
}

// fetchWithRetry repeats the identical request while the provider reports the
// failure as retryable (transient 403s: many anti-bot defenses briefly block
// then allow). Every other outcome is returned to the state machine as-is.
func (s *Scraper) fetchWithRetry(ctx context.Context, pageURL string) (*types.Page, error) {
	for attempt := 0; ; attempt++ {
		page, err := s.primary.Fetch(ctx, pageURL, attempt)
		if err == nil {
			return page, nil
		}

		var fe *types.FetchError
		if errors.As(err, &fe) && fe.Kind == types.ErrForbidden && fe.Retryable {
			fmt.Printf("⚠️  403 (retry %d/%d) ", attempt+1, s.maxRetries)
			s.sleep(s.retryDelay)
			continue
		}
		return nil, err
	}
}

// tryFallback gives the free extractor one shot at page 1. Its output is
// accepted only above the minimum length, which the provider itself enforces.
func (s *Scraper) tryFallback(ctx context.Context, pageURL string, art *types.Article, bodies *[]string) bool {
	fmt.Println("      trying fallback extractor...")

	page, err := s.fallback.Fetch(ctx, pageURL, 0)
	if err != nil {
		fmt.Println("      ❌ fallback also failed")
		return false
	}

	*bodies = append(*bodies, page.Text)
	art.Title = page.Title
	art.Author = page.Author
	art.Method = types.MethodFallback
	fmt.Printf("      ✅ fallback success (%d words)\n", len(strings.Fields(page.Text)))
	return true
}

func errorKind(err error) types.ErrorKind {
	var fe *types.FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return types.ErrUnknown
}
