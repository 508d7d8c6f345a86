package scraper

import (
	"fmt"
	"strings"
)

// MaxPages caps how many pages of one article are ever attempted.
const MaxPages = 5

// Plan returns the ordered page URLs to attempt for baseURL, starting with the
// base URL itself as page 1. Tribunnews paginates with a query convention of
// its own; every other domain gets the generic ?page=N form. Pure string
// construction, no network access.
func Plan(baseURL string, maxPages int) []string {
	if maxPages < 1 {
		maxPages = 1
	}

	pages := []string{baseURL}

	if strings.Contains(baseURL, "tribunnews.com") {
		for n := 2; n <= maxPages; n++ {
			pages = append(pages, fmt.Sprintf("%s?page=%d&s=paging_new", baseURL, n))
		}
		return pages
	}

	for n := 2; n <= maxPages; n++ {
		pages = append(pages, fmt.Sprintf("%s?page=%d", baseURL, n))
	}
	return pages
}
