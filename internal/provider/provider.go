/*
Package provider adapts external article-extraction services behind a uniform
fetch contract. Failures are classified into the kinds the scrape state machine
branches on; retry orchestration lives with the caller, not here.
*/
package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/warta-labs/quotewire/internal/types"
)

// MinContentLength is the floor below which recovered text is treated as no
// content at all.
const MinContentLength = 100

var client = &http.Client{
	Timeout: 45 * time.Second,
}

// Provider converts a URL into structured article text. attempt is the
// caller's retry counter for the current page; implementations may surface a
// retryable failure while attempts remain.
type Provider interface {
	Fetch(ctx context.Context, url string, attempt int) (*types.Page, error)
	Name() types.Method
}
