package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/warta-labs/quotewire/internal/types"
)

const fallbackUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Readability is the free fallback provider: a plain GET followed by
// heuristic content extraction. It has no token, no retry semantics and no
// pagination awareness.
type Readability struct{}

func NewReadability() *Readability {
	return &Readability{}
}

func (r *Readability) Name() types.Method {
	return types.MethodFallback
}

// Fetch downloads the page and recovers the main article text. Anything under
// MinContentLength is reported as no content; the caller treats that as a
// failed fallback.
func (r *Readability) Fetch(ctx context.Context, pageURL string, _ int) (*types.Page, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, &types.FetchError{Kind: types.ErrUnknown, Message: fmt.Sprintf("parsing url: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &types.FetchError{Kind: types.ErrUnknown, Message: err.Error()}
	}
	req.Header.Set("User-Agent", fallbackUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &types.FetchError{Kind: types.ErrConnection, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.FetchError{Kind: types.ErrUnknown, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	rawHTML, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.FetchError{Kind: types.ErrConnection, Message: err.Error()}
	}

	article, err := readability.FromReader(bytes.NewReader(rawHTML), parsed)
	if err != nil {
		return nil, &types.FetchError{Kind: types.ErrMalformed, Message: fmt.Sprintf("readability: %v", err)}
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) <= MinContentLength {
		return nil, &types.FetchError{Kind: types.ErrNoContent, Message: fmt.Sprintf("recovered only %d characters", len(text))}
	}

	page := &types.Page{
		Title:  article.Title,
		Text:   text,
		Author: article.Byline,
	}
	if article.PublishedTime != nil {
		page.Date = article.PublishedTime.Format("2006-01-02")
	}

	// Readability drops author/date on many regional news sites; their meta
	// tags usually still carry them.
	if page.Author == "" || page.Date == "" {
		fillFromMetaTags(rawHTML, page)
	}

	return page, nil
}

// fillFromMetaTags walks the document head for the common article meta tags
// and fills whichever of author/date is still empty.
func fillFromMetaTags(rawHTML []byte, page *types.Page) {
	doc, err := html.Parse(bytes.NewReader(rawHTML))
	if err != nil {
		return
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var name, content string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "name", "property":
					name = strings.ToLower(attr.Val)
				case "content":
					content = strings.TrimSpace(attr.Val)
				}
			}
			if content != "" {
				switch name {
				case "author", "article:author":
					if page.Author == "" {
						page.Author = content
					}
				case "article:published_time", "publishdate", "date":
					if page.Date == "" {
						page.Date = content
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
}
