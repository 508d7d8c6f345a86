package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/warta-labs/quotewire/internal/types"
)

const diffbotArticleURL = "https://api.diffbot.com/v3/article"

// Diffbot is the primary, token-authenticated provider.
type Diffbot struct {
	token      string
	apiURL     string
	maxRetries int
}

// NewDiffbot creates the primary provider. maxRetries bounds how long a
// forbidden response keeps being surfaced as retryable to the caller.
func NewDiffbot(token string, maxRetries int) *Diffbot {
	return &Diffbot{
		token:      token,
		apiURL:     diffbotArticleURL,
		maxRetries: maxRetries,
	}
}

func (d *Diffbot) Name() types.Method {
	return types.MethodPrimary
}

type diffbotResponse struct {
	Error   string `json:"error"`
	Objects []struct {
		Title  string `json:"title"`
		Text   string `json:"text"`
		Author string `json:"author"`
		Date   string `json:"date"`
	} `json:"objects"`
}

// Fetch requests the article behind pageURL. HTTP and API-embedded failures
// are mapped onto the fetch error taxonomy; a 403 (or embedded forbidden
// message) is marked retryable while attempt < maxRetries.
func (d *Diffbot) Fetch(ctx context.Context, pageURL string, attempt int) (*types.Page, error) {
	params := url.Values{
		"token":   {d.token},
		"url":     {pageURL},
		"fields":  {"title,text,author,date,siteName"},
		"timeout": {"30000"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &types.FetchError{Kind: types.ErrUnknown, Message: err.Error()}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, d.classifyTransportError(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to body handling
	case http.StatusTooManyRequests:
		return nil, &types.FetchError{Kind: types.ErrRateLimited, Message: "HTTP 429 - Too Many Requests"}
	case http.StatusForbidden:
		return nil, d.forbidden("HTTP 403 - Access Forbidden", attempt)
	case http.StatusInternalServerError:
		return nil, &types.FetchError{Kind: types.ErrServer, Message: "HTTP 500 - Server Error"}
	default:
		return nil, &types.FetchError{Kind: types.ErrUnknown, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	var body diffbotResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &types.FetchError{Kind: types.ErrMalformed, Message: fmt.Sprintf("decoding response: %v", err)}
	}

	if body.Error != "" {
		return nil, d.classifyAPIError(body.Error, attempt)
	}

	if len(body.Objects) == 0 {
		return nil, &types.FetchError{Kind: types.ErrNoContent, Message: "no article content found"}
	}

	obj := body.Objects[0]
	return &types.Page{
		Title:  obj.Title,
		Text:   obj.Text,
		Author: obj.Author,
		Date:   obj.Date,
	}, nil
}

// classifyAPIError maps error strings embedded in a 200 response. Diffbot
// reports rate limits and blocked fetches this way rather than via status
// codes.
func (d *Diffbot) classifyAPIError(msg string, attempt int) *types.FetchError {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "rate limit") || strings.Contains(msg, "429"):
		return &types.FetchError{Kind: types.ErrRateLimited, Message: msg}
	case strings.Contains(msg, "403") || strings.Contains(lower, "forbidden"):
		return d.forbidden(msg, attempt)
	case strings.Contains(lower, "could not download"):
		return &types.FetchError{Kind: types.ErrConnection, Message: msg}
	default:
		return &types.FetchError{Kind: types.ErrUnknown, Message: msg}
	}
}

func (d *Diffbot) forbidden(msg string, attempt int) *types.FetchError {
	return &types.FetchError{
		Kind:      types.ErrForbidden,
		Message:   msg,
		Retryable: attempt < d.maxRetries,
	}
}

func (d *Diffbot) classifyTransportError(err error) *types.FetchError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &types.FetchError{Kind: types.ErrTimeout, Message: "request timeout (>45s)"}
	}
	return &types.FetchError{Kind: types.ErrConnection, Message: err.Error()}
}
