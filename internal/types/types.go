package types

import (
	"fmt"
)

// PageBreakMarker joins the bodies of a multi-page article into one text blob.
const PageBreakMarker = "\n\n---PAGE BREAK---\n\n"

// TimeoutSentinel marks fields of rows whose extraction exceeded the wall-clock
// budget, so consumers can tell "timed out" apart from "nothing found".
const TimeoutSentinel = "ERROR TIMEOUT"

// InputRecord is one row of the link input feed.
type InputRecord struct {
	ID   string
	Date string
	URL  string
}

// ErrorKind classifies a page fetch failure.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrRateLimited
	ErrForbidden
	ErrServer
	ErrTimeout
	ErrConnection
	ErrNoContent
	ErrMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case ErrRateLimited:
		return "RATE_LIMIT"
	case ErrForbidden:
		return "FORBIDDEN"
	case ErrServer:
		return "SERVER_ERROR"
	case ErrTimeout:
		return "TIMEOUT"
	case ErrConnection:
		return "CONNECTION_ERROR"
	case ErrNoContent:
		return "NO_CONTENT"
	case ErrMalformed:
		return "MALFORMED"
	default:
		return "UNKNOWN"
	}
}

// FetchError is the failure half of a page fetch result. Retryable is set on
// forbidden responses while the caller's attempt counter has retries left, so
// the scrape state machine knows to repeat the identical request instead of
// falling back.
type FetchError struct {
	Kind      ErrorKind
	Message   string
	Retryable bool
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Page is the success half of a page fetch result.
type Page struct {
	Title  string
	Text   string
	Author string
	Date   string
}

// Method records which provider produced an article.
type Method string

const (
	MethodPrimary  Method = "diffbot"
	MethodFallback Method = "readability"
)

// Article is a fully scraped, page-merged article.
type Article struct {
	ID            string
	Date          string
	URL           string
	Title         string
	Author        string
	Text          string // pages joined with PageBreakMarker
	PagesScraped  int
	Method        Method
	IngestionTime string
}

// ExtractionError tags an extraction that failed in a way downstream output
// must surface rather than swallow.
type ExtractionError string

const (
	ExtractionOK      ExtractionError = ""
	ExtractionTimeout ExtractionError = "timeout"
)

// Extraction is the normalized result of one model call. Quotes and Speakers
// are positionally aligned; the model can violate the 1:1 contract, so
// consumers must substitute an empty speaker for any out-of-range index.
type Extraction struct {
	Quotes   []string
	Speakers []string
	Province string
	City     string
	Err      ExtractionError
}

// EmptyExtraction is the canonical nothing-found result.
func EmptyExtraction() Extraction {
	return Extraction{Quotes: []string{}, Speakers: []string{}}
}

// RosterEntry is one known person from the whitelist feed. Alias holds the raw
// comma-separated, lower-cased alias list as loaded.
type RosterEntry struct {
	FullName string
	Role     string
	Category string
	Alias    string
}

// IsZero reports whether the entry is the no-match sentinel.
func (e RosterEntry) IsZero() bool {
	return e.FullName == "" && e.Role == "" && e.Category == "" && e.Alias == ""
}

// ParseResult carries one article's extraction joined with its identity
// columns, ready for flattening.
type ParseResult struct {
	ID         string
	Date       string
	Source     string
	Extraction Extraction
}

// Row is one line of the final output feed: one quote paired with its speaker
// and resolved roster identity, or a single placeholder row for quoteless
// articles.
type Row struct {
	ID       string
	Date     string
	Source   string
	Quote    string
	Speaker  string
	Province string
	City     string
	Role     string
	Category string
	Alias    string
	FullName string
}
