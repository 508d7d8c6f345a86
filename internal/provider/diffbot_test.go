package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/warta-labs/quotewire/internal/types"
)

func testDiffbot(t *testing.T, handler http.HandlerFunc) *Diffbot {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	d := NewDiffbot("test-token", 3)
	d.apiURL = srv.URL
	return d
}

func fetchKind(t *testing.T, d *Diffbot, attempt int) *types.FetchError {
	t.Helper()
	_, err := d.Fetch(context.Background(), "https://example.com/a", attempt)
	if err == nil {
		t.Fatal("Fetch() = nil error, want failure")
	}
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error is %T, want *types.FetchError", err)
	}
	return fe
}

func TestDiffbotFetchSuccess(t *testing.T) {
	d := testDiffbot(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("token"); got != "test-token" {
			t.Errorf("token = %q", got)
		}
		if got := r.URL.Query().Get("url"); got != "https://example.com/a" {
			t.Errorf("url param = %q", got)
		}
		fmt.Fprint(w, `{"objects": [{"title": "Judul", "text": "isi artikel", "author": "Budi", "date": "2025-01-02"}]}`)
	})

	page, err := d.Fetch(context.Background(), "https://example.com/a", 0)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if page.Title != "Judul" || page.Text != "isi artikel" || page.Author != "Budi" {
		t.Errorf("page = %+v", page)
	}
}

func TestDiffbotStatusCodeMapping(t *testing.T) {
	tests := []struct {
		status int
		kind   types.ErrorKind
	}{
		{http.StatusTooManyRequests, types.ErrRateLimited},
		{http.StatusForbidden, types.ErrForbidden},
		{http.StatusInternalServerError, types.ErrServer},
		{http.StatusTeapot, types.ErrUnknown},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.status), func(t *testing.T) {
			d := testDiffbot(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})
			if fe := fetchKind(t, d, 0); fe.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", fe.Kind, tt.kind)
			}
		})
	}
}

func TestDiffbotForbiddenRetryableWhileAttemptsRemain(t *testing.T) {
	d := testDiffbot(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	if fe := fetchKind(t, d, 0); !fe.Retryable {
		t.Error("attempt 0: Retryable = false, want true")
	}
	if fe := fetchKind(t, d, 2); !fe.Retryable {
		t.Error("attempt 2: Retryable = false, want true")
	}
	if fe := fetchKind(t, d, 3); fe.Retryable {
		t.Error("attempt 3: Retryable = true, want false after the retry budget")
	}
}

func TestDiffbotEmbeddedAPIErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind types.ErrorKind
	}{
		{"rate limit", `{"error": "Rate limit exceeded"}`, types.ErrRateLimited},
		{"embedded 429", `{"error": "Request failed with 429"}`, types.ErrRateLimited},
		{"forbidden", `{"error": "403 Forbidden by origin"}`, types.ErrForbidden},
		{"download failure", `{"error": "Could not download page"}`, types.ErrConnection},
		{"anything else", `{"error": "internal oddity"}`, types.ErrUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDiffbot(t, func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, tt.body)
			})
			if fe := fetchKind(t, d, 0); fe.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", fe.Kind, tt.kind)
			}
		})
	}
}

func TestDiffbotEmptyObjectsIsNoContent(t *testing.T) {
	d := testDiffbot(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"objects": []}`)
	})
	if fe := fetchKind(t, d, 0); fe.Kind != types.ErrNoContent {
		t.Errorf("Kind = %v, want %v", fe.Kind, types.ErrNoContent)
	}
}

func TestDiffbotMalformedBody(t *testing.T) {
	d := testDiffbot(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "not json")
	})
	if fe := fetchKind(t, d, 0); fe.Kind != types.ErrMalformed {
		t.Errorf("Kind = %v, want %v", fe.Kind, types.ErrMalformed)
	}
}
