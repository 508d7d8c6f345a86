/*
Package ai extracts quotes, speakers and locations from article text via the
Gemini API, defending against malformed, truncated and safety-blocked
responses. Exhausted retries yield the canonical empty extraction; no error
ever propagates to the caller.
*/
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"google.golang.org/genai"

	"github.com/warta-labs/quotewire/internal/types"
)

// Extractor sends article text to the model under the fixed prompt contract
// and normalizes whatever comes back to the canonical schema.
type Extractor struct {
	client        *genai.Client
	model         string
	temperature   float32
	maxRetries    int
	maxContentLen int
	backoffBase   time.Duration
	timeout       time.Duration
	sleep         func(time.Duration)
}

// ExtractorOptions tune the extractor; zero values get the defaults the batch
// pipeline runs with in production.
type ExtractorOptions struct {
	Model         string
	Temperature   float32
	MaxRetries    int           // attempts per article (default 3)
	MaxContentLen int           // cost/latency bound on submitted text (default 6000)
	BackoffBase   time.Duration // exponential backoff base (default 2s)
	Timeout       time.Duration // wall clock per article in the bounded path (default 60s)
}

func NewExtractor(ctx context.Context, apiKey string, opts ExtractorOptions) (*Extractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.0-flash-exp"
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.1
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.MaxContentLen <= 0 {
		opts.MaxContentLen = 6000
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 2 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Extractor{
		client:        client,
		model:         opts.Model,
		temperature:   opts.Temperature,
		maxRetries:    opts.MaxRetries,
		maxContentLen: opts.MaxContentLen,
		backoffBase:   opts.BackoffBase,
		timeout:       opts.Timeout,
		sleep:         time.Sleep,
	}, nil
}

// Extract runs the model over content and returns the normalized result.
// Transport and rate-limit failures are retried with exponential backoff;
// safety blocks and truncated generations return the empty result directly
// since retrying buys nothing there.
func (e *Extractor) Extract(ctx context.Context, content string) types.Extraction {
	prompt := buildPrompt(truncate(content, e.maxContentLen))

	contents := []*genai.Content{
		{
			Parts: []*genai.Part{{Text: prompt}},
			Role:  "user",
		},
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](e.temperature),
		TopP:            genai.Ptr[float32](0.95),
		TopK:            genai.Ptr[float32](40),
		MaxOutputTokens: 8192,
	}

	for attempt := 0; attempt < e.maxRetries; attempt++ {
		start := time.Now()
		resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, cfg)
		if err != nil {
			if isRateLimitShaped(err) {
				log.Printf("extractor: rate limit from API: %v", err)
			} else {
				log.Printf("extractor: gemini error (attempt %d): %v", attempt+1, err)
			}
			if attempt < e.maxRetries-1 {
				e.sleep(e.backoff(attempt))
				continue
			}
			return types.EmptyExtraction()
		}

		if d := time.Since(start); d > 10*time.Second {
			log.Printf("extractor: API took %.1fs (slow)", d.Seconds())
		}

		if len(resp.Candidates) == 0 {
			logBlockReason(resp)
			if attempt < e.maxRetries-1 {
				e.sleep(e.backoff(attempt))
				continue
			}
			return types.EmptyExtraction()
		}

		cand := resp.Candidates[0]
		if cand.FinishReason != genai.FinishReasonStop && cand.FinishReason != "" {
			// Truncated or filtered generation: a retry would hit the same
			// filter, so report nothing found.
			log.Printf("extractor: generation stopped: %s", cand.FinishReason)
			return types.EmptyExtraction()
		}

		text := resp.Text()
		if strings.TrimSpace(text) == "" {
			log.Printf("extractor: empty response text (attempt %d)", attempt+1)
			if attempt < e.maxRetries-1 {
				e.sleep(e.backoff(attempt))
				continue
			}
			return types.EmptyExtraction()
		}

		return parseResponse(text)
	}

	return types.EmptyExtraction()
}

// ExtractBounded runs Extract under the per-article wall-clock budget. On
// timeout the result carries sentinel province/city values so the persisted
// row distinguishes "timed out" from "nothing found".
func (e *Extractor) ExtractBounded(ctx context.Context, content string) types.Extraction {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan types.Extraction, 1)
	go func() {
		done <- e.Extract(ctx, content)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		log.Printf("extractor: timed out after %s", e.timeout)
		return types.Extraction{
			Quotes:   []string{},
			Speakers: []string{},
			Province: types.TimeoutSentinel,
			City:     types.TimeoutSentinel,
			Err:      types.ExtractionTimeout,
		}
	}
}

func (e *Extractor) backoff(attempt int) time.Duration {
	return e.backoffBase << attempt
}

// truncate caps content at max bytes, backing off to a rune boundary so a
// multi-byte character is never split at the cut.
func truncate(content string, max int) string {
	if len(content) <= max {
		return content
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}

// parseResponse strips formatting artifacts, parses the JSON and coerces every
// field independently so a partial-schema response still yields usable data.
func parseResponse(text string) types.Extraction {
	cleaned := stripCodeFences(text)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		log.Printf("extractor: JSON error: %v", err)
		return types.EmptyExtraction()
	}

	return types.Extraction{
		Quotes:   coerceStrings(raw["quotes"]),
		Speakers: coerceStrings(raw["speakers"]),
		Province: coerceString(raw["province"]),
		City:     coerceString(raw["city"]),
	}
}

// stripCodeFences removes the markdown wrapping the model frequently puts
// around JSON despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.ReplaceAll(s, "```json", "")
		s = strings.ReplaceAll(s, "```", "")
	} else if strings.HasPrefix(s, "```") {
		s = strings.ReplaceAll(s, "```", "")
	}
	return strings.TrimSpace(s)
}

func coerceStrings(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func coerceString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var out string
	if err := json.Unmarshal(raw, &out); err != nil {
		return ""
	}
	return out
}

func logBlockReason(resp *genai.GenerateContentResponse) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		log.Printf("extractor: prompt blocked: %s", resp.PromptFeedback.BlockReason)
		return
	}
	log.Printf("extractor: no candidates in response")
}

// isRateLimitShaped reports whether an API error looks like throttling; these
// get a distinct log line because the fix is pacing, not the article.
func isRateLimitShaped(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "resource exhausted")
}
