// Package extractor turns a career page and a selector into raw job candidates.
//
// Three engines implement Extractor: a static HTTP engine built on goquery,
// and two browser engines (playwright, chromedp) that share the same launch
// profiles and in-page extraction script.
package extractor

import (
	"context"
	"net/url"
	"strings"
	"time"

	"swecron/internal/filter"
	"swecron/internal/posting"
)

// Request describes one page extraction
type Request struct {
	Site     string
	URL      string
	Selector string

	// NavigationTimeout bounds the page load.
	NavigationTimeout time.Duration
	// SettleDelay is waited unconditionally after the load.
	SettleDelay time.Duration
	// SelectorTimeout bounds the wait for Selector to appear. Expiry is not an error.
	SelectorTimeout time.Duration
}

// Candidate is one element matched by the selector
type Candidate struct {
	Title string `json:"title"`
	Href  string `json:"href"`
}

// Extractor loads pages and returns the elements matching a selector
type Extractor interface {
	// Start checks the engine is available. Failure is a dependency error.
	Start(ctx context.Context) error
	// Extract loads req.URL and returns one candidate per matched element
	Extract(ctx context.Context, req Request) ([]Candidate, error)
	// Close releases the engine
	Close() error
}

// ResolveLink turns an extracted href into the posting URL. Empty yields
// "" (absent). Links starting with "http" are kept as is; anything else is
// resolved against pageURL with its query removed.
func ResolveLink(pageURL, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}

	base := pageURL
	if i := strings.Index(base, "?"); i >= 0 {
		base = base[:i]
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// Postings applies the relevance filter to candidates and builds postings
// for site, resolving links against pageURL.
func Postings(site, pageURL string, candidates []Candidate, relevance *filter.Relevance) []posting.Posting {
	out := make([]posting.Posting, 0, len(candidates))
	for _, c := range candidates {
		title := strings.TrimSpace(c.Title)
		if !relevance.Include(site, title) {
			continue
		}
		out = append(out, posting.New(site, title, ResolveLink(pageURL, c.Href)))
	}
	return out
}

// withTimeout bounds ctx by d; a non-positive d leaves ctx unbounded
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
