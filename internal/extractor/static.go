package extractor

import (
	"context"
	"errors"
	"io"
	"strings"

	"swecron/helpers"
	"swecron/logger"
	apperrors "swecron/pkg/errors"
	"swecron/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// FetchFunc fetches a page body as UTF-8
type FetchFunc func(ctx context.Context, url string) (io.Reader, error)

// StaticExtractor reads server-rendered pages over plain HTTP. Pages that
// build their listings with JavaScript yield nothing here.
type StaticExtractor struct {
	fetch     FetchFunc
	blocklist *cache.Blocklist
}

// NewStaticExtractor creates a static engine. blocklist may be nil.
func NewStaticExtractor(blocklist *cache.Blocklist) *StaticExtractor {
	return &StaticExtractor{
		fetch:     helpers.FetchWithRandomHeaders,
		blocklist: blocklist,
	}
}

// Start is a no-op; the static engine has no external dependency
func (s *StaticExtractor) Start(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (s *StaticExtractor) Close() error {
	return nil
}

// Extract fetches req.URL and returns the elements matching req.Selector
func (s *StaticExtractor) Extract(ctx context.Context, req Request) ([]Candidate, error) {
	// Check if the site is rate limited
	if s.blocklist.Blocked(req.Site) {
		return nil, apperrors.NewExtraction(req.Site, "skipped while rate limit block is active", nil)
	}

	ctx, cancel := withTimeout(ctx, req.NavigationTimeout)
	defer cancel()

	body, err := s.fetch(ctx, req.URL)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeRateLimit {
			if blockErr := s.blocklist.Block(req.Site, appErr.RetryAfter); blockErr != nil {
				logger.ForSite(req.Site).Warn().Err(blockErr).Msg("Failed to record rate limit block")
			}
		}
		return nil, apperrors.NewExtraction(req.Site, "fetch failed", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, apperrors.NewExtraction(req.Site, "HTML parse failed", err)
	}

	sel := doc.Find(req.Selector)
	candidates := make([]Candidate, 0, sel.Length())
	sel.Each(func(_ int, el *goquery.Selection) {
		candidates = append(candidates, Candidate{
			Title: candidateTitle(el),
			Href:  candidateHref(el),
		})
	})
	return candidates, nil
}

// candidateTitle applies the h3 -> .position-title -> element text fallback
func candidateTitle(el *goquery.Selection) string {
	if title := strings.TrimSpace(el.Find("h3").First().Text()); title != "" {
		return title
	}
	if title := strings.TrimSpace(el.Find(".position-title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(el.Text())
}

// candidateHref applies the href -> nested anchor -> enclosing anchor fallback
func candidateHref(el *goquery.Selection) string {
	if href, ok := el.Attr("href"); ok && href != "" {
		return href
	}
	if href, ok := el.Find("a").First().Attr("href"); ok && href != "" {
		return href
	}
	if href, ok := el.Closest("a").Attr("href"); ok && href != "" {
		return href
	}
	return ""
}
