package extractor

import (
	"context"
	"encoding/json"
	"fmt"

	"swecron/logger"
	apperrors "swecron/pkg/errors"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightExtractor drives a headless browser through playwright. Every
// site gets a fresh browser launched with the first working profile.
type PlaywrightExtractor struct {
	profiles []LaunchProfile
	pw       *playwright.Playwright
}

// NewPlaywrightExtractor creates a playwright engine; nil profiles uses DefaultProfiles
func NewPlaywrightExtractor(profiles []LaunchProfile) *PlaywrightExtractor {
	if len(profiles) == 0 {
		profiles = DefaultProfiles
	}
	return &PlaywrightExtractor{profiles: profiles}
}

// Start launches the playwright driver
func (e *PlaywrightExtractor) Start(ctx context.Context) error {
	pw, err := playwright.Run()
	if err != nil {
		return apperrors.NewDependency("playwright is not installed (run: go run github.com/playwright-community/playwright-go/cmd/playwright install --with-deps chromium)", err)
	}
	e.pw = pw
	logger.ForExtractor(EnginePlaywright).Debug().Int("profiles", len(e.profiles)).Msg("Playwright driver started")
	return nil
}

// Close stops the playwright driver
func (e *PlaywrightExtractor) Close() error {
	if e.pw == nil {
		return nil
	}
	err := e.pw.Stop()
	e.pw = nil
	return err
}

type playwrightSession struct {
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

func (s *playwrightSession) close() {
	if s.context != nil {
		s.context.Close()
	}
	if s.browser != nil {
		s.browser.Close()
	}
}

// open launches a browser with profile and opens a page in it
func (e *PlaywrightExtractor) open(profile LaunchProfile) (*playwrightSession, error) {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args:     profile.Args,
	}
	if profile.Channel != "" {
		opts.Channel = playwright.String(profile.Channel)
	}

	session := &playwrightSession{}
	browser, err := e.pw.Chromium.Launch(opts)
	if err != nil {
		return nil, fmt.Errorf("launch: %w", err)
	}
	session.browser = browser

	var ctxOpts playwright.BrowserNewContextOptions
	if profile.Stealth {
		ctxOpts = playwright.BrowserNewContextOptions{
			UserAgent:        playwright.String(UserAgent),
			Viewport:         &playwright.Size{Width: ViewportWidth, Height: ViewportHeight},
			Locale:           playwright.String("en-US"),
			ExtraHttpHeaders: map[string]string{"Accept-Language": AcceptLanguage},
		}
	}
	bctx, err := browser.NewContext(ctxOpts)
	if err != nil {
		session.close()
		return nil, fmt.Errorf("new context: %w", err)
	}
	session.context = bctx

	if profile.Stealth {
		if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(stealthScript)}); err != nil {
			session.close()
			return nil, fmt.Errorf("init script: %w", err)
		}
	}

	page, err := bctx.NewPage()
	if err != nil {
		session.close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	session.page = page
	return session, nil
}

// Extract loads req.URL in a fresh browser and evaluates the extraction script
func (e *PlaywrightExtractor) Extract(ctx context.Context, req Request) ([]Candidate, error) {
	if e.pw == nil {
		return nil, apperrors.NewDependency("playwright engine not started", nil)
	}
	log := logger.ForSite(req.Site)

	var session *playwrightSession
	profile, err := Launch(e.profiles, func(p LaunchProfile) error {
		s, err := e.open(p)
		if err != nil {
			log.Debug().Err(err).Str("profile", p.Name).Msg("Launch profile failed")
			return err
		}
		session = s
		return nil
	})
	if err != nil {
		return nil, apperrors.NewExtraction(req.Site, "browser launch failed", err)
	}
	defer session.close()
	log.Debug().Str("profile", profile.Name).Msg("Browser launched")

	page := session.page
	if _, err := page.Goto(req.URL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(req.NavigationTimeout.Milliseconds())),
	}); err != nil {
		return nil, apperrors.NewExtraction(req.Site, "navigation failed", err)
	}

	if req.SettleDelay > 0 {
		page.WaitForTimeout(float64(req.SettleDelay.Milliseconds()))
	}

	if _, err := page.WaitForSelector(req.Selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(req.SelectorTimeout.Milliseconds())),
	}); err != nil {
		log.Debug().Err(err).Str("selector", req.Selector).Msg("Selector did not appear, extracting what is present")
	}

	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewExtraction(req.Site, "cancelled", err)
	}

	result, err := page.Evaluate(extractScript, req.Selector)
	if err != nil {
		return nil, apperrors.NewExtraction(req.Site, "extraction script failed", err)
	}
	return decodeCandidates(result)
}

// decodeCandidates converts the script result (a JSON-like value) into candidates
func decodeCandidates(result interface{}) ([]Candidate, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode script result: %w", err)
	}
	var candidates []Candidate
	if err := json.Unmarshal(raw, &candidates); err != nil {
		return nil, fmt.Errorf("decode script result: %w", err)
	}
	if candidates == nil {
		candidates = []Candidate{}
	}
	return candidates, nil
}
