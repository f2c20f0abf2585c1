package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"swecron/logger"
	apperrors "swecron/pkg/errors"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// chromeChannelBinaries are looked up for profiles asking for the "chrome" channel
var chromeChannelBinaries = []string{"google-chrome", "google-chrome-stable", "chrome"}

// ChromedpExtractor drives Chrome over the DevTools protocol. It shares the
// launch profiles and extraction script of the playwright engine.
type ChromedpExtractor struct {
	profiles []LaunchProfile
	lookPath func(string) (string, error)
}

// NewChromedpExtractor creates a chromedp engine; nil profiles uses DefaultProfiles
func NewChromedpExtractor(profiles []LaunchProfile) *ChromedpExtractor {
	if len(profiles) == 0 {
		profiles = DefaultProfiles
	}
	return &ChromedpExtractor{profiles: profiles, lookPath: exec.LookPath}
}

// Start checks that some Chrome or Chromium binary is installed
func (e *ChromedpExtractor) Start(ctx context.Context) error {
	candidates := append([]string{}, chromeChannelBinaries...)
	candidates = append(candidates, "chromium", "chromium-browser", "headless-shell")
	for _, name := range candidates {
		if path, err := e.lookPath(name); err == nil {
			logger.ForExtractor(EngineChromedp).Debug().Str("browser", path).Msg("Browser found")
			return nil
		}
	}
	return apperrors.NewDependency("no Chrome or Chromium binary found in PATH", nil)
}

// Close is a no-op; browsers are closed after every site
func (e *ChromedpExtractor) Close() error {
	return nil
}

// allocatorOptions translates a profile into exec allocator options
func (e *ChromedpExtractor) allocatorOptions(profile LaunchProfile) ([]chromedp.ExecAllocatorOption, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	if profile.Channel == "chrome" {
		path, err := e.findChrome()
		if err != nil {
			return nil, err
		}
		opts = append(opts, chromedp.ExecPath(path))
	}

	for _, arg := range profile.Args {
		name, value, hasValue := flagName(arg)
		if hasValue {
			opts = append(opts, chromedp.Flag(name, value))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}

	if profile.Stealth {
		opts = append(opts,
			chromedp.UserAgent(UserAgent),
			chromedp.WindowSize(ViewportWidth, ViewportHeight),
			chromedp.Flag("lang", "en-US"),
		)
	}
	return opts, nil
}

func (e *ChromedpExtractor) findChrome() (string, error) {
	for _, name := range chromeChannelBinaries {
		if path, err := e.lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("chrome channel is not installed")
}

// open starts a browser for profile and returns the tab context
func (e *ChromedpExtractor) open(ctx context.Context, profile LaunchProfile) (context.Context, context.CancelFunc, error) {
	opts, err := e.allocatorOptions(profile)
	if err != nil {
		return nil, nil, err
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	cancel := func() {
		cancelTab()
		cancelAlloc()
	}

	actions := []chromedp.Action{}
	if profile.Stealth {
		actions = append(actions,
			network.Enable(),
			network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": AcceptLanguage}),
			chromedp.ActionFunc(func(ctx context.Context) error {
				_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
				return err
			}),
		)
	}

	// The first Run starts the browser
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		cancel()
		return nil, nil, err
	}
	return tabCtx, cancel, nil
}

// Extract loads req.URL in a fresh browser and evaluates the extraction script
func (e *ChromedpExtractor) Extract(ctx context.Context, req Request) ([]Candidate, error) {
	log := logger.ForSite(req.Site)

	var (
		tabCtx context.Context
		cancel context.CancelFunc
	)
	profile, err := Launch(e.profiles, func(p LaunchProfile) error {
		c, cancelFn, err := e.open(ctx, p)
		if err != nil {
			log.Debug().Err(err).Str("profile", p.Name).Msg("Launch profile failed")
			return err
		}
		tabCtx, cancel = c, cancelFn
		return nil
	})
	if err != nil {
		return nil, apperrors.NewExtraction(req.Site, "browser launch failed", err)
	}
	defer cancel()
	log.Debug().Str("profile", profile.Name).Msg("Browser launched")

	navCtx, cancelNav := withTimeout(tabCtx, req.NavigationTimeout)
	err = chromedp.Run(navCtx, chromedp.Navigate(req.URL))
	cancelNav()
	if err != nil {
		return nil, apperrors.NewExtraction(req.Site, "navigation failed", err)
	}

	if req.SettleDelay > 0 {
		if err := chromedp.Run(tabCtx, chromedp.Sleep(req.SettleDelay)); err != nil {
			return nil, apperrors.NewExtraction(req.Site, "cancelled", err)
		}
	}

	waitCtx, cancelWait := withTimeout(tabCtx, req.SelectorTimeout)
	if err := chromedp.Run(waitCtx, chromedp.WaitReady(req.Selector, chromedp.ByQuery)); err != nil {
		log.Debug().Err(err).Str("selector", req.Selector).Msg("Selector did not appear, extracting what is present")
	}
	cancelWait()

	selector, err := json.Marshal(req.Selector)
	if err != nil {
		return nil, apperrors.NewExtraction(req.Site, "invalid selector", err)
	}
	var candidates []Candidate
	expr := fmt.Sprintf("(%s)(%s)", extractScript, selector)
	if err := chromedp.Run(tabCtx, chromedp.Evaluate(expr, &candidates)); err != nil {
		return nil, apperrors.NewExtraction(req.Site, "extraction script failed", err)
	}
	if candidates == nil {
		candidates = []Candidate{}
	}
	return candidates, nil
}
