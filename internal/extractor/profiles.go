package extractor

import (
	"errors"
	"fmt"
	"strings"
)

// UserAgent is presented by stealth profiles
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// AcceptLanguage is sent by stealth profiles and the static engine
const AcceptLanguage = "en-US,en;q=0.9"

// Viewport of stealth profiles
const (
	ViewportWidth  = 1280
	ViewportHeight = 800
)

// stealthScript masks the most common automation fingerprints before any page script runs
const stealthScript = `(() => {
	Object.defineProperty(navigator, 'webdriver', {get: () => undefined});
	Object.defineProperty(navigator, 'languages', {get: () => ['en-US', 'en']});
	Object.defineProperty(navigator, 'plugins', {get: () => [1, 2, 3]});
	window.chrome = { runtime: {} };
})();`

// extractScript is evaluated in the page with the selector as argument and
// returns [{title, href}] with the title and link fallback chains applied.
const extractScript = `(selector) => Array.from(document.querySelectorAll(selector)).map((el) => {
	const text = (node) => (node && node.innerText ? node.innerText.trim() : '');
	let title = text(el.querySelector('h3'));
	if (!title) title = text(el.querySelector('.position-title'));
	if (!title) title = text(el);
	let href = el.getAttribute('href');
	if (!href) {
		const nested = el.querySelector('a');
		href = nested ? nested.href : '';
	}
	if (!href) {
		const enclosing = el.closest('a');
		href = enclosing ? enclosing.href : '';
	}
	return { title: title, href: href || '' };
})`

// LaunchProfile is one browser launch strategy
type LaunchProfile struct {
	Name string
	// Channel selects a branded browser build ("chrome"); empty is bundled chromium
	Channel string
	Args    []string
	// Stealth enables the user agent, viewport, locale and init script overrides
	Stealth bool
}

// DefaultProfiles is the fallback order tried for every site
var DefaultProfiles = []LaunchProfile{
	{
		Name:    "chrome-stealth",
		Channel: "chrome",
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-infobars",
			"--no-sandbox",
			"--disable-dev-shm-usage",
		},
		Stealth: true,
	},
	{
		Name: "chromium-stealth",
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-infobars",
			"--no-sandbox",
		},
		Stealth: true,
	},
	{
		Name: "plain",
	},
}

// ErrProfilesExhausted is returned by Launch when every profile failed
var ErrProfilesExhausted = errors.New("all launch profiles failed")

// ProfileError records why one profile could not be used
type ProfileError struct {
	Profile string
	Err     error
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Profile, e.Err)
}

func (e *ProfileError) Unwrap() error {
	return e.Err
}

// ExhaustedError lists every failed attempt
type ExhaustedError struct {
	Attempts []*ProfileError
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Error()
	}
	return fmt.Sprintf("%v: %s", ErrProfilesExhausted, strings.Join(parts, "; "))
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrProfilesExhausted
}

func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a
	}
	return errs
}

// Launch tries profiles in order and stops at the first one for which try
// succeeds, returning it. If none succeeds the result is an *ExhaustedError.
func Launch(profiles []LaunchProfile, try func(LaunchProfile) error) (LaunchProfile, error) {
	exhausted := &ExhaustedError{}
	for i := 0; i < len(profiles); i++ {
		err := try(profiles[i])
		if err == nil {
			return profiles[i], nil
		}
		exhausted.Attempts = append(exhausted.Attempts, &ProfileError{Profile: profiles[i].Name, Err: err})
	}
	return LaunchProfile{}, exhausted
}

// flagName splits "--name=value" into its parts. Value is "" for bare flags.
func flagName(arg string) (name, value string, hasValue bool) {
	arg = strings.TrimLeft(arg, "-")
	name, value, hasValue = strings.Cut(arg, "=")
	return name, value, hasValue
}
