package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"swecron/cmd"
	apperrors "swecron/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// This is a simple test HTML that mimics a career page
const testHTML = `
<!DOCTYPE html>
<html>
<head>
    <title>Acme Careers</title>
</head>
<body>
    <div class="list">
        <div class="job-card">
            <h3>Software Engineering Intern</h3>
            <a href="/jobs/1">Apply</a>
        </div>
        <div class="job-card">
            <h3>Senior Staff Engineer</h3>
            <a href="/jobs/2">Apply</a>
        </div>
    </div>
</body>
</html>
`

// pushoverRecorder captures Pushover API calls
type pushoverRecorder struct {
	mu       sync.Mutex
	messages []string
}

func (p *pushoverRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	message := r.FormValue("message")
	p.mu.Lock()
	p.messages = append(p.messages, message)
	p.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Limit-App-Limit", "10000")
	w.Header().Set("X-Limit-App-Remaining", "9999")
	w.Header().Set("X-Limit-App-Reset", "1893456000")
	io.WriteString(w, `{"status":1,"request":"test"}`)
}

func (p *pushoverRecorder) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

type testEnv struct {
	dir      string
	listings string
	pushover *pushoverRecorder
	careers  *httptest.Server
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	// Create a test server that serves the test HTML
	careers := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, testHTML)
	}))
	t.Cleanup(careers.Close)

	recorder := &pushoverRecorder{}
	pushover := httptest.NewServer(recorder)
	t.Cleanup(pushover.Close)

	dir := t.TempDir()
	sites := filepath.Join(dir, "links.json")
	config := `{"Acme": {"link": "` + careers.URL + `/jobs?team=eng", "tag": "job-card"}}`
	require.NoError(t, os.WriteFile(sites, []byte(config), 0644))

	env := &testEnv{
		dir:      dir,
		listings: filepath.Join(dir, "listings.json"),
		pushover: recorder,
		careers:  careers,
	}

	t.Setenv("SITES_PATH", sites)
	t.Setenv("LISTINGS_PATH", env.listings)
	t.Setenv("ENGINE", "static")
	t.Setenv("STORE_BACKEND", "file")
	t.Setenv("PUSHOVER_TOKEN", "azGDORePK8gMaC0QOYAMyEEuzJnyUi")
	t.Setenv("PUSHOVER_USER", "uQiRzpo4DXghDmr9QzzfQu27cmVRsG")
	t.Setenv("PUSHOVER_API_URL", pushover.URL)
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("MEMCACHE_ADDR", "")
	t.Setenv("SCHEDULE", "")
	t.Setenv("PUSHGATEWAY_URL", "")
	t.Setenv("KEYWORDS", "")
	return env
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := cmd.NewRootCommand(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// TestIntegration tests the entire application flow
func TestIntegration(t *testing.T) {
	env := setupEnv(t)

	// Dry run prints and touches nothing
	out, err := execute(t)
	require.NoError(t, err)
	assert.Equal(t, "\n1 intern job postings (scraped):\n- [Acme] Software Engineering Intern -> "+env.careers.URL+"/jobs/1\n", out)
	assert.NoFileExists(t, env.listings)
	assert.Zero(t, env.pushover.count())

	// First write run records and notifies
	_, err = execute(t, "--write")
	require.NoError(t, err)
	assert.Equal(t, 1, env.pushover.count())
	assert.True(t, strings.HasPrefix(env.pushover.messages[0], "SWE Cron - New Listings:\nAcme\n\n[Acme]\nSoftware Engineering Intern\n"))

	first, err := os.ReadFile(env.listings)
	require.NoError(t, err)
	assert.Contains(t, string(first), `"url": "`+env.careers.URL+`/jobs/1"`)
	assert.Contains(t, string(first), `"date": "`)

	// Second write run finds nothing new and leaves the snapshot alone
	_, err = execute(t, "--write", "--company", "acme")
	require.NoError(t, err)
	assert.Equal(t, 1, env.pushover.count())

	second, err := os.ReadFile(env.listings)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestIntegration_UnknownCompany(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "--company=Initech")
	require.Error(t, err)
	assert.Equal(t, apperrors.ExitConfiguration, apperrors.ExitCode(err))
	assert.Contains(t, err.Error(), "Acme")
}

func TestIntegration_MissingCredentials(t *testing.T) {
	setupEnv(t)
	t.Setenv("PUSHOVER_USER", "")

	_, err := execute(t)
	require.Error(t, err)
	assert.Equal(t, apperrors.ExitConfiguration, apperrors.ExitCode(err))
}

func TestIntegration_MalformedSnapshot(t *testing.T) {
	env := setupEnv(t)
	require.NoError(t, os.WriteFile(env.listings, []byte(`[{"site": "Acme",`), 0644))

	_, err := execute(t, "--write")
	require.Error(t, err)
	assert.Equal(t, apperrors.ExitStore, apperrors.ExitCode(err))
	assert.Zero(t, env.pushover.count())
}

func TestIntegration_MissingSiteConfig(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "--sites", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ExitConfiguration, apperrors.ExitCode(err))
	assert.Contains(t, err.Error(), "not found")
}
