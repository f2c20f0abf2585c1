package extractor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunch_FirstProfileWins(t *testing.T) {
	var tried []string
	profile, err := Launch(DefaultProfiles, func(p LaunchProfile) error {
		tried = append(tried, p.Name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "chrome-stealth", profile.Name)
	assert.Equal(t, []string{"chrome-stealth"}, tried)
}

func TestLaunch_FallsBackInOrder(t *testing.T) {
	var tried []string
	profile, err := Launch(DefaultProfiles, func(p LaunchProfile) error {
		tried = append(tried, p.Name)
		if p.Stealth {
			return errors.New("browser closed")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "plain", profile.Name)
	assert.Equal(t, []string{"chrome-stealth", "chromium-stealth", "plain"}, tried)
}

func TestLaunch_Exhausted(t *testing.T) {
	cause := errors.New("no display")
	_, err := Launch(DefaultProfiles, func(p LaunchProfile) error {
		return cause
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProfilesExhausted)
	assert.ErrorIs(t, err, cause)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Len(t, exhausted.Attempts, 3)
	assert.Equal(t, "chromium-stealth", exhausted.Attempts[1].Profile)
	assert.Contains(t, err.Error(), "plain: no display")
}

func TestLaunch_NoProfiles(t *testing.T) {
	_, err := Launch(nil, func(p LaunchProfile) error {
		t.Fatal("try must not be called")
		return nil
	})
	assert.ErrorIs(t, err, ErrProfilesExhausted)
}

func TestDefaultProfiles(t *testing.T) {
	require.Len(t, DefaultProfiles, 3)
	assert.Equal(t, "chrome", DefaultProfiles[0].Channel)
	assert.Contains(t, DefaultProfiles[0].Args, "--disable-dev-shm-usage")
	assert.NotContains(t, DefaultProfiles[1].Args, "--disable-dev-shm-usage")
	assert.Empty(t, DefaultProfiles[1].Channel)
	assert.False(t, DefaultProfiles[2].Stealth)
	assert.Empty(t, DefaultProfiles[2].Args)
}

func TestFlagName(t *testing.T) {
	name, value, ok := flagName("--disable-blink-features=AutomationControlled")
	assert.Equal(t, "disable-blink-features", name)
	assert.Equal(t, "AutomationControlled", value)
	assert.True(t, ok)

	name, _, ok = flagName("--no-sandbox")
	assert.Equal(t, "no-sandbox", name)
	assert.False(t, ok)
}

func TestDecodeCandidates(t *testing.T) {
	result := []interface{}{
		map[string]interface{}{"title": "SWE Intern", "href": "https://acme.example/1"},
		map[string]interface{}{"title": "Grad Program", "href": ""},
	}
	candidates, err := decodeCandidates(result)
	require.NoError(t, err)
	assert.Equal(t, []Candidate{
		{Title: "SWE Intern", Href: "https://acme.example/1"},
		{Title: "Grad Program"},
	}, candidates)

	candidates, err = decodeCandidates(nil)
	require.NoError(t, err)
	assert.NotNil(t, candidates)
	assert.Empty(t, candidates)

	_, err = decodeCandidates("not a list")
	assert.Error(t, err)
}
