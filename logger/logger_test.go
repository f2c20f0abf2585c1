package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestGetLogLevel(t *testing.T) {
	testCases := []struct {
		name        string
		logLevel    string
		environment string
		expected    zerolog.Level
	}{
		{"explicit level", "warn", "", zerolog.WarnLevel},
		{"invalid level", "loud", "", zerolog.InfoLevel},
		{"production default", "", "production", zerolog.InfoLevel},
		{"development default", "", "development", zerolog.DebugLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tc.logLevel)
			t.Setenv("SWECRON_ENVIRONMENT", tc.environment)
			assert.Equal(t, tc.expected, getLogLevel())
		})
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{logger: zerolog.New(&buf)}

	l.WithFields(Fields{"component": "notifier", "transport": "pushover"}).Info().Msg("sent")

	assert.Contains(t, buf.String(), `"component":"notifier"`)
	assert.Contains(t, buf.String(), `"transport":"pushover"`)
	assert.Contains(t, buf.String(), `"message":"sent"`)
}

func TestForSite(t *testing.T) {
	var buf bytes.Buffer
	previous := Default
	Default = &Logger{logger: zerolog.New(&buf)}
	defer func() { Default = previous }()

	ForSite("Acme").Warn().Msg("Skipping")
	ForExtractor("playwright").Info().Msg("Started")

	assert.Contains(t, buf.String(), `"site":"Acme"`)
	assert.Contains(t, buf.String(), `"engine":"playwright"`)
}
