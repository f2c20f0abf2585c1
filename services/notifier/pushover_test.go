package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	apperrors "swecron/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAppToken = "azGDORePK8gMaC0QOYAMyEEuzJnyUi"
	testUserKey  = "uQiRzpo4DXghDmr9QzzfQu27cmVRsG"
)

// pushoverAPI answers like the messages endpoint and records the last form
func pushoverAPI(t *testing.T, form map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/messages.json", r.URL.Path)
		for _, key := range []string{"token", "user", "message", "title"} {
			form[key] = r.FormValue(key)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Limit-App-Limit", "10000")
		w.Header().Set("X-Limit-App-Remaining", "9999")
		w.Header().Set("X-Limit-App-Reset", "1893456000")
		w.Write([]byte(`{"status":1,"request":"5042853c-402d-4a18-abcb-168734a801de"}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPushover_Notify(t *testing.T) {
	form := map[string]string{}
	server := pushoverAPI(t, form)

	p := NewPushover(testAppToken, testUserKey, "SWE Cron").WithEndpoint(server.URL)

	err := p.Notify(context.Background(), "SWE Cron - New Listings:\nAcme\n\n[Acme]\nIntern\n")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"token":   testAppToken,
		"user":    testUserKey,
		"message": "SWE Cron - New Listings:\nAcme\n\n[Acme]\nIntern\n",
		"title":   "SWE Cron",
	}, form)
}

func TestPushover_WithEndpoint(t *testing.T) {
	p := NewPushover(testAppToken, testUserKey, "SWE Cron")
	assert.Equal(t, PushoverEndpoint, p.WithEndpoint("").endpoint)
	assert.Equal(t, "http://localhost:9/1", p.WithEndpoint("http://localhost:9/1").endpoint)
}

func TestPushover_TruncatesLongMessages(t *testing.T) {
	form := map[string]string{}
	server := pushoverAPI(t, form)

	p := NewPushover(testAppToken, testUserKey, "SWE Cron").WithEndpoint(server.URL)

	require.NoError(t, p.Notify(context.Background(), strings.Repeat("é", 3000)))
	assert.Equal(t, PushoverMaxMessage, utf8.RuneCountInString(form["message"]))
}

func TestPushover_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"user":"invalid","errors":["user identifier is invalid"],"status":0,"request":"abc"}`))
	}))
	defer server.Close()

	p := NewPushover(testAppToken, testUserKey, "SWE Cron").WithEndpoint(server.URL)

	err := p.Notify(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotification))
	assert.Contains(t, err.Error(), "send failed")
}

func TestPushover_InvalidCredentials(t *testing.T) {
	form := map[string]string{}
	server := pushoverAPI(t, form)

	p := NewPushover("short", testUserKey, "SWE Cron").WithEndpoint(server.URL)

	err := p.Notify(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotification))
	assert.Empty(t, form)
}

func TestPushover_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	p := NewPushover(testAppToken, testUserKey, "SWE Cron").WithEndpoint(server.URL)

	err := p.Notify(context.Background(), "hello")
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotification))
}
