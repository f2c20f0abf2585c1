package notifier

import (
	"context"
	"sync"
	"time"

	"swecron/logger"
	apperrors "swecron/pkg/errors"

	"github.com/gregdel/pushover"
)

// PushoverEndpoint is the Pushover API base URL
const PushoverEndpoint = "https://api.pushover.net/1"

// PushoverMaxMessage is the longest message Pushover accepts, in characters
const PushoverMaxMessage = pushover.MessageMaxLength

// PushoverTimeout bounds one delivery
const PushoverTimeout = 10 * time.Second

// the client library reads its endpoint from a package variable
var pushoverEndpointMu sync.Mutex

// Pushover sends messages through the Pushover API
type Pushover struct {
	app       *pushover.Pushover
	recipient *pushover.Recipient
	title     string
	endpoint  string
}

// NewPushover creates a Pushover notifier
func NewPushover(token, user, title string) *Pushover {
	return &Pushover{
		app:       pushover.New(token),
		recipient: pushover.NewRecipient(user),
		title:     title,
		endpoint:  PushoverEndpoint,
	}
}

// WithEndpoint points the notifier at another API base URL; empty keeps the current one
func (p *Pushover) WithEndpoint(endpoint string) *Pushover {
	if endpoint != "" {
		p.endpoint = endpoint
	}
	return p
}

// Name returns "pushover"
func (p *Pushover) Name() string {
	return "pushover"
}

// Notify sends message, truncated to Pushover's limit. A rejected message
// or an unreachable API is a notification error.
func (p *Pushover) Notify(ctx context.Context, message string) error {
	ctx, cancel := context.WithTimeout(ctx, PushoverTimeout)
	defer cancel()

	msg := pushover.NewMessageWithTitle(truncate(message, PushoverMaxMessage), p.title)

	type result struct {
		resp *pushover.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		pushoverEndpointMu.Lock()
		defer pushoverEndpointMu.Unlock()
		pushover.APIEndpoint = p.endpoint
		resp, err := p.app.SendMessage(msg, p.recipient)
		done <- result{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return apperrors.NewNotification(p.Name(), "send timed out", ctx.Err())
	case r := <-done:
		if r.err != nil {
			return apperrors.NewNotification(p.Name(), "send failed", r.err)
		}
		logger.ForNotifier(p.Name()).Debug().
			Int("status", r.resp.Status).
			Str("request", r.resp.ID).
			Msg("Pushover API response")
		return nil
	}
}

// truncate cuts s to at most n characters
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
