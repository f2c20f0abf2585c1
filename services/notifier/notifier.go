// Package notifier delivers the new-postings message to the configured transports.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"swecron/internal/posting"
	"swecron/logger"
)

// MessageHeader opens every notification
const MessageHeader = "SWE Cron - New Listings:\n"

// Notifier sends one formatted message
type Notifier interface {
	// Name identifies the transport in logs
	Name() string
	// Notify sends message
	Notify(ctx context.Context, message string) error
}

// FormatMessage renders new postings as the notification body: the header,
// the distinct sites in first-seen order, then one block per posting.
func FormatMessage(postings []posting.Posting) string {
	var sites []string
	seen := make(map[string]struct{})
	var listings strings.Builder
	for _, p := range postings {
		if _, ok := seen[p.Site]; !ok {
			seen[p.Site] = struct{}{}
			sites = append(sites, p.Site)
		}
		fmt.Fprintf(&listings, "[%s]\n%s\n%s\n\n", p.Site, p.Title, p.Link())
	}

	var b strings.Builder
	b.WriteString(MessageHeader)
	b.WriteString(strings.Join(sites, ", "))
	b.WriteString("\n\n")
	b.WriteString(listings.String())
	return b.String()
}

// Multi sends to every notifier in order
type Multi struct {
	notifiers []Notifier
}

// NewMulti creates a fan-out over notifiers
func NewMulti(notifiers ...Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

// Name lists the wrapped transports
func (m *Multi) Name() string {
	names := make([]string, len(m.notifiers))
	for i, n := range m.notifiers {
		names[i] = n.Name()
	}
	return strings.Join(names, "+")
}

// Len returns the number of wrapped transports
func (m *Multi) Len() int {
	return len(m.notifiers)
}

// Notify sends message through every transport. Failures are logged and
// do not stop later transports. The error is nil when at least one
// transport succeeded.
func (m *Multi) Notify(ctx context.Context, message string) error {
	if len(m.notifiers) == 0 {
		return nil
	}

	var errs []error
	for _, n := range m.notifiers {
		log := logger.ForNotifier(n.Name())
		if err := n.Notify(ctx, message); err != nil {
			log.Error().Err(err).Msg("Notification failed")
			errs = append(errs, err)
			continue
		}
		log.Info().Msg("Notification sent successfully")
	}

	if len(errs) == len(m.notifiers) {
		return errors.Join(errs...)
	}
	return nil
}
