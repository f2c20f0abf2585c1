package cache

import (
	"errors"
	"strconv"
	"time"

	"swecron/logger"
)

// Blocklist marks sites that answered with a rate limit so later runs
// skip them until the block expires.
type Blocklist struct {
	svc      CacheService
	duration time.Duration
}

// NewBlocklist creates a block list over svc. A zero duration uses the
// duration passed to Block.
func NewBlocklist(svc CacheService, duration time.Duration) *Blocklist {
	return &Blocklist{svc: svc, duration: duration}
}

func blockKey(site string) string {
	return "block:" + site
}

// Blocked reports whether site is currently blocked. Cache failures are
// logged and treated as not blocked.
func (b *Blocklist) Blocked(site string) bool {
	if b == nil || b.svc == nil {
		return false
	}
	_, err := b.svc.Get(blockKey(site))
	if err == nil {
		return true
	}
	if !errors.Is(err, ErrCacheMiss) {
		logger.ForCache().Warn().Err(err).Str("site", site).Msg("Block list lookup failed")
	}
	return false
}

// Block blocks site for the configured duration, or for retryAfter when
// that is longer.
func (b *Blocklist) Block(site string, retryAfter time.Duration) error {
	if b == nil || b.svc == nil {
		return nil
	}
	d := b.duration
	if retryAfter > d {
		d = retryAfter
	}
	if d <= 0 {
		return nil
	}
	value := []byte(strconv.Itoa(int(d / time.Second)))
	if err := b.svc.Set(blockKey(site), value, d); err != nil {
		return err
	}
	logger.ForCache().Info().Str("site", site).Dur("duration", d).Msg("Site blocked after rate limit")
	return nil
}
