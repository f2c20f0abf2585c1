package cmd

import (
	"context"
	"io"

	"swecron/config"
	"swecron/logger"
	"swecron/services/cache"
	"swecron/services/notifier"
	"swecron/services/store"
)

// Services holds all the initialized services
type Services struct {
	Blocklist *cache.Blocklist
	Store     store.Store
	Notifier  notifier.Notifier

	closers []io.Closer
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			logger.Warn("Failed to close service: %v", err)
		}
	}
}

// initializeServices initializes the cache, and in write mode the listing
// store and notifiers
func initializeServices(ctx context.Context, cfg *config.Config, write bool) (*Services, error) {
	services := &Services{}

	// Initialize cache service
	var cacheService cache.CacheService = cache.NewMemoryCache()
	if cfg.MemcacheAddr != "" {
		mc := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := mc.Ping(); err != nil {
			logger.Warn("Memcache at %s unavailable, using in-process block list: %v", cfg.MemcacheAddr, err)
		} else {
			cacheService = mc
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}
	services.Blocklist = cache.NewBlocklist(cacheService, cfg.SiteBlockTime)

	if !write {
		return services, nil
	}

	// Initialize listing store
	st, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	services.Store = st
	services.closers = append(services.closers, st)

	// Initialize notifiers
	var notifiers []notifier.Notifier
	if cfg.HasPushover() {
		pushover := notifier.NewPushover(cfg.PushoverToken, cfg.PushoverUser, cfg.PushoverTitle).WithEndpoint(cfg.PushoverURL)
		notifiers = append(notifiers, pushover)
	}
	if cfg.HasTelegram() {
		notifiers = append(notifiers, notifier.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID))
	}
	if cfg.RedisAddr != "" {
		redisStream := notifier.NewRedisStream(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLength)
		notifiers = append(notifiers, redisStream)
		services.closers = append(services.closers, redisStream)
		logger.Info("Publishing to Redis at %s (DB: %d, Stream: %s)", cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}
	multi := notifier.NewMulti(notifiers...)
	logger.Info("Notifying through %d transport(s): %s", multi.Len(), multi.Name())
	services.Notifier = multi

	return services, nil
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		st, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("Using PostgreSQL listing store")
		return st, nil
	default:
		st := store.NewFileStore(cfg.ListingsPath)
		logger.Info("Using listing snapshot %s", st.Path())
		return st, nil
	}
}
