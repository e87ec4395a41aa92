package container

import (
	"context"
	"fmt"

	"wipertech/storefront/internal/cache"
	"wipertech/storefront/internal/client"
	"wipertech/storefront/internal/config"
	"wipertech/storefront/internal/fallback"
	"wipertech/storefront/internal/service"
	"wipertech/storefront/internal/web"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Container holds all initialized components
type Container struct {
	Config *config.Config
	Client client.CommerceClient
	Cache  cache.ResponseCache

	Service *service.Service
	Server  *web.Server

	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	if err := configureLogging(cfg.Log); err != nil {
		return nil, err
	}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})

		// Test connection
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}

		log.Info("✅ Connected to Redis successfully")

		container.redis = rdb
		container.Cache = cache.NewRedisResponseCache(rdb)
	} else {
		log.Info("ℹ️ Redis disabled, responses are not cached")
	}

	container.Client = client.NewCommerceClient(cfg.Commerce, cfg.Cache, container.Cache)

	mode, err := fallback.ParseMode(cfg.Fallback.Mode)
	if err != nil {
		return nil, err
	}
	if mode != fallback.ModeOff {
		log.Warnf("⚠️ Sample data fallback enabled (mode %s)", mode)
	}

	container.Service = service.NewService(
		container.Client,
		fallback.Sample{},
		mode,
		cfg.Commerce.PageLimit,
	)

	server, err := web.NewServer(cfg.Server, container.Service)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize web server: %w", err)
	}
	container.Server = server

	return container, nil
}

// Run serves the storefront until ctx is cancelled
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Server.Run(ctx)
	})

	// Expire idle selector sessions
	g.Go(func() error {
		return c.Server.RunSessionJanitor(ctx)
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("failed to close Redis client: %w", err)
		}
	}

	log.Info("Container shut down successfully")
	return nil
}

func configureLogging(cfg config.LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
